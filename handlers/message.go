package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
	"github.com/artEvg/QuickChat/pkg/ratelimit"
	"github.com/artEvg/QuickChat/services"
)

// MessageHandler, mesajlaşma endpoint'lerini yöneten struct.
type MessageHandler struct {
	messageService services.MessageService
	messageLimiter *ratelimit.MessageRateLimiter
}

// NewMessageHandler, constructor.
// messageLimiter nil ise spam koruması devre dışı kalır.
func NewMessageHandler(messageService services.MessageService, messageLimiter *ratelimit.MessageRateLimiter) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		messageLimiter: messageLimiter,
	}
}

// usersResponse, sidebar verisi: kullanıcı dizini + unseen sayaçları.
// unseenMessages map'inde sadece count > 0 olan peer'lar bulunur.
type usersResponse struct {
	Success        bool             `json:"success"`
	Users          []models.User    `json:"users"`
	UnseenMessages models.UnseenMap `json:"unseenMessages"`
}

// conversationResponse, iki kullanıcı arasındaki mesaj geçmişi.
type conversationResponse struct {
	Success  bool             `json:"success"`
	Messages []models.Message `json:"messages"`
}

// sendResponse, gönderilen mesajın kalıcılaşmış hali.
type sendResponse struct {
	Success    bool            `json:"success"`
	NewMessage *models.Message `json:"newMessage"`
}

// GetUsers godoc
// GET /api/messages/users
// Auth middleware gerektirir.
func (h *MessageHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	users, unseen, err := h.messageService.GetUsersWithUnseen(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if users == nil {
		users = []models.User{} // JSON'da null yerine boş array
	}

	pkg.JSON(w, http.StatusOK, usersResponse{
		Success:        true,
		Users:          users,
		UnseenMessages: unseen,
	})
}

// GetConversation godoc
// GET /api/messages/{peerId}
// Auth middleware gerektirir. Yan etki: peer'ın mesajları okundu işaretlenir.
func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	peerID := r.PathValue("peerId")
	if peerID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "peer id is required")
		return
	}

	messages, err := h.messageService.GetConversation(r.Context(), user.ID, peerID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if messages == nil {
		messages = []models.Message{}
	}

	pkg.JSON(w, http.StatusOK, conversationResponse{Success: true, Messages: messages})
}

// Send godoc
// POST /api/messages/send/{peerId}
// Auth middleware gerektirir. Body: { "text"? | "image"? | "audio"?, "audioDuration"? }
//
// Rate limiting: kullanıcı bazlı spam koruması. Limit aşılırsa 429 +
// Retry-After döner.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if h.messageLimiter != nil && !h.messageLimiter.Allow(user.ID) {
		retryAfter := h.messageLimiter.CooldownSeconds(user.ID)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("sending messages too fast, please wait %s",
				ratelimit.FormatRetryMessage(retryAfter)))
		return
	}

	peerID := r.PathValue("peerId")
	if peerID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "peer id is required")
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.messageService.Send(r.Context(), user.ID, peerID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, sendResponse{Success: true, NewMessage: msg})
}

// MarkSeen godoc
// PUT /api/messages/mark/{messageId}
// Auth middleware gerektirir. Sadece mesajın alıcısı işaretleyebilir; idempotent.
func (h *MessageHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	messageID := r.PathValue("messageId")
	if messageID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "message id is required")
		return
	}

	if err := h.messageService.MarkSeen(r.Context(), user.ID, messageID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messageOnlyResponse{Success: true, Message: "message marked as seen"})
}
