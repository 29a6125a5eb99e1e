package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
	"github.com/artEvg/QuickChat/pkg/ratelimit"
)

func TestGetUsersEmptyDirectoryIsArray(t *testing.T) {
	svc := &fakeMessageService{
		getUsersFn: func(string) ([]models.User, models.UnseenMap, error) {
			return nil, models.UnseenMap{}, nil
		},
	}
	h := NewMessageHandler(svc, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/messages/users", nil)
	r = withUser(r, &models.User{ID: "u1"})
	w := httptest.NewRecorder()

	h.GetUsers(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	// nil slice null'a değil boş array'e serialize edilmeli
	assert.Contains(t, w.Body.String(), `"users":[]`)
}

func TestGetUsersWithUnseenCounts(t *testing.T) {
	svc := &fakeMessageService{
		getUsersFn: func(viewerID string) ([]models.User, models.UnseenMap, error) {
			assert.Equal(t, "u1", viewerID)
			return []models.User{{ID: "u2", FullName: "Bob"}}, models.UnseenMap{"u2": 3}, nil
		},
	}
	h := NewMessageHandler(svc, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/messages/users", nil)
	r = withUser(r, &models.User{ID: "u1"})
	w := httptest.NewRecorder()

	h.GetUsers(w, r)

	resp := decodeBody(t, w)
	unseen, ok := resp["unseenMessages"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), unseen["u2"])
}

func TestGetConversation(t *testing.T) {
	text := "hello"
	svc := &fakeMessageService{
		getConversationFn: func(viewerID, peerID string) ([]models.Message, error) {
			assert.Equal(t, "u1", viewerID)
			assert.Equal(t, "u2", peerID)
			return []models.Message{{ID: "m1", SenderID: "u2", ReceiverID: "u1", Text: &text}}, nil
		},
	}
	h := NewMessageHandler(svc, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/messages/u2", nil)
	r.SetPathValue("peerId", "u2")
	r = withUser(r, &models.User{ID: "u1"})
	w := httptest.NewRecorder()

	h.GetConversation(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	messages, ok := resp["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 1)
}

func TestGetConversationUnknownPeer(t *testing.T) {
	svc := &fakeMessageService{
		getConversationFn: func(string, string) ([]models.Message, error) {
			return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
		},
	}
	h := NewMessageHandler(svc, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/messages/ghost", nil)
	r.SetPathValue("peerId", "ghost")
	r = withUser(r, &models.User{ID: "u1"})
	w := httptest.NewRecorder()

	h.GetConversation(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendSuccess(t *testing.T) {
	svc := &fakeMessageService{
		sendFn: func(senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error) {
			assert.Equal(t, "u1", senderID)
			assert.Equal(t, "u2", receiverID)
			text := req.Text
			return &models.Message{ID: "m1", SenderID: senderID, ReceiverID: receiverID, Text: &text}, nil
		},
	}
	h := NewMessageHandler(svc, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/messages/send/u2", strings.NewReader(`{"text":"selam"}`))
	r.SetPathValue("peerId", "u2")
	r = withUser(r, &models.User{ID: "u1"})
	w := httptest.NewRecorder()

	h.Send(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	msg, ok := resp["newMessage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "m1", msg["id"])
}

func TestSendRateLimited(t *testing.T) {
	svc := &fakeMessageService{
		sendFn: func(senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error) {
			text := req.Text
			return &models.Message{ID: "m1", Text: &text}, nil
		},
	}
	limiter := ratelimit.NewMessageRateLimiter(1, time.Minute, time.Minute)
	h := NewMessageHandler(svc, limiter)

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/messages/send/u2", strings.NewReader(`{"text":"x"}`))
		r.SetPathValue("peerId", "u2")
		r = withUser(r, &models.User{ID: "u1"})
		w := httptest.NewRecorder()
		h.Send(w, r)
		return w
	}

	assert.Equal(t, http.StatusCreated, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSendInvalidPayload(t *testing.T) {
	svc := &fakeMessageService{
		sendFn: func(string, string, *models.SendMessageRequest) (*models.Message, error) {
			return nil, fmt.Errorf("%w: message must contain text, image or audio", pkg.ErrBadRequest)
		},
	}
	h := NewMessageHandler(svc, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/messages/send/u2", strings.NewReader(`{}`))
	r.SetPathValue("peerId", "u2")
	r = withUser(r, &models.User{ID: "u1"})
	w := httptest.NewRecorder()

	h.Send(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkSeen(t *testing.T) {
	svc := &fakeMessageService{
		markSeenFn: func(viewerID, messageID string) error {
			assert.Equal(t, "u1", viewerID)
			assert.Equal(t, "m1", messageID)
			return nil
		},
	}
	h := NewMessageHandler(svc, nil)

	r := httptest.NewRequest(http.MethodPut, "/api/messages/mark/m1", nil)
	r.SetPathValue("messageId", "m1")
	r = withUser(r, &models.User{ID: "u1"})
	w := httptest.NewRecorder()

	h.MarkSeen(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMarkSeenOnlyReceiver(t *testing.T) {
	svc := &fakeMessageService{
		markSeenFn: func(string, string) error {
			return fmt.Errorf("%w: only the receiver can mark a message seen", pkg.ErrForbidden)
		},
	}
	h := NewMessageHandler(svc, nil)

	r := httptest.NewRequest(http.MethodPut, "/api/messages/mark/m1", nil)
	r.SetPathValue("messageId", "m1")
	r = withUser(r, &models.User{ID: "u1"})
	w := httptest.NewRecorder()

	h.MarkSeen(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEndpointsRequireContextUser(t *testing.T) {
	h := NewMessageHandler(&fakeMessageService{}, nil)

	tests := []struct {
		name string
		call func(w http.ResponseWriter, r *http.Request)
	}{
		{"get users", h.GetUsers},
		{"get conversation", h.GetConversation},
		{"send", h.Send},
		{"mark seen", h.MarkSeen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/messages/users", nil)
			w := httptest.NewRecorder()
			tt.call(w, r)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
