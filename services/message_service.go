package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/artEvg/QuickChat/database"
	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
	"github.com/artEvg/QuickChat/repository"
	"github.com/artEvg/QuickChat/ws"
)

// MessageService, mesajlaşma iş mantığı interface'i.
type MessageService interface {
	// GetUsersWithUnseen, viewer dışındaki tüm kullanıcıları ve viewer'ın
	// gönderen bazlı okunmamış mesaj sayaçlarını döner. Sidebar bu ikisiyle çizilir.
	GetUsersWithUnseen(ctx context.Context, viewerID string) ([]models.User, models.UnseenMap, error)

	// GetConversation, viewer ile peer arasındaki tüm mesajları kronolojik
	// sırayla döner. Yan etki: peer'dan viewer'a gelen okunmamış mesajların
	// TAMAMI okundu işaretlenir — konuşmayı açmak okumak demektir.
	GetConversation(ctx context.Context, viewerID, peerID string) ([]models.Message, error)

	// Send, mesajı doğrular, kalıcılaştırır ve alıcı online ise push eder.
	// Push best-effort'tur: alıcı offline olsa da mesaj başarıyla gönderilmiştir.
	Send(ctx context.Context, senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error)

	// MarkSeen, tek bir mesajı okundu işaretler. Sadece mesajın ALICISI
	// işaretleyebilir; tekrarlanan çağrılar idempotenttir.
	MarkSeen(ctx context.Context, viewerID, messageID string) error
}

type messageService struct {
	db          *sql.DB // GetConversation'ın list + bulk-mark çifti WithTx ile atomik çalışır
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	uploads     UploadService
	hub         ws.EventPublisher
}

// NewMessageService, constructor.
// db: GetConversation transaction'ı için doğrudan *sql.DB gerekir.
func NewMessageService(
	db *sql.DB,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	uploads UploadService,
	hub ws.EventPublisher,
) MessageService {
	return &messageService{
		db:          db,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		uploads:     uploads,
		hub:         hub,
	}
}

func (s *messageService) GetUsersWithUnseen(ctx context.Context, viewerID string) ([]models.User, models.UnseenMap, error) {
	users, err := s.userRepo.GetAllExcept(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}

	// Şifre hash'leri API'ye sızmasın
	for i := range users {
		users[i].PasswordHash = ""
	}

	unseen, err := s.messageRepo.CountUnseenBySender(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}

	return users, unseen, nil
}

func (s *messageService) GetConversation(ctx context.Context, viewerID, peerID string) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, peerID); err != nil {
		return nil, err // peer yoksa ErrNotFound
	}

	// Konuşmayı açmak = peer'ın mesajlarını okumak. Listeleme ve toplu
	// işaretleme AYNI transaction'da çalışır: iki autocommit statement
	// arasında commit edilen bir mesaj, listede hiç görünmeden okundu
	// işaretlenebilirdi.
	var messages []models.Message
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txMessageRepo := repository.NewSQLiteMessageRepo(tx)

		var err error
		messages, err = txMessageRepo.ListConversation(ctx, viewerID, peerID)
		if err != nil {
			return err
		}
		return txMessageRepo.MarkConversationSeen(ctx, peerID, viewerID)
	})
	if err != nil {
		return nil, err
	}

	// Dönen kopyada da seen=true gösterilir — client zaten okumuş durumda
	for i := range messages {
		if messages[i].SenderID == peerID {
			messages[i].Seen = true
		}
	}

	return messages, nil
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", pkg.ErrBadRequest)
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
	}

	switch {
	case req.Image != "":
		url, err := s.uploads.SaveDataURI(req.Image, "image/")
		if err != nil {
			return nil, err
		}
		msg.Image = &url

	case req.Audio != "":
		url, err := s.uploads.SaveDataURI(req.Audio, "audio/")
		if err != nil {
			return nil, err
		}
		msg.Audio = &url
		msg.AudioDuration = req.AudioDuration

	default:
		text := req.Text
		msg.Text = &text
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	// Dispatch-on-persist: kayıt başarılıysa alıcıya push dene.
	// Alıcı offline ise push atlanır — mesaj DB'de, sonraki fetch'te görünür.
	// Gönderene push YAPILMAZ: kendi mesajını HTTP yanıtından alır.
	if delivered := s.hub.SendToUser(receiverID, ws.Event{Op: ws.OpNewMessage, Data: msg}); !delivered {
		log.Printf("[message] receiver offline, push skipped: message=%s receiver=%s", msg.ID, receiverID)
	}

	return msg, nil
}

func (s *messageService) MarkSeen(ctx context.Context, viewerID, messageID string) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	// Sadece alıcı okundu işaretleyebilir — gönderen veya üçüncü kişi yetkisiz
	if msg.ReceiverID != viewerID {
		return fmt.Errorf("%w: only the receiver can mark a message seen", pkg.ErrForbidden)
	}

	if msg.Seen {
		return nil // idempotent
	}

	return s.messageRepo.MarkSeen(ctx, messageID)
}
