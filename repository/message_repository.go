package repository

import (
	"context"

	"github.com/artEvg/QuickChat/models"
)

// MessageRepository, mesaj veritabanı işlemleri için interface.
//
// Silme operasyonu bilerek yok — mesajlar hiçbir akışta silinmez,
// seen alanı da sadece false → true yönünde değişir.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	// ListConversation, iki kullanıcı arasındaki TÜM mesajları her iki yönde,
	// (created_at, id) sırasıyla döner. id tie-break'i aynı saniyede yazılan
	// mesajların sırasını deterministik tutar.
	ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error)
	// MarkSeen, tek bir mesajı okundu işaretler. Idempotent — zaten seen
	// olan mesajda no-op.
	MarkSeen(ctx context.Context, messageID string) error
	// MarkConversationSeen, sender'dan receiver'a gelen tüm okunmamış
	// mesajları tek sorguda okundu işaretler.
	MarkConversationSeen(ctx context.Context, senderID, receiverID string) error
	// CountUnseenBySender, receiver'ın okumadığı mesajları gönderen bazında
	// gruplar. Sadece count > 0 olan gönderenler map'te bulunur.
	CountUnseenBySender(ctx context.Context, receiverID string) (models.UnseenMap, error)
}
