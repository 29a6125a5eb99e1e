package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artEvg/QuickChat/database"
	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
)

// sqliteMessageRepo, MessageRepository interface'inin SQLite implementasyonu.
type sqliteMessageRepo struct {
	db database.TxQuerier
}

func NewSQLiteMessageRepo(db database.TxQuerier) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	// created_at'i Go tarafında set ediyoruz: SQLite'ın CURRENT_TIMESTAMP'i
	// saniye hassasiyetindedir, hızlı ardışık mesajlar aynı değeri alırdı.
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO messages (id, sender_id, receiver_id, text, image, audio, audio_duration, seen, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Text,
		msg.Image,
		msg.Audio,
		msg.AudioDuration,
		msg.Seen,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *sqliteMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image, audio, audio_duration, seen, created_at
		FROM messages WHERE id = ?`

	msg := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID,
		&msg.Text, &msg.Image, &msg.Audio, &msg.AudioDuration,
		&msg.Seen, &msg.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message by id: %w", err)
	}

	return msg, nil
}

func (r *sqliteMessageRepo) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	// Her iki yön tek sorguda: A→B ve B→A.
	query := `
		SELECT id, sender_id, receiver_id, text, image, audio, audio_duration, seen, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.ReceiverID,
			&m.Text, &m.Image, &m.Audio, &m.AudioDuration,
			&m.Seen, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

func (r *sqliteMessageRepo) MarkSeen(ctx context.Context, messageID string) error {
	// seen monotonik — geri alma sorgusu yok. Zaten seen=1 olan satırda
	// UPDATE yine 1 satır etkiler, bu yüzden affected=0 sadece "mesaj yok" demektir.
	query := `UPDATE messages SET seen = 1 WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, messageID)
	if err != nil {
		return fmt.Errorf("failed to mark message seen: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteMessageRepo) MarkConversationSeen(ctx context.Context, senderID, receiverID string) error {
	// Toplu okundu işaretleme — konuşma açıldığında çağrılır.
	// 0 satır etkilenmesi normaldir (okunmamış mesaj yoktu).
	query := `UPDATE messages SET seen = 1 WHERE sender_id = ? AND receiver_id = ? AND seen = 0`

	if _, err := r.db.ExecContext(ctx, query, senderID, receiverID); err != nil {
		return fmt.Errorf("failed to mark conversation seen: %w", err)
	}

	return nil
}

func (r *sqliteMessageRepo) CountUnseenBySender(ctx context.Context, receiverID string) (models.UnseenMap, error) {
	query := `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = ? AND seen = 0
		GROUP BY sender_id`

	rows, err := r.db.QueryContext(ctx, query, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unseen messages: %w", err)
	}
	defer rows.Close()

	unseen := make(models.UnseenMap)
	for rows.Next() {
		var senderID string
		var count int
		if err := rows.Scan(&senderID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unseen row: %w", err)
		}
		unseen[senderID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unseen rows: %w", err)
	}

	return unseen, nil
}
