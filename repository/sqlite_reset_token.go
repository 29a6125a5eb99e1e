// Package repository — PasswordResetRepository'nin SQLite implementasyonu.
//
// OTP plaintext olarak SAKLANMAZ — sadece SHA256 hash saklanır.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/artEvg/QuickChat/database"
	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
)

// sqliteResetTokenRepo, PasswordResetRepository'nin SQLite implementasyonu.
type sqliteResetTokenRepo struct {
	db database.TxQuerier
}

func NewSQLiteResetTokenRepo(db database.TxQuerier) PasswordResetRepository {
	return &sqliteResetTokenRepo{db: db}
}

func (r *sqliteResetTokenRepo) Upsert(ctx context.Context, reset *models.PasswordReset) error {
	if reset.ID == "" {
		reset.ID = uuid.NewString()
	}

	// user_id UNIQUE — conflict'te eski kaydın üzerine yazılır, böylece
	// kullanıcı başına tek aktif OTP garanti edilir.
	query := `
		INSERT INTO password_resets (id, user_id, otp_hash, expires_at, used)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(user_id) DO UPDATE SET
			otp_hash = excluded.otp_hash,
			expires_at = excluded.expires_at,
			used = 0,
			created_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, reset.ID, reset.UserID, reset.OTPHash, reset.ExpiresAt); err != nil {
		return fmt.Errorf("failed to upsert password reset: %w", err)
	}

	return nil
}

func (r *sqliteResetTokenRepo) GetByUserID(ctx context.Context, userID string) (*models.PasswordReset, error) {
	query := `
		SELECT id, user_id, otp_hash, expires_at, used, created_at
		FROM password_resets WHERE user_id = ?`

	reset := &models.PasswordReset{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&reset.ID, &reset.UserID, &reset.OTPHash, &reset.ExpiresAt, &reset.Used, &reset.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password reset: %w", err)
	}

	return reset, nil
}

func (r *sqliteResetTokenRepo) MarkUsed(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE password_resets SET used = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark password reset used: %w", err)
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
