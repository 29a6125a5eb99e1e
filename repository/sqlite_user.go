package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/artEvg/QuickChat/database"
	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
)

// sqliteUserRepo, UserRepository interface'inin SQLite implementasyonu.
// db field'ı küçük harf → package dışından erişilemez.
type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo, constructor fonksiyonu.
// Interface döner (concrete struct değil) — çağıran taraf implementasyondan bağımsız kalır.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, email, full_name, password_hash, bio, avatar_url)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Bio,
		user.AvatarURL,
	).Scan(&user.CreatedAt)

	if err != nil {
		// UNIQUE constraint violation → bu email ile hesap zaten var
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, full_name, password_hash, bio, avatar_url, created_at
		FROM users WHERE id = ?`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FullName, &user.PasswordHash,
		&user.Bio, &user.AvatarURL, &user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, full_name, password_hash, bio, avatar_url, created_at
		FROM users WHERE email = ?`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &user.PasswordHash,
		&user.Bio, &user.AvatarURL, &user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *sqliteUserRepo) GetAllExcept(ctx context.Context, viewerID string) ([]models.User, error) {
	query := `
		SELECT id, email, full_name, password_hash, bio, avatar_url, created_at
		FROM users WHERE id != ? ORDER BY full_name`

	rows, err := r.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close() // rows'u kapatmayı unutma — aksi halde bağlantı leak eder

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
			&u.Bio, &u.AvatarURL, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (r *sqliteUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET full_name = ?, bio = ?, avatar_url = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.FullName, user.Bio, user.AvatarURL, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	// RowsAffected 0 ise kullanıcı yok
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteUserRepo) UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, newPasswordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
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

// isUniqueViolation, SQLite UNIQUE constraint hatasını kontrol eder.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
