package repository

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artEvg/QuickChat/database"
	"github.com/artEvg/QuickChat/models"
)

// newTestDB, her test için izole, migration'ları uygulanmış bir SQLite açar.
// t.TempDir() test bitince otomatik silinir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db.Conn
}

// createTestUser, FK constraint'leri için gerçek bir kullanıcı satırı oluşturur.
func createTestUser(t *testing.T, repo UserRepository, email, fullName string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: "x",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func strPtr(s string) *string { return &s }
