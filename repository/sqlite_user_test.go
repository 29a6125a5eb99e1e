package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
)

func TestUserCreateAndLookup(t *testing.T) {
	conn := newTestDB(t)
	users := NewSQLiteUserRepo(conn)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice@example.com", "Alice")
	assert.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero(), "RETURNING created_at must populate the field")

	byID, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	byEmail, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)
}

func TestUserDuplicateEmail(t *testing.T) {
	conn := newTestDB(t)
	users := NewSQLiteUserRepo(conn)
	ctx := context.Background()

	createTestUser(t, users, "alice@example.com", "Alice")

	dup := &models.User{Email: "alice@example.com", FullName: "Alice 2", PasswordHash: "x"}
	err := users.Create(ctx, dup)
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestUserLookupNotFound(t *testing.T) {
	conn := newTestDB(t)
	users := NewSQLiteUserRepo(conn)
	ctx := context.Background()

	_, err := users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestGetAllExceptExcludesViewer(t *testing.T) {
	conn := newTestDB(t)
	users := NewSQLiteUserRepo(conn)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice@example.com", "Alice")
	createTestUser(t, users, "bob@example.com", "Bob")
	createTestUser(t, users, "carol@example.com", "Carol")

	list, err := users.GetAllExcept(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, u := range list {
		assert.NotEqual(t, alice.ID, u.ID)
	}
	// full_name sıralı döner
	assert.Equal(t, "Bob", list[0].FullName)
	assert.Equal(t, "Carol", list[1].FullName)
}

func TestUpdateProfile(t *testing.T) {
	conn := newTestDB(t)
	users := NewSQLiteUserRepo(conn)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice@example.com", "Alice")

	alice.FullName = "Alice Updated"
	alice.Bio = "hello"
	alice.AvatarURL = strPtr("/api/uploads/avatar.png")
	require.NoError(t, users.UpdateProfile(ctx, alice))

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Updated", got.FullName)
	assert.Equal(t, "hello", got.Bio)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "/api/uploads/avatar.png", *got.AvatarURL)

	ghost := &models.User{ID: "missing", FullName: "x"}
	assert.ErrorIs(t, users.UpdateProfile(ctx, ghost), pkg.ErrNotFound)
}

func TestUpdatePassword(t *testing.T) {
	conn := newTestDB(t)
	users := NewSQLiteUserRepo(conn)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice@example.com", "Alice")

	require.NoError(t, users.UpdatePassword(ctx, alice.ID, "new-hash"))

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, users.UpdatePassword(ctx, "missing", "h"), pkg.ErrNotFound)
}
