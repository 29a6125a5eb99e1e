package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
)

func newTestAuthService() (AuthService, *fakeUserRepo, *fakeResetRepo, *fakeEmailSender) {
	users := newFakeUserRepo()
	resets := newFakeResetRepo()
	emails := newFakeEmailSender()
	svc := NewAuthService(users, resets, emails, &fakeUploads{}, "test-secret", 7)
	return svc, users, resets, emails
}

func signupTestUser(t *testing.T, svc AuthService, email string) *AuthResult {
	t.Helper()
	result, err := svc.Signup(context.Background(), &models.SignupRequest{
		FullName: "Test User",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return result
}

func TestSignupAndLogin(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	result := signupTestUser(t, svc, "alice@example.com")
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.User.ID)
	assert.Empty(t, result.User.PasswordHash, "hash must never leave the service")

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
	assert.NotEmpty(t, login.Token)
}

func TestSignupValidation(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.SignupRequest
	}{
		{"short name", models.SignupRequest{FullName: "A", Email: "a@b.com", Password: "password123"}},
		{"bad email", models.SignupRequest{FullName: "Alice", Email: "not-an-email", Password: "password123"}},
		{"short password", models.SignupRequest{FullName: "Alice", Email: "a@b.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, &tt.req)
			assert.ErrorIs(t, err, pkg.ErrBadRequest)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	signupTestUser(t, svc, "alice@example.com")

	_, err := svc.Signup(ctx, &models.SignupRequest{
		FullName: "Alice Again",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestLoginWrongCredentialsAreUniform(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	signupTestUser(t, svc, "alice@example.com")

	// Yanlış şifre ve hiç olmayan hesap AYNI hatayı üretmeli —
	// yanıttan hesap varlığı anlaşılmamalı
	_, errWrongPass := svc.Login(ctx, &models.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"})
	_, errNoUser := svc.Login(ctx, &models.LoginRequest{Email: "ghost@example.com", Password: "password123"})

	require.ErrorIs(t, errWrongPass, pkg.ErrUnauthorized)
	require.ErrorIs(t, errNoUser, pkg.ErrUnauthorized)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestValidateAccessToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	result := signupTestUser(t, svc, "alice@example.com")

	claims, err := svc.ValidateAccessToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Farklı secret ile imzalanmış token reddedilir
	other := NewAuthService(newFakeUserRepo(), newFakeResetRepo(), newFakeEmailSender(), &fakeUploads{}, "other-secret", 7)
	_, err = other.ValidateAccessToken(result.Token)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	result := signupTestUser(t, svc, "alice@example.com")

	newName := "Alice Renamed"
	updated, err := svc.UpdateProfile(ctx, result.User.ID, &models.UpdateProfileRequest{FullName: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Alice Renamed", updated.FullName)
	assert.Empty(t, updated.PasswordHash)

	// Bio dokunulmadı
	assert.Equal(t, result.User.Bio, updated.Bio)

	pic := "data:image/png;base64,aGVsbG8="
	updated, err = svc.UpdateProfile(ctx, result.User.ID, &models.UpdateProfileRequest{ProfilePic: &pic})
	require.NoError(t, err)
	require.NotNil(t, updated.AvatarURL)
	assert.Contains(t, *updated.AvatarURL, "/api/uploads/")
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _, emails := newTestAuthService()
	ctx := context.Background()

	signupTestUser(t, svc, "alice@example.com")

	require.NoError(t, svc.SendResetOTP(ctx, &models.SendResetOTPRequest{Email: "alice@example.com"}))

	otp := emails.lastOTP("alice@example.com")
	require.Len(t, otp, 6, "OTP must be a 6-digit code")

	require.NoError(t, svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Email:       "alice@example.com",
		OTP:         otp,
		NewPassword: "brand-new-pass",
	}))

	// Yeni şifre çalışır, eskisi çalışmaz
	_, err := svc.Login(ctx, &models.LoginRequest{Email: "alice@example.com", Password: "brand-new-pass"})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, &models.LoginRequest{Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// OTP tek kullanımlık — ikinci reset reddedilir
	err = svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Email:       "alice@example.com",
		OTP:         otp,
		NewPassword: "yet-another-pass",
	})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestSendResetOTPUnknownEmailIsSilent(t *testing.T) {
	svc, _, _, emails := newTestAuthService()

	// Hesap yok → yine nil döner, email gitmez (account enumeration koruması)
	err := svc.SendResetOTP(context.Background(), &models.SendResetOTPRequest{Email: "ghost@example.com"})
	assert.NoError(t, err)
	assert.Empty(t, emails.lastOTP("ghost@example.com"))
}

func TestResetPasswordWrongOTP(t *testing.T) {
	svc, _, _, emails := newTestAuthService()
	ctx := context.Background()

	signupTestUser(t, svc, "alice@example.com")
	require.NoError(t, svc.SendResetOTP(ctx, &models.SendResetOTPRequest{Email: "alice@example.com"}))

	wrong := "000000"
	if emails.lastOTP("alice@example.com") == wrong {
		wrong = "000001"
	}

	err := svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Email:       "alice@example.com",
		OTP:         wrong,
		NewPassword: "whatever-pass",
	})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestResetPasswordExpiredOTP(t *testing.T) {
	svc, _, resets, emails := newTestAuthService()
	ctx := context.Background()

	result := signupTestUser(t, svc, "alice@example.com")
	require.NoError(t, svc.SendResetOTP(ctx, &models.SendResetOTPRequest{Email: "alice@example.com"}))

	// Kaydın süresini geçmişe çek
	resets.mu.Lock()
	resets.resets[result.User.ID].ExpiresAt = time.Now().Add(-time.Minute)
	resets.mu.Unlock()

	err := svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Email:       "alice@example.com",
		OTP:         emails.lastOTP("alice@example.com"),
		NewPassword: "whatever-pass",
	})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}
