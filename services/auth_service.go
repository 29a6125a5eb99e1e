// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern: handler (HTTP) ile repository (DB) arasında oturan
// katman. Tüm iş kuralları burada yaşar — şifre hash'leme, JWT üretimi,
// okundu işaretleme kuralları, mesaj dispatch.
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — repository interface'i kullanır.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
	"github.com/artEvg/QuickChat/pkg/email"
	"github.com/artEvg/QuickChat/repository"
)

// AuthService interface'i — dışarıya açık API.
// Handler bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error)
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	// UpdateProfile, kullanıcının adını/bio'sunu/avatarını günceller.
	// Pointer olmayan (nil) alanlar değiştirilmez.
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	// SendResetOTP, hesap varsa 6 haneli kod emailler. Hesap YOKSA DA nil
	// döner — yanıttan hesap varlığı anlaşılamaz (account enumeration koruması).
	SendResetOTP(ctx context.Context, req *models.SendResetOTPRequest) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}

// AuthResult, signup/login sonrası dönen token + kullanıcı çifti.
type AuthResult struct {
	Token string
	User  models.User
}

// otpTTL, şifre sıfırlama kodunun geçerlilik süresi.
// pkg/email'deki mail metni bu süreyle uyumlu tutulmalı.
const otpTTL = 10 * time.Minute

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	userRepo    repository.UserRepository
	resetRepo   repository.PasswordResetRepository
	emailSender email.EmailSender
	uploads     UploadService
	jwtSecret   []byte
	tokenExp    time.Duration
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	emailSender email.EmailSender,
	uploads UploadService,
	jwtSecret string,
	tokenExpDays int,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		resetRepo:   resetRepo,
		emailSender: emailSender,
		uploads:     uploads,
		jwtSecret:   []byte(jwtSecret),
		tokenExp:    time.Duration(tokenExpDays) * 24 * time.Hour,
	}
}

// Signup, yeni kullanıcı kaydı oluşturur ve oturum token'ı döner.
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// Bcrypt hash (cost=12)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Bio:          req.Bio,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir
	}

	return s.buildAuthResult(user)
}

// Login, kullanıcı girişi yapar.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// "Kullanıcı yok" ile "şifre yanlış" aynı mesajı alır
			return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrUnauthorized)
	}

	return s.buildAuthResult(user)
}

// ValidateAccessToken, JWT token'ı doğrular ve claims'i döner.
// HTTP middleware ve WS handler aynı fonksiyonu kullanır — kimlik tek yerden doğrulanır.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

// UpdateProfile, kullanıcının profilini kısmi olarak günceller.
// ProfilePic data URI olarak gelir — diske yazılıp URL'i kaydedilir.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfilePic != nil {
		url, err := s.uploads.SaveDataURI(*req.ProfilePic, "image/")
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// SendResetOTP, şifre sıfırlama kodu üretir ve emailler.
//
// Hesap bulunamazsa sessizce nil döner — handler her durumda aynı "if an
// account exists..." yanıtını verir. Plaintext kod sadece email'de yaşar,
// DB'ye SHA256 hash'i yazılır.
func (s *authService) SendResetOTP(ctx context.Context, req *models.SendResetOTPRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			log.Printf("[auth] reset otp requested for unknown email")
			return nil
		}
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		OTPHash:   hashOTP(otp),
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := s.resetRepo.Upsert(ctx, reset); err != nil {
		return err
	}

	if err := s.emailSender.SendResetOTP(ctx, user.Email, otp); err != nil {
		return err
	}

	log.Printf("[auth] reset otp sent: user=%s", user.ID)
	return nil
}

// ResetPassword, OTP'yi doğrular ve yeni şifreyi kaydeder.
// Kod tek kullanımlıktır — başarılı reset sonrası used=1 işaretlenir.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired code", pkg.ErrUnauthorized)
		}
		return err
	}

	reset, err := s.resetRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired code", pkg.ErrUnauthorized)
		}
		return err
	}

	if reset.Used || time.Now().After(reset.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired code", pkg.ErrUnauthorized)
	}

	// Sabit zamanlı karşılaştırma — timing side channel'a karşı
	if subtle.ConstantTimeCompare([]byte(hashOTP(req.OTP)), []byte(reset.OTPHash)) != 1 {
		return fmt.Errorf("%w: invalid or expired code", pkg.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	if err := s.resetRepo.MarkUsed(ctx, reset.ID); err != nil {
		return err
	}

	log.Printf("[auth] password reset completed: user=%s", user.ID)
	return nil
}

// ─── Private Helpers ───

// buildAuthResult, JWT token üretir ve şifre hash'i temizlenmiş kullanıcı ile döner.
func (s *authService) buildAuthResult(user *models.User) (*AuthResult, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "quickchat",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	user.PasswordHash = ""
	return &AuthResult{Token: signed, User: *user}, nil
}

// generateOTP, kriptografik olarak güvenli 6 haneli kod üretir.
// math/rand KULLANILMAZ — tahmin edilebilir olurdu.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// hashOTP, OTP'nin SHA256 hex digest'ini döner.
func hashOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}
