// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/artEvg/QuickChat/config"
	"github.com/artEvg/QuickChat/pkg/email"
	"github.com/artEvg/QuickChat/pkg/ratelimit"
	"github.com/artEvg/QuickChat/services"
	"github.com/artEvg/QuickChat/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth    services.AuthService
	Message services.MessageService
	Upload  services.UploadService
}

// RateLimiters, tüm rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login   *ratelimit.LoginRateLimiter
	Message *ratelimit.MessageRateLimiter
}

// initServices, tüm service'leri ve rate limiter'ları oluşturur.
// conn, transaction gerektiren akışlar (message service) için doğrudan geçilir.
func initServices(conn *sql.DB, repos *Repositories, hub ws.EventPublisher, cfg *config.Config) (*Services, *RateLimiters, error) {
	// ─── Email sender ───
	// API key varsa Resend, yoksa development log sender.
	var emailSender email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
		log.Printf("[main] email service enabled (from=%s)", cfg.Email.FromAddress)
	} else {
		emailSender = email.NewLogSender()
		log.Println("[main] email service in dev mode (RESEND_API_KEY not set, otp goes to log)")
	}

	// ─── Upload ───
	uploadService, err := services.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init upload service: %w", err)
	}

	// ─── Core services ───
	authService := services.NewAuthService(
		repos.User, repos.ResetToken, emailSender, uploadService,
		cfg.JWT.Secret, cfg.JWT.TokenExpiryDays,
	)

	messageService := services.NewMessageService(conn, repos.Message, repos.User, uploadService, hub)

	// ─── Rate Limiters ───
	limiters := &RateLimiters{
		Login:   ratelimit.NewLoginRateLimiter(5, 2*time.Minute),
		Message: ratelimit.NewMessageRateLimiter(5, 5*time.Second, 15*time.Second),
	}

	svcs := &Services{
		Auth:    authService,
		Message: messageService,
		Upload:  uploadService,
	}

	return svcs, limiters, nil
}
