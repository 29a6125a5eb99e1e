// Package email, uygulama genelinde email gönderimi için soyutlama katmanı sağlar.
//
// EmailSender interface'i ile gönderim detayları soyutlanır (Dependency Inversion).
// Şu anki implementasyon Resend API kullanır — farklı bir sağlayıcıya geçmek
// için yeni bir implementasyon yazıp constructor'da değiştirmek yeterli.
package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v3"
)

// EmailSender, email gönderimi için interface.
// Service katmanı buna bağımlıdır, concrete Resend implementasyonuna değil.
type EmailSender interface {
	// SendResetOTP, kullanıcıya 6 haneli şifre sıfırlama kodunu gönderir.
	// otp plaintext'tir — DB'de sadece SHA256 hash'i saklanır.
	SendResetOTP(ctx context.Context, toEmail, otp string) error
}

// logSender, API key yokken kullanılan development implementasyonu.
// Kodu email yerine stdout'a yazar — lokal geliştirmede Resend hesabı gerekmez.
type logSender struct{}

// NewLogSender, log tabanlı EmailSender döner.
func NewLogSender() EmailSender {
	return logSender{}
}

func (logSender) SendResetOTP(_ context.Context, toEmail, otp string) error {
	log.Printf("[email] (dev mode) reset otp for %s: %s", toEmail, otp)
	return nil
}

// resendSender, Resend API ile email gönderen EmailSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Gönderici adresi (ör: noreply@quickchat.app)
}

// NewResendSender, Resend API client'ı ile yeni bir EmailSender oluşturur.
//
// apiKey: Resend dashboard'dan alınan API key (re_xxxxxxxx formatında).
// fromEmail: Resend'de doğrulanmış domain altında bir gönderici adresi.
func NewResendSender(apiKey, fromEmail string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}
}

// SendResetOTP, şifre sıfırlama kodu içeren email gönderir.
// Kod 10 dakika geçerlidir — süre OTP'yi üreten service'te belirlenir,
// buradaki metin onunla uyumlu tutulmalı.
func (s *resendSender) SendResetOTP(ctx context.Context, toEmail, otp string) error {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#1a1a2e;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#1a1a2e;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#16213e;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#e2e8f0;font-size:24px;margin:0 0 8px 0;">QuickChat</h1>
              <h2 style="color:#e2e8f0;font-size:18px;margin:0 0 24px 0;">Password Reset Code</h2>
              <p style="color:#94a3b8;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
                We received a request to reset your password. Enter the code below in the app to choose a new password.
              </p>
              <p style="color:#ffffff;background-color:#6366f1;border-radius:6px;padding:16px 0;font-size:28px;font-weight:700;letter-spacing:8px;text-align:center;margin:0 0 24px 0;">
                %s
              </p>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0;">
                This code will expire in 10 minutes. If you didn't request a password reset, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, otp)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("QuickChat <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: "Your QuickChat password reset code",
		Html:    html,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}
