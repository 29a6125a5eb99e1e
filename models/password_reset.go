package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// PasswordReset, bir şifre sıfırlama OTP kaydını temsil eder.
//
// OTP'nin kendisi DEĞİL, SHA256 hash'i saklanır — DB sızıntısında
// plaintext kod ele geçmez. Kullanıcı başına tek aktif kayıt tutulur
// (upsert), kullanılan veya süresi dolan kayıt geçersizdir.
type PasswordReset struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OTPHash   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// SendResetOTPRequest, şifre sıfırlama kodu isteme payload'ı.
type SendResetOTPRequest struct {
	Email string `json:"email"`
}

// Validate, email alanının boş olmadığını kontrol eder.
// Hesabın var olup olmadığı burada KONTROL EDİLMEZ — account enumeration
// koruması service katmanında sağlanır (her durumda aynı yanıt döner).
func (r *SendResetOTPRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	return nil
}

// ResetPasswordRequest, OTP ile şifre sıfırlama payload'ı.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// Validate, alanların geçerli olup olmadığını kontrol eder.
func (r *ResetPasswordRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}

	r.OTP = strings.TrimSpace(r.OTP)
	if len(r.OTP) != 6 {
		return fmt.Errorf("otp must be 6 digits")
	}

	if utf8.RuneCountInString(r.NewPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	return nil
}
