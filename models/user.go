// Package models, uygulamanın domain modellerini tanımlar.
//
// Model, veritabanındaki bir tablonun Go karşılığıdır ve aynı zamanda
// API'den gelen/giden verilerin şeklini belirler.
// `json:"email"` gibi tag'ler struct field'larının JSON'a nasıl
// serialize/deserialize edileceğini söyler.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// User, bir kullanıcıyı temsil eder.
//
// Email UNIQUE'tir — aynı adresle ikinci hesap açılamaz.
// PasswordHash json:"-" ile API response'larından GİZLENİR.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio"`
	AvatarURL    *string   `json:"profilePic"` // *string = nullable — avatar yüklenmemişse nil
	CreatedAt    time.Time `json:"createdAt"`
}

// SignupRequest, kayıt olurken client'tan gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

// Validate, SignupRequest'in geçerli olup olmadığını kontrol eder.
// Kurallar:
//   - FullName: 2-64 karakter
//   - Email: boş olamaz, '@' içermeli (derin RFC kontrolü yapılmaz)
//   - Password: minimum 8 karakter
//   - Bio: opsiyonel, max 200 karakter
func (r *SignupRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	nameLen := utf8.RuneCountInString(r.FullName)
	if nameLen < 2 || nameLen > 64 {
		return fmt.Errorf("full name must be between 2 and 64 characters")
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	r.Bio = strings.TrimSpace(r.Bio)
	if utf8.RuneCountInString(r.Bio) > 200 {
		return fmt.Errorf("bio must be at most 200 characters")
	}

	return nil
}

// LoginRequest, giriş yaparken client'tan gelen veri.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// UpdateProfileRequest, profil güncellemesi için.
// Pointer alanlar partial update sağlar — nil ise o alan değiştirilmez.
// ProfilePic base64 data URI olarak gelir, upload service diske yazar.
type UpdateProfileRequest struct {
	FullName   *string `json:"fullName"`
	Bio        *string `json:"bio"`
	ProfilePic *string `json:"profilePic"`
}

// Validate, UpdateProfileRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpdateProfileRequest) Validate() error {
	if r.FullName != nil {
		trimmed := strings.TrimSpace(*r.FullName)
		nameLen := utf8.RuneCountInString(trimmed)
		if nameLen < 2 || nameLen > 64 {
			return fmt.Errorf("full name must be between 2 and 64 characters")
		}
		r.FullName = &trimmed
	}
	if r.Bio != nil {
		trimmed := strings.TrimSpace(*r.Bio)
		if utf8.RuneCountInString(trimmed) > 200 {
			return fmt.Errorf("bio must be at most 200 characters")
		}
		r.Bio = &trimmed
	}
	return nil
}
