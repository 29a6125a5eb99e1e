// Package repository — PasswordResetRepository interface tanımı.
//
// Şifre sıfırlama OTP kayıtlarını soyutlar. Service katmanı bu interface'e
// bağımlıdır, SQLite implementasyonuna değil.
package repository

import (
	"context"

	"github.com/artEvg/QuickChat/models"
)

// PasswordResetRepository, password reset OTP veritabanı işlemleri için interface.
type PasswordResetRepository interface {
	// Upsert, kullanıcının reset kaydını oluşturur veya üzerine yazar.
	// Kullanıcı başına tek aktif OTP tutulur — yeni istek eskisini geçersiz kılar.
	Upsert(ctx context.Context, reset *models.PasswordReset) error

	// GetByUserID, kullanıcının aktif reset kaydını döner.
	// Kayıt yoksa pkg.ErrNotFound döner.
	GetByUserID(ctx context.Context, userID string) (*models.PasswordReset, error)

	// MarkUsed, kaydı kullanılmış işaretler — aynı OTP ikinci kez çalışmaz.
	MarkUsed(ctx context.Context, id string) error
}
