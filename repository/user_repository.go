// Package repository, veritabanı erişim katmanını tanımlar.
//
// Repository Pattern: veritabanı işlemlerini (CRUD) soyutlayan tasarım kalıbı.
// Service katmanı doğrudan SQL yazmaz — repository interface'i üzerinden çalışır.
//
// Neden interface?
// 1. Test: mock repository yazarak DB olmadan test edebilirsin
// 2. Esneklik: SQLite'tan PostgreSQL'e geçiş sadece yeni implementasyon demektir
// 3. SOLID (Dependency Inversion): service, concrete struct'a değil interface'e bağımlı
//
// Go'da interface "implicit"tir — struct, interface'deki tüm method'ları
// implement ediyorsa otomatik olarak o interface'i sağlar.
package repository

import (
	"context"

	"github.com/artEvg/QuickChat/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
//
// context.Context, iptal sinyali ve deadline taşır — client bağlantıyı
// koparırsa devam eden DB sorgusu da durur.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetAllExcept, viewer dışındaki tüm kullanıcıları döner — sidebar
	// kullanıcı dizini bunun üzerine kurulur.
	GetAllExcept(ctx context.Context, viewerID string) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
}
