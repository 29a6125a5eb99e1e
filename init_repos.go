// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository aynı *sql.DB'yi alır — Go'nun sql.DB'si thread-safe
// connection pool'dur, paylaşılması güvenlidir.
package main

import (
	"database/sql"

	"github.com/artEvg/QuickChat/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı değişkenler yerine tek container:
// 1. Fonksiyon imzaları temiz kalır
// 2. Yeni repository eklendiğinde sadece struct + initRepositories güncellenir
type Repositories struct {
	User       repository.UserRepository
	Message    repository.MessageRepository
	ResetToken repository.PasswordResetRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:       repository.NewSQLiteUserRepo(conn),
		Message:    repository.NewSQLiteMessageRepo(conn),
		ResetToken: repository.NewSQLiteResetTokenRepo(conn),
	}
}
