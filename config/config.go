// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek yerde toplar — her yerde ayrı ayrı
// os.Getenv() çağırmak yerine tek bir Config nesnesi taşınır.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	Email    EmailConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/quickchat.db)
}

// JWTConfig, JWT token ayarları.
type JWTConfig struct {
	Secret          string // Token imzalama anahtarı — GİZLİ TUTULMALI
	TokenExpiryDays int    // Gün cinsinden (varsayılan: 7)
}

// UploadConfig, dosya yükleme ayarları.
type UploadConfig struct {
	Dir     string // Dosyaların kaydedileceği dizin
	MaxSize int64  // Byte cinsinden max dosya boyutu (varsayılan: 10MB)
}

// EmailConfig, Resend email gönderim ayarları.
// APIKey boşsa şifre sıfırlama emaili kod yerine log'a yazılır (development).
type EmailConfig struct {
	ResendAPIKey string
	FromAddress  string
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler — production'da bu dosya olmaz,
// gerçek env variable'lar kullanılır.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	tokenExpiry, err := strconv.Atoi(getEnv("JWT_EXPIRY_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_DAYS: %w", err)
	}

	maxSize, err := strconv.ParseInt(getEnv("UPLOAD_MAX_SIZE", "10485760"), 10, 64) // 10MB
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/quickchat.db"),
		},
		JWT: JWTConfig{
			Secret:          jwtSecret,
			TokenExpiryDays: tokenExpiry,
		},
		Upload: UploadConfig{
			Dir:     getEnv("UPLOAD_DIR", "./data/uploads"),
			MaxSize: maxSize,
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromAddress:  getEnv("EMAIL_FROM", "noreply@quickchat.local"),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:5000").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
