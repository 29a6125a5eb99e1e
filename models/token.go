package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT token'ın payload'ındaki veriler.
//
// Server her request'te token imzasını doğrular — DB'ye gitmeden
// kullanıcının kim olduğunu bilir.
//
// Bu struct models paketinde tanımlanır çünkü birden fazla katman
// (services, ws, middleware) tarafından kullanılır ve models'a bağımlılık
// circular dependency yaratmaz.
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
