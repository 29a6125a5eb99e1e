// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// auth helper'ı JWT doğrulama middleware'ını handler'a sarar.
package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/artEvg/QuickChat/config"
	"github.com/artEvg/QuickChat/middleware"
	"github.com/artEvg/QuickChat/repository"
	"github.com/artEvg/QuickChat/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: literal path'ler parametrik path'lerden ÖNCE
// tanımlanmalı. "GET /api/messages/users" → "GET /api/messages/{peerId}"
// öncesinde, yoksa router "users" kelimesini bir peerId olarak yorumlar.
// (Go 1.22+ ServeMux en spesifik pattern'i seçer ama sıralamayı okunur
// tutmak yine de iyi pratik.)
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
	cfg *config.Config,
) {
	authMw := middleware.NewAuthMiddleware(authService, userRepo)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"quickchat"}`)
	})

	// ─── Auth ───
	mux.HandleFunc("POST /api/auth/signup", h.Auth.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/send-reset-otp", h.Auth.SendResetOTP)
	mux.HandleFunc("POST /api/auth/reset-password", h.Auth.ResetPassword)
	mux.Handle("GET /api/auth/check", auth(h.Auth.Check))
	mux.Handle("POST /api/auth/logout", auth(h.Auth.Logout))
	mux.Handle("PUT /api/auth/update-profile", auth(h.Auth.UpdateProfile))

	// ─── Messages ───
	mux.Handle("GET /api/messages/users", auth(h.Message.GetUsers))
	mux.Handle("GET /api/messages/{peerId}", auth(h.Message.GetConversation))
	mux.Handle("POST /api/messages/send/{peerId}", auth(h.Message.Send))
	mux.Handle("PUT /api/messages/mark/{messageId}", auth(h.Message.MarkSeen))

	// ─── Uploads — statik dosya servisi ───
	//
	// http.StripPrefix URL'den "/api/uploads/" kısmını çıkarır, kalan path
	// upload dizininde aranır. http.FileServer ".." path'lerini zaten
	// reddeder; ek olarak subdirectory erişimi de engellenir — upload
	// service düz dosya adı üretir, alt dizin hiçbir zaman meşru değildir.
	uploadsHandler := http.StripPrefix("/api/uploads/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/") || strings.Contains(r.URL.Path, "\\") {
			http.NotFound(w, r)
			return
		}
		http.FileServer(http.Dir(cfg.Upload.Dir)).ServeHTTP(w, r)
	}))
	mux.Handle("GET /api/uploads/", uploadsHandler)

	// ─── WebSocket ───
	// Token query parameter ile authenticate edilir (ws://server/ws?token=JWT).
	// Upgrade isteğinde custom header gönderilemediği için auth middleware
	// kullanılmaz — WS handler kendi doğrulamasını yapar.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
