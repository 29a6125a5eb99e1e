// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi "ince" (thin) olmalı:
// 1. Request body'yi parse et (JSON → struct)
// 2. Service katmanını çağır
// 3. Sonucu HTTP response olarak döndür
//
// Handler ASLA iş mantığı içermez, ASLA doğrudan DB'ye erişmez.
// Tüm akıl service'de, handler sadece köprü.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
	"github.com/artEvg/QuickChat/pkg/ratelimit"
	"github.com/artEvg/QuickChat/services"
)

// AuthHandler, auth endpoint'lerini yöneten struct.
// Service interface'i ve rate limiter constructor'dan alınır (DI).
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.LoginRateLimiter
}

// NewAuthHandler, constructor.
// loginLimiter nil ise rate limiting devre dışı kalır (testlerde kullanışlı).
func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.LoginRateLimiter) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
	}
}

// authResponse, signup ve login yanıt formatı.
// Alanlar top-level'dır — client'lar userData ve token'ı doğrudan bekler.
type authResponse struct {
	Success  bool        `json:"success"`
	UserData models.User `json:"userData"`
	Token    string      `json:"token"`
	Message  string      `json:"message,omitempty"`
}

// userResponse, kullanıcı dönen endpoint'lerin yanıt formatı (check, update-profile).
type userResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

// messageOnlyResponse, sadece bilgi mesajı taşıyan başarı yanıtı.
type messageOnlyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Signup godoc
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, authResponse{
		Success:  true,
		UserData: result.User,
		Token:    result.Token,
		Message:  "account created successfully",
	})
}

// Login godoc
// POST /api/auth/login
//
// Rate limiting: IP bazlı brute-force koruması. Limit aşıldığında 429 döner;
// başarılı login sayacı sıfırlar — meşru kullanıcı bloke olmaz.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retryAfter := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("too many login attempts, please try again in %s",
				ratelimit.FormatRetryMessage(retryAfter)))
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSON(w, http.StatusOK, authResponse{
		Success:  true,
		UserData: result.User,
		Token:    result.Token,
		Message:  "logged in successfully",
	})
}

// Check godoc
// GET /api/auth/check
// Auth middleware gerektirir — token hâlâ geçerliyse güncel kullanıcıyı döner.
// Client açılışta session'daki token'ı bununla doğrular.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	pkg.JSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

// Logout godoc
// POST /api/auth/logout
//
// Token stateless JWT olduğu için server tarafında iptal edilecek bir kayıt
// yok — client token'ı atar. Endpoint yine de var: client akışı simetrik
// kalır ve ileride token blacklist eklenirse yeri hazır.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, messageOnlyResponse{Success: true, Message: "logged out"})
}

// UpdateProfile godoc
// PUT /api/auth/update-profile
// Auth middleware gerektirir. Body: { "fullName"?, "bio"?, "profilePic"? }
// profilePic base64 data URI'dir — service diske yazıp URL kaydeder.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.authService.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, userResponse{Success: true, User: updated})
}

// SendResetOTP godoc
// POST /api/auth/send-reset-otp
// Body: { "email": "..." }
//
// Güvenlik: email DB'de yoksa bile aynı success yanıtı döner (enumeration koruması).
func (h *AuthHandler) SendResetOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SendResetOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.SendResetOTP(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messageOnlyResponse{
		Success: true,
		Message: "if an account exists for that email, a reset code has been sent",
	})
}

// ResetPassword godoc
// POST /api/auth/reset-password
// Body: { "email": "...", "otp": "...", "newPassword": "..." }
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messageOnlyResponse{
		Success: true,
		Message: "password has been reset successfully",
	})
}
