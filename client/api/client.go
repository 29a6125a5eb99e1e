// Package api, QuickChat backend'i ile konuşan HTTP + WebSocket client'ını barındırır.
//
// Global default YOK — Client struct bir kez oluşturulur ve referans ile
// taşınır. Base URL, token ve *http.Client tamamı struct içindedir; paket
// seviyesi state olmadığı için testlerde birden fazla client yan yana
// çalıştırılabilir.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/artEvg/QuickChat/models"
	"github.com/artEvg/QuickChat/pkg"
	"github.com/gorilla/websocket"
)

// Client, backend API erişimini saran struct.
// Token login sonrası SetToken ile set edilir — sonraki tüm istekler
// Authorization header'ı taşır.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient, verilen base URL için yeni bir API client oluşturur.
// baseURL örneği: "http://localhost:5000"
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken, sonraki isteklerde kullanılacak JWT'yi set eder.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token, mevcut JWT'yi döner (session persistence için).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// AuthPayload, signup/login sonucunu taşır.
type AuthPayload struct {
	User  models.User
	Token string
}

// authResponse, auth endpoint'lerinin wire formatı.
type authResponse struct {
	Success  bool        `json:"success"`
	UserData models.User `json:"userData"`
	Token    string      `json:"token"`
	Message  string      `json:"message"`
}

// Signup, yeni hesap oluşturur ve token'ı client'a set eder.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*AuthPayload, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &AuthPayload{User: resp.UserData, Token: resp.Token}, nil
}

// Login, mevcut hesapla giriş yapar ve token'ı client'a set eder.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*AuthPayload, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &AuthPayload{User: resp.UserData, Token: resp.Token}, nil
}

// Check, mevcut token'ın geçerliliğini doğrular ve kullanıcıyı döner.
// Kaydedilmiş session ile açılışta çağrılır — token süresi dolmuşsa
// pkg.ErrUnauthorized döner ve login ekranına düşülür.
func (c *Client) Check(ctx context.Context) (*models.User, error) {
	var resp struct {
		Success bool         `json:"success"`
		User    *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateProfile, profil alanlarını günceller (kısmi update — nil alanlar dokunulmaz).
func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	var resp struct {
		Success bool         `json:"success"`
		User    *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/auth/update-profile", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// SendResetOTP, şifre sıfırlama kodu ister.
// Server hesap var/yok bilgisini sızdırmaz — her durumda success döner.
func (c *Client) SendResetOTP(ctx context.Context, email string) error {
	req := models.SendResetOTPRequest{Email: email}
	return c.do(ctx, http.MethodPost, "/api/auth/send-reset-otp", req, nil)
}

// ResetPassword, email'e gelen OTP ile yeni şifre belirler.
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	req := models.ResetPasswordRequest{Email: email, OTP: otp, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", req, nil)
}

// GetUsers, viewer dışındaki tüm kullanıcıları ve unseen sayaç map'ini döner.
func (c *Client) GetUsers(ctx context.Context) ([]models.User, models.UnseenMap, error) {
	var resp struct {
		Success        bool             `json:"success"`
		Users          []models.User    `json:"users"`
		UnseenMessages models.UnseenMap `json:"unseenMessages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages/users", nil, &resp); err != nil {
		return nil, nil, err
	}
	if resp.UnseenMessages == nil {
		resp.UnseenMessages = models.UnseenMap{}
	}
	return resp.Users, resp.UnseenMessages, nil
}

// GetConversation, peer ile olan tüm mesajları kronolojik sırayla döner.
// Server yan etki olarak peer'dan gelen okunmamış mesajları seen yapar.
func (c *Client) GetConversation(ctx context.Context, peerID string) ([]models.Message, error) {
	var resp struct {
		Success  bool             `json:"success"`
		Messages []models.Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(peerID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage, peer'a mesaj gönderir ve server'ın kaydettiği halini döner.
func (c *Client) SendMessage(ctx context.Context, peerID string, req models.SendMessageRequest) (*models.Message, error) {
	var resp struct {
		Success    bool            `json:"success"`
		NewMessage *models.Message `json:"newMessage"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/messages/send/"+url.PathEscape(peerID), req, &resp); err != nil {
		return nil, err
	}
	return resp.NewMessage, nil
}

// MarkSeen, tek bir mesajı seen olarak işaretler (sadece alıcı çağırabilir).
func (c *Client) MarkSeen(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodPut, "/api/messages/mark/"+url.PathEscape(messageID), nil, nil)
}

// DialWS, realtime kanalı için WebSocket bağlantısı açar.
//
// Upgrade isteğinde custom header gönderilemediği için JWT query parameter
// olarak taşınır: ws://server/ws?token=JWT
func (c *Client) DialWS(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {c.Token()}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// do, tek bir HTTP isteğini çalıştırır: body'yi JSON'a çevir, Authorization
// header'ı ekle, status koduna göre sentinel error'a map'le, response'u decode et.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeError, hata response'unu `{success:false, message}` formatından okur
// ve status kodunu pkg sentinel error'larına çevirir — çağıran taraf
// errors.Is(err, pkg.ErrUnauthorized) gibi kontroller yapabilir.
func (c *Client) decodeError(resp *http.Response) error {
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		msg = body.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", pkg.ErrUnauthorized, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", pkg.ErrForbidden, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", pkg.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", pkg.ErrAlreadyExists, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, msg)
	default:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}
}
