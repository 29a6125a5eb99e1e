package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/artEvg/QuickChat/models"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için kullandığı interface.
//
// Neden services.AuthService yerine kendi interface'imiz?
// Circular dependency'yi önlemek için:
// - services paketi ws.EventPublisher'ı kullanıyor (mesaj push için)
// - ws paketi services'i import etseydi ws → services → ws döngüsü oluşurdu
//
// Interface Segregation: WS handler'ın sadece ValidateAccessToken'a ihtiyacı var.
// main.go'da authService bu interface'i implicit olarak karşılar.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin: production'da domain kontrolü yapılmalı.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
}

// NewHandler, yeni bir WebSocket handler oluşturur.
func NewHandler(hub *Hub, tokenValidator TokenValidator) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı Hub'a kaydeder.
//
// Kimlik bağlantıya query parameter ile taşınır:
//
//	ws://server/ws?token=JWT_TOKEN
//
// WebSocket upgrade isteğinde custom header göndermek tarayıcıda zordur —
// bu yüzden Authorization header yerine token query'de gelir. Token imzalı
// olduğu için client kimliği taklit edemez.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBufferSize),
	}

	h.hub.register <- client

	// WritePump ayrı goroutine'de; ReadPump bu goroutine'de bloklar —
	// aksi halde handler hemen döner ve bağlantı kapanırdı.
	go client.WritePump()
	client.ReadPump()
}
