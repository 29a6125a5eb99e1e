package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher, service katmanının WebSocket event'leri göndermek için
// kullandığı interface.
//
// Dependency Inversion: Service'ler Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır. Böylece:
// 1. Service test edilirken mock EventPublisher kullanılabilir
// 2. Hub implementasyonu değişse bile service kodu etkilenmez
type EventPublisher interface {
	// SendToUser, event'i kullanıcının aktif bağlantısına gönderir.
	// Kullanıcı offline ise false döner — bu hata DEĞİLDİR, mesaj zaten
	// DB'de kalıcıdır ve alıcı bir sonraki fetch'te görür.
	SendToUser(userID string, event Event) bool
	GetOnlineUserIDs() []string
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır (Observer pattern).
//
// Presence modeli TEK CİHAZ'dır: kullanıcı başına en fazla bir aktif
// bağlantı tutulur. Aynı kullanıcı ikinci kez bağlanırsa yeni bağlantı
// kazanır (last wins) — eski bağlantının send channel'ı kapatılır.
//
// Hub.Run() goroutine'i register/unregister channel'larından `select` ile okur:
// - register → clients map'e ekle (varsa eskiyi değiştir)
// - unregister → map'ten çıkar (sadece pointer hâlâ eşleşiyorsa)
// Her etkili değişimde online kullanıcı listesi herkese broadcast edilir.
type Hub struct {
	// clients: userID → aktif bağlantı. Kullanıcı başına tek slot.
	clients map[string]*Client

	// mu: clients map'ini koruyan read-write mutex.
	// Okuma ağırlıklı erişimde (SendToUser, GetOnlineUserIDs) RLock yeterli.
	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// seq: her outbound event'e verilen artan sayaç.
	// atomic.Int64 — birden fazla goroutine güvenle artırabilir.
	seq atomic.Int64
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
			h.broadcastOnlineUsers()

		case client := <-h.unregister:
			// Sadece etkili bir çıkışta yeni liste yayınlanır — replace
			// edilmiş eski bağlantının geç gelen unregister'ı no-op'tur.
			if h.removeClient(client) {
				h.broadcastOnlineUsers()
			}
		}
	}
}

// addClient, client'ı Hub'a kaydeder. Aynı kullanıcının önceki bağlantısı
// varsa yenisi onun yerini alır ve eskinin send channel'ı kapatılır.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[client.userID]; ok && old != client {
		close(old.send)
		log.Printf("[ws] user %s reconnected, previous connection replaced", client.userID)
	}
	h.clients[client.userID] = client

	log.Printf("[ws] client connected: user=%s (online: %d)", client.userID, len(h.clients))
}

// removeClient, client'ı Hub'dan çıkarır. Map'teki pointer bu client
// değilse (yeni bağlantı yerini almış) hiçbir şey yapmaz — aksi halde
// eski bağlantının kapanışı yeni bağlantıyı offline gösterirdi.
func (h *Hub) removeClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.clients[client.userID]
	if !ok || current != client {
		return false
	}

	delete(h.clients, client.userID)
	close(client.send)
	log.Printf("[ws] client disconnected: user=%s (online: %d)", client.userID, len(h.clients))
	return true
}

// broadcastOnlineUsers, güncel online ID listesini TÜM bağlı client'lara gönderir.
// Liste delta değil tam snapshot'tır — client tarafı doğrudan üzerine yazar.
func (h *Hub) broadcastOnlineUsers() {
	event := Event{
		Op:   OpOnlineUsers,
		Data: h.GetOnlineUserIDs(),
		Seq:  h.seq.Add(1),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal online users event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Buffer dolu — bu client yavaş, bağlantısını kopar
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// SendToUser, event'i kullanıcının aktif bağlantısına gönderir.
// Kullanıcı offline ise false döner.
func (h *Hub) SendToUser(userID string, event Event) bool {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal user event: %v", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[userID]
	if !ok {
		return false
	}

	select {
	case client.send <- data:
		return true
	default:
		go func(c *Client) { h.unregister <- c }(client)
		return false
	}
}

// IsOnline, kullanıcının aktif bağlantısı olup olmadığını döner.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// GetOnlineUserIDs, bağlı olan tüm kullanıcı ID'lerini döner.
func (h *Hub) GetOnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// Shutdown, tüm client bağlantılarını kapatır (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[string]*Client)
	log.Println("[ws] hub shut down, all connections closed")
}
