package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: client'ın heartbeat göndermesi için beklenen maksimum süre.
	// Bu sürede heartbeat gelmezse bağlantı kopmuş sayılır.
	pongWait = 90 * time.Second

	// maxMessageSize: client'ın gönderebileceği maksimum mesaj boyutu (byte).
	// WS üzerinden sadece heartbeat gelir — mesajlar HTTP ile gönderilir.
	maxMessageSize = 1024

	// sendBufferSize: her client'ın send channel buffer boyutu.
	// Buffer dolarsa client yavaş demektir — bağlantısı koparılır.
	sendBufferSize = 256
)

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine çalışır:
// - ReadPump: client'dan gelen mesajları okur (heartbeat)
// - WritePump: Hub'dan send channel'a düşen mesajları client'a yazar
//
// gorilla/websocket aynı anda tek okuma ve tek yazma destekler —
// iki ayrı goroutine bu yüzden gereklidir.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	// send, client'a gidecek mesajların buffer'landığı channel.
	// Hub `client.send <- data` yazar, WritePump okuyup WS'e iletir.
	send chan []byte
	mu   sync.Mutex // conn.WriteMessage çağrılarını korur
}

// ReadPump, WebSocket bağlantısından gelen mesajları okur ve işler.
// Bağlantı kapanana kadar bloklar; kapanınca Hub'dan çıkış yapar.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	// Bu süre içinde mesaj gelmezse Read hata verir.
	// Her heartbeat'te deadline yenilenir.
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
		return
	}

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.userID, err)
			continue
		}

		c.handleEvent(event)
	}
}

// handleEvent, client'dan gelen event'leri türüne göre işler.
// Inbound trafik sadece heartbeat'tir — mesaj gönderimi HTTP üzerindendir.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	default:
		log.Printf("[ws] unknown op from user %s: %s", c.userID, event.Op)
	}
}

// sendEvent, client'a tek bir event gönderir — doğrudan bağlantıya yazar.
//
// send channel'a buradan YAZILMAZ: channel Hub'a aittir ve hızlı reconnect'te
// Hub eski bağlantının channel'ını çoktan kapatmış olabilir. ReadPump'tan
// gelen geç bir heartbeat o channel'a yazsaydı panic olurdu. writeMessage
// kendi mutex'iyle WritePump ile güvenle yarışır; yazma hatası kopmakta olan
// bir bağlantı demektir, ReadPump zaten kapanışı tetikler.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for user %s: %v", c.userID, err)
		return
	}

	if err := c.writeMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[ws] failed to write event to user %s: %v", c.userID, err)
	}
}

// WritePump, send channel'dan gelen mesajları WebSocket bağlantısına yazar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			// Channel kapatıldı — Hub client'ı çıkardı veya yeni bağlantı yerini aldı
			c.writeMessage(websocket.CloseMessage, nil)
			return
		}

		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// writeMessage, WebSocket'e mutex koruması altında yazar.
// gorilla/websocket conn'a eşzamanlı yazma yasak.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
