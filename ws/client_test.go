package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConnectedClient, gerçek bir WebSocket çifti kurar: server ucu Client
// olarak döner, dialer ucu client'a yazılanları okumak için kullanılır.
func newConnectedClient(t *testing.T, h *Hub, userID string) (*Client, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	dialURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(dialURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	serverConn := <-accepted
	t.Cleanup(func() { serverConn.Close() })

	return &Client{
		hub:    h,
		conn:   serverConn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}, peer
}

func readEvent(t *testing.T, peer *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, peer.SetReadDeadline(time.Now().Add(time.Second)))
	var event Event
	require.NoError(t, peer.ReadJSON(&event))
	return event
}

func TestHeartbeatGetsAck(t *testing.T) {
	h := NewHub()
	client, peer := newConnectedClient(t, h, "u1")
	h.addClient(client)

	client.handleEvent(Event{Op: OpHeartbeat})

	assert.Equal(t, OpHeartbeatAck, readEvent(t, peer).Op)
}

func TestHeartbeatAckAfterConnectionReplaced(t *testing.T) {
	h := NewHub()
	old, oldPeer := newConnectedClient(t, h, "u1")
	replacement, _ := newConnectedClient(t, h, "u1")

	h.addClient(old)
	h.addClient(replacement) // eskinin send channel'ı kapatılır

	// Eski bağlantının ReadPump'ı hâlâ canlı olabilir — kapatılmış channel'a
	// rağmen geç kalmış heartbeat süreci düşürmemeli, ack doğrudan yazılmalı
	old.handleEvent(Event{Op: OpHeartbeat})

	assert.Equal(t, OpHeartbeatAck, readEvent(t, oldPeer).Op)
}

func TestHeartbeatAckAfterUnregister(t *testing.T) {
	h := NewHub()
	client, peer := newConnectedClient(t, h, "u1")

	h.addClient(client)
	require.True(t, h.removeClient(client)) // send channel kapatıldı

	client.handleEvent(Event{Op: OpHeartbeat})

	assert.Equal(t, OpHeartbeatAck, readEvent(t, peer).Op)
}
