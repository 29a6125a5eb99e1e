// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Kullanıcı mesaj gönderir → HTTP POST → Service → DB kayıt
// 2. Service, Hub'ın SendToUser metodunu çağırır — SADECE alıcıya
// 3. Alıcının WritePump'ı event'i WebSocket'e yazar
// 4. Client tarafı event'i alır ve açık konuşmaya veya unseen sayacına işler
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "newMessage", "getOnlineUsers" vb.
// Data: Event'e özgü payload — mesaj objesi, online ID listesi vb.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//   Client eksik event tespit etmek için seq'i takip edebilir.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client periyodik gönderir — "hâlâ bağlıyım" sinyali
)

// Server → Client operasyonları
const (
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt

	// OpNewMessage, alıcıya yeni mesaj iletir. Payload: models.Message.
	// Sadece mesajın ALICISINA gönderilir — gönderen kendi mesajını
	// HTTP yanıtından alır.
	OpNewMessage = "newMessage"

	// OpOnlineUsers, o an bağlı tüm kullanıcı ID'lerinin tam listesini taşır.
	// Delta değil snapshot — her etkili presence değişiminde HERKESE gönderilir.
	OpOnlineUsers = "getOnlineUsers"
)
