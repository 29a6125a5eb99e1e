package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MessageKind, mesaj payload'ının türünü temsil eder.
// Go'da enum yoktur — typed constant kullanılır.
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
	MessageKindAudio MessageKind = "audio"
)

// Message, iki kullanıcı arasındaki tek bir mesajı temsil eder.
//
// Payload tagged variant'tır: Text, Image, Audio alanlarından TAM OLARAK
// biri doludur. Orijinal şema üç alanı da opsiyonel tutup hiçbirini veya
// birkaçını birden doldurmaya yapısal olarak izin veriyordu — burada karışık
// payload validation'da reddedilir, Kind() hangi varyant olduğunu söyler.
//
// Seen monotoniktir: false → true, asla geri dönmez.
// Mesajlar hiçbir akışta silinmez.
type Message struct {
	ID            string    `json:"id"`
	SenderID      string    `json:"senderId"`
	ReceiverID    string    `json:"receiverId"`
	Text          *string   `json:"text,omitempty"`
	Image         *string   `json:"image,omitempty"` // Yüklenen dosyanın URL referansı
	Audio         *string   `json:"audio,omitempty"`
	AudioDuration *float64  `json:"audioDuration,omitempty"` // Saniye — sadece audio mesajlarda
	Seen          bool      `json:"seen"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Kind, mesajın payload varyantını döner.
// Validation garantisi sayesinde alanlardan tam biri doludur.
func (m *Message) Kind() MessageKind {
	switch {
	case m.Image != nil:
		return MessageKindImage
	case m.Audio != nil:
		return MessageKindAudio
	default:
		return MessageKindText
	}
}

// SendMessageRequest, mesaj gönderme isteği.
//
// Image ve Audio base64 data URI olarak gelir ("data:image/png;base64,...").
// Upload service diske yazar, Message'a URL referansı kaydedilir.
// AudioDuration sadece audio payload ile anlamlıdır.
type SendMessageRequest struct {
	Text          string   `json:"text,omitempty"`
	Image         string   `json:"image,omitempty"`
	Audio         string   `json:"audio,omitempty"`
	AudioDuration *float64 `json:"audioDuration,omitempty"`
}

// Validate, payload'ın boş olmadığını ve TEK varyant taşıdığını kontrol eder.
func (r *SendMessageRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)

	kinds := 0
	if r.Text != "" {
		kinds++
	}
	if r.Image != "" {
		kinds++
	}
	if r.Audio != "" {
		kinds++
	}

	if kinds == 0 {
		return fmt.Errorf("message payload is required")
	}
	if kinds > 1 {
		return fmt.Errorf("message must carry exactly one of text, image, or audio")
	}

	if r.Text != "" && utf8.RuneCountInString(r.Text) > 2000 {
		return fmt.Errorf("message text must be at most 2000 characters")
	}
	if r.Audio != "" && (r.AudioDuration == nil || *r.AudioDuration <= 0) {
		return fmt.Errorf("audio message requires a positive audioDuration")
	}
	if r.Audio == "" && r.AudioDuration != nil {
		return fmt.Errorf("audioDuration is only valid with an audio payload")
	}

	return nil
}

// UnseenMap, viewer bazlı peer → okunmamış mesaj sayısı.
// Derived veridir — Message Store'daki seen=false satırlarından hesaplanır,
// kendi tablosu yoktur. Sadece count > 0 olan peer'lar map'te bulunur.
type UnseenMap map[string]int
