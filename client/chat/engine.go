// Package chat, client tarafındaki konuşma state'ini yönetir: açık
// konuşmanın mesaj listesi, unseen sayaç map'i ve roster üyeliği.
//
// Engine iki kaynaktan beslenir ve ikisini tek tutarlı listede birleştirir:
//   - Pull: 3 saniyede bir açık konuşmanın tamamı yeniden çekilir
//   - Push: WebSocket'ten gelen newMessage event'leri
//
// Poll cevabı ile push aynı anda gelirse sıra bozulmasın diye merge her
// zaman ID bazlı de-dup + (created_at, id) sıralaması yapar — hangi kaynak
// önce tamamlanırsa tamamlansın sonuç aynıdır.
package chat

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/artEvg/QuickChat/models"
)

// State, açık konuşmanın yaşam döngüsü.
type State int

const (
	StateClosed State = iota
	StateLoading
	StateLoaded
)

// API, engine'in ihtiyaç duyduğu backend operasyonları.
// Küçük interface — testlerde fake ile değiştirilir; *api.Client implement eder.
type API interface {
	GetConversation(ctx context.Context, peerID string) ([]models.Message, error)
	SendMessage(ctx context.Context, peerID string, req models.SendMessageRequest) (*models.Message, error)
	MarkSeen(ctx context.Context, messageID string) error
}

// pollInterval, açık konuşmanın yeniden çekilme aralığı.
const pollInterval = 3 * time.Second

// Engine, tek bir viewer'ın konuşma state machine'i.
// Tüm mutable alanlar mu ile korunur — poll goroutine'i, WS push handler'ı
// ve TUI'den gelen çağrılar aynı anda dokunabilir.
type Engine struct {
	client   API
	viewerID string

	mu         sync.Mutex
	state      State
	peerID     string
	messages   []models.Message
	unseen     models.UnseenMap
	history    map[string]bool // peer ID → en az bir kez yazışıldı
	pollCancel context.CancelFunc

	onChange func() // state değiştiğinde tetiklenir (TUI refresh)
}

// NewEngine, verilen viewer için boş bir engine oluşturur.
func NewEngine(client API, viewerID string) *Engine {
	return &Engine{
		client:   client,
		viewerID: viewerID,
		state:    StateClosed,
		unseen:   models.UnseenMap{},
		history:  make(map[string]bool),
	}
}

// SetOnChange, her state değişiminde çağrılacak callback'i set eder.
// Callback engine mutex'i bırakıldıktan sonra çağrılır — içinden engine
// metodları güvenle çağrılabilir.
func (e *Engine) SetOnChange(fn func()) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// SetUnseen, server'dan gelen tam unseen map'ini yükler
// (GET /api/messages/users cevabındaki unseenMessages).
func (e *Engine) SetUnseen(m models.UnseenMap) {
	e.mu.Lock()
	e.unseen = models.UnseenMap{}
	for k, v := range m {
		if v > 0 {
			e.unseen[k] = v
		}
	}
	e.mu.Unlock()
	e.notify()
}

// SetHistory, kaydedilmiş session'dan corresponded-with set'ini yükler.
func (e *Engine) SetHistory(peerIDs []string) {
	e.mu.Lock()
	for _, id := range peerIDs {
		e.history[id] = true
	}
	e.mu.Unlock()
}

// Open, peer ile olan konuşmayı açar.
//
// Akış:
//  1. Önceki poll loop iptal edilir — aynı anda tek aktif loop olur
//  2. State → Loading, tam liste çekilir (server peer'dan gelen okunmamışları
//     yan etki olarak seen yapar)
//  3. unseen[peer] sıfırlanır, peer history'ye eklenir
//  4. State → Loaded, 3 saniyelik poll loop başlar
//
// Fetch başarısız olursa state Closed'a döner ve error döner — TUI roster'da kalır.
func (e *Engine) Open(ctx context.Context, peerID string) error {
	e.mu.Lock()
	if e.pollCancel != nil {
		e.pollCancel()
		e.pollCancel = nil
	}
	e.state = StateLoading
	e.peerID = peerID
	e.messages = nil
	e.mu.Unlock()
	e.notify()

	msgs, err := e.client.GetConversation(ctx, peerID)
	if err != nil {
		e.mu.Lock()
		// Open sırasında peer değişmiş olabilir — sadece hâlâ bizimkiyse geri al
		if e.peerID == peerID {
			e.state = StateClosed
			e.peerID = ""
		}
		e.mu.Unlock()
		e.notify()
		return fmt.Errorf("failed to open conversation: %w", err)
	}

	e.mu.Lock()
	if e.peerID != peerID {
		// Fetch dönene kadar başka konuşma açılmış — sonuç çöpe gider
		e.mu.Unlock()
		return nil
	}
	e.messages = mergeMessages(nil, msgs)
	delete(e.unseen, peerID)
	e.history[peerID] = true
	e.markHistoryLocked(msgs)
	e.state = StateLoaded

	pollCtx, cancel := context.WithCancel(context.Background())
	e.pollCancel = cancel
	e.mu.Unlock()
	e.notify()

	go e.pollLoop(pollCtx, peerID)
	return nil
}

// Close, açık konuşmayı kapatır ve poll loop'u durdurur.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.pollCancel != nil {
		e.pollCancel()
		e.pollCancel = nil
	}
	e.state = StateClosed
	e.peerID = ""
	e.messages = nil
	e.mu.Unlock()
	e.notify()
}

// pollLoop, açık konuşmayı sabit aralıkla yeniden çeker ve merge eder.
// Geçici fetch hataları yutulur — bir sonraki tick telafi eder.
func (e *Engine) pollLoop(ctx context.Context, peerID string) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msgs, err := e.client.GetConversation(ctx, peerID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[chat] poll failed for peer %s: %v", peerID, err)
				continue
			}

			e.mu.Lock()
			if e.peerID != peerID || e.state != StateLoaded {
				e.mu.Unlock()
				return
			}
			e.messages = mergeMessages(e.messages, msgs)
			e.markHistoryLocked(msgs)
			e.mu.Unlock()
			e.notify()
		}
	}
}

// HandlePush, WebSocket'ten gelen newMessage event'ini işler.
//
// Açık-konuşma kontrolü çifte sayımın tek kapısıdır:
//   - Gönderen şu an açık olan peer ise → mesaj listeye merge edilir, lokal
//     olarak seen işaretlenir ve server'a async mark-seen gönderilir
//     (sayaç hiç artmaz)
//   - Değilse → unseen[sender]++ (server'daki durable sayaçla tutarlı)
func (e *Engine) HandlePush(msg models.Message) {
	e.mu.Lock()
	if e.state == StateLoaded && msg.SenderID == e.peerID {
		msg.Seen = true
		e.messages = mergeMessages(e.messages, []models.Message{msg})
		id := msg.ID
		e.mu.Unlock()
		e.notify()

		// Best-effort: server zaten bir sonraki tam fetch'te seen yapar
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.client.MarkSeen(ctx, id); err != nil {
				log.Printf("[chat] mark seen failed for message %s: %v", id, err)
			}
		}()
		return
	}
	e.unseen[msg.SenderID]++
	e.mu.Unlock()
	e.notify()
}

// Send, açık konuşmadaki peer'a mesaj gönderir.
// Optimistic append YOK — liste ancak server ack'i ile güncellenir;
// başarısız send listeyi değiştirmeden error döner.
func (e *Engine) Send(ctx context.Context, req models.SendMessageRequest) (*models.Message, error) {
	e.mu.Lock()
	peerID := e.peerID
	state := e.state
	e.mu.Unlock()

	if state != StateLoaded || peerID == "" {
		return nil, fmt.Errorf("no open conversation")
	}

	msg, err := e.client.SendMessage(ctx, peerID, req)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.peerID == peerID && msg != nil {
		e.messages = mergeMessages(e.messages, []models.Message{*msg})
		e.history[peerID] = true
	}
	e.mu.Unlock()
	e.notify()
	return msg, nil
}

// ─── Snapshot accessors ───

// State, mevcut konuşma state'ini döner.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Peer, açık konuşmanın peer ID'sini döner ("" = kapalı).
func (e *Engine) Peer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peerID
}

// Messages, açık konuşmanın mesajlarının kopyasını döner.
func (e *Engine) Messages() []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Unseen, unseen sayaç map'inin kopyasını döner.
func (e *Engine) Unseen() models.UnseenMap {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := models.UnseenMap{}
	for k, v := range e.unseen {
		out[k] = v
	}
	return out
}

// History, corresponded-with set'inin kopyasını döner (session persistence için).
func (e *Engine) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.history))
	for id := range e.history {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HistorySet, roster fonksiyonlarına verilecek membership map'inin kopyasını döner.
func (e *Engine) HistorySet() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]bool, len(e.history))
	for id := range e.history {
		out[id] = true
	}
	return out
}

// notify, onChange callback'ini mutex dışında tetikler.
func (e *Engine) notify() {
	e.mu.Lock()
	fn := e.onChange
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// markHistoryLocked, fetch edilen mesajlar arasında viewer'ın yazdığı varsa
// karşı tarafı history'ye ekler. Çağıran mutex'i tutmalı.
func (e *Engine) markHistoryLocked(msgs []models.Message) {
	for _, m := range msgs {
		if m.SenderID == e.viewerID {
			e.history[m.ReceiverID] = true
		}
	}
}

// mergeMessages, iki mesaj kümesini ID bazlı de-dup edip (created_at, id)
// sırasına koyar. Idempotent — aynı input'la tekrar çağrılması sonucu değiştirmez.
func mergeMessages(existing, incoming []models.Message) []models.Message {
	byID := make(map[string]models.Message, len(existing)+len(incoming))
	for _, m := range existing {
		byID[m.ID] = m
	}
	for _, m := range incoming {
		// Push ile lokal seen=true yapılmış mesajı sonraki poll seen=false'a
		// geri çeviremesin — seen monotonic'tir
		if prev, ok := byID[m.ID]; ok && prev.Seen && !m.Seen {
			m.Seen = true
		}
		byID[m.ID] = m
	}

	out := make([]models.Message, 0, len(byID))
	for _, m := range byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FormatUnseen, unseen sayacını rozet metni olarak formatlar.
// 99 üstü "99+" gösterilir — saklanan değer kırpılmaz, sadece gösterim.
func FormatUnseen(n int) string {
	if n > 99 {
		return "99+"
	}
	return strconv.Itoa(n)
}
