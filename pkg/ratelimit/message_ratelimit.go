// MessageRateLimiter — mesaj spam koruması için kullanıcı bazlı rate limiting.
//
// LoginRateLimiter'dan farklar:
// - Key: userID (IP değil) — endpoint authenticated, kullanıcı bazlı takip.
// - Window ve ceza süresi (cooldown) ayrıdır: limit aşıldığında kullanıcı
//   cooldown süresi boyunca hiç mesaj gönderemez, sonra pencere sıfırlanır.
package ratelimit

import (
	"sync"
	"time"
)

// messageBucket, bir kullanıcı için mesaj sayacı ve cooldown bilgisi tutar.
type messageBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// MessageRateLimiter, kullanıcı bazlı mesaj spam koruması.
//
// Kullanım:
//
//	limiter := NewMessageRateLimiter(5, 5*time.Second, 15*time.Second)
//	if !limiter.Allow(userID) { return 429 }
type MessageRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*messageBucket
	maxMessages int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

// NewMessageRateLimiter, yeni mesaj rate limiter oluşturur ve arka plan
// temizleme goroutine'ini başlatır.
func NewMessageRateLimiter(maxMessages int, window, cooldown time.Duration) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		buckets:     make(map[string]*messageBucket),
		maxMessages: maxMessages,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, kullanıcının mesaj göndermesine izin verilip verilmediğini kontrol eder.
//
// Akış:
// 1. Cooldown'daysa → reject.
// 2. Window dolmuşsa → yeni pencere başlat.
// 3. Window içindeyse → count artır, max aşıldıysa cooldown başlat.
func (rl *MessageRateLimiter) Allow(userID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[userID]
	if !exists {
		rl.buckets[userID] = &messageBucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() && now.Before(b.cooldownUntil) {
		return false
	}

	if !b.cooldownUntil.IsZero() {
		// Cooldown bitti — yeni pencere başlat
		b.count = 1
		b.windowStart = now
		b.cooldownUntil = time.Time{}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxMessages {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}

	return true
}

// CooldownSeconds, kalan cooldown süresini saniye cinsinden döner.
// Cooldown yoksa 0 döner.
func (rl *MessageRateLimiter) CooldownSeconds(userID string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[userID]
	if !exists || b.cooldownUntil.IsZero() {
		return 0
	}

	remaining := time.Until(b.cooldownUntil)
	if remaining <= 0 {
		return 0
	}

	return int(remaining.Seconds()) + 1
}

func (rl *MessageRateLimiter) cleanupLoop() {
	// Mesaj bucket'ları kısa ömürlü — login cleanup'tan daha sık çalışır.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup, window'u geçmiş VE cooldown'ı bitmiş bucket'ları siler —
// cooldown'daki kullanıcının bucket'ı yanlışlıkla silinmez.
func (rl *MessageRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)

		if windowExpired && cooldownExpired {
			delete(rl.buckets, userID)
		}
	}
}
