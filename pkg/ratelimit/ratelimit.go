// Package ratelimit — brute-force ve spam koruması için in-memory rate limiting.
//
// LoginRateLimiter: IP bazlı sliding window. Window içinde maxAttempts
// aşılırsa istek reddedilir; başarılı login Reset() ile sayacı temizler.
//
// Neden in-memory?
// - SQLite'a her request'te yazmak gereksiz I/O + contention yaratır.
// - Tek instance deploy için Redis bağımlılığına gerek yok.
//
// Neden ayrı paket?
// handlers ↔ middleware arasında import cycle oluşmaması için rate limiter
// bağımsız bir leaf paket olarak konumlandırıldı.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// bucket, bir IP için istek sayacı ve window başlangıç zamanı tutar.
type bucket struct {
	count       int
	windowStart time.Time
}

// LoginRateLimiter, IP bazlı login rate limiting.
//
// Kullanım:
//
//	limiter := NewLoginRateLimiter(5, 2*time.Minute)
//	if !limiter.Allow(ip) { return 429 }
//	// başarılı login'de:
//	limiter.Reset(ip)
type LoginRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	stopCleanup chan struct{}
}

// NewLoginRateLimiter, yeni rate limiter oluşturur ve arka plan temizleme
// goroutine'ini başlatır — süresi dolmuş bucket'lar silinmezse uzun süre
// çalışan sunucuda bellek birikir.
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, IP'nin login denemesine izin verilip verilmediğini kontrol eder.
// Her çağrı sayacı artırır; başarılı login'de caller Reset() çağırmalıdır.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[ip]
	if !exists {
		rl.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		// Yeni pencere — eski sayaç sıfırlanır
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	return b.count <= rl.maxAttempts
}

// Reset, başarılı login sonrası IP sayacını sıfırlar. Temizlenmezse meşru
// kullanıcı sonraki denemelerde bloke olabilir.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, ip)
}

// RetryAfterSeconds, limit aşıldığında kalan bekleme süresini saniye cinsinden
// döner. HTTP Retry-After header değeri olarak kullanılır.
func (rl *LoginRateLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[ip]
	if !exists {
		return 0
	}

	remaining := rl.window - time.Since(b.windowStart)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1 // +1 yuvarlama — client tam süreyi beklesin
}

func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
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

func (rl *LoginRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.windowStart) > rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// Öncelik: X-Forwarded-For (reverse proxy, ilk IP) → X-Real-IP → RemoteAddr.
// Production'da uygulama genellikle nginx/Caddy arkasındadır — RemoteAddr
// o durumda proxy'nin IP'sidir.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage, kalan süreyi okunabilir formata çevirir.
// Örn: 120 → "2 minute(s)", 45 → "45 second(s)"
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
