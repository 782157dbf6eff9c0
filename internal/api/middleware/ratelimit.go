package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const msgRateLimited = "слишком много запросов, попробуйте позже"

const visitorTTL = 10 * time.Minute

// MemoryRateLimiter token bucket на каждый IP, состояние только в памяти процесса
type MemoryRateLimiter struct {
	limit rate.Limit
	burst int

	trustForwardedFor bool

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryRateLimiter создает лимитер на requestsPerMinute запросов в минуту с пиком burst
func NewMemoryRateLimiter(requestsPerMinute, burst int) *MemoryRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = requestsPerMinute
	}
	return &MemoryRateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// TrustForwardedFor включает ключ по X-Forwarded-For
// Включать только за доверенным прокси, который перезаписывает заголовок
func (rl *MemoryRateLimiter) TrustForwardedFor(trust bool) *MemoryRateLimiter {
	rl.trustForwardedFor = trust
	return rl
}

// Middleware отвечает 429, когда у клиента закончились токены
func (rl *MemoryRateLimiter) Middleware(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r, rl.trustForwardedFor)
			if !rl.allow(key) {
				log.Warn("Rate limit exceeded: client=%s, path=%s", key, r.URL.Path)
				handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *MemoryRateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// Cleanup удаляет давно неактивных клиентов
func (rl *MemoryRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-visitorTTL)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

// RunCleanup периодически вызывает Cleanup до закрытия stopCh
func (rl *MemoryRateLimiter) RunCleanup(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// clientKey по умолчанию берет IP из RemoteAddr, заголовок клиента подделывается тривиально
func clientKey(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
			parts := strings.Split(ip, ",")
			if first := strings.TrimSpace(parts[0]); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
