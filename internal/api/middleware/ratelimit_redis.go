package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const msgRateLimiterUnavailable = "сервис ограничения запросов недоступен"

// RedisRateLimiter fixed window в Redis, общий для всех инстансов сервиса
type RedisRateLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string

	trustForwardedFor bool
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// NewRedisRateLimiter создает лимитер на limit запросов за window
func NewRedisRateLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

// TrustForwardedFor включает ключ по X-Forwarded-For
// Включать только за доверенным прокси, который перезаписывает заголовок
func (rl *RedisRateLimiter) TrustForwardedFor(trust bool) *RedisRateLimiter {
	rl.trustForwardedFor = trust
	return rl
}

// Middleware при недоступности Redis пропускает запрос, если failOpen, иначе отвечает 503
func (rl *RedisRateLimiter) Middleware(log Logger, failOpen bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.prefix + ":" + clientKey(r, rl.trustForwardedFor)

			count, err := rl.incr(r.Context(), key)
			if err != nil {
				log.Warn("Redis rate limiter error: key=%s, error=%v", key, err)
				if failOpen {
					next.ServeHTTP(w, r)
					return
				}
				handlers.RespondError(w, http.StatusServiceUnavailable, msgRateLimiterUnavailable)
				return
			}

			if count > int64(rl.limit) {
				log.Warn("Rate limit exceeded: key=%s, count=%d", key, count)
				handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RedisRateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}

	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}
