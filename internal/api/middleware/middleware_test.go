package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestMemoryRateLimiter(t *testing.T) {
	rl := NewMemoryRateLimiter(60, 2)
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Middleware(logger.NewNop())(okHandler)

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))

	now = now.Add(visitorTTL + time.Second)
	rl.Cleanup()
	assert.Empty(t, rl.visitors)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:40000"
	assert.Equal(t, "192.168.1.5", clientKey(req, false))
	assert.Equal(t, "192.168.1.5", clientKey(req, true))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "192.168.1.5", clientKey(req, false))
	assert.Equal(t, "203.0.113.7", clientKey(req, true))

	req.Header.Set("X-Forwarded-For", " , 10.0.0.1")
	assert.Equal(t, "192.168.1.5", clientKey(req, true))
}

func TestMemoryRateLimiter_ForwardedForRotationDoesNotResetBucket(t *testing.T) {
	rl := NewMemoryRateLimiter(60, 2)
	h := rl.Middleware(logger.NewNop())(okHandler)

	call := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.9:5555"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("203.0.113.1"))
	assert.Equal(t, http.StatusNoContent, call("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.3"))
	assert.Len(t, rl.visitors, 1)
}

func TestMemoryRateLimiter_TrustedForwardedFor(t *testing.T) {
	rl := NewMemoryRateLimiter(60, 1).TrustForwardedFor(true)
	h := rl.Middleware(logger.NewNop())(okHandler)

	call := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.254:5555"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.1"))
	assert.Equal(t, http.StatusNoContent, call("203.0.113.2"))
}

// fakeScripter считает вызовы скрипта как INCR без TTL
type fakeScripter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (f *fakeScripter) run(ctx context.Context, keys []string) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[keys[0]]++
	cmd := redis.NewCmd(ctx)
	cmd.SetVal(f.counts[keys[0]])
	return cmd
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}

func (f *fakeScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func TestRedisRateLimiter_Counts(t *testing.T) {
	scripter := &fakeScripter{counts: map[string]int64{}}
	h := NewRedisRateLimiter(scripter, 2, time.Minute, "test").Middleware(logger.NewNop(), false)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, int64(3), scripter.counts["test:192.0.2.1"])
}

func TestRedisRateLimiter_IgnoresForwardedForByDefault(t *testing.T) {
	scripter := &fakeScripter{counts: map[string]int64{}}
	h := NewRedisRateLimiter(scripter, 5, time.Minute, "test").Middleware(logger.NewNop(), false)(okHandler)

	for _, forwarded := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", forwarded)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, map[string]int64{"test:192.0.2.1": 2}, scripter.counts)
}

func TestRedisRateLimiter_Unavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	rl := NewRedisRateLimiter(rdb, 10, time.Minute, "")

	rec := httptest.NewRecorder()
	rl.Middleware(logger.NewNop(), true)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	rl.Middleware(logger.NewNop(), false)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.New("appointments", prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(MetricsMiddleware(m, "appointments"))
	router.HandleFunc("/api/v1/appointments/{appointmentId}", okHandler).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/42", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	count := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("appointments", "GET", "/api/v1/appointments/{appointmentId}", "204"))
	assert.Equal(t, float64(1), count)
}

func TestAccessLog_PassesThrough(t *testing.T) {
	h := RequestID(AccessLog(logger.NewNop())(okHandler))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/x", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
