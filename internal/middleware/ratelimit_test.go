package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Property 5: with Redis, exactly the first N requests of a window pass
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("excessive requests are blocked with 429", prop.ForAll(
		func(limit int, excess int) bool {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("Failed to start miniredis: %v", err)
			}
			defer mr.Close()

			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer client.Close()

			handler := RateLimitMiddleware(client, RateLimitConfig{
				RequestsPerWindow: limit,
				Window:            time.Minute,
				KeyPrefix:         "ratelimit",
			}, zap.NewNop())(okHandler())

			passed, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				switch hit(handler, "192.168.1.100:40000").Code {
				case http.StatusOK:
					passed++
				case http.StatusTooManyRequests:
					blocked++
				}
			}

			return passed == limit && blocked == excess
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property 6: remaining counts down from the limit
func TestProperty_RateLimitHeadersCountDown(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("X-RateLimit-Remaining counts down", prop.ForAll(
		func(limit int) bool {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("Failed to start miniredis: %v", err)
			}
			defer mr.Close()

			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer client.Close()

			handler := RateLimitMiddleware(client, RateLimitConfig{
				RequestsPerWindow: limit,
				Window:            time.Minute,
				KeyPrefix:         "ratelimit",
			}, zap.NewNop())(okHandler())

			for i := 1; i <= limit; i++ {
				w := hit(handler, "192.168.1.101:40000")
				if w.Header().Get("X-RateLimit-Limit") != strconv.Itoa(limit) ||
					w.Header().Get("X-RateLimit-Remaining") != strconv.Itoa(limit-i) {
					return false
				}
			}

			blocked := hit(handler, "192.168.1.101:40000")
			return blocked.Header().Get("Retry-After") != "" && blocked.Header().Get("X-RateLimit-Remaining") == "0"
		},
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimitMiddleware_KeysByClientIP(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	handler := RateLimitMiddleware(client, RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, KeyPrefix: "ratelimit"}, zap.NewNop())(okHandler())

	// ports differ per connection; the host is the key
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1:2222").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1111").Code)

	assert.True(t, mr.Exists("ratelimit:10.0.0.1"))
	ttl := mr.TTL("ratelimit:10.0.0.1")
	assert.True(t, ttl > 0 && ttl <= time.Minute)
}

func TestRateLimitMiddleware_RedisDownAllowsRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	handler := RateLimitMiddleware(client, RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, KeyPrefix: "ratelimit"}, zap.NewNop())(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.3:1111").Code)
	}
}

func TestNewRateLimiter_FallsBackToLocal(t *testing.T) {
	handler := NewRateLimiter(nil, RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute}, zap.NewNop())(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, hit(handler, "10.0.0.7:5123").Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
