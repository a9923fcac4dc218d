package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRateLimitedRouter(t *testing.T, limit int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mw := NewRateLimit(RateLimitConfig{
		Redis:  client,
		Limit:  limit,
		Window: window,
	})

	r := gin.New()
	r.Use(mw.Handle())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	return r, mr
}

func TestRateLimit(t *testing.T) {
	t.Run("запросы в пределах лимита проходят", func(t *testing.T) {
		r, _ := newRateLimitedRouter(t, 3, time.Minute)

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("превышение лимита — 429", func(t *testing.T) {
		r, _ := newRateLimitedRouter(t, 2, time.Minute)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("заголовки лимита выставляются", func(t *testing.T) {
		r, _ := newRateLimitedRouter(t, 5, time.Minute)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("лимит сбрасывается после окна", func(t *testing.T) {
		r, mr := newRateLimitedRouter(t, 1, time.Minute)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusTooManyRequests, w.Code)

		// перематываем время за пределы окна
		mr.FastForward(2 * time.Minute)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("fail-open при недоступном Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		mr.Close() // Redis падает до первого запроса

		mw := NewRateLimit(RateLimitConfig{Redis: client, Limit: 1, Window: time.Minute})

		r := gin.New()
		r.Use(mw.Handle())
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}
