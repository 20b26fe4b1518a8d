package handlers_test_suite

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-catalog/internal/http/ban"
	mw "github.com/rogerio-castellano/inventory-catalog/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDHeader(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/health", "")
	_, err := uuid.Parse(w.Header().Get(mw.RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(mw.RequestIDHeader, "caller-id")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, "caller-id", w.Header().Get(mw.RequestIDHeader))
}

func TestCORS(t *testing.T) {
	env := setupEnv(t, withCORS("http://localhost:3000"))

	t.Run("Preflight from an allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/materials", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})

	t.Run("Other origins get no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/materials", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimitAndBan(t *testing.T) {
	env := setupEnv(t, withRateLimit(0.001, 2, ban.Policy{
		MaxStrikes:   2,
		StrikeWindow: time.Minute,
		BanDuration:  time.Hour,
	}))

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		codes = append(codes, env.do(http.MethodGet, "/health", "").Code)
	}
	assert.Equal(t, []int{
		http.StatusOK,
		http.StatusOK,
		http.StatusTooManyRequests,
		http.StatusForbidden,
		http.StatusForbidden,
	}, codes)

	w := env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "HTTP_403", decodeError(t, w).ErrorCode)
}

func TestSwaggerDocs(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/docs/index.html", w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/docs/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/materials/{id}"`)
}
