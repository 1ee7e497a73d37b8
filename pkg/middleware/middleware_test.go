package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})
	return router
}

func TestCORS_SimpleRequest(t *testing.T) {
	router := newTestRouter(CORS())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://client.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	router := newTestRouter(CORS())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://client.example")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))

	methods := w.Header().Get("Access-Control-Allow-Methods")
	for _, m := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
		assert.Contains(t, methods, m)
	}

	headers := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	for _, h := range []string{"authorization", "accept", "content-type"} {
		assert.Contains(t, headers, h)
	}
}

func TestCORSConfig_Valid(t *testing.T) {
	cfg := CORSConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3600.0, cfg.MaxAge.Seconds())
}

func TestRequestID_Generated(t *testing.T) {
	router := newTestRouter(RequestID())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRequestID_Propagated(t *testing.T) {
	router := newTestRouter(RequestID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestID_OversizedReplaced(t *testing.T) {
	router := newTestRouter(RequestID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	router.ServeHTTP(w, req)

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := newTestRouter(RequestID(), Logger(zap.New(core)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	router.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Request", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/ping", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "req-1", fields["request_id"])
}
