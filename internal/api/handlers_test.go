package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.GET("/hello", h.Hello)
	router.GET("/status", h.Status)
	router.GET("/public", h.PublicRoute)
	router.GET("/private", h.PrivateRoute)
	return router
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHandlers_Hello(t *testing.T) {
	router := setupTestRouter(NewHandlers())

	w := get(t, router, "/hello")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Hello world!", w.Body.String())
}

func TestHandlers_Status(t *testing.T) {
	router := setupTestRouter(NewHandlers())

	w := get(t, router, "/status")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, "simple-api-demo", response["service"])
	assert.Equal(t, Version, response["version"])
	assert.Len(t, response, 3)
}

func TestHandlers_PublicRoute(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	router := setupTestRouter(NewHandlers(WithClock(func() time.Time { return fixed })))

	w := get(t, router, "/public")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "public route", response["message"])
	assert.Equal(t, "public", response["access"])
	assert.Equal(t, "2024-05-01T10:30:00Z", response["timestamp"])
	assert.NotContains(t, response, "warning")
}

func TestHandlers_PrivateRoute(t *testing.T) {
	router := setupTestRouter(NewHandlers())

	w := get(t, router, "/private")

	assert.Equal(t, http.StatusOK, w.Code)

	var response RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "private and protected route", response.Message)
	assert.Equal(t, "private", response.Access)
	assert.Equal(t, "This route should require authentication in production", response.Warning)

	ts, err := time.Parse(time.RFC3339Nano, response.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestHandlers_PublicTimestampsNonDecreasing(t *testing.T) {
	router := setupTestRouter(NewHandlers())

	var stamps []time.Time
	for i := 0; i < 2; i++ {
		var response RouteResponse
		require.NoError(t, json.Unmarshal(get(t, router, "/public").Body.Bytes(), &response))

		ts, err := time.Parse(time.RFC3339Nano, response.Timestamp)
		require.NoError(t, err)
		assert.Equal(t, byte('Z'), response.Timestamp[len(response.Timestamp)-1])
		stamps = append(stamps, ts)
	}

	assert.False(t, stamps[1].Before(stamps[0]))
}
