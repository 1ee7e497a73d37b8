package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handlers holds the route handlers for both servers
type Handlers struct {
	now func() time.Time
}

// Option configures Handlers
type Option func(*Handlers)

// WithClock overrides the time source used for response timestamps
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) {
		h.now = now
	}
}

// NewHandlers creates a new Handlers instance
func NewHandlers(opts ...Option) *Handlers {
	h := &Handlers{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hello serves the main server's plain-text greeting
func (h *Handlers) Hello(c *gin.Context) {
	c.String(http.StatusOK, HelloMessage)
}

// Status reports service status on the application server
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:  "ok",
		Service: ServiceName,
		Version: Version,
	})
}

// PublicRoute returns the public placeholder payload
func (h *Handlers) PublicRoute(c *gin.Context) {
	c.JSON(http.StatusOK, RouteResponse{
		Message:   "public route",
		Access:    "public",
		Timestamp: h.timestamp(),
	})
}

// PrivateRoute returns the private placeholder payload.
// There is no authentication in front of it.
func (h *Handlers) PrivateRoute(c *gin.Context) {
	c.JSON(http.StatusOK, RouteResponse{
		Message:   "private and protected route",
		Access:    "private",
		Timestamp: h.timestamp(),
		Warning:   PrivateRouteWarning,
	})
}

func (h *Handlers) timestamp() string {
	return h.now().UTC().Format(time.RFC3339Nano)
}
