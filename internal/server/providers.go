package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sirosfoundation/simple-api-demo/internal/api"
)

// Route maps a method and literal path to a handler
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func registerRoutes(router *gin.Engine, routes []Route) {
	for _, r := range routes {
		router.Handle(r.Method, r.Path, r.Handler)
	}
}

// MainProvider serves the plain-text endpoints of the main server
type MainProvider struct {
	handlers *api.Handlers
}

// NewMainProvider creates the main server route provider
func NewMainProvider(h *api.Handlers) *MainProvider {
	return &MainProvider{handlers: h}
}

func (p *MainProvider) Name() string { return "main" }
func (p *MainProvider) Role() Role   { return RoleMain }

// Routes returns the main server route table
func (p *MainProvider) Routes() []Route {
	return []Route{
		{http.MethodGet, "/", p.handlers.Hello},
		{http.MethodGet, "/health", p.handlers.Hello},
	}
}

func (p *MainProvider) RegisterRoutes(router *gin.Engine) {
	registerRoutes(router, p.Routes())
}

// AppProvider serves the JSON endpoints of the application server
type AppProvider struct {
	handlers *api.Handlers
}

// NewAppProvider creates the application server route provider
func NewAppProvider(h *api.Handlers) *AppProvider {
	return &AppProvider{handlers: h}
}

func (p *AppProvider) Name() string { return "app" }
func (p *AppProvider) Role() Role   { return RoleApp }

// Routes returns the application server route table
func (p *AppProvider) Routes() []Route {
	return []Route{
		{http.MethodGet, "/", p.handlers.Status},
		{http.MethodGet, "/health", p.handlers.Status},
		{http.MethodGet, "/public", p.handlers.PublicRoute},
		{http.MethodGet, "/private", p.handlers.PrivateRoute},
	}
}

func (p *AppProvider) RegisterRoutes(router *gin.Engine) {
	registerRoutes(router, p.Routes())
}
