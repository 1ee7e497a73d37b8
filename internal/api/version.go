// Package api provides the HTTP handlers for the main and application servers.
package api

// ServiceName is reported by the application server status endpoints
const ServiceName = "simple-api-demo"

// Version is the service version, set at build time with
// -ldflags "-X github.com/sirosfoundation/simple-api-demo/internal/api.Version=..."
var Version = "0.1.0"

// HelloMessage is the body served by the main server
const HelloMessage = "Hello world!"

// PrivateRouteWarning is attached to every /private response
const PrivateRouteWarning = "This route should require authentication in production"

// StatusResponse is the response from the application server / and /health endpoints
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// RouteResponse is the response from /public and /private.
// Warning is only set on the private route.
type RouteResponse struct {
	Message   string `json:"message"`
	Access    string `json:"access"`
	Timestamp string `json:"timestamp"`
	Warning   string `json:"warning,omitempty"`
}
