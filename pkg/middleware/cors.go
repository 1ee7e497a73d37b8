package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMaxAge is how long browsers may cache a preflight result
const CORSMaxAge = time.Hour

// CORSConfig returns the fixed cross-origin policy: any origin, the common
// REST methods, and the Authorization/Accept/Content-Type headers.
func CORSConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Accept", "Content-Type"},
		MaxAge:          CORSMaxAge,
	}
}

// CORS returns the gin middleware for CORSConfig
func CORS() gin.HandlerFunc {
	return cors.New(CORSConfig())
}
