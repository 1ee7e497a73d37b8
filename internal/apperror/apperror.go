// Package apperror defines the error taxonomy shared by the configuration
// loader, the server manager and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Kind classifies an Error
type Kind string

const (
	KindConfig      Kind = "configuration_error"
	KindEnvironment Kind = "environment_error"
	KindServer      Kind = "server_error"
	KindInternal    Kind = "internal_error"
	KindValidation  Kind = "validation_error"
)

// Sentinels for errors.Is matching on a kind.
var (
	ErrConfig     = &Error{Kind: KindConfig}
	ErrServer     = &Error{Kind: KindServer}
	ErrInternal   = &Error{Kind: KindInternal}
	ErrValidation = &Error{Kind: KindValidation}
)

// Error is an application error. Var is only set for environment errors.
type Error struct {
	Kind    Kind
	Var     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindConfig:
		msg = "configuration error: " + e.Message
	case KindEnvironment:
		msg = fmt.Sprintf("environment variable error: %s - %s", e.Var, e.Message)
	case KindServer:
		msg = "server error: " + e.Message
	case KindValidation:
		msg = "validation error: " + e.Message
	default:
		msg = "internal server error: " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality. An environment error is also a configuration error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindConfig && e.Kind == KindEnvironment
}

// StatusCode returns the HTTP status used when the error reaches a client
func (e *Error) StatusCode() int {
	if e.Kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Config creates a configuration error
func Config(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

// Environment creates an error naming the offending environment variable
func Environment(name, format string, args ...any) *Error {
	return &Error{Kind: KindEnvironment, Var: name, Message: fmt.Sprintf(format, args...)}
}

// Server wraps a bind or listener failure
func Server(err error, format string, args ...any) *Error {
	return &Error{Kind: KindServer, Message: fmt.Sprintf(format, args...), Err: err}
}

// Internal creates an internal error
func Internal(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a request validation error
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Render aborts the request with the JSON form of err. Errors that are not
// an *Error are reported as internal errors.
func Render(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = &Error{Kind: KindInternal, Message: err.Error()}
	}
	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{
		"error": gin.H{
			"type":      string(appErr.Kind),
			"message":   appErr.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
}

// Recovery returns a gin recovery middleware that renders panics as internal errors
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		Render(c, Internal("%v", recovered))
	})
}
