// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request ID injector, structured request logging, and
// a panic-safe recovery handler:
//
//   - RequestID() ensures every request carries a stable correlation ID
//     (propagated via X-Request-ID and stored in the Gin context).
//   - RequestLogger() emits one structured access log per request with
//     latency, status, and sizes, and attaches a request-scoped
//     zerolog.Logger for handlers and services to enrich.
//   - Recovery() converts panics into JSON 500 responses while preserving the
//     correlation ID and logging the stack trace.
//   - LoggerFrom() retrieves the request-scoped logger.
//
// Install in this order — RequestID, RequestLogger, Recovery — so panics and
// errors are logged with the correlation ID attached. For streaming endpoints
// the access log is written when the stream closes, which is the interesting
// moment anyway: it carries the final status and total bytes pushed.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key for the request-scoped logger.
	loggerKey = "logger"
	// maxQueryLogBytes caps the raw query string in access logs.
	maxQueryLogBytes = 2048
)

// RequestID attaches (or propagates) a correlation identifier per request.
// An incoming X-Request-ID is reused; otherwise a new UUIDv4 is generated.
// The ID is echoed on the response and stored in the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestLogger writes a structured access log for each request and stores a
// request-scoped zerolog.Logger in the Gin context. Log level follows the
// outcome: error for 5xx, warn for 4xx, info otherwise.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			// Route not matched / 404.
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogBytes)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		ev := eventForStatus(&l, status, len(c.Errors) > 0)
		ev.Int("status", status).
			Str("user_id", UserID(c)).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Msg("request")
	}
}

// Recovery converts panics into a JSON 500 with the correlation ID and logs
// the stack trace via the request-scoped logger.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				LoggerFrom(c).Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"request_id": c.Writer.Header().Get(requestIDHeader),
					"code":       "internal_error",
					"message":    "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, falling back to the global
// logger when middleware did not run (e.g., unit tests without the chain).
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if c != nil {
		if v, ok := c.Get(loggerKey); ok {
			if l, ok := v.(*zerolog.Logger); ok {
				return l
			}
		}
	}
	return &log.Logger
}

// eventForStatus picks the log level for an access-log entry.
func eventForStatus(l *zerolog.Logger, status int, hasErrors bool) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError || hasErrors:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	default:
		return l.Info()
	}
}

// asString renders a context value stored as any, tolerating nil.
func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
