// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities: the structured error
// envelope, consistent JSON serialization, and helpers shared by all
// endpoints. Error envelopes are only used before a stream starts; once the
// first NDJSON frame is on the wire, failures degrade inside the stream
// protocol instead.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-outreach-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// RequestID correlates server logs with client-side errors; Code is a stable
// machine-readable string (see errors.go); Message is safe to show to users.
// Details carries structured extras for specific codes (e.g. quota numbers on
// quota_exceeded).
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"quota_exceeded"`
	Message   string `json:"message" example:"daily generation quota exceeded"`
	Details   any    `json:"details,omitempty"`
}

// QuotaDetails is the Details payload for quota_exceeded errors.
type QuotaDetails struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// fail aborts the request with a structured error, logging 5xx responses via
// the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, code, msg, nil)
}

// failWith is fail with a structured Details payload.
func failWith(c *gin.Context, status int, code, msg string, details any) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
		Details:   details,
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
