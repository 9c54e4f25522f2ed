// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, a hardening middleware attaching a
// conservative header set suitable for a JSON/NDJSON API behind a reverse
// proxy. HSTS is opt-in and only emitted on HTTPS requests; no CSP since the
// service never serves HTML.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the emitted security headers.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests. Only
	// enable when traffic is HTTPS end-to-end, proxy hop included.
	EnableHSTS bool
	// HSTSMaxAge is the HSTS lifetime; <= 0 defaults to 180 days.
	HSTSMaxAge time.Duration
	// NoStore adds Cache-Control: no-store. Generated drafts are per-user
	// data, so the API enables this.
	NoStore bool
}

// SecurityHeaders returns a middleware adding baseline hardening headers to
// every response.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hstsValue := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
		}

		if opt.EnableHSTS && (c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https") {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		c.Next()
	}
}
