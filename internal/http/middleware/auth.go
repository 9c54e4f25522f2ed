// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication. Session management is an
// external collaborator: the middleware only extracts the credential and asks
// a Resolver who it belongs to, then stores the user id in the Gin context
// for handlers, logging, and rate limiting.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// userIDKey is the Gin context key under which the resolved user is stored.
	userIDKey = "userID"
	// headerUserID is the fallback identity header accepted when no Resolver
	// is configured (gateway-fronted deployments and tests).
	headerUserID = "X-User-ID"
)

// ErrUnknownToken is returned by resolvers for credentials they do not know.
var ErrUnknownToken = errors.New("unknown token")

// Resolver maps a bearer credential to a user id. Implementations live
// outside this service (an auth/session system); StaticResolver covers
// development and single-tenant deployments.
type Resolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// StaticResolver resolves tokens from a fixed in-memory map.
type StaticResolver map[string]string

// ResolveUser implements Resolver.
func (r StaticResolver) ResolveUser(_ context.Context, token string) (string, error) {
	if uid, ok := r[token]; ok && uid != "" {
		return uid, nil
	}
	return "", ErrUnknownToken
}

// NewStaticResolver parses "token:user" entries into a StaticResolver.
// Malformed entries are skipped.
func NewStaticResolver(entries []string) StaticResolver {
	out := make(StaticResolver, len(entries))
	for _, e := range entries {
		tok, uid, ok := strings.Cut(e, ":")
		if !ok {
			continue
		}
		tok, uid = strings.TrimSpace(tok), strings.TrimSpace(uid)
		if tok != "" && uid != "" {
			out[tok] = uid
		}
	}
	return out
}

// Auth returns a middleware that authenticates every request.
//
// With a non-nil resolver it requires "Authorization: Bearer <token>" and
// rejects missing or unknown credentials with 401 before any handler runs.
// With a nil resolver it trusts the X-User-ID header (the deployment is
// expected to sit behind a gateway that already authenticated the caller)
// and still rejects requests that carry no identity at all.
func Auth(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver == nil {
			if uid := strings.TrimSpace(c.GetHeader(headerUserID)); uid != "" {
				c.Set(userIDKey, uid)
				c.Next()
				return
			}
			unauthorized(c, "missing "+headerUserID+" header")
			return
		}

		raw := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			unauthorized(c, "missing bearer credential")
			return
		}
		uid, err := resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			unauthorized(c, "invalid credential")
			return
		}
		c.Set(userIDKey, uid)
		c.Next()
	}
}

// UserID returns the authenticated user id from the Gin context, or "" when
// the request never passed Auth.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// unauthorized writes the standard error envelope without importing the
// handlers package (which depends on this one).
func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
