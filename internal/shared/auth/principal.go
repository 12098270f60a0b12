// Package auth carries the principal authenticated upstream by the gateway.
package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderSubject carries the authenticated subject set by the gateway.
	HeaderSubject = "X-Auth-Subject"
	// HeaderRole carries the role claim of the authenticated subject.
	HeaderRole = "X-Auth-Role"

	// RoleWarehouseManager is the role allowed to create orders by default.
	RoleWarehouseManager = "Gerencia WMS"

	ginPrincipalKey = "auth.principal"
)

// Principal is an already-authenticated caller with a role claim.
type Principal struct {
	Subject string
	Role    string
}

// Authenticated reports whether the principal carries any identity.
func (p Principal) Authenticated() bool {
	return p.Subject != "" || p.Role != ""
}

// HasRole compares role claims ignoring surrounding whitespace.
func (p Principal) HasRole(role string) bool {
	return strings.TrimSpace(role) != "" && strings.TrimSpace(p.Role) == strings.TrimSpace(role)
}

type principalKey struct{}

// WithPrincipal stores the principal in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Middleware extracts the principal from gateway headers into both the gin and request contexts.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal{
			Subject: strings.TrimSpace(c.GetHeader(HeaderSubject)),
			Role:    strings.TrimSpace(c.GetHeader(HeaderRole)),
		}
		if p.Authenticated() {
			c.Set(ginPrincipalKey, p)
			c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal attached by Middleware, or the zero principal.
func PrincipalFrom(c *gin.Context) Principal {
	if v, ok := c.Get(ginPrincipalKey); ok {
		if p, ok := v.(Principal); ok {
			return p
		}
	}
	p, _ := FromContext(c.Request.Context())
	return p
}
