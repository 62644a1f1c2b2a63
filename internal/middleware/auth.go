// Package middleware provides gin middleware for authentication and
// webhook validation.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zapdesk-io/zapdesk/internal/auth"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

// Context keys set by RequireAuth.
const (
	ContextClaims = "claims"
)

// RequireAuth validates the bearer token and stores the claims on the
// request context.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := jwtManager.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireAdmin rejects non-admin sessions. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.Profile != models.ProfileAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin profile required"})
			return
		}
		c.Next()
	}
}

// RequireWebhookSecret validates the shared secret on channel-adapter
// calls. An empty configured secret disables the check (dev mode).
func RequireWebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
		c.Next()
	}
}

// GetClaims returns the validated session claims, or nil outside an
// authenticated route.
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
