// README: Bearer-token auth backed by the identity provider's token verifier.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lani/internal/infra"
)

const uidKey = "auth.uid"

// Auth verifies the Authorization bearer token on every request and stashes
// the caller's UID in the gin context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tok, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(uidKey, tok.UID)
		c.Next()
	}
}

// UID returns the authenticated caller's id, set by Auth.
func UID(c *gin.Context) string {
	return c.GetString(uidKey)
}
