package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workshops/internal/security"
)

const claimsKey = "access_claims"

// Auth verifies the bearer token and stores its claims on the context.
func Auth(tokens *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		scheme, tokenStr, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(tokenStr))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(claimsKey, *claims)
		c.Next()
	}
}

// Claims returns the verified token claims set by Auth.
func Claims(c *gin.Context) (security.AccessClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return security.AccessClaims{}, false
	}
	claims, ok := v.(security.AccessClaims)
	return claims, ok
}
