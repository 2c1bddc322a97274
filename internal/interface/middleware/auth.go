package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/glowcast/glowcast/pkg/helpers"
	"github.com/glowcast/glowcast/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUsernameKey = "username"
)

// Auth validates the bearer token and injects the asserted identity into the
// Gin context. The check is stateless: signature plus expiry, nothing else.
// Unauthenticated browsers get a login redirect hint alongside the 401.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			abortUnauthorized(c, "missing token")
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUsernameKey, claims.Username)
		c.Next()
	}
}

// tokenFromRequest prefers the session cookie and falls back to a bearer
// Authorization header for non-browser clients.
func tokenFromRequest(c *gin.Context) string {
	if t, err := c.Cookie("token"); err == nil && t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Error[any](c, http.StatusUnauthorized, msg, gin.H{"login": "/#/login"})
	c.Abort()
}
