package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"contextchat/internal/pkg/jwtauth"
	"contextchat/internal/transport/http/response"
)

const ContextCallerKey = "caller"

// ServiceAuth verifies the platform-issued service token. End-user identity
// travels in request payloads; issuing and validating user sessions is the
// upstream auth system's job.
func ServiceAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtauth.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextCallerKey, claims.Caller)
		c.Next()
	}
}
