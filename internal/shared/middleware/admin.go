package middleware

import (
	"strings"

	"flipper-backend/internal/shared/response"
	"flipper-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// TokenValidator is satisfied by *jwt.Manager
type TokenValidator interface {
	ValidateAdminToken(token string) (*jwt.Claims, error)
}

// AdminMiddleware requires a valid admin bearer token
func AdminMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := validator.ValidateAdminToken(parts[1])
		if err != nil {
			log.Warn().
				Str("request_id", c.GetString("request_id")).
				Err(err).
				Msg("admin token rejected")
			response.Unauthorized(c, "invalid token")
			return
		}

		c.Set("role", claims.Role)
		c.Next()
	}
}
