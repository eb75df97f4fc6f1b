package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomhub/internal/auth"
)

// ContextKeyIdentity is the gin context key holding the verified display name.
const ContextKeyIdentity = "identity"

// HandshakeAuthMiddleware validates a JWT on the WebSocket upgrade request.
// The token comes from the "token" query parameter or a Bearer header.
// With a nil config every request passes. When required is false an absent
// token is accepted, but a present invalid one is still rejected.
func HandshakeAuthMiddleware(jwtConfig *auth.JWTConfig, required bool, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtConfig == nil {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" && !required {
			c.Next()
			return
		}

		claims, err := auth.ValidateToken(jwtConfig, token)
		if err != nil {
			logger.Debug().Err(err).Msg("handshake rejected")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			c.Abort()
			return
		}

		c.Set(ContextKeyIdentity, claims.DisplayName())
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request
		c.Next()

		// Log after request
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
