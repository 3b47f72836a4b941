package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/engaged-dev/engaged/internal/auth"
)

const authContextKey = "auth"

func setAuthContext(c *gin.Context, authCtx *auth.Context) {
	c.Set(authContextKey, authCtx)
}

// GetAuthContext returns the auth context attached by the auth middleware
func GetAuthContext(c *gin.Context) (*auth.Context, bool) {
	value, exists := c.Get(authContextKey)
	if !exists {
		return nil, false
	}

	authCtx, ok := value.(*auth.Context)
	return authCtx, ok
}

// authMiddleware resolves the request's credentials (bearer token
// first, then session cookie) and attaches the auth context. Requests
// with no valid credential are rejected here; downstream handlers
// never re-check credentials.
//
// The rejection detail deliberately does not reveal whether a token
// was absent, malformed or expired.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := s.resolver.Resolve(c.Request)
		if authCtx == nil {
			s.logger.Warn().
				Str("path", c.Request.URL.Path).
				Msg("Request rejected: no valid credential")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":  "Unauthorized",
				"detail": "Provide a valid Bearer token or active session cookie.",
			})
			return
		}

		setAuthContext(c, authCtx)
		c.Next()
	}
}
