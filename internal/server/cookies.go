package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/engaged-dev/engaged/internal/auth"
)

// sessionCookieName is the cookie carrying the opaque session id
const sessionCookieName = "sessionId"

// sessionCookie builds the cookie for a session. SameSite=Lax for
// same-site development; SameSite=None plus Secure when the production
// client lives on another origin.
func (s *Server) sessionCookie(session auth.Session) *http.Cookie {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int((session.ExpiresAt - time.Now().UnixMilli()) / 1000),
		SameSite: http.SameSiteLaxMode,
	}
	if s.config.IsProduction() {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}
	return cookie
}

func (s *Server) setSessionCookie(c *gin.Context, session auth.Session) {
	http.SetCookie(c.Writer, s.sessionCookie(session))
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	cookie := s.sessionCookie(auth.Session{})
	cookie.Value = ""
	cookie.MaxAge = -1
	http.SetCookie(c.Writer, cookie)
}
