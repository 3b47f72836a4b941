package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/engaged-dev/engaged/internal/auth"
)

// SignInRequest represents a sign-in request.
// Fields are deliberately unconstrained: a missing field is an invalid
// credential, not a malformed request, so it must produce the same 401
// as a wrong password.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionDetail represents session information returned in responses
type SessionDetail struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expiresAt"`
}

func invalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":  "Invalid credentials",
		"detail": "Email or password is incorrect.",
	})
}

// verifySignIn binds the request body and checks the credentials.
// All failure modes collapse to a generic 401.
func (s *Server) verifySignIn(c *gin.Context) (*auth.Identity, bool) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidCredentials(c)
		return nil, false
	}

	identity, ok := s.participants.VerifyCredentials(req.Email, req.Password)
	if !ok {
		invalidCredentials(c)
		return nil, false
	}

	return identity, true
}

// @Summary Sign in with a session cookie
// @Description Verifies credentials and issues an HTTP-only session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Sign-in request"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/sign-in-cookie [post]
func (s *Server) signInWithCookie(c *gin.Context) {
	identity, ok := s.verifySignIn(c)
	if !ok {
		return
	}

	session := s.store.Issue(*identity)
	s.setSessionCookie(c, session)

	s.logger.Info().Str("participant_id", identity.ID).Msg("Signed in with cookie")

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in with cookie",
		"user":    identity,
		"session": SessionDetail{
			ID:        session.ID,
			ExpiresAt: session.ExpiresAt,
		},
	})
}

// @Summary Sign in with a bearer token
// @Description Verifies credentials and returns a signed bearer token; no cookie is set
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Sign-in request"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/sign-in-token [post]
func (s *Server) signInWithToken(c *gin.Context) {
	identity, ok := s.verifySignIn(c)
	if !ok {
		return
	}

	token, err := s.codec.Issue(*identity)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	s.logger.Info().Str("participant_id", identity.ID).Msg("Signed in with token")

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in with token",
		"token":   token,
		"user":    identity,
	})
}

// @Summary Renew the current session
// @Description Sliding expiration: replaces a valid session with a fresh one and resets the cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/session [get]
func (s *Server) getSession(c *gin.Context) {
	noSession := func() {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":  "No active session",
			"detail": "Sign in to start a session.",
		})
	}

	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil || sessionID == "" {
		noSession()
		return
	}

	authCtx := s.store.Lookup(sessionID)
	if authCtx == nil {
		noSession()
		return
	}

	// Re-issue: new id, refreshed expiry. The old session is gone for good.
	s.store.Delete(sessionID)
	session := s.store.Issue(authCtx.Identity)
	s.setSessionCookie(c, session)

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"user":      authCtx.Identity,
		"session": SessionDetail{
			ID:        session.ID,
			ExpiresAt: session.ExpiresAt,
		},
	})
}

// @Summary Sign out
// @Description Deletes the referenced session server-side and clears the cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/sign-out [post]
func (s *Server) signOut(c *gin.Context) {
	if sessionID, err := c.Cookie(sessionCookieName); err == nil && sessionID != "" {
		if s.store.Delete(sessionID) {
			s.logger.Info().Msg("Session deleted on sign-out")
		}
	}

	s.clearSessionCookie(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed out successfully",
	})
}
