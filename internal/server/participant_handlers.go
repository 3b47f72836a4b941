package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Participant engagement summary
// @Description Returns the authenticated participant's summary and which method authenticated the call
// @Tags participant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /participant-summary [get]
func (s *Server) getParticipantSummary(c *gin.Context) {
	authCtx, ok := GetAuthContext(c)
	if !ok {
		// The middleware gates this route; reaching here without a
		// context is a wiring bug, not a credential problem
		s.logger.Error().Str("path", c.Request.URL.Path).Msg("Auth context missing on protected route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Auth context missing"})
		return
	}

	summary, err := s.participants.Summary(authCtx.Identity.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("participant_id", authCtx.Identity.ID).Msg("Failed to load summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"participantId":    authCtx.Identity.ID,
		"participantName":  authCtx.Identity.Name,
		"email":            authCtx.Identity.Email,
		"authenticatedVia": authCtx.Method,
		"expiresAt":        authCtx.ExpiresAt,
		"summary":          summary,
	})
}
