package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/engaged-dev/engaged/internal/relay"
)

// @Summary Chatbot token
// @Description Relays a fresh Direct Line token for the chat widget
// @Tags relay
// @Produce json
// @Success 200 {object} relay.BotToken
// @Failure 500 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /bot/token [get]
func (s *Server) getBotToken(c *gin.Context) {
	token, err := s.relay.BotToken(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, relay.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Direct Line token endpoint not configured"})
		case errors.Is(err, relay.ErrNoToken):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No token received from Direct Line endpoint"})
		default:
			s.logger.Error().Err(err).Msg("Failed to fetch bot token")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch token"})
		}
		return
	}

	c.JSON(http.StatusOK, token)
}

// @Summary Trigger workflow
// @Description Forwards the JSON payload to the configured Power Automate flow
// @Tags relay
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /connect [post]
func (s *Server) connectWorkflow(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		payload = map[string]any{}
	}

	data, err := s.relay.TriggerWorkflow(c.Request.Context(), payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error connecting to Power Automate")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error connecting to Power Automate",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Power Automate flow triggered successfully",
		"data":    data,
	})
}
