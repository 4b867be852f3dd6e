package suggestion

import (
	"errors"
	"io"
	"net/http"
	"storefront/controller"
	"storefront/dto"
	"storefront/middleware"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SuggestionController registers POST /suggestions. A nil service means no model is configured.
func SuggestionController(router *gin.Engine, suggestions *services.SuggestionService, log zerolog.Logger) {
	router.POST("/suggestions", func(c *gin.Context) {
		Suggest(c, suggestions, log)
	})
}

// Suggest forwards the request as-is; an empty body is an empty request.
func Suggest(c *gin.Context, suggestions *services.SuggestionService, log zerolog.Logger) {
	if suggestions == nil {
		controller.Notify(c, http.StatusServiceUnavailable, "Error", "Suggestions are not available.", nil)
		return
	}

	var request dto.SuggestionRequest
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := suggestions.Suggest(c.Request.Context(), request)
	if err != nil {
		log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Msg("suggestion request failed")
		controller.Notify(c, http.StatusBadGateway, "Error", err.Error(), nil)
		return
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	c.JSON(http.StatusOK, resp)
}
