package auth

import (
	"errors"
	"net/http"
	"storefront/dto"
	"storefront/services"
	"strings"

	"github.com/gin-gonic/gin"
)

func CaptchaController(router *gin.Engine, deps Deps) {
	routes := router.Group("/auth")
	{
		routes.POST("/captcha", func(c *gin.Context) {
			VerifyCaptcha(c, deps)
		})
	}
}

func VerifyCaptcha(c *gin.Context, deps Deps) {
	if deps.Captcha == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"success": false, "message": "reCAPTCHA is not configured"})
		return
	}

	var req dto.CaptchaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Token is required",
		})
		return
	}

	result, err := deps.Captcha.Assess(c.Request.Context(), services.CaptchaEvent{
		Token:     req.Token,
		Action:    req.Action,
		UserIP:    getClientIP(c),
		UserAgent: c.Request.UserAgent(),
	})
	if errors.Is(err, services.ErrCaptchaRejected) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "reCAPTCHA verification failed",
		})
		return
	}
	if err != nil {
		deps.Log.Error().Err(err).Msg("error verifying reCAPTCHA")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"score":   result.Score,
		"action":  result.Action,
		"reasons": result.Reasons,
		"message": "Captcha verified successfully",
	})
}

// getClientIP keeps the first address when a proxy chain is reported.
func getClientIP(c *gin.Context) string {
	userIPAddress := c.ClientIP()
	if userIPAddress == "" {
		userIPAddress = c.Request.RemoteAddr
	}
	if idx := strings.Index(userIPAddress, ","); idx != -1 {
		userIPAddress = strings.TrimSpace(userIPAddress[:idx])
	}
	return userIPAddress
}
