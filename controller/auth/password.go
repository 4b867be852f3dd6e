package auth

import (
	"errors"
	"net/http"
	"storefront/controller"
	"storefront/dto"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

func PasswordResetController(router *gin.Engine, deps Deps) {
	router.POST("/auth/password-reset", deps.accountRoute(func(c *gin.Context) {
		SendPasswordReset(c, deps)
	})...)
}

func SendPasswordReset(c *gin.Context, deps Deps) {
	var request dto.ResetPasswordRequest
	if !controller.BindJSON(c, &request) {
		return
	}

	err := deps.Accounts.SendPasswordReset(c.Request.Context(), request.Email)
	if err != nil {
		var perr *services.ProviderError
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			controller.Notify(c, http.StatusNotFound, "Reset Failed", "No account found with this email address.", nil)
		case errors.As(err, &perr):
			controller.Notify(c, http.StatusBadRequest, "Reset Failed", providerMessage(err), nil)
		default:
			internalError(c, deps.Log, "Reset Failed", err)
		}
		return
	}

	controller.Notify(c, http.StatusOK, "Password Reset Email Sent", "Check your inbox for a link to reset your password.", gin.H{
		"closeDialog": true,
	})
}
