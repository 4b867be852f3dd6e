package account

import (
	"net/http"
	"storefront/controller"
	"storefront/dto"
	"storefront/middleware"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func AccountController(router *gin.Engine, accounts *services.AccountService, log zerolog.Logger) {
	router.GET("/account", middleware.OptionalAccessTokenMiddleware(accounts, log), func(c *gin.Context) {
		GetAccount(c, accounts, log)
	})
}

// GetAccount reports whether a session exists and, if so, the stored profile.
func GetAccount(c *gin.Context, accounts *services.AccountService, log zerolog.Logger) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusOK, dto.AccountSummary{Authenticated: false})
		return
	}

	profile, err := accounts.Profile(c.Request.Context(), session)
	if err != nil {
		log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Msg("load profile")
		controller.Notify(c, http.StatusInternalServerError, "Error", err.Error(), nil)
		return
	}

	summary := dto.AccountSummary{Authenticated: true}
	if profile != nil {
		p := dto.NewUserResponse(*profile)
		summary.Profile = &p
	} else {
		summary.Profile = &dto.UserResponse{UserID: session.UID, Email: session.Email, Role: session.Role}
	}
	c.JSON(http.StatusOK, summary)
}
