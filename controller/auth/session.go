package auth

import (
	"net/http"
	"storefront/controller"
	"storefront/middleware"

	"github.com/gin-gonic/gin"
)

func SessionController(router *gin.Engine, deps Deps) {
	routes := router.Group("/auth")
	{
		routes.POST("/logout", middleware.AccessTokenMiddleware(deps.Accounts, deps.Log), func(c *gin.Context) {
			Logout(c, deps)
		})
		routes.POST("/refresh", middleware.RefreshTokenMiddleware(), func(c *gin.Context) {
			RefreshToken(c, deps)
		})
	}
}

func Logout(c *gin.Context, deps Deps) {
	session, _ := middleware.CurrentSession(c)
	if err := deps.Accounts.Logout(c.Request.Context(), session); err != nil {
		internalError(c, deps.Log, "Logout Failed", err)
		return
	}
	controller.Notify(c, http.StatusOK, "Logged out", "", gin.H{"redirect": "/"})
}

func RefreshToken(c *gin.Context, deps Deps) {
	pair, err := deps.Accounts.Refresh(c.Request.Context(), c.GetString(middleware.RefreshTokenKey))
	if err != nil {
		deps.Log.Debug().Err(err).Str("request_id", middleware.RequestID(c)).Msg("refresh rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed",
		"token": gin.H{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
			"expiresIn":    pair.ExpiresIn,
		},
	})
}
