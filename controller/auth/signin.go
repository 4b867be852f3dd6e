package auth

import (
	"net/http"
	"storefront/controller"
	"storefront/dto"
	"storefront/middleware"

	"github.com/gin-gonic/gin"
)

func SignInController(router *gin.Engine, deps Deps) {
	router.POST("/auth/login", deps.accountRoute(func(c *gin.Context) {
		Signin(c, deps)
	})...)
}

// Signin never reveals whether the email exists: every failure gets the same message.
func Signin(c *gin.Context, deps Deps) {
	var request dto.SigninRequest
	if !controller.BindJSON(c, &request) {
		return
	}

	result, err := deps.Accounts.Login(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		deps.Log.Info().Err(err).Str("request_id", middleware.RequestID(c)).Msg("login failed")
		controller.Notify(c, http.StatusUnauthorized, "Login Failed", "Invalid email or password.", nil)
		return
	}

	signedIn(c, http.StatusOK, "Welcome back", result)
}
