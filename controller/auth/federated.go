package auth

import (
	"errors"
	"net/http"
	"storefront/controller"
	"storefront/dto"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

func FederatedSignInController(router *gin.Engine, deps Deps) {
	router.POST("/auth/federated", deps.accountRoute(func(c *gin.Context) {
		FederatedSignIn(c, deps)
	})...)
}

// FederatedSignIn accepts the ID token obtained by the client's provider popup.
func FederatedSignIn(c *gin.Context, deps Deps) {
	var request dto.FederatedSignInRequest
	if !controller.BindJSON(c, &request) {
		return
	}

	result, err := deps.Accounts.FederatedSignIn(c.Request.Context(), request.IDToken)
	if err != nil {
		var perr *services.ProviderError
		if errors.As(err, &perr) {
			controller.Notify(c, http.StatusUnauthorized, "Sign-in Failed", providerMessage(err), nil)
			return
		}
		internalError(c, deps.Log, "Sign-in Failed", err)
		return
	}

	signedIn(c, http.StatusOK, "Welcome", result)
}
