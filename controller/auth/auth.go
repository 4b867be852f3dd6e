package auth

import (
	"errors"
	"net/http"
	"storefront/controller"
	"storefront/dto"
	"storefront/middleware"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Deps are the collaborators of the account endpoints.
type Deps struct {
	Accounts *services.AccountService
	// Captcha is nil when reCAPTCHA is not configured.
	Captcha                services.CaptchaVerifier
	RequireCaptchaOnSignup bool
	Guard                  services.Guard
	Limiter                *middleware.RateLimiter
	Log                    zerolog.Logger
}

// accountRoute wraps h with the rate limiter and the form's shared in-flight slot.
func (d Deps) accountRoute(h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, 3)
	if d.Limiter != nil {
		chain = append(chain, d.Limiter.Middleware())
	}
	chain = append(chain, middleware.InFlight(d.Guard, middleware.AccountSlot, d.Log), h)
	return chain
}

func signedIn(c *gin.Context, status int, title string, result *services.SignInResult) {
	var profile *dto.UserResponse
	if result.Profile != nil {
		p := dto.NewUserResponse(*result.Profile)
		profile = &p
	}
	controller.Notify(c, status, title, "", gin.H{
		"redirect": "/",
		"token": gin.H{
			"accessToken":  result.Tokens.AccessToken,
			"refreshToken": result.Tokens.RefreshToken,
			"expiresIn":    result.Tokens.ExpiresIn,
		},
		"profile": profile,
	})
}

// providerMessage is the message surfaced for failures without a curated text.
func providerMessage(err error) string {
	var perr *services.ProviderError
	if errors.As(err, &perr) {
		return perr.Error()
	}
	return err.Error()
}

func internalError(c *gin.Context, log zerolog.Logger, title string, err error) {
	log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Msg(title)
	controller.Notify(c, http.StatusInternalServerError, title, err.Error(), nil)
}
