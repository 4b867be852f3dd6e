package auth

import (
	"errors"
	"net/http"
	"storefront/controller"
	"storefront/dto"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

func SignUpController(router *gin.Engine, deps Deps) {
	router.POST("/auth/signup", deps.accountRoute(func(c *gin.Context) {
		Signup(c, deps)
	})...)
}

func Signup(c *gin.Context, deps Deps) {
	var request dto.SignupRequest
	if !controller.BindJSON(c, &request) {
		return
	}

	if deps.RequireCaptchaOnSignup && deps.Captcha != nil {
		if request.CaptchaToken == "" {
			c.JSON(http.StatusBadRequest, dto.ValidationBody(map[string]string{"captchaToken": "Please complete the captcha"}))
			return
		}
		_, err := deps.Captcha.Assess(c.Request.Context(), services.CaptchaEvent{
			Token:     request.CaptchaToken,
			Action:    "signup",
			UserIP:    getClientIP(c),
			UserAgent: c.Request.UserAgent(),
		})
		if errors.Is(err, services.ErrCaptchaRejected) {
			controller.Notify(c, http.StatusBadRequest, "Signup Failed", "reCAPTCHA verification failed", nil)
			return
		}
		if err != nil {
			internalError(c, deps.Log, "Signup Failed", err)
			return
		}
	}

	result, err := deps.Accounts.Signup(c.Request.Context(), services.SignupInput{
		Name:     request.Name,
		Email:    request.Email,
		Phone:    request.Phone,
		Password: request.Password,
	})
	if err != nil {
		var perr *services.ProviderError
		switch {
		case errors.Is(err, services.ErrEmailInUse):
			controller.Notify(c, http.StatusConflict, "Signup Failed", "This email is already registered. Please log in instead.", nil)
		case errors.As(err, &perr):
			controller.Notify(c, http.StatusBadRequest, "Signup Failed", providerMessage(err), nil)
		default:
			internalError(c, deps.Log, "Signup Failed", err)
		}
		return
	}

	signedIn(c, http.StatusCreated, "Account created", result)
}
