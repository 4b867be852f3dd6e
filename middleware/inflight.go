package middleware

import (
	"errors"
	"net/http"
	"storefront/dto"
	"storefront/services"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// FormIDHeader identifies one rendered form instance on the client.
const FormIDHeader = "X-Form-ID"

// FormKey names the submitting form, falling back to the client address.
func FormKey(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(FormIDHeader)); id != "" {
		return id
	}
	return c.ClientIP()
}

// AccountSlot is shared by every account operation of a form.
func AccountSlot(c *gin.Context) string {
	return "account:" + FormKey(c)
}

func BannerCreateSlot(c *gin.Context) string {
	return "banner:create:" + FormKey(c)
}

func BannerEditSlot(c *gin.Context) string {
	return "banner:edit:" + c.Param("id")
}

func BannerDeleteSlot(c *gin.Context) string {
	return "banner:delete:" + c.Param("id")
}

// InFlight rejects a request while an earlier one holding the same slot is still
// running. The slot is released when the handler returns, whatever the outcome.
func InFlight(guard services.Guard, slot func(*gin.Context) string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		release, err := guard.Acquire(c.Request.Context(), slot(c))
		if err != nil {
			if errors.Is(err, services.ErrInFlight) {
				c.AbortWithStatusJSON(http.StatusConflict, dto.NotificationBody("Please wait", "Another request from this form is still in progress."))
				return
			}
			log.Error().Err(err).Str("request_id", RequestID(c)).Msg("in-flight guard unavailable")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NotificationBody("Error", "Please try again."))
			return
		}
		defer release()
		c.Next()
	}
}
