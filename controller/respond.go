package controller

import (
	"net/http"
	"storefront/dto"

	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into obj and runs its binding rules. On failure it
// answers 400 with field errors keyed by json name and returns false.
func BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	errs := dto.FieldErrors(obj, err)
	if errs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return false
	}
	c.JSON(http.StatusBadRequest, dto.ValidationBody(errs))
	return false
}

// Notify answers with a notification plus any extra keys.
func Notify(c *gin.Context, status int, title, description string, extra gin.H) {
	body := dto.NotificationBody(title, description)
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
