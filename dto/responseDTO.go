package dto

import "github.com/gin-gonic/gin"

// Notification is the toast shown to the user after an operation settles.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// NotificationBody starts a response body carrying a notification; handlers add
// their own keys to it.
func NotificationBody(title, description string) gin.H {
	return gin.H{"notification": Notification{Title: title, Description: description}}
}

// ValidationBody reports field errors keyed by json field name.
func ValidationBody(errs map[string]string) gin.H {
	return gin.H{"errors": errs}
}
