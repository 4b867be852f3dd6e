package middleware

import (
	"context"
	"net/http"
	"storefront/model"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	SessionKey      = "session"
	RefreshTokenKey = "refreshToken"
)

// Authenticator resolves a bearer access token into a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.Session, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.Request.Header.Get("Authorization"))
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func AccessTokenMiddleware(auth Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Header.Get("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			log.Debug().Err(err).Str("request_id", RequestID(c)).Msg("access token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is expired or invalid"})
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// AdminMiddleware must run after AccessTokenMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session not found"})
			return
		}
		if !session.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// RefreshTokenMiddleware only extracts the bearer token; the account service
// verifies it against the stored session record.
func RefreshTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Header.Get("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is missing"})
			return
		}
		refreshToken, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}
		c.Set(RefreshTokenKey, refreshToken)
		c.Next()
	}
}

func CurrentSession(c *gin.Context) (model.Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return model.Session{}, false
	}
	session, ok := v.(model.Session)
	return session, ok
}

// OptionalAccessTokenMiddleware sets the session when a valid bearer token is sent
// and lets the request through either way.
func OptionalAccessTokenMiddleware(auth Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			session, err := auth.Authenticate(c.Request.Context(), tokenString)
			if err == nil {
				c.Set(SessionKey, session)
			} else {
				log.Debug().Err(err).Str("request_id", RequestID(c)).Msg("ignoring invalid access token")
			}
		}
		c.Next()
	}
}
