package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"storefront/model"
	"storefront/services"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator map[string]model.Session

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (model.Session, error) {
	session, ok := s[token]
	if !ok {
		return model.Session{}, services.ErrSessionExpired
	}
	return session, nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authRouter() *gin.Engine {
	auth := stubAuthenticator{
		"user-token":  {UID: "u1", Role: model.DefaultRole},
		"admin-token": {UID: "a1", Role: model.RoleAdmin},
	}
	r := gin.New()
	r.GET("/me", AccessTokenMiddleware(auth, zerolog.Nop()), func(c *gin.Context) {
		session, _ := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"uid": session.UID})
	})
	r.GET("/admin", AccessTokenMiddleware(auth, zerolog.Nop()), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAccessTokenMiddleware(t *testing.T) {
	r := authRouter()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token user-token")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u1"}`, w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	r := authRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestRefreshTokenMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/refresh", RefreshTokenMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RefreshTokenKey))
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodPost, "/refresh", nil)).Code)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc.def", w.Body.String())
}

func TestInFlightRejectsSecondSubmit(t *testing.T) {
	guard := services.NewMemoryGuard(time.Minute)
	entered := make(chan struct{})
	unblock := make(chan struct{})

	r := gin.New()
	r.POST("/slow", InFlight(guard, AccountSlot, zerolog.Nop()), func(c *gin.Context) {
		close(entered)
		<-unblock
		c.Status(http.StatusOK)
	})
	r.POST("/fast", InFlight(guard, AccountSlot, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/slow", nil)
		req.Header.Set(FormIDHeader, "form-1")
		first <- serve(r, req).Code
	}()
	<-entered

	req := httptest.NewRequest(http.MethodPost, "/fast", nil)
	req.Header.Set(FormIDHeader, "form-1")
	w := serve(r, req)
	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Notification struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Please wait", body.Notification.Title)

	other := httptest.NewRequest(http.MethodPost, "/fast", nil)
	other.Header.Set(FormIDHeader, "form-2")
	assert.Equal(t, http.StatusOK, serve(r, other).Code)

	close(unblock)
	assert.Equal(t, http.StatusOK, <-first)

	again := httptest.NewRequest(http.MethodPost, "/fast", nil)
	again.Header.Set(FormIDHeader, "form-1")
	assert.Equal(t, http.StatusOK, serve(r, again).Code)
}

type brokenGuard struct{}

func (brokenGuard) Acquire(ctx context.Context, key string) (func(), error) {
	return nil, errors.New("redis: connection refused")
}

func TestInFlightGuardFailure(t *testing.T) {
	r := gin.New()
	r.POST("/x", InFlight(brokenGuard{}, AccountSlot, zerolog.Nop()), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)).Code)
}

func TestBannerSlotsArePerRow(t *testing.T) {
	r := gin.New()
	var slots []string
	r.PUT("/banners/:id", func(c *gin.Context) {
		slots = append(slots, BannerEditSlot(c), BannerDeleteSlot(c))
	})
	serve(r, httptest.NewRequest(http.MethodPut, "/banners/b1", nil))
	serve(r, httptest.NewRequest(http.MethodPut, "/banners/b2", nil))
	assert.Equal(t, []string{"banner:edit:b1", "banner:delete:b1", "banner:edit:b2", "banner:delete:b2"}, slots)
}

func TestFormSlotsSameClientAddress(t *testing.T) {
	r := gin.New()
	var slots []string
	r.POST("/x", func(c *gin.Context) {
		slots = append(slots, AccountSlot(c), BannerCreateSlot(c))
	})
	for _, formID := range []string{"tab-1", "tab-2", ""} {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		if formID != "" {
			req.Header.Set(FormIDHeader, formID)
		}
		serve(r, req)
	}
	assert.Equal(t, []string{
		"account:tab-1", "banner:create:tab-1",
		"account:tab-2", "banner:create:tab-2",
		"account:203.0.113.7", "banner:create:203.0.113.7",
	}, slots)
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(60, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestRequestLoggingSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging(zerolog.Nop()), Recovery(zerolog.Nop()))
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := serve(r, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
