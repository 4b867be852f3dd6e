package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"storefront/config"
	"storefront/dto"
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

func setup(t *testing.T) (*gin.Engine, *services.AccountService, *services.MemoryProfileStore) {
	t.Helper()
	profiles := services.NewMemoryProfileStore(nil)
	tokens := services.NewTokenService(config.JWTConfig{
		Secret:        "access",
		RefreshSecret: "refresh",
		Issuer:        "test",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	accounts := services.NewAccountService(services.NewLocalIdentity(nil, ""), profiles, services.NewMemorySessionStore(), tokens, zerolog.Nop())
	router := gin.New()
	AccountController(router, accounts, zerolog.Nop())
	return router, accounts, profiles
}

func getAccount(t *testing.T, router *gin.Engine, token string) dto.AccountSummary {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary dto.AccountSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	return summary
}

func TestAccountWithoutSession(t *testing.T) {
	router, _, _ := setup(t)

	summary := getAccount(t, router, "")
	assert.False(t, summary.Authenticated)
	assert.Nil(t, summary.Profile)

	summary = getAccount(t, router, "garbage")
	assert.False(t, summary.Authenticated)
}

func TestAccountShowsStoredProfile(t *testing.T) {
	router, accounts, profiles := setup(t)
	ctx := context.Background()
	result, err := accounts.Signup(ctx, services.SignupInput{Name: "Ada", Email: "ada@example.com", Phone: "0812345678", Password: "secret1"})
	require.NoError(t, err)

	profile, err := profiles.Get(ctx, result.Session.UID)
	require.NoError(t, err)
	profile.Role = model.RoleAdmin
	profiles.Put(*profile)

	summary := getAccount(t, router, result.Tokens.AccessToken)
	assert.True(t, summary.Authenticated)
	require.NotNil(t, summary.Profile)
	assert.Equal(t, "Ada", summary.Profile.Name)
	assert.Equal(t, model.RoleAdmin, summary.Profile.Role)

	require.NoError(t, accounts.Logout(ctx, result.Session))
	summary = getAccount(t, router, result.Tokens.AccessToken)
	assert.False(t, summary.Authenticated)
}
