package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh-secret")
}

func TestLoadMemoryDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "Memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.App.StoreDriver)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Recaptcha.Enabled())
}

func TestLoadFirestoreNeedsCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "firestore")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_1", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_APPLICATION_CREDENTIALS_1")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresJWTSecrets(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestSMTPEnabled(t *testing.T) {
	cfg := SMTPConfig{Host: "smtp.example.com", Port: "587", Username: "u", Password: "p"}
	assert.True(t, cfg.Enabled())
	cfg.Password = ""
	assert.False(t, cfg.Enabled())
}
