package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

type Config struct {
	App       AppConfig
	Firebase  FirebaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Gemini    GeminiConfig
	SMTP      SMTPConfig
	Recaptcha RecaptchaConfig
	Storage   StorageConfig
	Limits    LimitsConfig
}

type AppConfig struct {
	Env         string   `envconfig:"APP_ENV" default:"dev"`
	Port        string   `envconfig:"PORT" default:"8080"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string   `envconfig:"LOG_FORMAT" default:"json"`
	StoreDriver string   `envconfig:"STORE_DRIVER" default:"firestore"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

type FirebaseConfig struct {
	// path to the service account key
	CredentialsFile  string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_1"`
	ProjectID        string `envconfig:"FIREBASE_PROJECT_ID"`
	APIKey           string `envconfig:"FIREBASE_API_KEY"`
	ResetContinueURL string `envconfig:"PASSWORD_RESET_CONTINUE_URL"`
}

type JWTConfig struct {
	Secret        string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	RefreshSecret string        `envconfig:"JWT_REFRESH_SECRET_KEY" required:"true"`
	Issuer        string        `envconfig:"JWT_ISSUER" default:"storefront"`
	AccessTTL     time.Duration `envconfig:"JWT_ACCESS_TTL" default:"60m"`
	RefreshTTL    time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"GEMINI_API_KEY"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     string `envconfig:"SMTP_PORT"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
}

// Enabled reports whether every SMTP setting is present.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != ""
}

type RecaptchaConfig struct {
	ProjectID       string `envconfig:"GOOGLE_CLOUD_PROJECT_ID"`
	SiteKey         string `envconfig:"RECAPTCHA_SITE_KEY"`
	CredentialsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_2"`
	RequireOnSignup bool   `envconfig:"RECAPTCHA_REQUIRE_ON_SIGNUP" default:"false"`
}

func (r RecaptchaConfig) Enabled() bool {
	return r.ProjectID != "" && r.SiteKey != ""
}

type StorageConfig struct {
	Bucket        string `envconfig:"STORAGE_BUCKET"`
	PublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	MaxUploadMB   int64  `envconfig:"STORAGE_MAX_UPLOAD_MB" default:"5"`
}

type LimitsConfig struct {
	InFlightTTL    time.Duration `envconfig:"INFLIGHT_TTL" default:"30s"`
	AuthRatePerMin int           `envconfig:"AUTH_RATE_PER_MIN" default:"30"`
	AuthBurst      int           `envconfig:"AUTH_RATE_BURST" default:"10"`
}

// Load reads .env when present and decodes the environment into Config.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" || c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY must be set")
	}
	c.App.StoreDriver = strings.ToLower(strings.TrimSpace(c.App.StoreDriver))
	switch c.App.StoreDriver {
	case DriverFirestore:
		if c.Firebase.CredentialsFile == "" {
			return fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS_1 is not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.App.StoreDriver)
	}
	return nil
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}
