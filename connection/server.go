package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"storefront/config"
	"storefront/controller/account"
	"storefront/controller/auth"
	"storefront/controller/banner"
	"storefront/controller/suggestion"
	"storefront/middleware"
	"storefront/services"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"google.golang.org/api/option"
)

const brandName = "Storefront"

// Deps is the assembled service graph behind the HTTP routes.
type Deps struct {
	Accounts    *services.AccountService
	Banners     services.BannerStore
	Images      *services.ImageService
	Suggestions *services.SuggestionService
	Captcha     services.CaptchaVerifier
	Guard       services.Guard

	closers []io.Closer
}

// Close releases every client opened by BuildDeps.
func (d *Deps) Close() error {
	var err error
	for i := len(d.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, d.closers[i].Close())
	}
	return err
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func BuildDeps(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *Deps, err error) {
	deps := &Deps{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, deps.Close())
		}
	}()

	tokens := services.NewTokenService(cfg.JWT)

	var mailer services.ResetMailer
	if cfg.SMTP.Enabled() {
		mailer = services.NewSMTPMailer(cfg.SMTP, brandName, log)
	}

	switch cfg.App.StoreDriver {
	case config.DriverFirestore:
		fb, err := FBConnection(ctx, cfg.Firebase, log)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, fb)

		identity := services.NewFirebaseIdentity(fb.Auth, fb.Toolkit, mailer, cfg.Firebase.ResetContinueURL)
		deps.Accounts = services.NewAccountService(identity,
			services.NewFirestoreProfileStore(fb.Firestore),
			services.NewFirestoreSessionStore(fb.Firestore),
			tokens, log)
		deps.Banners = services.NewFirestoreBannerStore(fb.Firestore)
	case config.DriverMemory:
		if mailer == nil {
			mailer = services.NewLogMailer(log)
		}
		identity := services.NewLocalIdentity(mailer, cfg.Firebase.ResetContinueURL)
		deps.Accounts = services.NewAccountService(identity,
			services.NewMemoryProfileStore(nil),
			services.NewMemorySessionStore(),
			tokens, log)
		deps.Banners = services.NewMemoryBannerStore(nil)
		log.Warn().Msg("using in-memory stores; data is lost on restart")
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.App.StoreDriver)
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		deps.closers = append(deps.closers, client)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		deps.Guard = services.NewRedisGuard(client, cfg.Limits.InFlightTTL)
	} else {
		deps.Guard = services.NewMemoryGuard(cfg.Limits.InFlightTTL)
	}

	if cfg.Storage.Bucket != "" {
		var opts []option.ClientOption
		if cfg.Firebase.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		deps.closers = append(deps.closers, client)
		store := services.NewGCSObjectStore(client, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
		deps.Images = services.NewImageService(store, cfg.Storage.MaxUploadMB<<20)
	}

	if cfg.Gemini.APIKey != "" {
		generator, err := services.NewGeminiGenerator(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		deps.Suggestions = services.NewSuggestionService(generator)
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; suggestions are disabled")
	}

	if cfg.Recaptcha.Enabled() {
		verifier, err := services.NewRecaptchaVerifier(ctx, cfg.Recaptcha, log)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, closerFunc(verifier.Close))
		deps.Captcha = verifier
	}

	return deps, nil
}

// NewRouter registers every route on a fresh engine.
func NewRouter(cfg *config.Config, deps *Deps, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogging(log), middleware.Recovery(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.App.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.App.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowHeaders("Authorization", middleware.FormIDHeader, middleware.RequestIDHeader)
	corsConfig.AddExposeHeaders(middleware.RequestIDHeader)
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	authDeps := auth.Deps{
		Accounts:               deps.Accounts,
		Captcha:                deps.Captcha,
		RequireCaptchaOnSignup: cfg.Recaptcha.RequireOnSignup,
		Guard:                  deps.Guard,
		Limiter:                middleware.NewRateLimiter(cfg.Limits.AuthRatePerMin, cfg.Limits.AuthBurst),
		Log:                    log,
	}
	auth.SignInController(router, authDeps)
	auth.SignUpController(router, authDeps)
	auth.FederatedSignInController(router, authDeps)
	auth.PasswordResetController(router, authDeps)
	auth.SessionController(router, authDeps)
	auth.CaptchaController(router, authDeps)

	account.AccountController(router, deps.Accounts, log)
	banner.BannerController(router, banner.Deps{
		Store:  deps.Banners,
		Images: deps.Images,
		Guard:  deps.Guard,
		Auth:   deps.Accounts,
		Log:    log,
	})
	suggestion.SuggestionController(router, deps.Suggestions, log)

	return router
}

// StartServer serves until SIGINT or SIGTERM, then drains in-flight requests.
func StartServer(cfg *config.Config, log zerolog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := BuildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, deps.Close())
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           NewRouter(cfg, deps, log),
		ReadHeaderTimeout: 10 * time.Second,
		// cancelled on shutdown so open banner streams end
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.App.StoreDriver).Msg("server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
