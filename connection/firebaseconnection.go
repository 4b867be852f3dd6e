package connection

import (
	"context"
	"fmt"
	"storefront/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"github.com/rs/zerolog"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// FirebaseClients are the Firebase services the backend talks to. Toolkit is nil
// when no web API key is configured.
type FirebaseClients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
	Toolkit   *identitytoolkit.Service
}

func FBConnection(ctx context.Context, cfg config.FirebaseConfig, log zerolog.Logger) (*FirebaseClients, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS_1 is not set")
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, appConfig, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error getting Auth client: %w", err)
	}

	clients := &FirebaseClients{Firestore: client, Auth: authClient}
	if cfg.APIKey != "" {
		toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("error creating Identity Toolkit client: %w", err)
		}
		clients.Toolkit = toolkit
	} else {
		log.Warn().Msg("FIREBASE_API_KEY not set; password sign-in and provider reset emails are disabled")
	}

	log.Info().Msg("Firestore connection successful")
	return clients, nil
}

func (f *FirebaseClients) Close() error {
	return f.Firestore.Close()
}
