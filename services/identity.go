package services

import "context"

// Identity is what the identity provider knows about an authenticated user.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// IdentityProvider is the external authentication service. Implementations map their own
// error codes onto ErrEmailInUse, ErrUserNotFound and ErrInvalidCredentials and return
// every other failure with the provider's message.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	VerifyFederated(ctx context.Context, idToken string) (Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context, uid string) error
}
