package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
)

// FirebaseIdentity talks to Firebase Authentication. Account management and token
// verification go through the Admin SDK; password sign-in and provider-sent reset
// emails go through the Identity Toolkit REST API, which the Admin SDK does not expose.
type FirebaseIdentity struct {
	auth        *auth.Client
	toolkit     *identitytoolkit.Service
	mailer      ResetMailer
	continueURL string
}

func NewFirebaseIdentity(authClient *auth.Client, toolkit *identitytoolkit.Service, mailer ResetMailer, continueURL string) *FirebaseIdentity {
	return &FirebaseIdentity{auth: authClient, toolkit: toolkit, mailer: mailer, continueURL: continueURL}
}

func (f *FirebaseIdentity) CreateAccount(ctx context.Context, email, password, displayName string) (Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	record, err := f.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return Identity{}, ErrEmailInUse
		}
		return Identity{}, &ProviderError{Code: "create-failed", Message: err.Error(), Err: err}
	}
	return Identity{UID: record.UID, Email: record.Email, DisplayName: record.DisplayName}, nil
}

func (f *FirebaseIdentity) SignIn(ctx context.Context, email, password string) (Identity, error) {
	if f.toolkit == nil {
		return Identity{}, &ProviderError{Code: "operation-not-allowed", Message: "Password sign-in is not configured.", Err: ErrUnsupported}
	}
	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return Identity{}, mapToolkitError(err)
	}
	return Identity{UID: resp.LocalId, Email: resp.Email, DisplayName: resp.DisplayName}, nil
}

func (f *FirebaseIdentity) VerifyFederated(ctx context.Context, idToken string) (Identity, error) {
	token, err := f.auth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return Identity{}, &ProviderError{Code: "invalid-id-token", Message: err.Error(), Err: err}
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if email == "" {
		return Identity{}, &ProviderError{Code: "missing-email", Message: "The provider did not return an email address."}
	}
	return Identity{UID: token.UID, Email: email, DisplayName: name}, nil
}

func (f *FirebaseIdentity) SendPasswordReset(ctx context.Context, email string) error {
	if f.mailer != nil {
		return f.sendResetLink(ctx, email)
	}
	if f.toolkit == nil {
		return &ProviderError{Code: "operation-not-allowed", Message: "Password reset is not configured.", Err: ErrUnsupported}
	}

	_, err := f.toolkit.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return mapToolkitError(err)
	}
	return nil
}

func (f *FirebaseIdentity) sendResetLink(ctx context.Context, email string) error {
	var (
		link string
		err  error
	)
	if f.continueURL != "" {
		link, err = f.auth.PasswordResetLinkWithSettings(ctx, email, &auth.ActionCodeSettings{URL: f.continueURL})
	} else {
		link, err = f.auth.PasswordResetLink(ctx, email)
	}
	if err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return &ProviderError{Code: "reset-failed", Message: err.Error(), Err: err}
	}
	if err := f.mailer.SendPasswordReset(ctx, email, link); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (f *FirebaseIdentity) SignOut(ctx context.Context, uid string) error {
	if err := f.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return &ProviderError{Code: "revoke-failed", Message: err.Error(), Err: err}
	}
	return nil
}

// mapToolkitError translates Identity Toolkit error messages such as
// "EMAIL_NOT_FOUND" or "INVALID_PASSWORD : ..." onto the service's sentinel errors.
func mapToolkitError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return &ProviderError{Code: "network-request-failed", Message: err.Error(), Err: err}
	}

	code := strings.TrimSpace(strings.SplitN(apiErr.Message, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND":
		return ErrUserNotFound
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrEmailInUse
	}
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Error()
	}
	return &ProviderError{Code: strings.ToLower(strings.ReplaceAll(code, "_", "-")), Message: msg, Err: err}
}
