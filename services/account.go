package services

import (
	"context"
	"errors"
	"fmt"
	"storefront/model"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// AccountService runs the account flow: credential checks are delegated to the
// identity provider, profiles to the profile store, and sessions are issued here.
type AccountService struct {
	identity IdentityProvider
	profiles ProfileStore
	sessions SessionStore
	tokens   *TokenService
	log      zerolog.Logger
	now      func() time.Time
}

func NewAccountService(identity IdentityProvider, profiles ProfileStore, sessions SessionStore, tokens *TokenService, log zerolog.Logger) *AccountService {
	return &AccountService{
		identity: identity,
		profiles: profiles,
		sessions: sessions,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

type SignInResult struct {
	Session model.Session
	Profile *model.UserProfile
	Tokens  model.TokenPair
}

type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Login never writes the profile; a missing profile just yields the default role.
func (s *AccountService) Login(ctx context.Context, email, password string) (*SignInResult, error) {
	ident, err := s.identity.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, ident.UID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	return s.issueSession(ctx, ident, profile)
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*SignInResult, error) {
	ident, err := s.identity.CreateAccount(ctx, strings.TrimSpace(in.Email), in.Password, strings.TrimSpace(in.Name))
	if err != nil {
		return nil, err
	}

	profile, err := s.ensureProfile(ctx, model.UserProfile{
		UID:   ident.UID,
		Email: ident.Email,
		Name:  strings.TrimSpace(in.Name),
		Phone: strings.TrimSpace(in.Phone),
		Role:  model.DefaultRole,
	})
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, ident, profile)
}

func (s *AccountService) FederatedSignIn(ctx context.Context, idToken string) (*SignInResult, error) {
	ident, err := s.identity.VerifyFederated(ctx, idToken)
	if err != nil {
		return nil, err
	}

	profile, err := s.ensureProfile(ctx, model.UserProfile{
		UID:   ident.UID,
		Email: ident.Email,
		Name:  ident.DisplayName,
		Role:  model.DefaultRole,
	})
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, ident, profile)
}

func (s *AccountService) SendPasswordReset(ctx context.Context, email string) error {
	return s.identity.SendPasswordReset(ctx, strings.TrimSpace(email))
}

// Logout revokes provider tokens and forgets the session record, which invalidates
// every access token issued for it. Both steps run even if the first fails.
func (s *AccountService) Logout(ctx context.Context, session model.Session) error {
	var err error
	if signOutErr := s.identity.SignOut(ctx, session.UID); signOutErr != nil && !errors.Is(signOutErr, ErrUnsupported) && !errors.Is(signOutErr, ErrUserNotFound) {
		err = multierr.Append(err, fmt.Errorf("provider sign-out: %w", signOutErr))
	}
	if deleteErr := s.sessions.Delete(ctx, session.UID); deleteErr != nil {
		err = multierr.Append(err, deleteErr)
	}
	return err
}

// Profile returns the stored profile of the session's user, or nil when none exists.
func (s *AccountService) Profile(ctx context.Context, session model.Session) (*model.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, session.UID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	return profile, err
}

// Authenticate resolves an access token into a live session.
func (s *AccountService) Authenticate(ctx context.Context, accessToken string) (model.Session, error) {
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return model.Session{}, err
	}

	record, err := s.sessions.Get(ctx, claims.UserID)
	if err != nil {
		return model.Session{}, err
	}
	if record.Revoked || record.TokenID != claims.TokenID {
		return model.Session{}, ErrSessionExpired
	}
	return model.Session{UID: claims.UserID, Email: claims.Email, Role: claims.Role, TokenID: claims.TokenID}, nil
}

// Refresh issues a new access token for a still-valid refresh token. The role is
// re-read so administrative role changes apply without a new sign-in.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	record, err := s.sessions.Get(ctx, claims.UserID)
	if err != nil {
		return model.TokenPair{}, err
	}
	if record.Revoked || record.TokenID != claims.TokenID || !CompareRefreshToken(record.RefreshToken, refreshToken) {
		return model.TokenPair{}, ErrSessionExpired
	}

	session := model.Session{UID: claims.UserID, Role: model.DefaultRole, TokenID: claims.TokenID}
	profile, err := s.profiles.Get(ctx, claims.UserID)
	switch {
	case err == nil:
		session.Email = profile.Email
		session.Role = roleOf(profile)
	case !errors.Is(err, ErrUserNotFound):
		return model.TokenPair{}, err
	}

	accessToken, err := s.tokens.CreateAccessToken(session)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("create access token: %w", err)
	}
	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    record.ExpiresIn,
	}, nil
}

// ensureProfile performs the conditional profile write and returns the stored profile,
// which keeps any role assigned before this sign-in.
func (s *AccountService) ensureProfile(ctx context.Context, profile model.UserProfile) (*model.UserProfile, error) {
	created, err := s.profiles.CreateIfAbsent(ctx, profile)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info().Str("uid", profile.UID).Msg("profile created")
	}

	stored, err := s.profiles.Get(ctx, profile.UID)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *AccountService) issueSession(ctx context.Context, ident Identity, profile *model.UserProfile) (*SignInResult, error) {
	session := model.Session{
		UID:     ident.UID,
		Email:   ident.Email,
		Role:    roleOf(profile),
		TokenID: NewTokenID(),
	}

	accessToken, err := s.tokens.CreateAccessToken(session)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}
	refreshToken, err := s.tokens.CreateRefreshToken(session.UID, session.TokenID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}
	hashedRefreshToken, err := HashRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}

	now := s.now()
	expiresIn := int64(s.tokens.RefreshTTL().Seconds())
	record := model.TokenResponse{
		UserID:       session.UID,
		TokenID:      session.TokenID,
		RefreshToken: hashedRefreshToken,
		CreatedAt:    now.Unix(),
		Revoked:      false,
		ExpiresIn:    expiresIn,
	}
	if err := s.sessions.Save(ctx, record); err != nil {
		return nil, err
	}

	return &SignInResult{
		Session: session,
		Profile: profile,
		Tokens: model.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    expiresIn,
		},
	}, nil
}

func roleOf(profile *model.UserProfile) string {
	if profile == nil || profile.Role == "" {
		return model.DefaultRole
	}
	return profile.Role
}
