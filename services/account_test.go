package services

import (
	"context"
	"errors"
	"storefront/config"
	"storefront/model"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	to   []string
	link []string
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	m.to = append(m.to, email)
	m.link = append(m.link, link)
	return nil
}

// federatedIdentity answers VerifyFederated with a fixed result.
type federatedIdentity struct {
	*LocalIdentity
	ident Identity
	err   error
}

func (f *federatedIdentity) VerifyFederated(ctx context.Context, idToken string) (Identity, error) {
	return f.ident, f.err
}

type accountFixture struct {
	svc      *AccountService
	identity *LocalIdentity
	profiles *MemoryProfileStore
	sessions *MemorySessionStore
	mailer   *recordingMailer
}

func testTokens() *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "storefront-test",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	mailer := &recordingMailer{}
	f := &accountFixture{
		identity: NewLocalIdentity(mailer, "https://shop.test/reset"),
		profiles: NewMemoryProfileStore(nil),
		sessions: NewMemorySessionStore(),
		mailer:   mailer,
	}
	f.svc = NewAccountService(f.identity, f.profiles, f.sessions, testTokens(), zerolog.Nop())
	return f
}

func signup(t *testing.T, f *accountFixture, email string) *SignInResult {
	t.Helper()
	result, err := f.svc.Signup(context.Background(), SignupInput{
		Name:     "Ada Lovelace",
		Email:    email,
		Phone:    "0812345678",
		Password: "secret1",
	})
	require.NoError(t, err)
	return result
}

func TestSignupCreatesProfileWithDefaultRole(t *testing.T) {
	f := newAccountFixture(t)
	result := signup(t, f, "ada@example.com")

	require.NotNil(t, result.Profile)
	assert.Equal(t, model.DefaultRole, result.Profile.Role)
	assert.Equal(t, "Ada Lovelace", result.Profile.Name)
	assert.Equal(t, "0812345678", result.Profile.Phone)
	assert.Equal(t, model.DefaultRole, result.Session.Role)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	record, err := f.sessions.Get(context.Background(), result.Session.UID)
	require.NoError(t, err)
	assert.Equal(t, result.Session.TokenID, record.TokenID)
	assert.NotEqual(t, result.Tokens.RefreshToken, record.RefreshToken)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newAccountFixture(t)
	signup(t, f, "ada@example.com")

	_, err := f.svc.Signup(context.Background(), SignupInput{Name: "Ada", Email: "ADA@example.com", Phone: "0812345678", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestLoginKeepsAssignedRole(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	created := signup(t, f, "ada@example.com")

	profile, err := f.profiles.Get(ctx, created.Session.UID)
	require.NoError(t, err)
	profile.Role = model.RoleAdmin
	f.profiles.Put(*profile)

	result, err := f.svc.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, result.Session.Role)

	stored, err := f.profiles.Get(ctx, created.Session.UID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)
}

func TestLoginWithoutProfileDoesNotCreateOne(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	ident, err := f.identity.CreateAccount(ctx, "bob@example.com", "secret1", "Bob")
	require.NoError(t, err)

	result, err := f.svc.Login(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, result.Profile)
	assert.Equal(t, model.DefaultRole, result.Session.Role)

	_, err = f.profiles.Get(ctx, ident.UID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAccountFixture(t)
	signup(t, f, "ada@example.com")

	_, err := f.svc.Login(context.Background(), "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFederatedSignInCreatesProfileOnce(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	provider := &federatedIdentity{
		LocalIdentity: f.identity,
		ident:         Identity{UID: "google-uid", Email: "grace@example.com", DisplayName: "Grace Hopper"},
	}
	svc := NewAccountService(provider, f.profiles, f.sessions, testTokens(), zerolog.Nop())

	first, err := svc.FederatedSignIn(ctx, "id-token")
	require.NoError(t, err)
	require.NotNil(t, first.Profile)
	assert.Equal(t, "Grace Hopper", first.Profile.Name)
	assert.Equal(t, model.DefaultRole, first.Profile.Role)

	f.profiles.Put(model.UserProfile{UID: "google-uid", Email: "grace@example.com", Name: "Grace Hopper", Role: model.RoleAdmin})

	second, err := svc.FederatedSignIn(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, second.Profile.Role)
	assert.Equal(t, model.RoleAdmin, second.Session.Role)
}

func TestFederatedSignInProviderError(t *testing.T) {
	f := newAccountFixture(t)

	_, err := f.svc.FederatedSignIn(context.Background(), "id-token")
	require.Error(t, err)
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "operation-not-allowed", perr.Code)
}

func TestSendPasswordReset(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	created := signup(t, f, "ada@example.com")

	require.NoError(t, f.svc.SendPasswordReset(ctx, " ada@example.com "))
	require.Len(t, f.mailer.to, 1)
	assert.Equal(t, "ada@example.com", f.mailer.to[0])
	assert.Equal(t, "https://shop.test/reset?uid="+created.Session.UID, f.mailer.link[0])

	assert.ErrorIs(t, f.svc.SendPasswordReset(ctx, "nobody@example.com"), ErrUserNotFound)
	assert.Len(t, f.mailer.to, 1)
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	created := signup(t, f, "ada@example.com")

	session, err := f.svc.Authenticate(ctx, created.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.Session, session)

	require.NoError(t, f.svc.Logout(ctx, session))
	assert.Equal(t, 1, f.identity.Revocations(session.UID))

	_, err = f.svc.Authenticate(ctx, created.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestNewSignInSupersedesOldSession(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	first := signup(t, f, "ada@example.com")

	_, err := f.svc.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, first.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	created := signup(t, f, "ada@example.com")

	profile, err := f.profiles.Get(ctx, created.Session.UID)
	require.NoError(t, err)
	profile.Role = model.RoleAdmin
	f.profiles.Put(*profile)

	pair, err := f.svc.Refresh(ctx, created.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, created.Tokens.RefreshToken, pair.RefreshToken)

	session, err := f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, session.IsAdmin())
}

func TestRefreshAfterLogout(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	created := signup(t, f, "ada@example.com")

	require.NoError(t, f.svc.Logout(ctx, created.Session))

	_, err := f.svc.Refresh(ctx, created.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newAccountFixture(t)
	created := signup(t, f, "ada@example.com")

	_, err := f.svc.Refresh(context.Background(), created.Tokens.AccessToken)
	assert.Error(t, err)
}

func TestProfileMissingIsNil(t *testing.T) {
	f := newAccountFixture(t)

	profile, err := f.svc.Profile(context.Background(), model.Session{UID: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, profile)
}
