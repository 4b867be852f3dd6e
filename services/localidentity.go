package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ResetMailer delivers a password reset link to a user.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

type localAccount struct {
	uid          string
	email        string
	displayName  string
	passwordHash []byte
}

// LocalIdentity keeps bcrypt-hashed credentials in memory. It backs the memory store
// driver and tests; federated sign-in is not available.
type LocalIdentity struct {
	mu       sync.RWMutex
	accounts map[string]*localAccount // keyed by lower-cased email
	revoked  map[string]int

	mailer  ResetMailer
	linkURL string
}

func NewLocalIdentity(mailer ResetMailer, resetURL string) *LocalIdentity {
	return &LocalIdentity{
		accounts: map[string]*localAccount{},
		revoked:  map[string]int{},
		mailer:   mailer,
		linkURL:  resetURL,
	}
}

func (l *LocalIdentity) CreateAccount(ctx context.Context, email, password, displayName string) (Identity, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.accounts[key]; exists {
		return Identity{}, ErrEmailInUse
	}
	acct := &localAccount{
		uid:          uuid.New().String(),
		email:        strings.TrimSpace(email),
		displayName:  displayName,
		passwordHash: hashedPassword,
	}
	l.accounts[key] = acct
	return acct.identity(), nil
}

func (l *LocalIdentity) SignIn(ctx context.Context, email, password string) (Identity, error) {
	l.mu.RLock()
	acct, ok := l.accounts[strings.ToLower(strings.TrimSpace(email))]
	l.mu.RUnlock()
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return acct.identity(), nil
}

func (l *LocalIdentity) VerifyFederated(ctx context.Context, idToken string) (Identity, error) {
	return Identity{}, &ProviderError{Code: "operation-not-allowed", Message: "Federated sign-in is not enabled.", Err: ErrUnsupported}
}

func (l *LocalIdentity) SendPasswordReset(ctx context.Context, email string) error {
	l.mu.RLock()
	acct, ok := l.accounts[strings.ToLower(strings.TrimSpace(email))]
	l.mu.RUnlock()
	if !ok {
		return ErrUserNotFound
	}
	if l.mailer == nil {
		return nil
	}
	link := l.linkURL + "?uid=" + acct.uid
	return l.mailer.SendPasswordReset(ctx, acct.email, link)
}

func (l *LocalIdentity) SignOut(ctx context.Context, uid string) error {
	l.mu.Lock()
	l.revoked[uid]++
	l.mu.Unlock()
	return nil
}

// Revocations returns how many times uid has been signed out.
func (l *LocalIdentity) Revocations(uid string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revoked[uid]
}

func (a *localAccount) identity() Identity {
	return Identity{UID: a.uid, Email: a.email, DisplayName: a.displayName}
}
