package services

import (
	"context"
	"fmt"
	"storefront/model"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const refreshTokensCollection = "refreshTokens"

// SessionStore holds the single live refresh-token record of each user.
type SessionStore interface {
	Save(ctx context.Context, record model.TokenResponse) error
	Get(ctx context.Context, uid string) (*model.TokenResponse, error)
	Delete(ctx context.Context, uid string) error
}

type FirestoreSessionStore struct {
	client *firestore.Client
}

func NewFirestoreSessionStore(client *firestore.Client) *FirestoreSessionStore {
	return &FirestoreSessionStore{client: client}
}

func (s *FirestoreSessionStore) Save(ctx context.Context, record model.TokenResponse) error {
	if _, err := s.client.Collection(refreshTokensCollection).Doc(record.UserID).Set(ctx, record); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Get returns ErrSessionExpired when no record exists.
func (s *FirestoreSessionStore) Get(ctx context.Context, uid string) (*model.TokenResponse, error) {
	snap, err := s.client.Collection(refreshTokensCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	var record model.TokenResponse
	if err := snap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("decode refresh token: %w", err)
	}
	return &record, nil
}

func (s *FirestoreSessionStore) Delete(ctx context.Context, uid string) error {
	if _, err := s.client.Collection(refreshTokensCollection).Doc(uid).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

type MemorySessionStore struct {
	mu      sync.RWMutex
	records map[string]model.TokenResponse
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{records: map[string]model.TokenResponse{}}
}

func (s *MemorySessionStore) Save(ctx context.Context, record model.TokenResponse) error {
	s.mu.Lock()
	s.records[record.UserID] = record
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, uid string) (*model.TokenResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[uid]
	if !ok {
		return nil, ErrSessionExpired
	}
	return &record, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, uid string) error {
	s.mu.Lock()
	delete(s.records, uid)
	s.mu.Unlock()
	return nil
}
