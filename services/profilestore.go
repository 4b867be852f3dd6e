package services

import (
	"context"
	"fmt"
	"storefront/model"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// ProfileStore persists user profiles. CreateIfAbsent must be atomic: when a profile
// already exists for the uid it leaves every stored field untouched and reports false.
type ProfileStore interface {
	Get(ctx context.Context, uid string) (*model.UserProfile, error)
	CreateIfAbsent(ctx context.Context, profile model.UserProfile) (bool, error)
}

type FirestoreProfileStore struct {
	client *firestore.Client
}

func NewFirestoreProfileStore(client *firestore.Client) *FirestoreProfileStore {
	return &FirestoreProfileStore{client: client}
}

// Get returns ErrUserNotFound when no profile exists for uid.
func (s *FirestoreProfileStore) Get(ctx context.Context, uid string) (*model.UserProfile, error) {
	snap, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile %s: %w", uid, err)
	}

	var profile model.UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	profile.UID = snap.Ref.ID
	return &profile, nil
}

// CreateIfAbsent relies on DocumentRef.Create, which fails with AlreadyExists instead of
// overwriting, so the existence check and the write are a single server-side operation.
func (s *FirestoreProfileStore) CreateIfAbsent(ctx context.Context, profile model.UserProfile) (bool, error) {
	data := map[string]interface{}{
		"uid":       profile.UID,
		"email":     profile.Email,
		"name":      profile.Name,
		"phone":     profile.Phone,
		"role":      profile.Role,
		"createdAt": firestore.ServerTimestamp,
	}
	_, err := s.client.Collection(usersCollection).Doc(profile.UID).Create(ctx, data)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, fmt.Errorf("create profile %s: %w", profile.UID, err)
	}
	return true, nil
}

type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]model.UserProfile
	now      func() time.Time
}

func NewMemoryProfileStore(now func() time.Time) *MemoryProfileStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryProfileStore{profiles: map[string]model.UserProfile{}, now: now}
}

func (s *MemoryProfileStore) Get(ctx context.Context, uid string) (*model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &profile, nil
}

func (s *MemoryProfileStore) CreateIfAbsent(ctx context.Context, profile model.UserProfile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.UID]; exists {
		return false, nil
	}
	profile.CreatedAt = s.now()
	s.profiles[profile.UID] = profile
	return true, nil
}

// Put overwrites a profile unconditionally, the way an administrator edits roles.
func (s *MemoryProfileStore) Put(profile model.UserProfile) {
	s.mu.Lock()
	s.profiles[profile.UID] = profile
	s.mu.Unlock()
}
