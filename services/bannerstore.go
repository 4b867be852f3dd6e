package services

import (
	"context"
	"fmt"
	"storefront/model"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const bannersCollection = "banners"

type FirestoreBannerStore struct {
	client *firestore.Client
}

func NewFirestoreBannerStore(client *firestore.Client) *FirestoreBannerStore {
	return &FirestoreBannerStore{client: client}
}

func (s *FirestoreBannerStore) query() firestore.Query {
	return s.client.Collection(bannersCollection).
		OrderBy("sortOrder", firestore.Asc).
		OrderBy("createdAt", firestore.Desc)
}

func (s *FirestoreBannerStore) List(ctx context.Context) ([]model.Banner, error) {
	iter := s.query().Documents(ctx)
	defer iter.Stop()

	var banners []model.Banner
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list banners: %w", err)
		}
		banner, err := decodeBanner(doc)
		if err != nil {
			return nil, err
		}
		banners = append(banners, banner)
	}
	SortBanners(banners)
	return banners, nil
}

func (s *FirestoreBannerStore) Get(ctx context.Context, id string) (*model.Banner, error) {
	doc, err := s.client.Collection(bannersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrBannerNotFound
		}
		return nil, fmt.Errorf("get banner %s: %w", id, err)
	}
	banner, err := decodeBanner(doc)
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

func (s *FirestoreBannerStore) Create(ctx context.Context, fields model.BannerFields) (*model.Banner, error) {
	data := bannerData(fields)
	data["createdAt"] = firestore.ServerTimestamp
	data["updatedAt"] = firestore.ServerTimestamp

	ref, _, err := s.client.Collection(bannersCollection).Add(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}
	return s.Get(ctx, ref.ID)
}

// Update writes only the form fields and updatedAt, so createdAt is never touched.
func (s *FirestoreBannerStore) Update(ctx context.Context, id string, fields model.BannerFields) (*model.Banner, error) {
	data := bannerData(fields)
	updates := make([]firestore.Update, 0, len(data)+1)
	for path, value := range data {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	if _, err := s.client.Collection(bannersCollection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrBannerNotFound
		}
		return nil, fmt.Errorf("update banner %s: %w", id, err)
	}
	return s.Get(ctx, id)
}

func (s *FirestoreBannerStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Collection(bannersCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrBannerNotFound
		}
		return fmt.Errorf("delete banner %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreBannerStore) Watch(ctx context.Context, fn func([]model.Banner)) error {
	snapshots := s.query().Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("watch banners: %w", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return fmt.Errorf("read banner snapshot: %w", err)
		}
		banners := make([]model.Banner, 0, len(docs))
		for _, doc := range docs {
			banner, err := decodeBanner(doc)
			if err != nil {
				return err
			}
			banners = append(banners, banner)
		}
		SortBanners(banners)
		fn(banners)
	}
}

func decodeBanner(doc *firestore.DocumentSnapshot) (model.Banner, error) {
	var banner model.Banner
	if err := doc.DataTo(&banner); err != nil {
		return model.Banner{}, fmt.Errorf("decode banner %s: %w", doc.Ref.ID, err)
	}
	banner.ID = doc.Ref.ID
	return banner, nil
}

func bannerData(fields model.BannerFields) map[string]interface{} {
	return map[string]interface{}{
		"title":     fields.Title,
		"subtitle":  fields.Subtitle,
		"imageUrl":  fields.ImageURL,
		"ctaLabel":  fields.CtaLabel,
		"ctaLink":   fields.CtaLink,
		"isActive":  fields.IsActive,
		"sortOrder": fields.SortOrder,
	}
}

type MemoryBannerStore struct {
	mu       sync.Mutex
	banners  map[string]model.Banner
	watchers map[int]chan []model.Banner
	nextID   int
	now      func() time.Time
	// failWith, when set, makes every mutation fail without touching the store.
	failWith error
}

func NewMemoryBannerStore(now func() time.Time) *MemoryBannerStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryBannerStore{
		banners:  map[string]model.Banner{},
		watchers: map[int]chan []model.Banner{},
		now:      now,
	}
}

// FailWrites makes subsequent mutations return err; nil restores normal behaviour.
func (s *MemoryBannerStore) FailWrites(err error) {
	s.mu.Lock()
	s.failWith = err
	s.mu.Unlock()
}

func (s *MemoryBannerStore) List(ctx context.Context) ([]model.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

func (s *MemoryBannerStore) Get(ctx context.Context, id string) (*model.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	banner, ok := s.banners[id]
	if !ok {
		return nil, ErrBannerNotFound
	}
	return &banner, nil
}

func (s *MemoryBannerStore) Create(ctx context.Context, fields model.BannerFields) (*model.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	now := s.now()
	banner := applyFields(model.Banner{ID: uuid.New().String(), CreatedAt: now}, fields)
	banner.UpdatedAt = now
	s.banners[banner.ID] = banner
	s.broadcastLocked()
	return &banner, nil
}

func (s *MemoryBannerStore) Update(ctx context.Context, id string, fields model.BannerFields) (*model.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	existing, ok := s.banners[id]
	if !ok {
		return nil, ErrBannerNotFound
	}
	banner := applyFields(existing, fields)
	banner.UpdatedAt = s.now()
	s.banners[id] = banner
	s.broadcastLocked()
	return &banner, nil
}

func (s *MemoryBannerStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	if _, ok := s.banners[id]; !ok {
		return ErrBannerNotFound
	}
	delete(s.banners, id)
	s.broadcastLocked()
	return nil
}

func (s *MemoryBannerStore) Watch(ctx context.Context, fn func([]model.Banner)) error {
	updates := make(chan []model.Banner, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = updates
	updates <- s.snapshotLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case banners := <-updates:
			fn(banners)
		}
	}
}

func (s *MemoryBannerStore) snapshotLocked() []model.Banner {
	banners := make([]model.Banner, 0, len(s.banners))
	for _, b := range s.banners {
		banners = append(banners, b)
	}
	SortBanners(banners)
	return banners
}

// broadcastLocked replaces any undelivered snapshot with the current one.
func (s *MemoryBannerStore) broadcastLocked() {
	snapshot := s.snapshotLocked()
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

func applyFields(banner model.Banner, fields model.BannerFields) model.Banner {
	banner.Title = fields.Title
	banner.Subtitle = fields.Subtitle
	banner.ImageURL = fields.ImageURL
	banner.CtaLabel = fields.CtaLabel
	banner.CtaLink = fields.CtaLink
	banner.IsActive = fields.IsActive
	banner.SortOrder = fields.SortOrder
	return banner
}
