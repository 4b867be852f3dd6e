package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotAnImage    = errors.New("uploaded file is not an image")
	ErrImageTooLarge = errors.New("uploaded file is too large")
)

// ObjectStore writes publicly readable objects and returns their URL.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

type GCSObjectStore struct {
	bucket  *storage.BucketHandle
	name    string
	baseURL string
}

func NewGCSObjectStore(client *storage.Client, bucket, baseURL string) *GCSObjectStore {
	return &GCSObjectStore{
		bucket:  client.Bucket(bucket),
		name:    bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *GCSObjectStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", name, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.name, name), nil
}

type MemoryObjectStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

func NewMemoryObjectStore(baseURL string) *MemoryObjectStore {
	return &MemoryObjectStore{baseURL: strings.TrimRight(baseURL, "/"), objects: map[string][]byte{}}
}

func (s *MemoryObjectStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	s.objects[name] = append([]byte(nil), data...)
	s.mu.Unlock()
	return s.baseURL + "/" + name, nil
}

func (s *MemoryObjectStore) Object(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[name]
	return data, ok
}

type ImageService struct {
	store    ObjectStore
	maxBytes int64
}

func NewImageService(store ObjectStore, maxBytes int64) *ImageService {
	return &ImageService{store: store, maxBytes: maxBytes}
}

// Upload stores a banner image. The content type is sniffed from the bytes, never
// taken from the client.
func (s *ImageService) Upload(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrNotAnImage
	}

	name := "banners/" + uuid.New().String() + mtype.Extension()
	return s.store.Put(ctx, name, mtype.String(), data)
}
