package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/farmacia/backend/internal/application/catalog"
	"github.com/zoobzio/clockz"
)

var _ catalogapp.ObjectStorageService = (*LocalImageStore)(nil)

// LocalImageStore is used when no bucket is configured. It hands out plain
// URLs under BaseURL and remembers deleted keys so tests can assert cleanup.
type LocalImageStore struct {
	BaseURL string

	clock   clockz.Clock
	mu      sync.Mutex
	deleted []string
}

// NewLocalImageStore creates a local store rooted at baseURL
func NewLocalImageStore(baseURL string, clock clockz.Clock) *LocalImageStore {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &LocalImageStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		clock:   clock,
	}
}

// GenerateUploadURL returns BaseURL/upload/<key>
func (s *LocalImageStore) GenerateUploadURL(
	_ context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	expiresAt := s.clock.Now().Add(expiresIn)
	q := url.Values{}
	q.Set("content_type", contentType)
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	return s.BaseURL + "/upload/" + storageKey + "?" + q.Encode(), expiresAt, nil
}

// GenerateDownloadURL returns BaseURL/images/<key>
func (s *LocalImageStore) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	return s.BaseURL + "/images/" + storageKey, s.clock.Now().Add(expiresIn), nil
}

// DeleteObject records the key as deleted
func (s *LocalImageStore) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	s.deleted = append(s.deleted, storageKey)
	s.mu.Unlock()
	return nil
}

// Deleted returns the keys deleted so far
func (s *LocalImageStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
