// Package cache holds the idempotency stores that guard post-order rewards
// against running twice.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/zoobzio/clockz"
)

var _ shared.IdempotencyStore = (*MemoryStore)(nil)

// MemoryStore keeps keys in process memory. State is not shared between
// replicas, so it suits single-instance deployments and tests.
type MemoryStore struct {
	mu        sync.Mutex
	expiries  map[string]time.Time
	clock     clockz.Clock
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryStore creates a store and starts its sweeper. A zero sweep
// interval disables sweeping; expired keys are still ignored on lookup.
func NewMemoryStore(clock clockz.Clock, sweepInterval time.Duration) *MemoryStore {
	if clock == nil {
		clock = clockz.RealClock
	}
	s := &MemoryStore{
		expiries: make(map[string]time.Time),
		clock:    clock,
		stop:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop(sweepInterval)
	}
	return s
}

// MarkProcessed records key unless a live record already exists
func (s *MemoryStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if exp, ok := s.expiries[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiries[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key holds a live record
func (s *MemoryStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.expiries[key]
	return ok && s.clock.Now().Before(exp), nil
}

// Release forgets key
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expiries, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

// Len returns the number of stored keys, expired or not
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiries)
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for key, exp := range s.expiries {
		if !now.Before(exp) {
			delete(s.expiries, key)
		}
	}
}
