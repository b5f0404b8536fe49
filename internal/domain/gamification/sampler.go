package gamification

import (
	"math/rand/v2"
	"sync"
)

// Sampler draws k distinct indices from [0, n)
type Sampler interface {
	Sample(n, k int) []int
}

// RandSampler is a goroutine-safe Sampler over math/rand/v2
type RandSampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandSampler returns a sampler seeded with seed
func NewRandSampler(seed uint64) *RandSampler {
	return &RandSampler{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample implements Sampler
func (s *RandSampler) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	s.mu.Lock()
	perm := s.rnd.Perm(n)
	s.mu.Unlock()
	return perm[:k]
}

// PickWeekly draws MissionsPerWeek distinct catalog entries
func PickWeekly(s Sampler) []Definition {
	idx := s.Sample(len(catalog), MissionsPerWeek)
	seen := make(map[int]struct{}, len(idx))
	out := make([]Definition, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(catalog) {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, catalog[i])
	}
	return out
}
