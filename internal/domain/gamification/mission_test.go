package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSampler []int

func (f fixedSampler) Sample(_, _ int) []int { return f }

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
	}{
		{"monday midnight", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2025, 6, 4, 13, 30, 0, 0, time.UTC)},
		{"sunday last second", time.Date(2025, 6, 8, 23, 59, 59, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WeekOf(tt.at)
			assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), w.Start)
			assert.Equal(t, time.Date(2025, 6, 8, 23, 59, 59, 0, time.UTC), w.End)
			assert.True(t, w.Contains(tt.at))
		})
	}

	next := WeekOf(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), next.Start)

	bogota := time.FixedZone("COT", -5*3600)
	w := WeekOf(time.Date(2025, 6, 8, 22, 0, 0, 0, bogota))
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestCatalogIsImmutable(t *testing.T) {
	c := Catalog()
	require.Len(t, c, 9)
	c[0].PointsReward = 9999

	again := Catalog()
	assert.Equal(t, 20, again[0].PointsReward)

	def, ok := Lookup(CodeBigSpender)
	require.True(t, ok)
	assert.Equal(t, 15, def.PointsReward)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestEveryCatalogEntryHasPredicate(t *testing.T) {
	for _, d := range Catalog() {
		_, ok := PredicateFor(d.Code)
		assert.True(t, ok, d.Code)
	}
}

func TestPickWeekly(t *testing.T) {
	t.Run("deterministic with fixed sampler", func(t *testing.T) {
		picked := PickWeekly(fixedSampler{8, 0, 4})
		require.Len(t, picked, 3)
		assert.Equal(t, CodeBigSpender, picked[0].Code)
		assert.Equal(t, CodeAllTypes, picked[1].Code)
		assert.Equal(t, CodeLoyalClient, picked[2].Code)
	})

	t.Run("drops duplicate and out-of-range indices", func(t *testing.T) {
		picked := PickWeekly(fixedSampler{1, 1, 42})
		assert.Len(t, picked, 1)
	})

	t.Run("random sampler draws distinct codes", func(t *testing.T) {
		s := NewRandSampler(7)
		for i := 0; i < 50; i++ {
			picked := PickWeekly(s)
			require.Len(t, picked, MissionsPerWeek)
			seen := map[Code]bool{}
			for _, d := range picked {
				assert.False(t, seen[d.Code])
				seen[d.Code] = true
			}
		}
	})
}

func TestUserMission_CompleteOnce(t *testing.T) {
	um := &UserMission{}
	assert.True(t, um.Complete(time.Now()))
	require.NotNil(t, um.CompletedAt)
	assert.False(t, um.Complete(time.Now()))
}

func TestMission_IsLiveAt(t *testing.T) {
	def, _ := Lookup(CodeMultiQty)
	week := WeekOf(time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC))
	m := NewWeeklyMission(def, week)

	assert.True(t, m.IsLiveAt(week.Start))
	assert.True(t, m.IsLiveAt(week.End))
	assert.False(t, m.IsLiveAt(week.End.Add(time.Second)))

	m.Active = false
	assert.False(t, m.IsLiveAt(week.Start))
}
