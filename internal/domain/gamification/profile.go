// Package gamification models loyalty points, levels, ranks and the weekly
// mission catalog.
package gamification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PointsPerLevel is the point balance that converts into one level.
const PointsPerLevel = 100

var spendPerPoint = decimal.NewFromInt(1000)

// Profile is the per-user points and level record. Points stay in
// [0, PointsPerLevel) after every mutation.
type Profile struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Level     int
	Points    int
	UpdatedAt time.Time
}

// NewProfile returns the zeroed record a user starts with
func NewProfile(userID uuid.UUID) *Profile {
	return &Profile{
		ID:     uuid.New(),
		UserID: userID,
		Level:  1,
		Points: 0,
	}
}

// PointsForSpend converts an amount spent into earned points:
// one point per full 1000 currency units.
func PointsForSpend(amount decimal.Decimal) int {
	if !amount.IsPositive() {
		return 0
	}
	return int(amount.Div(spendPerPoint).Floor().IntPart())
}

// AddPoints adds earned points and carries every full hundred into levels.
// It returns the number of levels gained.
func (p *Profile) AddPoints(earned int) int {
	if earned <= 0 {
		return 0
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.Points += earned
	gained := p.Points / PointsPerLevel
	if gained > 0 {
		p.Level += gained
		p.Points %= PointsPerLevel
	}
	return gained
}

// ProgressPercent is the share of the current level already earned
func (p *Profile) ProgressPercent() int {
	return p.Points * 100 / PointsPerLevel
}

// RankName is the cosmetic tier for the current level
func (p *Profile) RankName() string {
	return RankFor(p.Level)
}

// ProfileRepository persists profiles. Mutations happen under a row lock.
type ProfileRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// GetOrCreateForUpdate creates the zeroed row stamped with now if missing
	// and returns it locked until the surrounding transaction ends.
	GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID, now time.Time) (*Profile, error)

	Save(ctx context.Context, profile *Profile) error
	Count(ctx context.Context) (int64, error)
}
