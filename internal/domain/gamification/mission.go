package gamification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Code identifies a mission in the catalog
type Code string

const (
	CodeAllTypes    Code = "all_types"
	CodeMultiQty    Code = "multi_qty"
	CodeEarlyBird   Code = "early_bird"
	CodeVitaminFan  Code = "vitamin_fan"
	CodeLoyalClient Code = "loyal_client"
	CodePromoHunter Code = "promo_hunter"
	CodeFamilyOrder Code = "family_order"
	CodeFirstOrder  Code = "first_order"
	CodeBigSpender  Code = "big_spender"
)

// MissionsPerWeek is how many catalog entries are active in a week
const MissionsPerWeek = 3

// Definition is an immutable catalog entry
type Definition struct {
	Code         Code
	Name         string
	Description  string
	PointsReward int
}

var catalog = [...]Definition{
	{CodeAllTypes, "Weekly explorer", "Buy at least one product from every category.", 20},
	{CodeMultiQty, "Multi-buy", "Buy at least 3 units of the same product in one order.", 10},
	{CodeEarlyBird, "Early bird", "Place an order before 9 am or after 9 pm.", 10},
	{CodeVitaminFan, "Vitamin fan", "Buy a product from the vitamins and supplements category.", 15},
	{CodeLoyalClient, "Loyal client", "Place 2 different orders in the same week.", 20},
	{CodePromoHunter, "Deal hunter", "Buy a product with an active promotion.", 10},
	{CodeFamilyOrder, "Family order", "Include products from at least 5 categories in one order.", 20},
	{CodeFirstOrder, "First order", "Place your first order of the week.", 5},
	{CodeBigSpender, "Big spender", "Spend at least 100,000 in a single order.", 15},
}

// Catalog returns a copy of the mission pool
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog[:])
	return out
}

// Lookup finds a catalog entry by code
func Lookup(code Code) (Definition, bool) {
	for _, d := range catalog {
		if d.Code == code {
			return d, true
		}
	}
	return Definition{}, false
}

// Mission is a catalog entry instantiated for one week
type Mission struct {
	ID           uuid.UUID
	Code         Code
	Name         string
	Description  string
	PointsReward int
	WeekStart    time.Time
	WeekEnd      time.Time
	Active       bool
}

// NewWeeklyMission instantiates def for week
func NewWeeklyMission(def Definition, week Week) Mission {
	return Mission{
		ID:           uuid.New(),
		Code:         def.Code,
		Name:         def.Name,
		Description:  def.Description,
		PointsReward: def.PointsReward,
		WeekStart:    week.Start,
		WeekEnd:      week.End,
		Active:       true,
	}
}

// IsLiveAt reports whether the mission is active and t is inside its week
func (m Mission) IsLiveAt(t time.Time) bool {
	return m.Active && !t.Before(m.WeekStart) && !t.After(m.WeekEnd)
}

// UserMission records that a user completed a mission
type UserMission struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	MissionID   uuid.UUID
	Completed   bool
	CompletedAt *time.Time
}

// Complete flips the record to completed. It returns false when it was
// already completed, in which case no reward may be granted.
func (um *UserMission) Complete(now time.Time) bool {
	if um.Completed {
		return false
	}
	at := now.UTC()
	um.Completed = true
	um.CompletedAt = &at
	return true
}

// MissionRepository persists weekly missions and completion records
type MissionRepository interface {
	FindByWeek(ctx context.Context, weekStart time.Time) ([]Mission, error)
	FindLive(ctx context.Context, at time.Time) ([]Mission, error)

	// InsertWeek inserts missions, skipping any (week_start, code) pair that
	// already exists.
	InsertWeek(ctx context.Context, missions []Mission) error

	// LockWeek serialises concurrent initialisation of the same week inside
	// the surrounding transaction.
	LockWeek(ctx context.Context, week Week) error

	FindUserMission(ctx context.Context, userID, missionID uuid.UUID) (*UserMission, error)
	FindUserMissions(ctx context.Context, userID uuid.UUID, missionIDs []uuid.UUID) ([]UserMission, error)
	SaveUserMission(ctx context.Context, um *UserMission) error
}
