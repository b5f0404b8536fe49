package persistence

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfileRepository implements gamification.ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByUser returns the user's profile
func (r *GormProfileRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*gamification.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Gamification profile")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrCreateForUpdate inserts a zeroed profile when none exists and then
// locks the row. Concurrent first orders of the same user both end up on
// the single row thanks to ON CONFLICT DO NOTHING.
func (r *GormProfileRepository) GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID, now time.Time) (*gamification.Profile, error) {
	seed := &models.ProfileModel{}
	seed.FromDomain(gamification.NewProfile(userID))
	seed.UpdatedAt = now.UTC()

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(seed).Error; err != nil {
		return nil, err
	}

	var model models.ProfileModel
	if err := forUpdate(db).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save writes level, points and updated_at
func (r *GormProfileRepository) Save(ctx context.Context, profile *gamification.Profile) error {
	model := &models.ProfileModel{}
	model.FromDomain(profile)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts profiles
func (r *GormProfileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProfileModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormMissionRepository implements gamification.MissionRepository
type GormMissionRepository struct {
	db *gorm.DB
}

// NewGormMissionRepository creates a new GormMissionRepository
func NewGormMissionRepository(db *gorm.DB) *GormMissionRepository {
	return &GormMissionRepository{db: db}
}

// FindByWeek returns the missions of the week starting at weekStart
func (r *GormMissionRepository) FindByWeek(ctx context.Context, weekStart time.Time) ([]gamification.Mission, error) {
	return r.find(r.db.WithContext(ctx).Where("week_start = ?", weekStart.UTC()))
}

// FindLive returns active missions whose week contains at
func (r *GormMissionRepository) FindLive(ctx context.Context, at time.Time) ([]gamification.Mission, error) {
	at = at.UTC()
	return r.find(r.db.WithContext(ctx).
		Where("active = ? AND week_start <= ? AND week_end >= ?", true, at, at))
}

// InsertWeek inserts missions, ignoring (week_start, code) duplicates
func (r *GormMissionRepository) InsertWeek(ctx context.Context, missions []gamification.Mission) error {
	if len(missions) == 0 {
		return nil
	}
	rows := make([]models.MissionModel, len(missions))
	for i := range missions {
		rows[i].FromDomain(&missions[i])
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "week_start"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

// LockWeek takes a transaction-scoped advisory lock keyed by the week on
// postgres. SQLite serialises writers on its own, so nothing is needed
// there.
func (r *GormMissionRepository) LockWeek(ctx context.Context, week gamification.Week) error {
	if !isPostgres(r.db) {
		return nil
	}
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", weekLockKey(week)).Error
}

// FindUserMission returns the user's record for a mission
func (r *GormMissionRepository) FindUserMission(ctx context.Context, userID, missionID uuid.UUID) (*gamification.UserMission, error) {
	var model models.UserMissionModel
	err := r.db.WithContext(ctx).
		First(&model, "user_id = ? AND mission_id = ?", userID, missionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("User mission")
		}
		return nil, err
	}
	um := model.ToDomain()
	return &um, nil
}

// FindUserMissions returns the user's records for the given missions
func (r *GormMissionRepository) FindUserMissions(ctx context.Context, userID uuid.UUID, missionIDs []uuid.UUID) ([]gamification.UserMission, error) {
	if len(missionIDs) == 0 {
		return []gamification.UserMission{}, nil
	}
	var rows []models.UserMissionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND mission_id IN ?", userID, missionIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]gamification.UserMission, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SaveUserMission creates or updates the record
func (r *GormMissionRepository) SaveUserMission(ctx context.Context, um *gamification.UserMission) error {
	model := &models.UserMissionModel{}
	model.FromDomain(um)
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *GormMissionRepository) find(query *gorm.DB) ([]gamification.Mission, error) {
	var rows []models.MissionModel
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]gamification.Mission, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// weekLockKey maps a week to a stable advisory lock id
func weekLockKey(week gamification.Week) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("missions:" + week.Key()))
	return int64(h.Sum64())
}

var (
	_ gamification.ProfileRepository = (*GormProfileRepository)(nil)
	_ gamification.MissionRepository = (*GormMissionRepository)(nil)
)
