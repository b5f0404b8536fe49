package models

import (
	"time"

	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/google/uuid"
)

// ProfileModel is the persistence model for gamification.Profile
type ProfileModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Level     int       `gorm:"not null;default:1"`
	Points    int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "user_gamification"
}

// ToDomain converts to a domain Profile
func (m *ProfileModel) ToDomain() *gamification.Profile {
	return &gamification.Profile{
		ID:        m.ID,
		UserID:    m.UserID,
		Level:     m.Level,
		Points:    m.Points,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// FromDomain populates the model from a domain Profile
func (m *ProfileModel) FromDomain(p *gamification.Profile) {
	m.ID = p.ID
	m.UserID = p.UserID
	m.Level = p.Level
	m.Points = p.Points
	m.UpdatedAt = p.UpdatedAt
}

// MissionModel is one mission instance for a week
type MissionModel struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Code         gamification.Code `gorm:"type:varchar(50);not null;uniqueIndex:idx_missions_week_code,priority:2"`
	Name         string            `gorm:"type:varchar(100);not null"`
	Description  string            `gorm:"type:varchar(300)"`
	PointsReward int               `gorm:"not null"`
	WeekStart    time.Time         `gorm:"not null;uniqueIndex:idx_missions_week_code,priority:1"`
	WeekEnd      time.Time         `gorm:"not null"`
	Active       bool              `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (MissionModel) TableName() string {
	return "missions"
}

// ToDomain converts to a domain Mission
func (m *MissionModel) ToDomain() gamification.Mission {
	return gamification.Mission{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		Description:  m.Description,
		PointsReward: m.PointsReward,
		WeekStart:    m.WeekStart.UTC(),
		WeekEnd:      m.WeekEnd.UTC(),
		Active:       m.Active,
	}
}

// FromDomain populates the model from a domain Mission
func (m *MissionModel) FromDomain(mission *gamification.Mission) {
	m.ID = mission.ID
	m.Code = mission.Code
	m.Name = mission.Name
	m.Description = mission.Description
	m.PointsReward = mission.PointsReward
	m.WeekStart = mission.WeekStart
	m.WeekEnd = mission.WeekEnd
	m.Active = mission.Active
}

// UserMissionModel records a user's progress on one mission
type UserMissionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_missions_user_mission,priority:1"`
	MissionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_missions_user_mission,priority:2"`
	Completed   bool      `gorm:"not null;default:false"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (UserMissionModel) TableName() string {
	return "user_missions"
}

// ToDomain converts to a domain UserMission
func (m *UserMissionModel) ToDomain() gamification.UserMission {
	um := gamification.UserMission{
		ID:        m.ID,
		UserID:    m.UserID,
		MissionID: m.MissionID,
		Completed: m.Completed,
	}
	if m.CompletedAt != nil {
		at := m.CompletedAt.UTC()
		um.CompletedAt = &at
	}
	return um
}

// FromDomain populates the model from a domain UserMission
func (m *UserMissionModel) FromDomain(um *gamification.UserMission) {
	m.ID = um.ID
	m.UserID = um.UserID
	m.MissionID = um.MissionID
	m.Completed = um.Completed
	m.CompletedAt = um.CompletedAt
}
