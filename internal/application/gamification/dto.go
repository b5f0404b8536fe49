package gamification

import (
	"time"

	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/google/uuid"
)

// ProfileResponse is the caller-facing view of points and level
type ProfileResponse struct {
	UserID          uuid.UUID `json:"user_id"`
	Level           int       `json:"level"`
	Points          int       `json:"points"`
	ProgressPercent int       `json:"progress_percent"`
	RankName        string    `json:"rank_name"`
}

// MissionResponse is one mission of the current week
type MissionResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PointsReward int       `json:"points_reward"`
	WeekStart    time.Time `json:"week_start"`
	WeekEnd      time.Time `json:"week_end"`
}

// UserMissionResponse adds the caller's completion state to a mission
type UserMissionResponse struct {
	MissionResponse
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ToProfileResponse converts a domain profile
func ToProfileResponse(p *gamification.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:          p.UserID,
		Level:           p.Level,
		Points:          p.Points,
		ProgressPercent: p.ProgressPercent(),
		RankName:        p.RankName(),
	}
}

// ToMissionResponse converts a domain mission
func ToMissionResponse(m gamification.Mission) MissionResponse {
	return MissionResponse{
		ID:           m.ID,
		Code:         string(m.Code),
		Name:         m.Name,
		Description:  m.Description,
		PointsReward: m.PointsReward,
		WeekStart:    m.WeekStart,
		WeekEnd:      m.WeekEnd,
	}
}

// ToMissionResponses converts a slice of domain missions
func ToMissionResponses(missions []gamification.Mission) []MissionResponse {
	out := make([]MissionResponse, len(missions))
	for i, m := range missions {
		out[i] = ToMissionResponse(m)
	}
	return out
}
