package handler

import (
	"context"

	gamificationapp "github.com/farmacia/backend/internal/application/gamification"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GamificationService exposes levels and weekly missions
type GamificationService interface {
	Profile(ctx context.Context, userID uuid.UUID) (*gamificationapp.ProfileResponse, error)
	ActiveMissions(ctx context.Context) ([]gamificationapp.MissionResponse, error)
	UserMissions(ctx context.Context, userID uuid.UUID) ([]gamificationapp.UserMissionResponse, error)
}

// GamificationHandler serves missions and the caller's level
type GamificationHandler struct {
	BaseHandler
	service GamificationService
}

// NewGamificationHandler creates a new GamificationHandler
func NewGamificationHandler(service GamificationService) *GamificationHandler {
	return &GamificationHandler{service: service}
}

// ActiveMissions lists this week's missions
func (h *GamificationHandler) ActiveMissions(c *gin.Context) {
	missions, err := h.service.ActiveMissions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, missions)
}

// MyMissions lists this week's missions with the caller's completion state
func (h *GamificationHandler) MyMissions(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	missions, err := h.service.UserMissions(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, missions)
}

// MyProfile returns the caller's level and points
func (h *GamificationHandler) MyProfile(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}
