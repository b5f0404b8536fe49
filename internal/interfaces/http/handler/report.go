package handler

import (
	"context"

	reportapp "github.com/farmacia/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportService builds dashboard figures
type ReportService interface {
	AdminSummary(ctx context.Context) (*reportapp.SummaryResponse, error)
}

// ReportHandler serves the admin dashboard
type ReportHandler struct {
	BaseHandler
	service ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// AdminSummary returns today's orders and revenue plus all-time totals
func (h *ReportHandler) AdminSummary(c *gin.Context) {
	summary, err := h.service.AdminSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
