package handler

import (
	"context"

	ledgerapp "github.com/farmacia/backend/internal/application/ledger"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerService lists the audit trails
type LedgerService interface {
	ListFinancial(ctx context.Context, filter shared.Filter) (shared.Paginated[ledgerapp.FinancialMovementResponse], error)
	ListStock(ctx context.Context, filter shared.Filter) (shared.Paginated[ledgerapp.StockMovementResponse], error)
}

// LedgerHandler exposes the ledgers to back office users
type LedgerHandler struct {
	BaseHandler
	service LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// FinancialQuery is the query string of GET /ledger/financial
type FinancialQuery struct {
	dto.ListRequest
	Type string `form:"type" binding:"omitempty,oneof=income"`
}

// StockQuery is the query string of GET /ledger/stock
type StockQuery struct {
	dto.ListRequest
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
}

// ListFinancial returns money movements newest first
func (h *LedgerHandler) ListFinancial(c *gin.Context) {
	var q FinancialQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.ToFilter()
	if q.Type != "" {
		filter.Filters["type"] = q.Type
	}

	page, err := h.service.ListFinancial(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListStock returns stock movements newest first
func (h *LedgerHandler) ListStock(c *gin.Context) {
	var q StockQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.ToFilter()
	if q.ProductID != "" {
		filter.Filters["product_id"] = uuid.MustParse(q.ProductID)
	}

	page, err := h.service.ListStock(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
