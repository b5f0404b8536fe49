package handler

import (
	"net/http"
	"testing"

	ledgerapp "github.com/farmacia/backend/internal/application/ledger"
	reportapp "github.com/farmacia/backend/internal/application/report"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/interfaces/http/dto"
	"github.com/farmacia/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerHandler_ListFinancial(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewLedgerHandler(svc)
	router := setupTestRouter(actorPtr(testutil.AdminActor()))
	router.GET("/ledger/financial", h.ListFinancial)

	items := []ledgerapp.FinancialMovementResponse{{ID: uuid.New(), Type: "income", Amount: decimal.NewFromInt(42)}}
	svc.On("ListFinancial", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["type"] == "income"
	})).Return(shared.NewPaginated(items, 1, 1, 20), nil)

	w := performRequest(router, http.MethodGet, "/ledger/financial?type=income", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)

	w = performRequest(router, http.MethodGet, "/ledger/financial?type=refund", nil)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestLedgerHandler_ListStock(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewLedgerHandler(svc)
	router := setupTestRouter(actorPtr(testutil.StaffActor()))
	router.GET("/ledger/stock", h.ListStock)
	productID := uuid.New()

	svc.On("ListStock", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["product_id"] == productID && f.PageSize == 50
	})).Return(shared.NewPaginated([]ledgerapp.StockMovementResponse{}, 0, 1, 50), nil)

	w := performRequest(router, http.MethodGet, "/ledger/stock?product_id="+productID.String()+"&page_size=50", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestReportHandler_AdminSummary(t *testing.T) {
	svc := new(MockReportService)
	h := NewReportHandler(svc)
	router := setupTestRouter(actorPtr(testutil.AdminActor()))
	router.GET("/admin/summary", h.AdminSummary)

	svc.On("AdminSummary", mock.Anything).Return(&reportapp.SummaryResponse{
		NewOrders:         3,
		Revenue:           decimal.RequireFromString("120.50"),
		TotalUsers:        10,
		TotalProducts:     25,
		HistoricalRevenue: decimal.RequireFromString("900.00"),
	}, nil)

	w := performRequest(router, http.MethodGet, "/admin/summary", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.EqualValues(t, 3, data["new_orders"])
	assert.Equal(t, "120.5", data["revenue"])
}
