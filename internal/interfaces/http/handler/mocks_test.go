package handler

import (
	"context"

	addressapp "github.com/farmacia/backend/internal/application/address"
	catalogapp "github.com/farmacia/backend/internal/application/catalog"
	gamificationapp "github.com/farmacia/backend/internal/application/gamification"
	ledgerapp "github.com/farmacia/backend/internal/application/ledger"
	orderapp "github.com/farmacia/backend/internal/application/order"
	promotionapp "github.com/farmacia/backend/internal/application/promotion"
	reportapp "github.com/farmacia/backend/internal/application/report"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, userID uuid.UUID, req orderapp.CreateOrderRequest) (*orderapp.CreateOrderResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.CreateOrderResponse), args.Error(1)
}

func (m *MockOrderService) Confirm(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID uuid.UUID, actor shared.Actor) error {
	args := m.Called(ctx, orderID, actor)
	return args.Error(0)
}

func (m *MockOrderService) GetDetails(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*orderapp.OrderDetailResponse, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderDetailResponse), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, actor shared.Actor, filter shared.Filter) ([]orderapp.OrderResponse, int64, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).([]orderapp.OrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) Track(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*orderapp.TrackingResponse, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.TrackingResponse), args.Error(1)
}

func (m *MockOrderService) CreatePaymentIntent(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*orderapp.PaymentIntentResponse, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.PaymentIntentResponse), args.Error(1)
}

type MockPromotionService struct {
	mock.Mock
}

func (m *MockPromotionService) Create(ctx context.Context, req promotionapp.PromotionRequest) (*promotionapp.PromotionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotionapp.PromotionResponse), args.Error(1)
}

func (m *MockPromotionService) Update(ctx context.Context, id uuid.UUID, req promotionapp.PromotionRequest) (*promotionapp.PromotionResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotionapp.PromotionResponse), args.Error(1)
}

func (m *MockPromotionService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPromotionService) GetByID(ctx context.Context, id uuid.UUID) (*promotionapp.PromotionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotionapp.PromotionResponse), args.Error(1)
}

func (m *MockPromotionService) ListActive(ctx context.Context) ([]promotionapp.PromotionResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]promotionapp.PromotionResponse), args.Error(1)
}

func (m *MockPromotionService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]promotionapp.PromotionResponse, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]promotionapp.PromotionResponse), args.Error(1)
}

func (m *MockPromotionService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]promotionapp.PromotionResponse, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]promotionapp.PromotionResponse), args.Error(1)
}

type MockAddressService struct {
	mock.Mock
}

func (m *MockAddressService) Create(ctx context.Context, userID uuid.UUID, req addressapp.CreateAddressRequest) (*addressapp.AddressResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*addressapp.AddressResponse), args.Error(1)
}

func (m *MockAddressService) List(ctx context.Context, userID uuid.UUID) ([]addressapp.AddressResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]addressapp.AddressResponse), args.Error(1)
}

func (m *MockAddressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, filter shared.Filter) ([]catalogapp.ProductResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalogapp.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]catalogapp.CategoryResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalogapp.CategoryResponse), args.Error(1)
}

func (m *MockCatalogService) CreateImageUploadURL(ctx context.Context, productID uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error) {
	args := m.Called(ctx, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ImageUploadResponse), args.Error(1)
}

type MockGamificationService struct {
	mock.Mock
}

func (m *MockGamificationService) Profile(ctx context.Context, userID uuid.UUID) (*gamificationapp.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gamificationapp.ProfileResponse), args.Error(1)
}

func (m *MockGamificationService) ActiveMissions(ctx context.Context) ([]gamificationapp.MissionResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]gamificationapp.MissionResponse), args.Error(1)
}

func (m *MockGamificationService) UserMissions(ctx context.Context, userID uuid.UUID) ([]gamificationapp.UserMissionResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]gamificationapp.UserMissionResponse), args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) ListFinancial(ctx context.Context, filter shared.Filter) (shared.Paginated[ledgerapp.FinancialMovementResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[ledgerapp.FinancialMovementResponse]), args.Error(1)
}

func (m *MockLedgerService) ListStock(ctx context.Context, filter shared.Filter) (shared.Paginated[ledgerapp.StockMovementResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[ledgerapp.StockMovementResponse]), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) AdminSummary(ctx context.Context) (*reportapp.SummaryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.SummaryResponse), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
