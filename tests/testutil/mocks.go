package testutil

import (
	"context"
	"time"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/customer"
	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/farmacia/backend/internal/domain/report"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) SetImageKey(ctx context.Context, id uuid.UUID, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Category, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

// MockPromotionRepository is a mock implementation of promotion.Repository
type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) Save(ctx context.Context, p *promotion.Promotion) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromotionRepository) FindCandidates(ctx context.Context, productID, categoryID uuid.UUID, now time.Time) ([]promotion.Promotion, error) {
	args := m.Called(ctx, productID, categoryID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]promotion.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) FindActive(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]promotion.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]promotion.Promotion, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]promotion.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]promotion.Promotion, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]promotion.Promotion), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateState(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, userID *uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) CountByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerRepository is a mock implementation of order.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) AppendFinancial(ctx context.Context, movement *order.FinancialMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockLedgerRepository) AppendStock(ctx context.Context, movements []order.StockMovement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListFinancial(ctx context.Context, filter shared.Filter) ([]order.FinancialMovement, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.FinancialMovement), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) ListStock(ctx context.Context, filter shared.Filter) ([]order.StockMovement, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.StockMovement), args.Get(1).(int64), args.Error(2)
}

// MockAddressRepository is a mock implementation of customer.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Address), args.Error(1)
}

func (m *MockAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]customer.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Address), args.Error(1)
}

func (m *MockAddressRepository) Save(ctx context.Context, address *customer.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAddressRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockProfileRepository is a mock implementation of gamification.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*gamification.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gamification.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID, now time.Time) (*gamification.Profile, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gamification.Profile), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *gamification.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockMissionRepository is a mock implementation of gamification.MissionRepository
type MockMissionRepository struct {
	mock.Mock
}

func (m *MockMissionRepository) FindByWeek(ctx context.Context, weekStart time.Time) ([]gamification.Mission, error) {
	args := m.Called(ctx, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gamification.Mission), args.Error(1)
}

func (m *MockMissionRepository) FindLive(ctx context.Context, at time.Time) ([]gamification.Mission, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gamification.Mission), args.Error(1)
}

func (m *MockMissionRepository) InsertWeek(ctx context.Context, missions []gamification.Mission) error {
	args := m.Called(ctx, missions)
	return args.Error(0)
}

func (m *MockMissionRepository) LockWeek(ctx context.Context, week gamification.Week) error {
	args := m.Called(ctx, week)
	return args.Error(0)
}

func (m *MockMissionRepository) FindUserMission(ctx context.Context, userID, missionID uuid.UUID) (*gamification.UserMission, error) {
	args := m.Called(ctx, userID, missionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gamification.UserMission), args.Error(1)
}

func (m *MockMissionRepository) FindUserMissions(ctx context.Context, userID uuid.UUID, missionIDs []uuid.UUID) ([]gamification.UserMission, error) {
	args := m.Called(ctx, userID, missionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gamification.UserMission), args.Error(1)
}

func (m *MockMissionRepository) SaveUserMission(ctx context.Context, um *gamification.UserMission) error {
	args := m.Called(ctx, um)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return nil
}

// Compile-time interface checks
var (
	_ catalog.ProductRepository      = (*MockProductRepository)(nil)
	_ catalog.CategoryRepository     = (*MockCategoryRepository)(nil)
	_ promotion.Repository           = (*MockPromotionRepository)(nil)
	_ order.Repository               = (*MockOrderRepository)(nil)
	_ order.LedgerRepository         = (*MockLedgerRepository)(nil)
	_ customer.AddressRepository     = (*MockAddressRepository)(nil)
	_ gamification.ProfileRepository = (*MockProfileRepository)(nil)
	_ gamification.MissionRepository = (*MockMissionRepository)(nil)
	_ shared.IdempotencyStore        = (*MockIdempotencyStore)(nil)
	_ report.SummaryRepository       = (*MockSummaryRepository)(nil)
)

// MockSummaryRepository is a mock implementation of report.SummaryRepository
type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSummaryRepository) SumPaidRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSummaryRepository) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
