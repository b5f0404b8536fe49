package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	orderapp "github.com/farmacia/backend/internal/application/order"
	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/customer"
	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"github.com/farmacia/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var repoNow = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t, models.All()...)
}

func seedCategory(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&models.CategoryModel{ID: id, Name: name}).Error)
	return id
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, price int64, categoryID uuid.UUID) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, decimal.NewFromInt(price), stock, categoryID, repoNow)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func TestGormProductRepository_DecrementAndRestore(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	cat := seedCategory(t, db, "Medicamentos")
	p := seedProduct(t, db, "Ibuprofeno", 5, 8000, cat)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 3))
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	assert.True(t, decimal.NewFromInt(8000).Equal(got.Price))

	err = repo.DecrementStock(ctx, p.ID, 3)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	require.NoError(t, repo.RestoreStock(ctx, p.ID, 3))
	got, err = repo.FindByIDForUpdate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	assert.ErrorIs(t, repo.RestoreStock(ctx, uuid.New(), 1), shared.ErrNotFound)
	assert.Error(t, repo.DecrementStock(ctx, p.ID, 0))
}

func TestGormProductRepository_FindAllFilters(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	meds := seedCategory(t, db, "Medicamentos")
	vit := seedCategory(t, db, "Vitaminas y suplementos")
	seedProduct(t, db, "Acetaminofén", 10, 5000, meds)
	seedProduct(t, db, "Vitamina C", 0, 12000, vit)
	seedProduct(t, db, "Vitamina D", 4, 15000, vit)

	filter := shared.DefaultFilter()
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Filters = map[string]any{"category_id": vit}
	products, total, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Vitamina C", products[0].Name)

	filter.Filters = map[string]any{"search": "VITAMINA", "in_stock": true}
	products, total, err = repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Vitamina D", products[0].Name)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormProductRepository_SetImageKey(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	p := seedProduct(t, db, "Crema", 1, 20000, seedCategory(t, db, "Dermocosmética"))

	require.NoError(t, repo.SetImageKey(ctx, p.ID, "products/crema.png"))
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "products/crema.png", got.ImageKey)

	assert.ErrorIs(t, repo.SetImageKey(ctx, uuid.New(), "x"), shared.ErrNotFound)
}

func TestGormOrderTransactionScope_NoOversellUnderConcurrency(t *testing.T) {
	db := newRepoDB(t)
	scope := NewGormOrderTransactionScope(db)
	p := seedProduct(t, db, "Jarabe", 5, 9000, seedCategory(t, db, "Medicamentos"))

	const workers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(context.Background(), func(repos orderapp.TransactionalRepositories) error {
				product, err := repos.ProductRepo().FindByIDForUpdate(context.Background(), p.ID)
				if err != nil {
					return err
				}
				if err := product.Reserve(2); err != nil {
					return err
				}
				return repos.ProductRepo().DecrementStock(context.Background(), p.ID, 2)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := NewGormProductRepository(db).FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, got.Stock)
	assert.GreaterOrEqual(t, got.Stock, 0)
}

func TestGormOrderTransactionScope_RollsBackOnError(t *testing.T) {
	db := newRepoDB(t)
	scope := NewGormOrderTransactionScope(db)
	ctx := context.Background()
	cat := seedCategory(t, db, "Medicamentos")
	a := seedProduct(t, db, "A", 5, 1000, cat)
	b := seedProduct(t, db, "B", 1, 1000, cat)

	err := scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		if err := repos.ProductRepo().DecrementStock(ctx, a.ID, 2); err != nil {
			return err
		}
		return repos.ProductRepo().DecrementStock(ctx, b.ID, 2)
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	got, err := NewGormProductRepository(db).FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestGormPromotionRepository_Candidates(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormPromotionRepository(db)
	ctx := context.Background()
	cat := seedCategory(t, db, "Vitaminas y suplementos")
	other := seedCategory(t, db, "Bebés")
	p := seedProduct(t, db, "Vitamina C", 10, 12000, cat)

	newPromo := func(params promotion.Params) *promotion.Promotion {
		promo, err := promotion.NewPromotion(params, repoNow)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, promo))
		return promo
	}
	window := func(params promotion.Params) promotion.Params {
		params.Kind = promotion.KindPercentageOrFixed
		params.DiscountPercent = decimal.NewFromInt(10)
		params.StartDate = repoNow.Add(-24 * time.Hour)
		params.EndDate = repoNow.Add(24 * time.Hour)
		return params
	}

	byProduct := newPromo(window(promotion.Params{Description: "product", ProductID: &p.ID}))
	byCategory := newPromo(window(promotion.Params{Description: "category", CategoryID: &cat}))
	newPromo(window(promotion.Params{Description: "other", CategoryID: &other}))
	expired := window(promotion.Params{Description: "expired", ProductID: &p.ID})
	expired.EndDate = repoNow.Add(-time.Hour)
	expired.StartDate = repoNow.Add(-48 * time.Hour)
	newPromo(expired)
	inactive := newPromo(window(promotion.Params{Description: "inactive", ProductID: &p.ID}))
	inactive.Deactivate(repoNow)
	require.NoError(t, repo.Save(ctx, inactive))

	candidates, err := repo.FindCandidates(ctx, p.ID, cat, repoNow)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	assert.ElementsMatch(t, []uuid.UUID{byProduct.ID, byCategory.ID}, ids)

	active, err := repo.FindActive(ctx, repoNow)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	forProduct, err := repo.FindByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, forProduct, 3)

	loaded, err := repo.FindByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Active)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func newTestOrder(t *testing.T, userID, addressID uuid.UUID, p *catalog.Product, qty int, at time.Time) *order.Order {
	t.Helper()
	o, err := order.NewOrder(userID, addressID, at)
	require.NoError(t, err)
	line := promotion.Resolve(promotion.ProductRef{ID: p.ID, CategoryID: p.CategoryID, Price: p.Price}, qty, at, nil)
	_, err = o.AddLine(p.ID, line)
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_Lifecycle(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	user := uuid.New()
	address := uuid.New()
	p := seedProduct(t, db, "Gasas", 10, 3000, seedCategory(t, db, "Cuidado personal"))

	o := newTestOrder(t, user, address, p, 4, repoNow)
	require.NoError(t, repo.Create(ctx, o))

	loaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, loaded.Status)
	assert.True(t, decimal.NewFromInt(12000).Equal(loaded.Total))
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 4, loaded.Items[0].Quantity)

	require.NoError(t, loaded.Confirm(repoNow.Add(time.Minute)))
	require.NoError(t, repo.UpdateState(ctx, loaded))
	confirmed, err := repo.FindByIDForUpdate(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.IsPaid())
	assert.Equal(t, order.StatusConfirmed, confirmed.Status)

	n, err := repo.CountByUserBetween(ctx, user, repoNow.Add(-time.Hour), repoNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	second := newTestOrder(t, uuid.New(), address, p, 1, repoNow)
	require.NoError(t, repo.Create(ctx, second))

	mine, total, err := repo.FindAll(ctx, &user, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Items, 1)

	all, total, err := repo.FindAll(ctx, nil, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, second.ID))
	_, err = repo.FindByID(ctx, second.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	var items int64
	require.NoError(t, db.Model(&models.OrderItemModel{}).Where("order_id = ?", second.ID).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestGormOrderRepository_ItemsKeepPlacementOrder(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	cat := seedCategory(t, db, "Medicamentos")

	user := uuid.New()
	o, err := order.NewOrder(user, uuid.New(), repoNow)
	require.NoError(t, err)
	var placed []uuid.UUID
	for qty := 1; qty <= 8; qty++ {
		p := seedProduct(t, db, fmt.Sprintf("Producto %d", qty), 20, 1000, cat)
		line := promotion.Resolve(promotion.ProductRef{ID: p.ID, CategoryID: p.CategoryID, Price: p.Price}, qty, repoNow, nil)
		_, err := o.AddLine(p.ID, line)
		require.NoError(t, err)
		placed = append(placed, p.ID)
	}
	require.NoError(t, repo.Create(ctx, o))

	productIDs := func(items []order.Item) []uuid.UUID {
		ids := make([]uuid.UUID, len(items))
		for i, item := range items {
			ids[i] = item.ProductID
		}
		return ids
	}

	loaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, placed, productIDs(loaded.Items))

	locked, err := repo.FindByIDForUpdate(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, placed, productIDs(locked.Items))

	listed, _, err := repo.FindAll(ctx, &user, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, placed, productIDs(listed[0].Items))
}

func TestGormLedgerRepository_AppendAndList(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormLedgerRepository(db)
	ctx := context.Background()
	p := seedProduct(t, db, "Suero", 10, 2500, seedCategory(t, db, "Medicamentos"))
	o := newTestOrder(t, uuid.New(), uuid.New(), p, 2, repoNow)

	income, moves := order.SaleLedgerEntries(o, repoNow)
	require.NoError(t, repo.AppendFinancial(ctx, &income))
	require.NoError(t, repo.AppendStock(ctx, moves))
	require.NoError(t, repo.AppendStock(ctx, nil))

	financial, total, err := repo.ListFinancial(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, financial, 1)
	assert.True(t, decimal.NewFromInt(5000).Equal(financial[0].Amount))
	assert.Equal(t, order.MovementTypeIncome, financial[0].Type)

	filter := shared.DefaultFilter()
	filter.Filters = map[string]any{"product_id": p.ID}
	stock, total, err := repo.ListStock(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, stock, 1)
	assert.Equal(t, -2, stock[0].Quantity)
	assert.Equal(t, order.StockReasonSale, stock[0].Reason)
}

func TestGormAddressRepository_IsReferenced(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormAddressRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()
	user := uuid.New()

	home, err := customer.NewAddress(user, "Casa", "Calle 1", "Bogotá", 4.65, -74.05, repoNow)
	require.NoError(t, err)
	office, err := customer.NewAddress(user, "Oficina", "Carrera 7", "Bogotá", 4.60, -74.07, repoNow.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, home))
	require.NoError(t, repo.Save(ctx, office))

	list, err := repo.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	p := seedProduct(t, db, "Gel", 3, 1000, seedCategory(t, db, "Cuidado personal"))
	require.NoError(t, orders.Create(ctx, newTestOrder(t, user, home.ID, p, 1, repoNow)))

	referenced, err := repo.IsReferenced(ctx, home.ID)
	require.NoError(t, err)
	assert.True(t, referenced)
	referenced, err = repo.IsReferenced(ctx, office.ID)
	require.NoError(t, err)
	assert.False(t, referenced)

	require.NoError(t, repo.Delete(ctx, office.ID))
	_, err = repo.FindByID(ctx, office.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProfileRepository_GetOrCreate(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormProfileRepository(db)
	ctx := context.Background()
	user := uuid.New()

	_, err := repo.FindByUser(ctx, user)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	profile, err := repo.GetOrCreateForUpdate(ctx, user, repoNow)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, 0, profile.Points)
	assert.True(t, profile.UpdatedAt.Equal(repoNow), "seed row is stamped with the caller's clock, got %s", profile.UpdatedAt)

	profile.AddPoints(150)
	require.NoError(t, repo.Save(ctx, profile))

	again, err := repo.GetOrCreateForUpdate(ctx, user, repoNow)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
	assert.Equal(t, 2, again.Level)
	assert.Equal(t, 50, again.Points)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormMissionRepository_InsertWeekIsIdempotent(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormMissionRepository(db)
	ctx := context.Background()
	week := gamification.WeekOf(repoNow)

	missions := func() []gamification.Mission {
		out := make([]gamification.Mission, 0, 3)
		for _, def := range gamification.Catalog()[:3] {
			out = append(out, gamification.NewWeeklyMission(def, week))
		}
		return out
	}

	require.NoError(t, repo.LockWeek(ctx, week))
	require.NoError(t, repo.InsertWeek(ctx, missions()))
	require.NoError(t, repo.InsertWeek(ctx, missions()))

	stored, err := repo.FindByWeek(ctx, week.Start)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	live, err := repo.FindLive(ctx, repoNow)
	require.NoError(t, err)
	assert.Len(t, live, 3)

	nextWeek, err := repo.FindLive(ctx, week.End.Add(time.Second))
	require.NoError(t, err)
	assert.Empty(t, nextWeek)
}

func TestGormMissionRepository_UserMissions(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormMissionRepository(db)
	ctx := context.Background()
	week := gamification.WeekOf(repoNow)
	def := gamification.Catalog()[0]
	mission := gamification.NewWeeklyMission(def, week)
	require.NoError(t, repo.InsertWeek(ctx, []gamification.Mission{mission}))
	user := uuid.New()

	_, err := repo.FindUserMission(ctx, user, mission.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	um := &gamification.UserMission{ID: uuid.New(), UserID: user, MissionID: mission.ID}
	require.True(t, um.Complete(repoNow))
	require.NoError(t, repo.SaveUserMission(ctx, um))

	loaded, err := repo.FindUserMission(ctx, user, mission.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Completed)
	require.NotNil(t, loaded.CompletedAt)

	list, err := repo.FindUserMissions(ctx, user, []uuid.UUID{mission.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGormSummaryRepository(t *testing.T) {
	db := newRepoDB(t)
	repo := NewGormSummaryRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()
	p := seedProduct(t, db, "Pañales", 100, 40000, seedCategory(t, db, "Bebés"))

	startOfDay := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	yesterday := newTestOrder(t, uuid.New(), uuid.New(), p, 1, startOfDay.Add(-time.Hour))
	require.NoError(t, yesterday.Confirm(startOfDay))
	require.NoError(t, orders.Create(ctx, yesterday))

	paidToday := newTestOrder(t, uuid.New(), uuid.New(), p, 2, repoNow)
	require.NoError(t, paidToday.Confirm(repoNow))
	require.NoError(t, orders.Create(ctx, paidToday))

	pendingToday := newTestOrder(t, paidToday.UserID, uuid.New(), p, 1, repoNow)
	require.NoError(t, orders.Create(ctx, pendingToday))

	_, err := NewGormProfileRepository(db).GetOrCreateForUpdate(ctx, uuid.New(), repoNow)
	require.NoError(t, err)

	today, err := repo.CountOrdersSince(ctx, startOfDay)
	require.NoError(t, err)
	assert.Equal(t, int64(2), today)

	revenueToday, err := repo.SumPaidRevenue(ctx, startOfDay)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80000).Equal(revenueToday), revenueToday.String())

	revenueAll, err := repo.SumPaidRevenue(ctx, time.Time{})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120000).Equal(revenueAll), revenueAll.String())

	customers, err := repo.CountCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), customers)
}
