package gamification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Wednesday of the week starting Monday 2031-03-03
var testNow = time.Date(2031, 3, 5, 10, 0, 0, 0, time.UTC)

type fixedSampler []int

func (f fixedSampler) Sample(_, _ int) []int { return f }

type fixture struct {
	profiles    *testutil.MockProfileRepository
	missions    *testutil.MockMissionRepository
	products    *testutil.MockProductRepository
	categories  *testutil.MockCategoryRepository
	orders      *testutil.MockOrderRepository
	idempotency *testutil.MockIdempotencyStore
	service     *Service
}

func newFixture(sampler gamification.Sampler) *fixture {
	f := &fixture{
		profiles:    new(testutil.MockProfileRepository),
		missions:    new(testutil.MockMissionRepository),
		products:    new(testutil.MockProductRepository),
		categories:  new(testutil.MockCategoryRepository),
		orders:      new(testutil.MockOrderRepository),
		idempotency: new(testutil.MockIdempotencyStore),
	}
	f.service = NewService(
		NewNoOpTransactionScope(f.profiles, f.missions),
		Repositories{
			Profiles:   f.profiles,
			Missions:   f.missions,
			Products:   f.products,
			Categories: f.categories,
			Orders:     f.orders,
		},
		sampler,
		testutil.NewClockAt(testNow),
		nil,
	)
	f.service.SetIdempotencyStore(f.idempotency, time.Hour)
	return f
}

func weekMissions(codes ...gamification.Code) []gamification.Mission {
	week := gamification.WeekOf(testNow)
	out := make([]gamification.Mission, 0, len(codes))
	for _, c := range codes {
		def, _ := gamification.Lookup(c)
		out = append(out, gamification.NewWeeklyMission(def, week))
	}
	return out
}

func TestService_AddPoints_CarriesIntoLevel(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	profile := &gamification.Profile{ID: uuid.New(), UserID: userID, Level: 1, Points: 99}

	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(profile, nil)
	f.profiles.On("Save", ctx, profile).Return(nil)

	got, err := f.service.AddPoints(ctx, userID, decimal.NewFromInt(2450))

	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, 1, got.Points)
	assert.Equal(t, testNow, got.UpdatedAt)
	f.profiles.AssertExpectations(t)
}

func TestService_AddPoints_BelowOnePointDoesNotWrite(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	profile := gamification.NewProfile(userID)

	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(profile, nil)

	got, err := f.service.AddPoints(ctx, userID, decimal.NewFromInt(999))

	require.NoError(t, err)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 0, got.Points)
	f.profiles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_AddPoints_PointsStayBelowHundred(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	profile := gamification.NewProfile(userID)

	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(profile, nil)
	f.profiles.On("Save", ctx, profile).Return(nil)

	for _, amount := range []int64{999999, 1000, 57000, 3000000, 42000} {
		_, err := f.service.AddPoints(ctx, userID, decimal.NewFromInt(amount))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, profile.Points, 0)
		assert.Less(t, profile.Points, gamification.PointsPerLevel)
	}
	// 999 + 1 + 57 + 3000 + 42 = 4099 points
	assert.Equal(t, 41, profile.Level)
	assert.Equal(t, 99, profile.Points)
}

func TestService_EnsureWeeklyMissions_ExistingWeekIsNoOp(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	week := gamification.WeekOf(testNow)
	existing := weekMissions(gamification.CodeEarlyBird, gamification.CodeFirstOrder, gamification.CodeMultiQty)

	f.missions.On("FindByWeek", ctx, week.Start).Return(existing, nil)

	got, err := f.service.EnsureWeeklyMissions(ctx)

	require.NoError(t, err)
	assert.Equal(t, existing, got)
	f.missions.AssertNotCalled(t, "LockWeek", mock.Anything, mock.Anything)
	f.missions.AssertNotCalled(t, "InsertWeek", mock.Anything, mock.Anything)
}

func TestService_EnsureWeeklyMissions_DrawsThreeFromSampler(t *testing.T) {
	f := newFixture(fixedSampler{8, 0, 4})
	ctx := context.Background()
	week := gamification.WeekOf(testNow)

	var inserted []gamification.Mission
	f.missions.On("FindByWeek", ctx, week.Start).Return([]gamification.Mission{}, nil).Twice()
	f.missions.On("LockWeek", ctx, week).Return(nil)
	f.missions.On("InsertWeek", ctx, mock.AnythingOfType("[]gamification.Mission")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).([]gamification.Mission)
		}).Return(nil)
	reread := f.missions.On("FindByWeek", ctx, week.Start)
	reread.Run(func(mock.Arguments) {
		reread.ReturnArguments = mock.Arguments{inserted, nil}
	})

	got, err := f.service.EnsureWeeklyMissions(ctx)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, gamification.CodeBigSpender, got[0].Code)
	assert.Equal(t, gamification.CodeAllTypes, got[1].Code)
	assert.Equal(t, gamification.CodeLoyalClient, got[2].Code)
	for _, m := range got {
		assert.Equal(t, week.Start, m.WeekStart)
		assert.Equal(t, week.End, m.WeekEnd)
		assert.True(t, m.Active)
	}
}

func TestService_EnsureWeeklyMissions_ConcurrentInitialiserWins(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	week := gamification.WeekOf(testNow)
	theirs := weekMissions(gamification.CodeVitaminFan, gamification.CodePromoHunter, gamification.CodeFamilyOrder)

	f.missions.On("FindByWeek", ctx, week.Start).Return([]gamification.Mission{}, nil).Once()
	f.missions.On("LockWeek", ctx, week).Return(nil)
	f.missions.On("FindByWeek", ctx, week.Start).Return(theirs, nil).Once()

	got, err := f.service.EnsureWeeklyMissions(ctx)

	require.NoError(t, err)
	assert.Equal(t, theirs, got)
	f.missions.AssertNotCalled(t, "InsertWeek", mock.Anything, mock.Anything)
}

func TestService_EvaluateMissions_CompletesEveryMatchingMission(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	week := gamification.WeekOf(testNow)
	missions := weekMissions(gamification.CodeBigSpender, gamification.CodeFamilyOrder, gamification.CodeMultiQty)
	profile := gamification.NewProfile(userID)

	f.missions.On("FindByWeek", ctx, week.Start).Return(missions, nil)
	f.missions.On("FindUserMissions", ctx, userID, mock.Anything).Return([]gamification.UserMission{}, nil)
	f.missions.On("FindUserMission", ctx, userID, mock.Anything).Return(nil, shared.ErrNotFound)
	f.missions.On("SaveUserMission", ctx, mock.AnythingOfType("*gamification.UserMission")).Return(nil)
	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(profile, nil)
	f.profiles.On("Save", ctx, profile).Return(nil)

	lines := make([]gamification.LineFact, 0, 5)
	for i := 0; i < 5; i++ {
		lines = append(lines, gamification.LineFact{ProductID: uuid.New(), CategoryID: uuid.New(), Quantity: 1})
	}
	facts := gamification.OrderFacts{
		OrderID:   uuid.New(),
		UserID:    userID,
		CreatedAt: testNow,
		Total:     decimal.NewFromInt(120000),
		Lines:     lines,
	}

	completed, err := f.service.EvaluateMissions(ctx, facts)

	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, gamification.CodeBigSpender, completed[0].Code)
	assert.Equal(t, gamification.CodeFamilyOrder, completed[1].Code)
	assert.Equal(t, 35, profile.Points)
	f.missions.AssertNumberOfCalls(t, "SaveUserMission", 2)
}

func TestService_EvaluateMissions_SkipsCompletedAndContinuesAfterFailure(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	week := gamification.WeekOf(testNow)
	missions := weekMissions(gamification.CodeBigSpender, gamification.CodeFirstOrder, gamification.CodeMultiQty)
	profile := gamification.NewProfile(userID)
	doneAt := testNow.Add(-time.Hour)

	f.missions.On("FindByWeek", ctx, week.Start).Return(missions, nil)
	f.missions.On("FindUserMissions", ctx, userID, mock.Anything).Return([]gamification.UserMission{
		{ID: uuid.New(), UserID: userID, MissionID: missions[0].ID, Completed: true, CompletedAt: &doneAt},
	}, nil)
	f.missions.On("FindUserMission", ctx, userID, missions[1].ID).Return(nil, errors.New("connection reset"))
	f.missions.On("FindUserMission", ctx, userID, missions[2].ID).Return(nil, shared.ErrNotFound)
	f.missions.On("SaveUserMission", ctx, mock.AnythingOfType("*gamification.UserMission")).Return(nil)
	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(profile, nil)
	f.profiles.On("Save", ctx, profile).Return(nil)

	facts := gamification.OrderFacts{
		UserID:    userID,
		CreatedAt: testNow,
		Total:     decimal.NewFromInt(500000),
		Lines:     []gamification.LineFact{{ProductID: uuid.New(), CategoryID: uuid.New(), Quantity: 4}},
	}

	completed, err := f.service.EvaluateMissions(ctx, facts)

	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, gamification.CodeMultiQty, completed[0].Code)
	assert.Equal(t, 10, profile.Points)
}

func TestService_EvaluateMissions_AlreadyFlippedGrantsNothing(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	week := gamification.WeekOf(testNow)
	missions := weekMissions(gamification.CodeBigSpender)
	profile := gamification.NewProfile(userID)
	doneAt := testNow

	f.missions.On("FindByWeek", ctx, week.Start).Return(missions, nil)
	f.missions.On("FindUserMissions", ctx, userID, mock.Anything).Return([]gamification.UserMission{}, nil)
	// a concurrent evaluation completed it between the read and the lock
	f.missions.On("FindUserMission", ctx, userID, missions[0].ID).Return(&gamification.UserMission{
		ID: uuid.New(), UserID: userID, MissionID: missions[0].ID, Completed: true, CompletedAt: &doneAt,
	}, nil)
	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(profile, nil)

	completed, err := f.service.EvaluateMissions(ctx, gamification.OrderFacts{
		UserID: userID, CreatedAt: testNow, Total: decimal.NewFromInt(200000),
	})

	require.NoError(t, err)
	assert.Empty(t, completed)
	assert.Equal(t, 0, profile.Points)
	f.missions.AssertNotCalled(t, "SaveUserMission", mock.Anything, mock.Anything)
	f.profiles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_ProcessOrder_AwardsPointsAndMissions(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	week := gamification.WeekOf(testNow)

	vitamins := catalog.Category{ID: uuid.New(), Name: "Vitaminas y suplementos"}
	babies := catalog.Category{ID: uuid.New(), Name: "Bebés"}
	product := catalog.Product{BaseEntity: shared.BaseEntity{ID: uuid.New()}, CategoryID: vitamins.ID}

	o := &order.Order{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: testNow},
		UserID:     userID,
		Total:      decimal.NewFromInt(45000),
		Items:      []order.Item{{ID: uuid.New(), ProductID: product.ID, Quantity: 1}},
	}
	missions := weekMissions(gamification.CodeVitaminFan, gamification.CodeAllTypes, gamification.CodeLoyalClient)
	profile := gamification.NewProfile(userID)

	f.idempotency.On("MarkProcessed", ctx, "order:"+o.ID.String()+":points", time.Hour).Return(true, nil)
	f.idempotency.On("MarkProcessed", ctx, "order:"+o.ID.String()+":missions", time.Hour).Return(true, nil)
	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(profile, nil)
	f.profiles.On("Save", ctx, profile).Return(nil)
	f.products.On("FindByIDs", ctx, []uuid.UUID{product.ID}).Return([]catalog.Product{product}, nil)
	f.categories.On("FindAll", ctx).Return([]catalog.Category{vitamins, babies}, nil)
	f.orders.On("CountByUserBetween", ctx, userID, week.Start, week.End).Return(int64(1), nil)
	f.missions.On("FindByWeek", ctx, week.Start).Return(missions, nil)
	f.missions.On("FindUserMissions", ctx, userID, mock.Anything).Return([]gamification.UserMission{}, nil)
	f.missions.On("FindUserMission", ctx, userID, missions[0].ID).Return(nil, shared.ErrNotFound)
	f.missions.On("SaveUserMission", ctx, mock.AnythingOfType("*gamification.UserMission")).Return(nil)
	f.profiles.On("FindByUser", ctx, userID).Return(profile, nil)

	got, err := f.service.ProcessOrder(ctx, o)

	require.NoError(t, err)
	// 45 spend points + 15 for vitamin_fan; all_types and loyal_client do not match
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 60, got.Points)
	f.missions.AssertNumberOfCalls(t, "SaveUserMission", 1)
}

func TestService_ProcessOrder_SecondCallIsNoOp(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	o := &order.Order{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: testNow},
		UserID:     userID,
		Total:      decimal.NewFromInt(90000),
	}
	stored := &gamification.Profile{UserID: userID, Level: 3, Points: 12}

	f.idempotency.On("MarkProcessed", ctx, "order:"+o.ID.String()+":points", time.Hour).Return(false, nil)
	f.idempotency.On("MarkProcessed", ctx, "order:"+o.ID.String()+":missions", time.Hour).Return(false, nil)
	f.profiles.On("FindByUser", ctx, userID).Return(stored, nil)

	got, err := f.service.ProcessOrder(ctx, o)

	require.NoError(t, err)
	assert.Equal(t, stored, got)
	f.profiles.AssertNotCalled(t, "GetOrCreateForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ProcessOrder_ReleasesKeyWhenPointsFail(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	o := &order.Order{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: testNow},
		UserID:     userID,
		Total:      decimal.NewFromInt(5000),
	}
	key := "order:" + o.ID.String() + ":points"

	f.idempotency.On("MarkProcessed", ctx, key, time.Hour).Return(true, nil)
	f.idempotency.On("Release", ctx, key).Return(nil)
	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(nil, errors.New("deadlock detected"))

	_, err := f.service.ProcessOrder(ctx, o)

	require.Error(t, err)
	f.idempotency.AssertCalled(t, "Release", ctx, key)
	f.idempotency.AssertNotCalled(t, "MarkProcessed", ctx, "order:"+o.ID.String()+":missions", mock.Anything)
}

func TestService_ProcessOrder_RetriesMissionsAfterEvaluationFailure(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	week := gamification.WeekOf(testNow)

	vitamins := catalog.Category{ID: uuid.New(), Name: "Vitaminas y suplementos"}
	babies := catalog.Category{ID: uuid.New(), Name: "Bebés"}
	product := catalog.Product{BaseEntity: shared.BaseEntity{ID: uuid.New()}, CategoryID: vitamins.ID}
	o := &order.Order{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: testNow},
		UserID:     userID,
		Total:      decimal.NewFromInt(10000),
		Items:      []order.Item{{ID: uuid.New(), ProductID: product.ID, Quantity: 1}},
	}
	missions := weekMissions(gamification.CodeVitaminFan, gamification.CodeAllTypes, gamification.CodeLoyalClient)
	profile := gamification.NewProfile(userID)
	pointsKey := "order:" + o.ID.String() + ":points"
	missionsKey := "order:" + o.ID.String() + ":missions"

	// first call: points land, mission lookup fails outright
	f.idempotency.On("MarkProcessed", ctx, pointsKey, time.Hour).Return(true, nil).Once()
	f.idempotency.On("MarkProcessed", ctx, missionsKey, time.Hour).Return(true, nil).Once()
	f.idempotency.On("Release", ctx, missionsKey).Return(nil).Once()
	f.missions.On("FindUserMissions", ctx, userID, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	// retry: points already granted, missions evaluated again
	f.idempotency.On("MarkProcessed", ctx, pointsKey, time.Hour).Return(false, nil).Once()
	f.idempotency.On("MarkProcessed", ctx, missionsKey, time.Hour).Return(true, nil).Once()
	f.missions.On("FindUserMissions", ctx, userID, mock.Anything).Return([]gamification.UserMission{}, nil).Once()

	f.profiles.On("GetOrCreateForUpdate", ctx, userID, testNow).Return(profile, nil)
	f.profiles.On("Save", ctx, profile).Return(nil)
	f.profiles.On("FindByUser", ctx, userID).Return(profile, nil)
	f.products.On("FindByIDs", ctx, []uuid.UUID{product.ID}).Return([]catalog.Product{product}, nil)
	f.categories.On("FindAll", ctx).Return([]catalog.Category{vitamins, babies}, nil)
	f.orders.On("CountByUserBetween", ctx, userID, week.Start, week.End).Return(int64(1), nil)
	f.missions.On("FindByWeek", ctx, week.Start).Return(missions, nil)
	f.missions.On("FindUserMission", ctx, userID, missions[0].ID).Return(nil, shared.ErrNotFound)
	f.missions.On("SaveUserMission", ctx, mock.AnythingOfType("*gamification.UserMission")).Return(nil)

	first, err := f.service.ProcessOrder(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, 10, first.Points)
	f.idempotency.AssertCalled(t, "Release", ctx, missionsKey)
	f.missions.AssertNotCalled(t, "SaveUserMission", mock.Anything, mock.Anything)

	second, err := f.service.ProcessOrder(ctx, o)
	require.NoError(t, err)
	// spend points are not granted twice; vitamin_fan adds its 15
	assert.Equal(t, 25, second.Points)
	f.missions.AssertNumberOfCalls(t, "SaveUserMission", 1)
	f.idempotency.AssertNotCalled(t, "Release", ctx, pointsKey)
	f.idempotency.AssertExpectations(t)
}

func TestService_Profile_DefaultsForNewUser(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()

	f.profiles.On("FindByUser", ctx, userID).Return(nil, shared.ErrNotFound)

	got, err := f.service.Profile(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 0, got.Points)
	assert.Equal(t, 0, got.ProgressPercent)
	assert.Equal(t, "Bronze", got.RankName)
}

func TestService_UserMissions_MergesCompletion(t *testing.T) {
	f := newFixture(fixedSampler{0, 1, 2})
	ctx := context.Background()
	userID := uuid.New()
	week := gamification.WeekOf(testNow)
	missions := weekMissions(gamification.CodeEarlyBird, gamification.CodeFirstOrder, gamification.CodeMultiQty)
	doneAt := testNow.Add(-2 * time.Hour)

	f.missions.On("FindByWeek", ctx, week.Start).Return(missions, nil)
	f.missions.On("FindUserMissions", ctx, userID, mock.Anything).Return([]gamification.UserMission{
		{ID: uuid.New(), UserID: userID, MissionID: missions[1].ID, Completed: true, CompletedAt: &doneAt},
	}, nil)

	got, err := f.service.UserMissions(ctx, userID)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.False(t, got[0].Completed)
	assert.True(t, got[1].Completed)
	assert.Equal(t, &doneAt, got[1].CompletedAt)
	assert.Equal(t, "first_order", got[1].Code)
	assert.False(t, got[2].Completed)
}
