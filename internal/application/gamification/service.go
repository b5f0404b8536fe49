package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Repositories are the read-side collaborators of the Service
type Repositories struct {
	Profiles   gamification.ProfileRepository
	Missions   gamification.MissionRepository
	Products   catalog.ProductRepository
	Categories catalog.CategoryRepository
	Orders     order.Repository
}

// Service awards points, rotates weekly missions and evaluates mission
// completion for finished orders.
type Service struct {
	txScope         TransactionScope
	repos           Repositories
	idempotency     shared.IdempotencyStore
	idempotencyTTL  time.Duration
	sampler         gamification.Sampler
	clock           clockz.Clock
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewService creates a new gamification Service
func NewService(
	txScope TransactionScope,
	repos Repositories,
	sampler gamification.Sampler,
	clock clockz.Clock,
	logger *zap.Logger,
) *Service {
	if clock == nil {
		clock = clockz.RealClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		txScope:        txScope,
		repos:          repos,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		sampler:        sampler,
		clock:          clock,
		logger:         logger,
	}
}

// SetIdempotencyStore enables per-order reward deduplication
func (s *Service) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// AddPoints converts amount into points and applies them to the user's
// profile under a row lock, creating the profile if needed.
func (s *Service) AddPoints(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*gamification.Profile, error) {
	return s.grant(ctx, userID, gamification.PointsForSpend(amount))
}

func (s *Service) grant(ctx context.Context, userID uuid.UUID, earned int) (*gamification.Profile, error) {
	var profile *gamification.Profile
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.ProfileRepo().GetOrCreateForUpdate(ctx, userID, s.clock.Now())
		if err != nil {
			return err
		}
		gained := p.AddPoints(earned)
		if earned > 0 {
			p.UpdatedAt = s.clock.Now().UTC()
			if err := repos.ProfileRepo().Save(ctx, p); err != nil {
				return err
			}
		}
		if gained > 0 {
			s.logger.Info("User levelled up",
				zap.String("user_id", userID.String()),
				zap.Int("level", p.Level),
			)
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.businessMetrics != nil && earned > 0 {
		s.businessMetrics.RecordPointsAwarded(ctx, earned)
	}
	return profile, nil
}

// EnsureWeeklyMissions makes sure the current ISO week has its missions and
// returns them. Calling it again within the same week changes nothing.
func (s *Service) EnsureWeeklyMissions(ctx context.Context) ([]gamification.Mission, error) {
	week := gamification.WeekOf(s.clock.Now())

	existing, err := s.repos.Missions.FindByWeek(ctx, week.Start)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	var missions []gamification.Mission
	created := false
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.MissionRepo().LockWeek(ctx, week); err != nil {
			return err
		}
		current, err := repos.MissionRepo().FindByWeek(ctx, week.Start)
		if err != nil {
			return err
		}
		if len(current) > 0 {
			missions = current
			return nil
		}

		picked := gamification.PickWeekly(s.sampler)
		fresh := make([]gamification.Mission, 0, len(picked))
		for _, def := range picked {
			fresh = append(fresh, gamification.NewWeeklyMission(def, week))
		}
		if err := repos.MissionRepo().InsertWeek(ctx, fresh); err != nil {
			return err
		}
		missions, err = repos.MissionRepo().FindByWeek(ctx, week.Start)
		created = true
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("initialise missions for week %s: %w", week.Key(), err)
	}

	if created {
		codes := make([]string, len(missions))
		for i, m := range missions {
			codes[i] = string(m.Code)
		}
		s.logger.Info("Weekly missions initialised",
			zap.String("week_start", week.Key()),
			zap.Strings("codes", codes),
		)
	}
	return missions, nil
}

// EvaluateMissions runs every live mission the user has not completed
// against facts and grants the reward of each one that matches. A failure
// on one mission is logged and does not stop the others. It returns the
// missions completed by this call.
func (s *Service) EvaluateMissions(ctx context.Context, facts gamification.OrderFacts) ([]gamification.Mission, error) {
	missions, err := s.EnsureWeeklyMissions(ctx)
	if err != nil {
		return nil, err
	}
	if len(missions) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(missions))
	for i, m := range missions {
		ids[i] = m.ID
	}
	records, err := s.repos.Missions.FindUserMissions(ctx, facts.UserID, ids)
	if err != nil {
		return nil, err
	}
	byMission := make(map[uuid.UUID]gamification.UserMission, len(records))
	for _, r := range records {
		byMission[r.MissionID] = r
	}

	now := s.clock.Now()
	completed := make([]gamification.Mission, 0)
	for _, m := range missions {
		if !m.IsLiveAt(now) {
			continue
		}
		record, hasRecord := byMission[m.ID]
		if hasRecord && record.Completed {
			continue
		}
		predicate, ok := gamification.PredicateFor(m.Code)
		if !ok {
			s.logger.Warn("No predicate registered for mission", zap.String("code", string(m.Code)))
			continue
		}
		if !predicate(gamification.Evaluation{Order: facts, HasRecord: hasRecord}) {
			continue
		}

		granted, err := s.completeMission(ctx, facts.UserID, m)
		if err != nil {
			s.logger.Warn("Failed to complete mission",
				zap.String("user_id", facts.UserID.String()),
				zap.String("code", string(m.Code)),
				zap.Error(err),
			)
			continue
		}
		if granted {
			completed = append(completed, m)
		}
	}
	return completed, nil
}

// completeMission flips the user's record and grants the reward in one
// transaction. The profile lock serialises concurrent evaluations for the
// same user, so the record is re-read after taking it.
func (s *Service) completeMission(ctx context.Context, userID uuid.UUID, m gamification.Mission) (bool, error) {
	granted := false
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		profile, err := repos.ProfileRepo().GetOrCreateForUpdate(ctx, userID, s.clock.Now())
		if err != nil {
			return err
		}

		record, err := repos.MissionRepo().FindUserMission(ctx, userID, m.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if record == nil {
			record = &gamification.UserMission{
				ID:        uuid.New(),
				UserID:    userID,
				MissionID: m.ID,
			}
		}

		now := s.clock.Now()
		if !record.Complete(now) {
			return nil
		}
		if err := repos.MissionRepo().SaveUserMission(ctx, record); err != nil {
			return err
		}

		profile.AddPoints(m.PointsReward)
		profile.UpdatedAt = now.UTC()
		if err := repos.ProfileRepo().Save(ctx, profile); err != nil {
			return err
		}
		granted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if granted {
		s.logger.Info("Mission completed",
			zap.String("user_id", userID.String()),
			zap.String("code", string(m.Code)),
			zap.Int("points_reward", m.PointsReward),
		)
		if s.businessMetrics != nil {
			s.businessMetrics.RecordMissionCompleted(ctx, string(m.Code))
			s.businessMetrics.RecordPointsAwarded(ctx, m.PointsReward)
		}
	}
	return granted, nil
}

// ProcessOrder awards spend points for o and evaluates missions against it.
// Each stage runs at most once per order id; a stage that fails outright
// gives its key back so a later call can retry it. Repeated calls after
// both stages succeed return the current profile unchanged.
func (s *Service) ProcessOrder(ctx context.Context, o *order.Order) (*gamification.Profile, error) {
	pointsKey := orderStageKey(o.ID, "points")
	fresh, err := s.claim(ctx, pointsKey)
	if err != nil {
		return nil, fmt.Errorf("mark order %s processed: %w", o.ID, err)
	}
	if fresh {
		if _, err := s.AddPoints(ctx, o.UserID, o.Total); err != nil {
			s.release(ctx, pointsKey)
			return nil, err
		}
	}

	missionsKey := orderStageKey(o.ID, "missions")
	fresh, err = s.claim(ctx, missionsKey)
	if err != nil {
		return nil, fmt.Errorf("mark order %s processed: %w", o.ID, err)
	}
	if !fresh {
		s.logger.Debug("Order rewards already processed", zap.String("order_id", o.ID.String()))
		return s.currentProfile(ctx, o.UserID)
	}

	facts, err := s.buildFacts(ctx, o)
	if err != nil {
		s.logger.Warn("Skipping mission evaluation",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		s.release(ctx, missionsKey)
		return s.currentProfile(ctx, o.UserID)
	}
	if _, err := s.EvaluateMissions(ctx, facts); err != nil {
		s.logger.Warn("Mission evaluation failed",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		s.release(ctx, missionsKey)
	}
	return s.currentProfile(ctx, o.UserID)
}

func orderStageKey(orderID uuid.UUID, stage string) string {
	return "order:" + orderID.String() + ":" + stage
}

// claim reports whether key was not yet processed. Without a store every
// call is fresh.
func (s *Service) claim(ctx context.Context, key string) (bool, error) {
	if s.idempotency == nil {
		return true, nil
	}
	return s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
}

func (s *Service) release(ctx context.Context, key string) {
	if s.idempotency == nil {
		return
	}
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// buildFacts gathers what mission predicates need to know about o
func (s *Service) buildFacts(ctx context.Context, o *order.Order) (gamification.OrderFacts, error) {
	facts := gamification.OrderFacts{
		OrderID:   o.ID,
		UserID:    o.UserID,
		CreatedAt: o.CreatedAt,
		Total:     o.Total,
	}

	productIDs := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.repos.Products.FindByIDs(ctx, productIDs)
	if err != nil {
		return facts, err
	}
	productCategory := make(map[uuid.UUID]uuid.UUID, len(products))
	for _, p := range products {
		productCategory[p.ID] = p.CategoryID
	}

	categories, err := s.repos.Categories.FindAll(ctx)
	if err != nil {
		return facts, err
	}
	categoryName := make(map[uuid.UUID]string, len(categories))
	facts.AllCategoryIDs = make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		categoryName[c.ID] = c.Name
		facts.AllCategoryIDs = append(facts.AllCategoryIDs, c.ID)
	}

	facts.Lines = make([]gamification.LineFact, 0, len(o.Items))
	for _, item := range o.Items {
		categoryID := productCategory[item.ProductID]
		facts.Lines = append(facts.Lines, gamification.LineFact{
			ProductID:    item.ProductID,
			CategoryID:   categoryID,
			CategoryName: categoryName[categoryID],
			Quantity:     item.Quantity,
			HasPromotion: item.PromotionID != nil,
		})
	}

	week := gamification.WeekOf(o.CreatedAt)
	facts.OrdersThisWeek, err = s.repos.Orders.CountByUserBetween(ctx, o.UserID, week.Start, week.End)
	if err != nil {
		return facts, err
	}
	return facts, nil
}

// currentProfile returns the stored profile or the zeroed starting one
func (s *Service) currentProfile(ctx context.Context, userID uuid.UUID) (*gamification.Profile, error) {
	p, err := s.repos.Profiles.FindByUser(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return gamification.NewProfile(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// LevelOf returns the user's level, 1 when no profile exists yet
func (s *Service) LevelOf(ctx context.Context, userID uuid.UUID) (int, error) {
	p, err := s.currentProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	return p.Level, nil
}

// Profile returns level, points and rank for userID
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	p, err := s.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToProfileResponse(p)
	return &resp, nil
}

// ActiveMissions returns this week's missions, initialising them if needed
func (s *Service) ActiveMissions(ctx context.Context) ([]MissionResponse, error) {
	missions, err := s.EnsureWeeklyMissions(ctx)
	if err != nil {
		return nil, err
	}
	return ToMissionResponses(missions), nil
}

// UserMissions returns this week's missions with the user's completion state
func (s *Service) UserMissions(ctx context.Context, userID uuid.UUID) ([]UserMissionResponse, error) {
	missions, err := s.EnsureWeeklyMissions(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(missions))
	for i, m := range missions {
		ids[i] = m.ID
	}
	records, err := s.repos.Missions.FindUserMissions(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	byMission := make(map[uuid.UUID]gamification.UserMission, len(records))
	for _, r := range records {
		byMission[r.MissionID] = r
	}

	out := make([]UserMissionResponse, 0, len(missions))
	for _, m := range missions {
		resp := UserMissionResponse{MissionResponse: ToMissionResponse(m)}
		if r, ok := byMission[m.ID]; ok {
			resp.Completed = r.Completed
			resp.CompletedAt = r.CompletedAt
		}
		out = append(out, resp)
	}
	return out, nil
}
