package promotion

import (
	"context"
	"errors"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Service manages promotions for staff and exposes the live ones
type Service struct {
	repo         promotion.Repository
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	clock        clockz.Clock
	logger       *zap.Logger
}

// NewService creates a new promotion Service
func NewService(
	repo promotion.Repository,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
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
		repo:         repo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		clock:        clock,
		logger:       logger,
	}
}

// Create validates and stores a new active promotion
func (s *Service) Create(ctx context.Context, req PromotionRequest) (*PromotionResponse, error) {
	if err := s.checkTargets(ctx, req); err != nil {
		return nil, err
	}
	promo, err := promotion.NewPromotion(req.params(), s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, promo); err != nil {
		return nil, err
	}

	s.logger.Info("Promotion created",
		zap.String("promotion_id", promo.ID.String()),
		zap.String("kind", string(promo.Kind)),
	)
	resp := ToPromotionResponse(promo)
	return &resp, nil
}

// Update replaces the terms of an existing promotion
func (s *Service) Update(ctx context.Context, id uuid.UUID, req PromotionRequest) (*PromotionResponse, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTargets(ctx, req); err != nil {
		return nil, err
	}
	if err := promo.Update(req.params(), s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, promo); err != nil {
		return nil, err
	}
	resp := ToPromotionResponse(promo)
	return &resp, nil
}

// Deactivate hides a promotion from pricing. The row is kept.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	promo.Deactivate(s.clock.Now())
	if err := s.repo.Save(ctx, promo); err != nil {
		return err
	}
	s.logger.Info("Promotion deactivated", zap.String("promotion_id", id.String()))
	return nil
}

// GetByID returns one promotion
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*PromotionResponse, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPromotionResponse(promo)
	return &resp, nil
}

// ListActive returns promotions live right now
func (s *Service) ListActive(ctx context.Context) ([]PromotionResponse, error) {
	promos, err := s.repo.FindActive(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return ToPromotionResponses(promos), nil
}

// ListByProduct returns every promotion that names the product
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]PromotionResponse, error) {
	promos, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToPromotionResponses(promos), nil
}

// ListByCategory returns every promotion that names the category
func (s *Service) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]PromotionResponse, error) {
	promos, err := s.repo.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return ToPromotionResponses(promos), nil
}

// checkTargets makes sure the referenced product and category exist
func (s *Service) checkTargets(ctx context.Context, req PromotionRequest) error {
	if req.ProductID != nil {
		if _, err := s.productRepo.FindByID(ctx, *req.ProductID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Product")
			}
			return err
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Category")
			}
			return err
		}
	}
	return nil
}
