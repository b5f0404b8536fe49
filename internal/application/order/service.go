package order

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/customer"
	"github.com/farmacia/backend/internal/domain/delivery"
	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/payment"
	"github.com/farmacia/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Rewards is the gamification collaborator of the order pipeline
type Rewards interface {
	// ProcessOrder awards points and missions for a committed order. It is
	// idempotent per order id.
	ProcessOrder(ctx context.Context, o *order.Order) (*gamification.Profile, error)
	LevelOf(ctx context.Context, userID uuid.UUID) (int, error)
}

// Service places, confirms, cancels and tracks orders
type Service struct {
	txScope         TransactionScope
	orderRepo       order.Repository
	productRepo     catalog.ProductRepository
	promotionRepo   promotion.Repository
	addressRepo     customer.AddressRepository
	rewards         Rewards
	gateway         payment.Gateway
	clock           clockz.Clock
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewService creates a new order Service
func NewService(
	txScope TransactionScope,
	orderRepo order.Repository,
	productRepo catalog.ProductRepository,
	promotionRepo promotion.Repository,
	addressRepo customer.AddressRepository,
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
		txScope:       txScope,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		addressRepo:   addressRepo,
		clock:         clock,
		logger:        logger,
	}
}

// SetRewards sets the gamification collaborator run after each order commit
func (s *Service) SetRewards(r Rewards) {
	s.rewards = r
}

// SetPaymentGateway sets the provider used for payment intents
func (s *Service) SetPaymentGateway(g payment.Gateway) {
	s.gateway = g
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create places an order for userID. Every product row is locked, checked,
// priced and decremented inside one transaction; any failing line rolls the
// whole order back. Rewards run after commit and never fail the order.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("EMPTY_ORDER", "Order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
	}

	address, err := s.addressRepo.FindByID(ctx, req.AddressID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if address == nil || !address.BelongsTo(userID) {
		return nil, shared.NewValidationError("INVALID_ADDRESS", "Address does not belong to the user")
	}

	now := s.clock.Now()
	o, err := order.NewOrder(userID, address.ID, now)
	if err != nil {
		return nil, err
	}

	var lines []LinePricingResponse
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines = make([]LinePricingResponse, 0, len(req.Items))

		products, err := lockProducts(ctx, repos.ProductRepo(), req.Items)
		if err != nil {
			return err
		}

		for _, in := range req.Items {
			p := products[in.ProductID]
			available := p.Stock
			if err := p.Reserve(in.Quantity); err != nil {
				return err
			}

			candidates, err := repos.PromotionRepo().FindCandidates(ctx, p.ID, p.CategoryID, now)
			if err != nil {
				return err
			}
			line := promotion.Resolve(productRef(p), in.Quantity, now, candidates)

			if err := repos.ProductRepo().DecrementStock(ctx, p.ID, in.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewInsufficientStockError(p.Name, available, in.Quantity)
				}
				return err
			}

			if _, err := o.AddLine(p.ID, line); err != nil {
				return err
			}
			lines = append(lines, toLinePricingResponse(p.ID, p.Name, line))
		}

		return repos.OrderRepo().Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", o.Total.String()),
		zap.Int("items", len(o.Items)),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderWithAmount(ctx, o.Total)
	}

	resp := &CreateOrderResponse{
		OrderID:        o.ID,
		Total:          o.Total,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		DeliveryStatus: o.DeliveryStatus,
		Items:          lines,
	}

	if s.rewards != nil {
		profile, err := s.rewards.ProcessOrder(ctx, o)
		if err != nil {
			s.logger.Warn("Order rewards failed",
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		} else {
			resp.Gamification = &RewardSummary{Level: profile.Level, Points: profile.Points}
		}
	}
	return resp, nil
}

// lockProducts loads every distinct product FOR UPDATE in ascending id
// order so that concurrent orders sharing products cannot deadlock.
func lockProducts(ctx context.Context, repo catalog.ProductRepository, items []CreateOrderItemInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !slices.Contains(ids, item.ProductID) {
			ids = append(ids, item.ProductID)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	products := make(map[uuid.UUID]*catalog.Product, len(ids))
	for _, id := range ids {
		p, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError(fmt.Sprintf("Product %s", id))
			}
			return nil, err
		}
		products[id] = p
	}
	return products, nil
}

func productRef(p *catalog.Product) promotion.ProductRef {
	return promotion.ProductRef{ID: p.ID, CategoryID: p.CategoryID, Price: p.Price}
}

// Confirm marks the order paid and confirmed and writes the sale to the
// ledgers. The order row is locked so only one of two racing confirmations
// can succeed.
func (s *Service) Confirm(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*OrderResponse, error) {
	var confirmed *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(o.UserID) {
			return shared.NewDomainError("FORBIDDEN", "You cannot confirm this order")
		}

		now := s.clock.Now()
		if err := o.Confirm(now); err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateState(ctx, o); err != nil {
			return err
		}

		income, moves := order.SaleLedgerEntries(o, now)
		if err := repos.LedgerRepo().AppendFinancial(ctx, &income); err != nil {
			return err
		}
		if err := repos.LedgerRepo().AppendStock(ctx, moves); err != nil {
			return err
		}
		confirmed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order confirmed",
		zap.String("order_id", orderID.String()),
		zap.String("actor_id", actor.UserID.String()),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderConfirmed(ctx)
	}
	resp := ToOrderResponse(confirmed)
	return &resp, nil
}

// Cancel deletes a pending order and puts its quantities back on the shelf
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID, actor shared.Actor) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(o.UserID) {
			return shared.NewDomainError("FORBIDDEN", "You cannot cancel this order")
		}
		if err := o.EnsureCancellable(); err != nil {
			return err
		}

		quantities := o.ProductQuantities()
		ids := make([]uuid.UUID, 0, len(quantities))
		for id := range quantities {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
		for _, id := range ids {
			if err := repos.ProductRepo().RestoreStock(ctx, id, quantities[id]); err != nil {
				return err
			}
		}
		return repos.OrderRepo().Delete(ctx, o.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Order cancelled",
		zap.String("order_id", orderID.String()),
		zap.String("actor_id", actor.UserID.String()),
	)
	return nil
}

// findAccessible loads an order the actor may see
func (s *Service) findAccessible(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o.UserID) {
		return nil, shared.NewDomainError("FORBIDDEN", "You do not have access to this order")
	}
	return o, nil
}

// GetDetails returns the stored order together with live pricing computed
// from the promotions valid right now.
func (s *Service) GetDetails(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*OrderDetailResponse, error) {
	o, err := s.findAccessible(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	now := s.clock.Now()
	resp := &OrderDetailResponse{
		OrderResponse: ToOrderResponse(o),
		LiveItems:     make([]LinePricingResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
		candidates, err := s.promotionRepo.FindCandidates(ctx, p.ID, p.CategoryID, now)
		if err != nil {
			return nil, err
		}
		line := promotion.Resolve(productRef(p), item.Quantity, now, candidates)
		resp.LiveItems = append(resp.LiveItems, toLinePricingResponse(p.ID, p.Name, line))
		resp.LiveTotal = resp.LiveTotal.Add(line.DiscountedTotal)
	}
	return resp, nil
}

// List returns the actor's own orders, or every order for staff and admin
func (s *Service) List(ctx context.Context, actor shared.Actor, filter shared.Filter) ([]OrderResponse, int64, error) {
	var owner *uuid.UUID
	if !actor.IsBackOffice() {
		id := actor.UserID
		owner = &id
	}
	orders, total, err := s.orderRepo.FindAll(ctx, owner, filter.Normalize())
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// Track simulates the courier for a paid order. Preparation time shrinks
// with the owner's level.
func (s *Service) Track(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*TrackingResponse, error) {
	o, err := s.findAccessible(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	if !o.IsPaid() {
		return nil, shared.NewDomainError("FORBIDDEN", "Order must be paid before it can be tracked")
	}

	address, err := s.addressRepo.FindByID(ctx, o.AddressID)
	if err != nil {
		return nil, err
	}

	level := 1
	if s.rewards != nil {
		level, err = s.rewards.LevelOf(ctx, o.UserID)
		if err != nil {
			return nil, err
		}
	}

	dest := delivery.Point{Lat: address.Latitude, Lng: address.Longitude}
	tracking := delivery.Track(o.CreatedAt, dest, level, s.clock.Now())
	resp := ToTrackingResponse(o.ID, tracking)
	return &resp, nil
}

// CreatePaymentIntent opens a payment with the gateway for the order's
// frozen total and remembers the intent on the order.
func (s *Service) CreatePaymentIntent(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*PaymentIntentResponse, error) {
	if s.gateway == nil {
		return nil, fmt.Errorf("payment gateway not configured")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(actor.UserID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the order owner can pay for it")
	}
	if o.IsPaid() {
		return nil, shared.NewDomainError("ORDER_ALREADY_PAID", "Order has already been paid")
	}

	// no currency: the gateway charges in its configured one
	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		Amount:   o.Total,
		Metadata: map[string]string{"order_id": o.ID.String()},
	})
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		locked, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := locked.AttachPaymentIntent(intent.ID, s.clock.Now()); err != nil {
			return err
		}
		return repos.OrderRepo().UpdateState(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	return &PaymentIntentResponse{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}
