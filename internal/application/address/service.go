// Package address manages the delivery addresses a customer owns.
package address

import (
	"context"

	"github.com/farmacia/backend/internal/domain/customer"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Service handles address operations for the calling user
type Service struct {
	repo   customer.AddressRepository
	clock  clockz.Clock
	logger *zap.Logger
}

// NewService creates a new address Service
func NewService(repo customer.AddressRepository, clock clockz.Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = clockz.RealClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, clock: clock, logger: logger}
}

// Create stores a new address owned by userID
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateAddressRequest) (*AddressResponse, error) {
	addr, err := customer.NewAddress(userID, req.Label, req.Street, req.City, req.Latitude, req.Longitude, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, addr); err != nil {
		return nil, err
	}
	resp := ToAddressResponse(addr)
	return &resp, nil
}

// List returns the addresses owned by userID
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	addrs, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AddressResponse, len(addrs))
	for i := range addrs {
		out[i] = ToAddressResponse(&addrs[i])
	}
	return out, nil
}

// Delete removes an address owned by userID. An address still used by an
// order cannot be removed.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	addr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	// Foreign addresses look missing to the caller.
	if !addr.BelongsTo(userID) {
		return shared.NewNotFoundError("Address")
	}

	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return shared.NewDomainError("ADDRESS_IN_USE", "Address is used by an existing order")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Address deleted",
		zap.String("address_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}
