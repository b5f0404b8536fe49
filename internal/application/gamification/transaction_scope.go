package gamification

import (
	"context"

	"github.com/farmacia/backend/internal/domain/gamification"
)

// TransactionScope runs gamification writes atomically
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one transaction. A profile obtained with
// GetOrCreateForUpdate stays locked until Execute returns.
type TransactionalRepositories interface {
	ProfileRepo() gamification.ProfileRepository
	MissionRepo() gamification.MissionRepository
}

// NoOpTransactionScope runs fn without a transaction
type NoOpTransactionScope struct {
	profileRepo gamification.ProfileRepository
	missionRepo gamification.MissionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(profileRepo gamification.ProfileRepository, missionRepo gamification.MissionRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{profileRepo: profileRepo, missionRepo: missionRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProfileRepo() gamification.ProfileRepository { return s.profileRepo }
func (s *NoOpTransactionScope) MissionRepo() gamification.MissionRepository { return s.missionRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
