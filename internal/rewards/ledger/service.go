// Package ledger is the write path for point-earning transaction events.
// Events arrive from the external ingestion collaborator already validated
// on-chain; the ledger validates shape, scores points, appends the immutable
// record and updates the owning profile as one atomic unit per user.
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradequest/rewards-backend/internal/rewards/achievements"
	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/internal/rewards/scoring"
	"github.com/tradequest/rewards-backend/internal/rewards/tiers"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/errors"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

// IdentityLookup resolves a display profile for an address. Lookup failures
// never fail ledger operations.
type IdentityLookup interface {
	LookupByAddress(ctx context.Context, address string) (*types.UpdateProfileIdentityRequest, error)
}

type Service struct {
	users     repository.UserRepository
	ledger    repository.TransactionRepository
	evaluator *achievements.Evaluator
	tierTable *tiers.Table
	identity  IdentityLookup
	logger    logging.Logger
	now       func() time.Time
}

func NewService(
	users repository.UserRepository,
	ledger repository.TransactionRepository,
	evaluator *achievements.Evaluator,
	tierTable *tiers.Table,
	identity IdentityLookup,
	logger logging.Logger,
) *Service {
	return &Service{
		users:     users,
		ledger:    ledger,
		evaluator: evaluator,
		tierTable: tierTable,
		identity:  identity,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordTransaction validates and scores the event, appends the completed
// transaction, increments the profile totals atomically, then evaluates
// achievements against the updated profile. A missing profile is lazily
// created (first observed activity).
func (s *Service) RecordTransaction(ctx context.Context, req *types.CreateTransactionRequest) (*types.Transaction, error) {
	address := strings.ToLower(req.UserAddress)
	if !types.IsValidEthAddress(address) {
		return nil, errors.Validationf("invalid user address: %s", req.UserAddress)
	}
	if req.Amount <= 0 {
		return nil, errors.Validationf("amount must be positive, got %f", req.Amount)
	}
	if req.Type == types.TxTypeStreakBonus {
		return nil, errors.Validationf("streak bonuses are written by the distribution job only")
	}

	points, err := scoring.PointsFor(req.Type, req.Amount)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByAddress(ctx, address); err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		if err := s.createProfile(ctx, address); err != nil {
			return nil, err
		}
	}

	tx := &types.Transaction{
		ID:          uuid.NewString(),
		UserAddress: address,
		Type:        req.Type,
		Amount:      req.Amount,
		Points:      points,
		Status:      types.TxStatusCompleted,
		TxHash:      req.TxHash,
		Timestamp:   s.now().UTC(),
		Trade:       req.Trade,
		Chain:       req.Chain,
	}

	profile, err := s.ledger.ApplyTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("Recorded %s transaction %s for %s: +%d points", tx.Type, tx.ID, address, points)

	if _, err := s.evaluator.Evaluate(ctx, profile); err != nil {
		// the transaction itself is committed; achievement evaluation will
		// catch up on the next write for this user
		s.logger.Errorf("Achievement evaluation failed for %s: %v", address, err)
	}

	return tx, nil
}

// Reconcile verifies the profile invariant: totalPoints equals the sum of
// points across the user's completed transactions. Returns the delta
// (profile minus ledger); zero means consistent.
func (s *Service) Reconcile(ctx context.Context, address string) (int64, error) {
	profile, err := s.users.GetByAddress(ctx, address)
	if err != nil {
		return 0, err
	}
	sum, err := s.ledger.SumPointsByUser(ctx, address)
	if err != nil {
		return 0, err
	}
	return profile.TotalPoints - sum, nil
}

func (s *Service) createProfile(ctx context.Context, address string) error {
	now := s.now().UTC()
	profile := &types.UserProfile{
		Address:      address,
		Tier:         s.tierTable.TierFor(0).Name,
		JoinedAt:     now,
		LastActiveAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, profile); err != nil {
		// a concurrent first transaction may have created it already
		if errors.IsConflict(err) {
			return nil
		}
		return err
	}
	s.logger.Infof("Created profile for %s on first activity", address)

	s.enrichIdentity(ctx, address)
	return nil
}

// enrichIdentity stores whatever the lookup service returns; its
// availability never affects ledger correctness.
func (s *Service) enrichIdentity(ctx context.Context, address string) {
	if s.identity == nil {
		return
	}
	identity, err := s.identity.LookupByAddress(ctx, address)
	if err != nil || identity == nil {
		s.logger.Debugf("Identity lookup unavailable for %s: %v", address, err)
		return
	}
	identity.UserAddress = address
	if err := s.users.UpdateIdentity(ctx, identity); err != nil {
		s.logger.Warnf("Failed to store identity for %s: %v", address, err)
	}
}
