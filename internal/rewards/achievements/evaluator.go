package achievements

import (
	"context"
	"time"

	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/errors"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

// Evaluator scans the achievement catalog against a user's current stats and
// unlocks anything newly qualifying. The store's create-if-absent semantics
// make Evaluate safe to call repeatedly and concurrently for the same user.
type Evaluator struct {
	achievements repository.AchievementRepository
	transactions repository.TransactionRepository
	definitions  []types.Achievement
	logger       logging.Logger
	now          func() time.Time
}

func NewEvaluator(
	achievements repository.AchievementRepository,
	transactions repository.TransactionRepository,
	definitions []types.Achievement,
	logger logging.Logger,
) *Evaluator {
	return &Evaluator{
		achievements: achievements,
		transactions: transactions,
		definitions:  definitions,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Evaluate returns the IDs of achievements newly unlocked for the profile.
// Already-unlocked achievements and inactive definitions are skipped; the
// order of evaluation across achievements is immaterial.
func (e *Evaluator) Evaluate(ctx context.Context, profile *types.UserProfile) ([]string, error) {
	var unlocked []string

	for _, def := range e.definitions {
		if !def.Active || profile.HasAchievement(def.ID) {
			continue
		}

		stat, err := e.statFor(ctx, profile, def.Requirement)
		if err != nil {
			return unlocked, err
		}
		if stat < def.Requirement.Threshold {
			continue
		}

		applied, err := e.achievements.Unlock(ctx, &types.UserAchievement{
			UserAddress:   profile.Address,
			AchievementID: def.ID,
			UnlockedAt:    e.now().UTC(),
			Progress:      stat,
		}, def.RewardPoints)
		if err != nil {
			return unlocked, err
		}
		if !applied {
			// lost the race to a concurrent evaluation; nothing to do
			continue
		}

		profile.AchievementIDs = append(profile.AchievementIDs, def.ID)
		unlocked = append(unlocked, def.ID)
		metrics.AchievementsUnlockedTotal.WithLabelValues(def.ID).Inc()
		e.logger.Infof("Achievement unlocked: %s for %s (+%d points)", def.ID, profile.Address, def.RewardPoints)
	}

	return unlocked, nil
}

func (e *Evaluator) statFor(ctx context.Context, profile *types.UserProfile, req types.Requirement) (float64, error) {
	switch req.Type {
	case types.RequirementTxCount:
		if req.Window > 0 {
			count, err := e.transactions.CountByUserSince(ctx, profile.Address, e.now().UTC().Add(-req.Window))
			if err != nil {
				return 0, err
			}
			return float64(count), nil
		}
		return float64(profile.TotalTransactions), nil
	case types.RequirementPoints:
		return float64(profile.TotalPoints), nil
	case types.RequirementStreak:
		return float64(profile.WeeklyStreak), nil
	case types.RequirementBalance:
		return profile.TokenBalance, nil
	case types.RequirementReferrals:
		return float64(profile.ReferralCount), nil
	default:
		return 0, errors.Configurationf("unknown achievement requirement type: %s", req.Type)
	}
}
