// Package bonus runs the daily holding bonus distribution. The run enumerates
// every user in pages, computes the streak decision per user and applies the
// bonus through the store's claim-then-apply path, so concurrent or repeated
// runs for the same day converge on exactly one bonus per user.
package bonus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tradequest/rewards-backend/internal/rewards/achievements"
	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/internal/rewards/scoring"
	"github.com/tradequest/rewards-backend/internal/rewards/streak"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/errors"
	"github.com/tradequest/rewards-backend/pkg/logging"
	"github.com/tradequest/rewards-backend/pkg/retry"
)

const (
	defaultWorkers  = 8
	defaultPageSize = 200
)

// Engine distributes daily holding bonuses. One Engine is safe for concurrent
// Distribute calls; per-user idempotency comes from the store.
type Engine struct {
	users     repository.UserRepository
	bonuses   repository.BonusRepository
	evaluator *achievements.Evaluator
	logger    logging.Logger
	workers   int
	pageSize  int
	retryCfg  *retry.RetryConfig
	now       func() time.Time
}

type Option func(*Engine)

// WithWorkers bounds the number of concurrent per-user applications.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

func WithRetryConfig(cfg *retry.RetryConfig) Option {
	return func(e *Engine) { e.retryCfg = cfg }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(users repository.UserRepository, bonuses repository.BonusRepository, evaluator *achievements.Evaluator, logger logging.Logger, opts ...Option) *Engine {
	cfg := retry.DefaultRetryConfig()
	cfg.ShouldRetry = func(err error, _ int) bool { return errors.IsRetryable(err) }

	e := &Engine{
		users:     users,
		bonuses:   bonuses,
		evaluator: evaluator,
		logger:    logger,
		workers:   defaultWorkers,
		pageSize:  defaultPageSize,
		retryCfg:  cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Distribute runs the holding bonus for the engine's current UTC day. Every
// user either receives today's bonus, is skipped because it was already
// applied, or is reported in the failure list; one user's failure never stops
// the run. Cancelling the context stops enumeration after the in-flight users
// finish.
func (e *Engine) Distribute(ctx context.Context) (*types.DistributionResult, error) {
	today := e.now().UTC()
	result := &types.DistributionResult{
		Day:       streak.DayKey(today),
		StartedAt: today,
	}
	e.logger.Infof("Starting bonus distribution for %s", result.Day)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	work := make(chan *types.UserProfile)

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for profile := range work {
				outcome, err := e.applyForUser(ctx, today, profile)
				mu.Lock()
				result.Processed++
				switch {
				case err != nil:
					result.Failed = append(result.Failed, types.DistributionFailure{
						Address: profile.Address,
						Reason:  err.Error(),
					})
				case outcome:
					result.Bonused++
				default:
					result.Skipped++
				}
				mu.Unlock()
			}
		}()
	}

	enumErr := e.enumerate(ctx, work)
	close(work)
	wg.Wait()

	result.FinishedAt = e.now().UTC()
	e.logger.Infof("Bonus distribution for %s finished: %d processed, %d bonused, %d skipped, %d failed",
		result.Day, result.Processed, result.Bonused, result.Skipped, len(result.Failed))

	if enumErr != nil {
		return result, enumErr
	}
	return result, nil
}

// enumerate feeds every profile into work, page by page. Returns the context
// error when cancelled mid-run.
func (e *Engine) enumerate(ctx context.Context, work chan<- *types.UserProfile) error {
	var pageState []byte
	for {
		page, next, err := e.users.ListPage(ctx, e.pageSize, pageState)
		if err != nil {
			return err
		}
		for _, profile := range page {
			select {
			case work <- profile:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if next == nil {
			return nil
		}
		pageState = next
	}
}

// applyForUser computes the streak decision from the enumerated snapshot and
// applies the bonus. The store's day marker is authoritative: a stale snapshot
// can at worst produce a skip, never a second bonus.
func (e *Engine) applyForUser(ctx context.Context, today time.Time, profile *types.UserProfile) (bool, error) {
	decision := streak.Evaluate(today, profile.LastHoldingBonusDate, profile.WeeklyStreak)
	if decision.Decision == streak.DecisionAlreadyProcessed {
		return false, nil
	}

	day := streak.DayKey(today)
	bonus := &types.DailyBonus{
		UserAddress: profile.Address,
		Day:         day,
		Points:      scoring.BonusPoints(decision.Streak),
		Tokens:      scoring.BonusTokens(decision.Streak),
		Streak:      decision.Streak,
		Transaction: &types.Transaction{
			ID:          uuid.NewString(),
			UserAddress: profile.Address,
			Type:        types.TxTypeStreakBonus,
			Amount:      scoring.BonusTokens(decision.Streak),
			Points:      scoring.BonusPoints(decision.Streak),
			Status:      types.TxStatusCompleted,
			Timestamp:   today,
			Bonus: &types.BonusMeta{
				Streak:    decision.Streak,
				BonusType: "daily_holding",
			},
		},
	}

	outcome, err := retry.Retry(ctx, func() (bonusOutcome, error) {
		updated, applied, err := e.bonuses.ApplyDailyBonus(ctx, bonus)
		return bonusOutcome{profile: updated, applied: applied}, err
	}, e.retryCfg, e.logger)
	if err != nil {
		e.logger.Errorf("Bonus application failed for %s on %s: %v", profile.Address, day, err)
		return false, err
	}
	if outcome.applied {
		e.logger.Debugf("Applied day %d bonus to %s: +%d points, +%.1f tokens",
			decision.Streak, profile.Address, bonus.Points, bonus.Tokens)

		// bonus points can cross a milestone and the streak itself has
		// achievements, so re-run the catalog on the updated profile
		if _, err := e.evaluator.Evaluate(ctx, outcome.profile); err != nil {
			e.logger.Errorf("Achievement evaluation failed for %s after bonus: %v", profile.Address, err)
		}
	}
	return outcome.applied, nil
}

type bonusOutcome struct {
	profile *types.UserProfile
	applied bool
}
