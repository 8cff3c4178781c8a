package bonus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/rewards-backend/internal/rewards/achievements"
	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/internal/rewards/tiers"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/errors"
	"github.com/tradequest/rewards-backend/pkg/logging"
	"github.com/tradequest/rewards-backend/pkg/retry"
)

var day1 = time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)

func fastRetryConfig() *retry.RetryConfig {
	return &retry.RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterFactor:  0,
		ShouldRetry:   func(err error, _ int) bool { return errors.IsRetryable(err) },
	}
}

func newTestEngine(t *testing.T, clock time.Time, opts ...Option) (*Engine, *repository.InMemoryStore) {
	t.Helper()
	store := repository.NewInMemoryStore(tiers.MustNewTable(tiers.DefaultTiers))
	return newEngineFor(store, clock, opts...), store
}

// newEngineFor builds an engine over an existing store, so multi-day tests
// can advance the clock while keeping the accumulated state.
func newEngineFor(store *repository.InMemoryStore, clock time.Time, opts ...Option) *Engine {
	base := []Option{
		WithClock(func() time.Time { return clock }),
		WithRetryConfig(fastRetryConfig()),
		WithWorkers(4),
		WithPageSize(3),
	}
	evaluator := achievements.NewEvaluator(store.Achievements(), store.Transactions(),
		achievements.DefaultDefinitions, &logging.NoopLogger{}).
		WithClock(func() time.Time { return clock })
	return NewEngine(store.Users(), store.Bonuses(), evaluator, &logging.NoopLogger{}, append(base, opts...)...)
}

func seedUsers(t *testing.T, store *repository.InMemoryStore, n int) []string {
	t.Helper()
	addresses := make([]string, 0, n)
	for i := 0; i < n; i++ {
		address := fmt.Sprintf("0x%040x", i+1)
		err := store.Users().Create(context.Background(), &types.UserProfile{
			Address:  address,
			Tier:     types.TierBronze,
			JoinedAt: day1.AddDate(0, 0, -30),
		})
		require.NoError(t, err)
		addresses = append(addresses, address)
	}
	return addresses
}

func TestDistributeFirstDay(t *testing.T) {
	engine, store := newTestEngine(t, day1)
	addresses := seedUsers(t, store, 10)

	result, err := engine.Distribute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-07-01", result.Day)
	assert.Equal(t, 10, result.Processed)
	assert.Equal(t, 10, result.Bonused)
	assert.Equal(t, 0, result.Skipped)
	assert.True(t, result.Success())

	for _, address := range addresses {
		profile, err := store.Users().GetByAddress(context.Background(), address)
		require.NoError(t, err)
		assert.Equal(t, int64(10), profile.TotalPoints)
		assert.Equal(t, 1.0, profile.TokensEarned)
		assert.Equal(t, 1, profile.WeeklyStreak)
		require.NotNil(t, profile.LastHoldingBonusDate)
	}

	count, err := store.Bonuses().CountForDay(context.Background(), result.Day)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
}

func TestDistributeSameDayTwiceIsIdempotent(t *testing.T) {
	engine, store := newTestEngine(t, day1)
	addresses := seedUsers(t, store, 5)

	_, err := engine.Distribute(context.Background())
	require.NoError(t, err)

	second, err := engine.Distribute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, second.Processed)
	assert.Equal(t, 0, second.Bonused)
	assert.Equal(t, 5, second.Skipped)

	profile, err := store.Users().GetByAddress(context.Background(), addresses[0])
	require.NoError(t, err)
	assert.Equal(t, int64(10), profile.TotalPoints)
	assert.Equal(t, 1, profile.WeeklyStreak)
}

func TestDistributeConsecutiveDaysGrowStreak(t *testing.T) {
	engine, store := newTestEngine(t, day1)
	addresses := seedUsers(t, store, 3)

	_, err := engine.Distribute(context.Background())
	require.NoError(t, err)

	day2 := day1.AddDate(0, 0, 1)
	engine2 := newEngineFor(store, day2)

	result, err := engine2.Distribute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Bonused)

	profile, err := store.Users().GetByAddress(context.Background(), addresses[0])
	require.NoError(t, err)
	// 10 on day one, 15 on day two
	assert.Equal(t, int64(25), profile.TotalPoints)
	assert.Equal(t, 2, profile.WeeklyStreak)
	assert.Equal(t, 1.5+1.0, profile.TokensEarned)
}

func TestDistributeGapResetsStreak(t *testing.T) {
	engine, store := newTestEngine(t, day1)
	address := seedUsers(t, store, 1)[0]

	_, err := engine.Distribute(context.Background())
	require.NoError(t, err)

	// skip two days, then run again
	day4 := day1.AddDate(0, 0, 3)
	engine2 := newEngineFor(store, day4)

	_, err = engine2.Distribute(context.Background())
	require.NoError(t, err)

	profile, err := store.Users().GetByAddress(context.Background(), address)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.WeeklyStreak)
	assert.Equal(t, int64(20), profile.TotalPoints) // 10 + 10
}

func TestDistributeUnlocksStreakAchievements(t *testing.T) {
	store := repository.NewInMemoryStore(tiers.MustNewTable(tiers.DefaultTiers))
	address := seedUsers(t, store, 1)[0]

	for offset := 0; offset < 7; offset++ {
		engine := newEngineFor(store, day1.AddDate(0, 0, offset))
		result, err := engine.Distribute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Bonused)
	}

	profile, err := store.Users().GetByAddress(context.Background(), address)
	require.NoError(t, err)
	assert.Equal(t, 7, profile.WeeklyStreak)

	unlocked, err := store.Achievements().ListUnlocked(context.Background(), address)
	require.NoError(t, err)
	ids := make([]string, 0, len(unlocked))
	for _, ua := range unlocked {
		ids = append(ids, ua.AchievementID)
	}
	assert.Contains(t, ids, "streak_7", "a seven day streak unlocks without any trade")
	assert.Contains(t, ids, "points_100", "bonus points alone cross the milestone")

	// 175 bonus points across the week plus the 25 and 100 point rewards
	assert.Equal(t, int64(300), profile.TotalPoints)
}

func TestDistributeIsolatesPerUserFailures(t *testing.T) {
	engine, store := newTestEngine(t, day1)
	addresses := seedUsers(t, store, 6)
	store.FailWritesFor(addresses[2], errors.Validationf("corrupt profile"))

	result, err := engine.Distribute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, result.Processed)
	assert.Equal(t, 5, result.Bonused)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, addresses[2], result.Failed[0].Address)
	assert.False(t, result.Success())

	// the failed user recovers on the next run of the same day
	store.FailWritesFor(addresses[2], nil)
	second, err := engine.Distribute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Bonused)
	assert.Equal(t, 5, second.Skipped)
}

func TestDistributeRetriesTransientFailures(t *testing.T) {
	engine, store := newTestEngine(t, day1)
	addresses := seedUsers(t, store, 1)

	// fails until retries are exhausted, so it lands in the failure list
	store.FailWritesFor(addresses[0], errors.Transient("write", fmt.Errorf("timeout")))

	result, err := engine.Distribute(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)

	store.FailWritesFor(addresses[0], nil)
	second, err := engine.Distribute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Bonused)
}

func TestDistributeStopsOnCancelledContext(t *testing.T) {
	engine, store := newTestEngine(t, day1, WithWorkers(1), WithPageSize(1))
	seedUsers(t, store, 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Distribute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, result.Processed, 20)
}
