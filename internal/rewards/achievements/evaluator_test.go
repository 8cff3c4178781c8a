package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/internal/rewards/tiers"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

const testAddress = "0x1111111111111111111111111111111111111111"

func newTestEvaluator(t *testing.T) (*Evaluator, *repository.InMemoryStore) {
	t.Helper()
	store := repository.NewInMemoryStore(tiers.MustNewTable(tiers.DefaultTiers))
	evaluator := NewEvaluator(store.Achievements(), store.Transactions(), DefaultDefinitions, &logging.NoopLogger{})
	return evaluator, store
}

func seedProfile(t *testing.T, store *repository.InMemoryStore, mutate func(*types.UserProfile)) *types.UserProfile {
	t.Helper()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	profile := &types.UserProfile{
		Address:   testAddress,
		Tier:      types.TierBronze,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(profile)
	}
	require.NoError(t, store.Users().Create(context.Background(), profile))
	return profile
}

func TestEvaluateUnlocksThresholdAchievements(t *testing.T) {
	evaluator, store := newTestEvaluator(t)
	profile := seedProfile(t, store, func(p *types.UserProfile) {
		p.TotalTransactions = 50
		p.TotalPoints = 120
	})

	unlocked, err := evaluator.Evaluate(context.Background(), profile)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"first_trade", "ten_trades", "fifty_trades", "points_100"}, unlocked)

	records, err := store.Achievements().ListUnlocked(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	evaluator, store := newTestEvaluator(t)
	profile := seedProfile(t, store, func(p *types.UserProfile) {
		p.TotalTransactions = 50
	})

	first, err := evaluator.Evaluate(context.Background(), profile)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	pointsAfterFirst, err := store.Users().GetByAddress(context.Background(), testAddress)
	require.NoError(t, err)

	// immediate re-evaluation must unlock nothing and add no points
	second, err := evaluator.Evaluate(context.Background(), profile)
	require.NoError(t, err)
	assert.Empty(t, second)

	pointsAfterSecond, err := store.Users().GetByAddress(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, pointsAfterFirst.TotalPoints, pointsAfterSecond.TotalPoints)
}

// A stale profile copy that does not know about an earlier unlock must not
// double-apply the reward: the store's create-if-absent guard wins.
func TestEvaluateStaleProfileDoesNotDoubleUnlock(t *testing.T) {
	evaluator, store := newTestEvaluator(t)
	profile := seedProfile(t, store, func(p *types.UserProfile) {
		p.TotalTransactions = 1
	})

	stale := *profile
	_, err := evaluator.Evaluate(context.Background(), profile)
	require.NoError(t, err)

	unlocked, err := evaluator.Evaluate(context.Background(), &stale)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	stored, err := store.Users().GetByAddress(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.TotalPoints, "first_trade reward applied exactly once")
}

func TestEvaluateRespectsStreakAndBalanceRequirements(t *testing.T) {
	evaluator, store := newTestEvaluator(t)
	profile := seedProfile(t, store, func(p *types.UserProfile) {
		p.WeeklyStreak = 7
		p.TokenBalance = 2500
		p.ReferralCount = 5
	})

	unlocked, err := evaluator.Evaluate(context.Background(), profile)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"streak_7", "whale_balance", "connector"}, unlocked)
}

func TestEvaluateSkipsInactiveDefinitions(t *testing.T) {
	store := repository.NewInMemoryStore(tiers.MustNewTable(tiers.DefaultTiers))
	inactive := []types.Achievement{{
		ID:           "retired",
		Name:         "Retired",
		Requirement:  types.Requirement{Type: types.RequirementPoints, Threshold: 0},
		RewardPoints: 999,
		Active:       false,
	}}
	evaluator := NewEvaluator(store.Achievements(), store.Transactions(), inactive, &logging.NoopLogger{})
	profile := seedProfile(t, store, nil)

	unlocked, err := evaluator.Evaluate(context.Background(), profile)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestEvaluateWindowedRequirement(t *testing.T) {
	evaluator, store := newTestEvaluator(t)
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	evaluator.WithClock(func() time.Time { return now })

	seedProfile(t, store, nil)

	// 20 recent transactions inside the 7-day window
	for i := 0; i < 20; i++ {
		_, err := store.Transactions().ApplyTransaction(context.Background(), &types.Transaction{
			ID:          "tx-" + string(rune('a'+i)),
			UserAddress: testAddress,
			Type:        types.TxTypeBaseChain,
			Amount:      1,
			Points:      5,
			Status:      types.TxStatusCompleted,
			Timestamp:   now.Add(-time.Duration(i) * time.Hour),
			Chain:       &types.ChainMeta{ChainID: 8453},
		})
		require.NoError(t, err)
	}

	updated, err := store.Users().GetByAddress(context.Background(), testAddress)
	require.NoError(t, err)

	unlocked, err := evaluator.Evaluate(context.Background(), updated)
	require.NoError(t, err)
	assert.Contains(t, unlocked, "weekly_warrior")
}
