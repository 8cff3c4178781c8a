package ledger

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
)

const testAddress = "0x1111111111111111111111111111111111111111"

type stubIdentity struct {
	identity *types.UpdateProfileIdentityRequest
	err      error
	calls    int
}

func (s *stubIdentity) LookupByAddress(ctx context.Context, address string) (*types.UpdateProfileIdentityRequest, error) {
	s.calls++
	return s.identity, s.err
}

func newTestService(t *testing.T) (*Service, *repository.InMemoryStore, *stubIdentity) {
	t.Helper()
	table := tiers.MustNewTable(tiers.DefaultTiers)
	store := repository.NewInMemoryStore(table)
	identity := &stubIdentity{}
	evaluator := achievements.NewEvaluator(store.Achievements(), store.Transactions(), achievements.DefaultDefinitions, &logging.NoopLogger{})
	svc := NewService(store.Users(), store.Transactions(), evaluator, table, identity, &logging.NoopLogger{})
	return svc, store, identity
}

func TestRecordTransactionCreatesProfileOnFirstActivity(t *testing.T) {
	svc, store, identity := newTestService(t)
	identity.identity = &types.UpdateProfileIdentityRequest{Username: "trader_one"}

	tx, err := svc.RecordTransaction(context.Background(), &types.CreateTransactionRequest{
		UserAddress: testAddress,
		Type:        types.TxTypeBuy,
		Amount:      20,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, int64(50), tx.Points) // 10 + 2*20
	assert.Equal(t, types.TxStatusCompleted, tx.Status)

	profile, err := store.Users().GetByAddress(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, "trader_one", profile.Username)
	assert.Equal(t, int64(1), profile.TotalTransactions)
	assert.Equal(t, 1, identity.calls)
}

func TestRecordTransactionAccumulatesPointsAndTier(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// three buys of 25 tokens: 3 * (10 + 50) = 180 points, Silver
	for i := 0; i < 3; i++ {
		_, err := svc.RecordTransaction(ctx, &types.CreateTransactionRequest{
			UserAddress: testAddress,
			Type:        types.TxTypeBuy,
			Amount:      25,
			TxHash:      fmt.Sprintf("0xhash%d", i),
		})
		require.NoError(t, err)
	}

	profile, err := store.Users().GetByAddress(ctx, testAddress)
	require.NoError(t, err)
	// 180 transaction points plus the first-trade achievement reward
	assert.Equal(t, types.TierSilver, profile.Tier)
	assert.Equal(t, int64(3), profile.TotalTransactions)
	assert.Contains(t, profile.AchievementIDs, "first_trade")

	delta, err := svc.Reconcile(ctx, testAddress)
	require.NoError(t, err)
	// achievement reward points live on the profile, not in the ledger
	assert.Equal(t, rewardPointsFor(profile), delta)
}

func TestRecordTransactionNormalizesAddressCase(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.RecordTransaction(context.Background(), &types.CreateTransactionRequest{
		UserAddress: "0xABCDEFabcdefABCDEFabcdefABCDEFabcdefABCD",
		Type:        types.TxTypeSell,
		Amount:      4,
	})
	require.NoError(t, err)

	profile, err := store.Users().GetByAddress(context.Background(), "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	require.NoError(t, err)
	assert.Equal(t, int64(9), profile.TotalPoints-rewardPointsFor(profile)) // 5 + 4
}

func rewardPointsFor(profile *types.UserProfile) int64 {
	var rewards int64
	for _, def := range achievements.DefaultDefinitions {
		if profile.HasAchievement(def.ID) {
			rewards += def.RewardPoints
		}
	}
	return rewards
}

func TestRecordTransactionValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *types.CreateTransactionRequest
	}{
		{
			name: "malformed address",
			req:  &types.CreateTransactionRequest{UserAddress: "0x123", Type: types.TxTypeBuy, Amount: 1},
		},
		{
			name: "zero amount",
			req:  &types.CreateTransactionRequest{UserAddress: testAddress, Type: types.TxTypeBuy, Amount: 0},
		},
		{
			name: "negative amount",
			req:  &types.CreateTransactionRequest{UserAddress: testAddress, Type: types.TxTypeSell, Amount: -5},
		},
		{
			name: "unknown type",
			req:  &types.CreateTransactionRequest{UserAddress: testAddress, Type: "airdrop", Amount: 1},
		},
		{
			name: "streak bonus rejected on ingestion path",
			req:  &types.CreateTransactionRequest{UserAddress: testAddress, Type: types.TxTypeStreakBonus, Amount: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordTransaction(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestRecordTransactionIdentityFailureIsNonFatal(t *testing.T) {
	svc, store, identity := newTestService(t)
	identity.err = errors.Transient("lookup", errBoom())

	_, err := svc.RecordTransaction(context.Background(), &types.CreateTransactionRequest{
		UserAddress: testAddress,
		Type:        types.TxTypeBaseChain,
		Amount:      1,
	})
	require.NoError(t, err)

	profile, err := store.Users().GetByAddress(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Empty(t, profile.Username)
}

func TestRecordTransactionStoreFailurePropagates(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordTransaction(ctx, &types.CreateTransactionRequest{
		UserAddress: testAddress, Type: types.TxTypeBuy, Amount: 1,
	})
	require.NoError(t, err)

	store.FailWritesFor(testAddress, errors.Transient("write", errBoom()))
	_, err = svc.RecordTransaction(ctx, &types.CreateTransactionRequest{
		UserAddress: testAddress, Type: types.TxTypeBuy, Amount: 1,
	})
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err))
}

func TestRecordTransactionTimestampsFromInjectedClock(t *testing.T) {
	svc, store, _ := newTestService(t)
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return fixed })

	tx, err := svc.RecordTransaction(context.Background(), &types.CreateTransactionRequest{
		UserAddress: testAddress, Type: types.TxTypeBuy, Amount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, tx.Timestamp)

	profile, err := store.Users().GetByAddress(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, fixed, profile.JoinedAt)
	assert.Equal(t, fixed, profile.LastActiveAt)
}

func errBoom() error { return fmt.Errorf("boom") }
