package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/rewards-backend/internal/rewards/types"
)

func TestBonusSettled(t *testing.T) {
	day2 := time.Date(2026, 7, 2, 0, 5, 0, 0, time.UTC)

	assert.False(t, bonusSettled(&types.UserProfile{}, "2026-07-02"),
		"profile without a bonus date has nothing settled")

	assert.False(t, bonusSettled(&types.UserProfile{LastHoldingBonusDate: &day2}, "2026-07-03"),
		"yesterday's bonus does not settle today")

	assert.True(t, bonusSettled(&types.UserProfile{LastHoldingBonusDate: &day2}, "2026-07-02"))
	assert.True(t, bonusSettled(&types.UserProfile{LastHoldingBonusDate: &day2}, "2026-07-01"),
		"a later bonus date covers earlier days")
}

func TestClaimFromRow(t *testing.T) {
	claimedAt := time.Date(2026, 7, 2, 0, 5, 0, 0, time.UTC)
	row := map[string]interface{}{
		"transaction_id": "tx-1",
		"points":         int64(15),
		"tokens":         1.5,
		"streak":         2,
		"claimed_at":     claimedAt,
	}

	claim, err := claimFromRow("0xabc", "2026-07-02", row)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", claim.TransactionID)
	assert.Equal(t, int64(15), claim.Points)
	assert.Equal(t, 1.5, claim.Tokens)
	assert.Equal(t, 2, claim.Streak)
	assert.Equal(t, claimedAt, claim.ClaimedAt)

	delete(row, "points")
	_, err = claimFromRow("0xabc", "2026-07-02", row)
	assert.Error(t, err)
}

func TestBonusClaimTransaction(t *testing.T) {
	claimedAt := time.Date(2026, 7, 2, 0, 5, 0, 0, time.UTC)
	claim := bonusClaim{
		UserAddress:   "0xabc",
		Day:           "2026-07-02",
		TransactionID: "tx-1",
		Points:        15,
		Tokens:        1.5,
		Streak:        2,
		ClaimedAt:     claimedAt,
	}

	tx := claim.transaction()
	assert.Equal(t, types.TxTypeStreakBonus, tx.Type)
	assert.Equal(t, types.TxStatusCompleted, tx.Status)
	assert.Equal(t, int64(15), tx.Points)
	assert.Equal(t, 1.5, tx.Amount)
	require.NotNil(t, tx.Bonus)
	assert.Equal(t, 2, tx.Bonus.Streak)
	assert.Equal(t, "daily_holding", tx.Bonus.BonusType)
}

func TestSettleMutationIsIdempotent(t *testing.T) {
	claimedAt := time.Date(2026, 7, 2, 0, 5, 0, 0, time.UTC)
	claim := bonusClaim{
		UserAddress: "0xabc",
		Day:         "2026-07-02",
		Points:      15,
		Tokens:      1.5,
		Streak:      2,
		ClaimedAt:   claimedAt,
	}
	profile := &types.UserProfile{Address: "0xabc", TotalPoints: 100, TokenBalance: 3, WeeklyStreak: 1}

	mutate := settleMutation(claim)
	mutate(profile)
	mutate(profile)

	assert.Equal(t, int64(115), profile.TotalPoints)
	assert.Equal(t, 4.5, profile.TokenBalance)
	assert.Equal(t, 2, profile.WeeklyStreak)
	require.NotNil(t, profile.LastHoldingBonusDate)
	assert.Equal(t, claimedAt, *profile.LastHoldingBonusDate)
}

func TestUnlockMutationIsIdempotent(t *testing.T) {
	profile := &types.UserProfile{Address: "0xabc", TotalPoints: 50}

	mutate := unlockMutation("first_trade", 10)
	mutate(profile)
	mutate(profile)

	assert.Equal(t, int64(60), profile.TotalPoints)
	assert.Equal(t, []string{"first_trade"}, profile.AchievementIDs)
}
