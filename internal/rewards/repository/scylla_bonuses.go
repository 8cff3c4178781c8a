package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tradequest/rewards-backend/internal/rewards/repository/queries"
	"github.com/tradequest/rewards-backend/internal/rewards/streak"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/database"
)

type scyllaBonuses ScyllaStore

var _ BonusRepository = (*scyllaBonuses)(nil)

func (r *scyllaBonuses) store() *ScyllaStore { return (*ScyllaStore)(r) }

// bonusClaim is the redo log for one (user, day) bonus. The LWT insert on
// bonus_claims both wins the idempotency race and durably records the amounts,
// so a crash between the claim and the profile mutation can always be
// completed from the claim row on the next attempt.
type bonusClaim struct {
	UserAddress   string
	Day           string
	TransactionID string
	Points        int64
	Tokens        float64
	Streak        int
	ClaimedAt     time.Time
}

func (c bonusClaim) transaction() *types.Transaction {
	return &types.Transaction{
		ID:          c.TransactionID,
		UserAddress: c.UserAddress,
		Type:        types.TxTypeStreakBonus,
		Amount:      c.Tokens,
		Points:      c.Points,
		Status:      types.TxStatusCompleted,
		Timestamp:   c.ClaimedAt,
		Bonus: &types.BonusMeta{
			Streak:    c.Streak,
			BonusType: "daily_holding",
		},
	}
}

// claimFromRow decodes the existing bonus_claims row returned by a
// not-applied LWT insert.
func claimFromRow(address, day string, row map[string]interface{}) (bonusClaim, error) {
	txID, okID := row["transaction_id"].(string)
	points, okPoints := row["points"].(int64)
	tokens, okTokens := row["tokens"].(float64)
	streakLen, okStreak := row["streak"].(int)
	claimedAt, okClaimed := row["claimed_at"].(time.Time)
	if !okID || !okPoints || !okTokens || !okStreak || !okClaimed {
		return bonusClaim{}, fmt.Errorf("bonus_claims row for %s on %s has unexpected shape", address, day)
	}
	return bonusClaim{
		UserAddress:   address,
		Day:           day,
		TransactionID: txID,
		Points:        points,
		Tokens:        tokens,
		Streak:        streakLen,
		ClaimedAt:     claimedAt,
	}, nil
}

// bonusSettled reports whether the profile already reflects the bonus for the
// given day. Day keys compare lexicographically.
func bonusSettled(profile *types.UserProfile, day string) bool {
	return profile.LastHoldingBonusDate != nil && streak.DayKey(*profile.LastHoldingBonusDate) >= day
}

// ApplyDailyBonus claims the (user, day) marker with an IF NOT EXISTS insert
// and then settles it: append the streak-bonus transaction and fold the
// amounts into the profile. The claim row is the redo log; when the marker
// already exists but the profile does not yet cover that day, the pending
// settlement is completed from the stored row before reporting not-applied.
// Re-runs and concurrent runs of the daily job therefore converge on exactly
// one fully applied bonus per user per day.
func (r *scyllaBonuses) ApplyDailyBonus(ctx context.Context, bonus *types.DailyBonus) (*types.UserProfile, bool, error) {
	tx := bonus.Transaction

	prev := map[string]interface{}{}
	applied, err := r.conn.Session().Query(queries.ClaimDailyBonusQuery,
		bonus.UserAddress, bonus.Day, tx.ID, bonus.Points, bonus.Tokens,
		bonus.Streak, tx.Timestamp).WithContext(ctx).MapScanCAS(prev)
	if err != nil {
		return nil, false, database.ClassifyError("bonus_claims.insert", err)
	}

	if !applied {
		claim, err := claimFromRow(bonus.UserAddress, bonus.Day, prev)
		if err != nil {
			return nil, false, err
		}
		profile, _, err := r.store().readProfile(ctx, bonus.UserAddress)
		if err != nil {
			return nil, false, err
		}
		if bonusSettled(profile, claim.Day) {
			return profile, false, nil
		}
		r.logger.Warnf("Completing interrupted bonus settlement for %s on %s", claim.UserAddress, claim.Day)
		profile, err = r.settle(ctx, claim)
		if err != nil {
			return nil, false, err
		}
		return profile, false, nil
	}

	profile, err := r.settle(ctx, bonusClaim{
		UserAddress:   bonus.UserAddress,
		Day:           bonus.Day,
		TransactionID: tx.ID,
		Points:        bonus.Points,
		Tokens:        bonus.Tokens,
		Streak:        bonus.Streak,
		ClaimedAt:     tx.Timestamp,
	})
	if err != nil {
		return nil, false, err
	}
	return profile, true, nil
}

// settle writes the claim's transaction row and profile mutation. Both steps
// are idempotent against a retry: the transaction insert targets the same
// primary key, and the mutation is a no-op once the profile covers the day.
func (r *scyllaBonuses) settle(ctx context.Context, claim bonusClaim) (*types.UserProfile, error) {
	err := r.conn.Session().Query(queries.CreateTransactionQuery, transactionValues(claim.transaction())...).
		WithContext(ctx).Exec()
	if err != nil {
		return nil, database.ClassifyError("transactions.insert", err)
	}

	return r.store().mutateProfile(ctx, claim.UserAddress, settleMutation(claim))
}

// settleMutation folds the claim's amounts into the profile, a no-op once the
// profile already covers the day.
func settleMutation(claim bonusClaim) func(*types.UserProfile) {
	return func(p *types.UserProfile) {
		if bonusSettled(p, claim.Day) {
			return
		}
		p.TotalPoints += claim.Points
		p.TokenBalance += claim.Tokens
		p.TokensEarned += claim.Tokens
		p.WeeklyStreak = claim.Streak
		claimedAt := claim.ClaimedAt
		p.LastHoldingBonusDate = &claimedAt
	}
}

func (r *scyllaBonuses) CountForDay(ctx context.Context, day string) (int64, error) {
	var count int64
	err := r.conn.Session().Query(queries.CountBonusClaimsForDayQuery, day).
		WithContext(ctx).Scan(&count)
	if err != nil {
		return 0, database.ClassifyError("bonus_claims.count", err)
	}
	return count, nil
}
