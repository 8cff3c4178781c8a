package repository

import (
	"context"

	"github.com/tradequest/rewards-backend/internal/rewards/repository/queries"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/database"
)

type scyllaAchievements ScyllaStore

var _ AchievementRepository = (*scyllaAchievements)(nil)

func (r *scyllaAchievements) store() *ScyllaStore { return (*ScyllaStore)(r) }

// unlockMutation folds an unlock's reward into the profile. Guarded so a
// retried or repaired settlement can never add the reward twice.
func unlockMutation(achievementID string, rewardPoints int64) func(*types.UserProfile) {
	return func(p *types.UserProfile) {
		if p.HasAchievement(achievementID) {
			return
		}
		p.TotalPoints += rewardPoints
		p.AchievementIDs = append(p.AchievementIDs, achievementID)
	}
}

// Unlock creates the (user, achievement) pair with an IF NOT EXISTS insert.
// The uniqueness of that row is what keeps concurrent evaluations from
// double-unlocking; only the applier adds the reward points. The marker row
// doubles as a redo log: when it already exists but the profile never
// absorbed the reward, the pending mutation is completed before reporting
// not-applied.
func (r *scyllaAchievements) Unlock(ctx context.Context, ua *types.UserAchievement, rewardPoints int64) (bool, error) {
	applied, err := r.conn.Session().Query(queries.CreateUserAchievementQuery,
		ua.UserAddress, ua.AchievementID, ua.UnlockedAt, ua.Progress).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, database.ClassifyError("user_achievements.insert", err)
	}
	if !applied {
		profile, _, err := r.store().readProfile(ctx, ua.UserAddress)
		if err != nil {
			return false, err
		}
		if profile.HasAchievement(ua.AchievementID) {
			return false, nil
		}
		r.logger.Warnf("Completing interrupted unlock of %s for %s", ua.AchievementID, ua.UserAddress)
		_, err = r.store().mutateProfile(ctx, ua.UserAddress, unlockMutation(ua.AchievementID, rewardPoints))
		return false, err
	}

	_, err = r.store().mutateProfile(ctx, ua.UserAddress, unlockMutation(ua.AchievementID, rewardPoints))
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *scyllaAchievements) ListUnlocked(ctx context.Context, address string) ([]*types.UserAchievement, error) {
	iter := r.conn.Session().Query(queries.ListUserAchievementsQuery, address).
		WithContext(ctx).Iter()

	var unlocked []*types.UserAchievement
	var ua types.UserAchievement
	for iter.Scan(&ua.UserAddress, &ua.AchievementID, &ua.UnlockedAt, &ua.Progress) {
		record := ua
		unlocked = append(unlocked, &record)
	}
	if err := iter.Close(); err != nil {
		return nil, database.ClassifyError("user_achievements.list", err)
	}
	return unlocked, nil
}
