package repository

import (
	"context"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"github.com/tradequest/rewards-backend/internal/rewards/repository/queries"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/database"
	"github.com/tradequest/rewards-backend/pkg/errors"
)

type scyllaUsers ScyllaStore

var _ UserRepository = (*scyllaUsers)(nil)

func (r *scyllaUsers) store() *ScyllaStore { return (*ScyllaStore)(r) }

func (r *scyllaUsers) GetByAddress(ctx context.Context, address string) (*types.UserProfile, error) {
	profile, _, err := r.store().readProfile(ctx, address)
	return profile, err
}

func (r *scyllaUsers) Create(ctx context.Context, profile *types.UserProfile) error {
	var lastBonus time.Time
	if profile.LastHoldingBonusDate != nil {
		lastBonus = *profile.LastHoldingBonusDate
	}

	applied, err := r.conn.Session().Query(queries.CreateUserProfileQuery,
		profile.Address, profile.FID, profile.Username, profile.DisplayName, profile.AvatarURL,
		string(profile.Tier), profile.TotalPoints, profile.CurrentRank, profile.TotalTransactions,
		profile.TokenBalance, profile.TokensEarned, profile.WeeklyStreak,
		lastBonus, profile.ReferralCount, profile.AchievementIDs,
		profile.HasMintedNFT, int64(0),
		profile.JoinedAt, profile.LastActiveAt, profile.CreatedAt, profile.UpdatedAt,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return database.ClassifyError("user_profiles.insert", err)
	}
	if !applied {
		return errors.Conflict("profile already exists: " + profile.Address)
	}
	return nil
}

func (r *scyllaUsers) UpdateIdentity(ctx context.Context, req *types.UpdateProfileIdentityRequest) error {
	err := r.conn.Session().Query(queries.UpdateUserIdentityQuery,
		req.FID, req.Username, req.DisplayName, req.AvatarURL, time.Now().UTC(),
		req.UserAddress).WithContext(ctx).Exec()
	return database.ClassifyError("user_profiles.update_identity", err)
}

func (r *scyllaUsers) UpdateRank(ctx context.Context, address string, rank int64) error {
	err := r.conn.Session().Query(queries.UpdateUserRankQuery,
		rank, address).WithContext(ctx).Exec()
	return database.ClassifyError("user_profiles.update_rank", err)
}

func (r *scyllaUsers) ListPage(ctx context.Context, pageSize int, pageState []byte) ([]*types.UserProfile, []byte, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	iter := r.conn.Session().Query(queries.ListUserProfilesQuery).
		WithContext(ctx).PageSize(pageSize).PageState(pageState).Iter()

	profiles := make([]*types.UserProfile, 0, pageSize)
	for {
		profile, ok := scanProfileRow(iter)
		if !ok {
			break
		}
		profiles = append(profiles, profile)
	}

	next := iter.PageState()
	if err := iter.Close(); err != nil {
		return nil, nil, database.ClassifyError("user_profiles.list", err)
	}
	if len(next) == 0 {
		next = nil
	}
	return profiles, next, nil
}

func (r *scyllaUsers) TopByPoints(ctx context.Context, n int) ([]*types.UserProfile, error) {
	iter := r.conn.Session().Query(queries.ListUserProfilesQuery).WithContext(ctx).Iter()

	var profiles []*types.UserProfile
	for {
		profile, ok := scanProfileRow(iter)
		if !ok {
			break
		}
		profiles = append(profiles, profile)
	}
	if err := iter.Close(); err != nil {
		return nil, database.ClassifyError("user_profiles.list", err)
	}

	// Sort by points (desc), ties broken by earliest join date, then address
	// for a deterministic order.
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].TotalPoints != profiles[j].TotalPoints {
			return profiles[i].TotalPoints > profiles[j].TotalPoints
		}
		if !profiles[i].JoinedAt.Equal(profiles[j].JoinedAt) {
			return profiles[i].JoinedAt.Before(profiles[j].JoinedAt)
		}
		return profiles[i].Address < profiles[j].Address
	})

	if n < len(profiles) {
		profiles = profiles[:n]
	}
	return profiles, nil
}

func (r *scyllaUsers) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn.Session().Query(queries.CountUserProfilesQuery).WithContext(ctx).Scan(&count)
	if err != nil {
		return 0, database.ClassifyError("user_profiles.count", err)
	}
	return count, nil
}

func (r *scyllaUsers) TotalPoints(ctx context.Context) (int64, error) {
	var total int64
	err := r.conn.Session().Query(queries.SumUserPointsQuery).WithContext(ctx).Scan(&total)
	if err != nil {
		return 0, database.ClassifyError("user_profiles.sum_points", err)
	}
	return total, nil
}

func scanProfileRow(iter *gocql.Iter) (*types.UserProfile, bool) {
	var (
		profile   types.UserProfile
		tier      string
		lastBonus time.Time
		version   int64
	)

	if !iter.Scan(
		&profile.Address, &profile.FID, &profile.Username, &profile.DisplayName, &profile.AvatarURL,
		&tier, &profile.TotalPoints, &profile.CurrentRank, &profile.TotalTransactions,
		&profile.TokenBalance, &profile.TokensEarned, &profile.WeeklyStreak,
		&lastBonus, &profile.ReferralCount, &profile.AchievementIDs,
		&profile.HasMintedNFT, &version,
		&profile.JoinedAt, &profile.LastActiveAt, &profile.CreatedAt, &profile.UpdatedAt) {
		return nil, false
	}

	profile.Tier = types.Tier(tier)
	if !lastBonus.IsZero() {
		profile.LastHoldingBonusDate = &lastBonus
	}
	return &profile, true
}
