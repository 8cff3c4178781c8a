package repository

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	"github.com/tradequest/rewards-backend/internal/rewards/repository/queries"
	"github.com/tradequest/rewards-backend/internal/rewards/tiers"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/database"
	"github.com/tradequest/rewards-backend/pkg/errors"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

// maxCASAttempts bounds the optimistic-concurrency loop on profile updates.
// Contention on a single wallet is rare; exhausting this is reported as
// transient so the caller's bounded retry applies.
const maxCASAttempts = 8

// ScyllaStore implements Store over a ScyllaDB/Cassandra session. Per-user
// atomicity comes from lightweight transactions: a version column guards
// profile read-modify-write cycles, and IF NOT EXISTS inserts guard the
// idempotency markers.
type ScyllaStore struct {
	conn      *database.Connection
	tierTable *tiers.Table
	logger    logging.Logger
}

var _ Store = (*ScyllaStore)(nil)

func NewScyllaStore(conn *database.Connection, tierTable *tiers.Table, logger logging.Logger) *ScyllaStore {
	return &ScyllaStore{
		conn:      conn,
		tierTable: tierTable,
		logger:    logger,
	}
}

func (s *ScyllaStore) Users() UserRepository               { return (*scyllaUsers)(s) }
func (s *ScyllaStore) Transactions() TransactionRepository { return (*scyllaTransactions)(s) }
func (s *ScyllaStore) Bonuses() BonusRepository            { return (*scyllaBonuses)(s) }
func (s *ScyllaStore) Achievements() AchievementRepository { return (*scyllaAchievements)(s) }

// readProfile loads one profile plus its version column.
func (s *ScyllaStore) readProfile(ctx context.Context, address string) (*types.UserProfile, int64, error) {
	var (
		profile   types.UserProfile
		tier      string
		lastBonus time.Time
		version   int64
	)

	err := s.conn.Session().Query(queries.GetUserProfileQuery, address).WithContext(ctx).Scan(
		&profile.Address, &profile.FID, &profile.Username, &profile.DisplayName, &profile.AvatarURL,
		&tier, &profile.TotalPoints, &profile.CurrentRank, &profile.TotalTransactions,
		&profile.TokenBalance, &profile.TokensEarned, &profile.WeeklyStreak,
		&lastBonus, &profile.ReferralCount, &profile.AchievementIDs,
		&profile.HasMintedNFT, &version,
		&profile.JoinedAt, &profile.LastActiveAt, &profile.CreatedAt, &profile.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, 0, errors.NotFound("user profile", address)
	}
	if err != nil {
		return nil, 0, database.ClassifyError("user_profiles.select", err)
	}

	profile.Tier = types.Tier(tier)
	if !lastBonus.IsZero() {
		profile.LastHoldingBonusDate = &lastBonus
	}
	return &profile, version, nil
}

// mutateProfile applies mutate under optimistic concurrency: read the
// profile, mutate the copy, recompute the derived tier, and commit with a
// version-guarded LWT. On contention the cycle restarts from a fresh read.
func (s *ScyllaStore) mutateProfile(ctx context.Context, address string, mutate func(*types.UserProfile)) (*types.UserProfile, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		profile, version, err := s.readProfile(ctx, address)
		if err != nil {
			return nil, err
		}

		mutate(profile)
		profile.Tier = s.tierTable.TierFor(profile.TotalPoints).Name
		profile.UpdatedAt = time.Now().UTC()

		var lastBonus time.Time
		if profile.LastHoldingBonusDate != nil {
			lastBonus = *profile.LastHoldingBonusDate
		}

		applied, err := s.conn.Session().Query(queries.UpdateUserTotalsQuery,
			profile.TotalPoints, profile.TotalTransactions, profile.TokenBalance,
			profile.TokensEarned, profile.WeeklyStreak, lastBonus,
			profile.AchievementIDs, string(profile.Tier), profile.LastActiveAt, profile.UpdatedAt,
			version+1, address, version).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return nil, database.ClassifyError("user_profiles.update", err)
		}
		if applied {
			return profile, nil
		}

		s.logger.Debugf("Profile version conflict for %s, attempt %d/%d", address, attempt+1, maxCASAttempts)
	}

	return nil, errors.Transient("user_profiles.update", errors.Conflict("version contention for "+address))
}

func transactionValues(tx *types.Transaction) []interface{} {
	var (
		price             float64
		chainID           int64
		gasUsed, blockNum int64
		streakCount       int
		bonusType         string
	)
	if tx.Trade != nil {
		price = tx.Trade.Price
	}
	if tx.Chain != nil {
		chainID = tx.Chain.ChainID
		gasUsed = int64(tx.Chain.GasUsed)
		blockNum = int64(tx.Chain.BlockNumber)
	}
	if tx.Bonus != nil {
		streakCount = tx.Bonus.Streak
		bonusType = tx.Bonus.BonusType
	}
	return []interface{}{
		tx.UserAddress, tx.ID, string(tx.Type), tx.Amount, price, tx.Points,
		string(tx.Status), tx.TxHash, chainID, gasUsed, blockNum,
		streakCount, bonusType, tx.Timestamp,
	}
}

func scanTransaction(iter *gocql.Iter) (*types.Transaction, bool) {
	var (
		tx                        types.Transaction
		txType, status, bonusType string
		price                     float64
		chainID                   int64
		gasUsed, blockNum         int64
		streakCount               int
	)

	if !iter.Scan(&tx.UserAddress, &tx.ID, &txType, &tx.Amount, &price, &tx.Points,
		&status, &tx.TxHash, &chainID, &gasUsed, &blockNum,
		&streakCount, &bonusType, &tx.Timestamp) {
		return nil, false
	}

	tx.Type = types.TransactionType(txType)
	tx.Status = types.TransactionStatus(status)
	switch tx.Type {
	case types.TxTypeBuy, types.TxTypeSell:
		tx.Trade = &types.TradeMeta{Price: price}
	case types.TxTypeBaseChain:
		tx.Chain = &types.ChainMeta{ChainID: chainID, GasUsed: uint64(gasUsed), BlockNumber: uint64(blockNum)}
	case types.TxTypeStreakBonus:
		tx.Bonus = &types.BonusMeta{Streak: streakCount, BonusType: bonusType}
	}
	return &tx, true
}
