package queries

// Write Queries
const (
	CreateTransactionQuery = `
			INSERT INTO tradequest.transactions (
				user_address, transaction_id, type, amount, price, points,
				status, tx_hash, chain_id, gas_used, block_number,
				streak_count, bonus_type, timestamp
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// The LWT insert on bonus_claims is the daily idempotency marker. A
	// not-applied result means the day's bonus was already distributed.
	ClaimDailyBonusQuery = `
			INSERT INTO tradequest.bonus_claims (
				user_address, bonus_date, transaction_id, points, tokens,
				streak, claimed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`

	CreateUserAchievementQuery = `
			INSERT INTO tradequest.user_achievements (
				user_address, achievement_id, unlocked_at, progress
			) VALUES (?, ?, ?, ?) IF NOT EXISTS`
)

// Read Queries
const (
	ListTransactionsByUserQuery = `
			SELECT user_address, transaction_id, type, amount, price, points,
				status, tx_hash, chain_id, gas_used, block_number,
				streak_count, bonus_type, timestamp
			FROM tradequest.transactions
			WHERE user_address = ?
			LIMIT ?`

	CountTransactionsByUserSinceQuery = `
			SELECT COUNT(*)
			FROM tradequest.transactions
			WHERE user_address = ? AND timestamp >= ?`

	SumTransactionPointsByUserQuery = `
			SELECT SUM(points)
			FROM tradequest.transactions
			WHERE user_address = ?`

	CountAllTransactionsQuery = `SELECT COUNT(*) FROM tradequest.transactions`

	CountBonusClaimsForDayQuery = `
			SELECT COUNT(*)
			FROM tradequest.bonus_claims
			WHERE bonus_date = ? ALLOW FILTERING`

	ListUserAchievementsQuery = `
			SELECT user_address, achievement_id, unlocked_at, progress
			FROM tradequest.user_achievements
			WHERE user_address = ?`
)
