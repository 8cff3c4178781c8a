package queries

// Write Queries
const (
	CreateUserProfileQuery = `
			INSERT INTO tradequest.user_profiles (
				user_address, fid, username, display_name, avatar_url,
				tier, total_points, current_rank, total_transactions,
				token_balance, tokens_earned, weekly_streak,
				last_holding_bonus_date, referral_count, achievement_ids,
				has_minted_nft, version,
				joined_at, last_active_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`

	// Versioned profile update. The IF version clause serializes concurrent
	// mutations to the same profile.
	UpdateUserTotalsQuery = `
			UPDATE tradequest.user_profiles
			SET total_points = ?, total_transactions = ?, token_balance = ?,
				tokens_earned = ?, weekly_streak = ?, last_holding_bonus_date = ?,
				achievement_ids = ?, tier = ?, last_active_at = ?, updated_at = ?,
				version = ?
			WHERE user_address = ?
			IF version = ?`

	UpdateUserIdentityQuery = `
			UPDATE tradequest.user_profiles
			SET fid = ?, username = ?, display_name = ?, avatar_url = ?, updated_at = ?
			WHERE user_address = ?`

	UpdateUserRankQuery = `
			UPDATE tradequest.user_profiles
			SET current_rank = ?
			WHERE user_address = ?`
)

// Read Queries
const (
	GetUserProfileQuery = `
			SELECT user_address, fid, username, display_name, avatar_url,
				tier, total_points, current_rank, total_transactions,
				token_balance, tokens_earned, weekly_streak,
				last_holding_bonus_date, referral_count, achievement_ids,
				has_minted_nft, version,
				joined_at, last_active_at, created_at, updated_at
			FROM tradequest.user_profiles
			WHERE user_address = ?`

	ListUserProfilesQuery = `
			SELECT user_address, fid, username, display_name, avatar_url,
				tier, total_points, current_rank, total_transactions,
				token_balance, tokens_earned, weekly_streak,
				last_holding_bonus_date, referral_count, achievement_ids,
				has_minted_nft, version,
				joined_at, last_active_at, created_at, updated_at
			FROM tradequest.user_profiles`

	CountUserProfilesQuery = `SELECT COUNT(*) FROM tradequest.user_profiles`

	SumUserPointsQuery = `SELECT SUM(total_points) FROM tradequest.user_profiles`
)
