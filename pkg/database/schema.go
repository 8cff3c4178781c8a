package database

import (
	"github.com/gocql/gocql"
)

// InitSchema creates the keyspace and tables the rewards engine reads and
// writes. Safe to call on every startup.
func InitSchema(session *gocql.Session) error {
	// Create keyspace
	if err := session.Query(`
			CREATE KEYSPACE IF NOT EXISTS tradequest
			WITH replication = {
				'class': 'SimpleStrategy',
				'replication_factor': 1
			}`).Exec(); err != nil {
		return err
	}

	// Create user_profiles table
	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS tradequest.user_profiles (
			user_address text PRIMARY KEY,
			fid bigint,
			username text,
			display_name text,
			avatar_url text,
			tier text,
			total_points bigint,
			current_rank bigint,
			total_transactions bigint,
			token_balance double,
			tokens_earned double,
			weekly_streak int,
			last_holding_bonus_date timestamp,
			referral_count bigint,
			achievement_ids set<text>,
			has_minted_nft boolean,
			version bigint,
			joined_at timestamp,
			last_active_at timestamp,
			created_at timestamp,
			updated_at timestamp
		)`).Exec(); err != nil {
		return err
	}

	// Create transactions table, clustered newest-first per user
	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS tradequest.transactions (
			user_address text,
			transaction_id text,
			type text,
			amount double,
			price double,
			points bigint,
			status text,
			tx_hash text,
			chain_id bigint,
			gas_used bigint,
			block_number bigint,
			streak_count int,
			bonus_type text,
			timestamp timestamp,
			PRIMARY KEY (user_address, timestamp, transaction_id)
		) WITH CLUSTERING ORDER BY (timestamp DESC)`).Exec(); err != nil {
		return err
	}

	// Create bonus_claims table. One row per (user, calendar day); the LWT
	// insert on this table is the idempotency marker for daily distribution.
	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS tradequest.bonus_claims (
			user_address text,
			bonus_date text,
			transaction_id text,
			points bigint,
			tokens double,
			streak int,
			claimed_at timestamp,
			PRIMARY KEY (user_address, bonus_date)
		)`).Exec(); err != nil {
		return err
	}

	// Create user_achievements table
	if err := session.Query(`
		CREATE TABLE IF NOT EXISTS tradequest.user_achievements (
			user_address text,
			achievement_id text,
			unlocked_at timestamp,
			progress double,
			PRIMARY KEY (user_address, achievement_id)
		)`).Exec(); err != nil {
		return err
	}

	return nil
}
