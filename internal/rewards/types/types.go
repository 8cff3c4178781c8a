package types

import (
	"regexp"
	"time"
)

// Tier is a named point bracket derived from total points. It is never set
// directly by callers.
type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
	TierDiamond  Tier = "Diamond"
)

type TransactionType string

const (
	TxTypeBuy         TransactionType = "buy"
	TxTypeSell        TransactionType = "sell"
	TxTypeBaseChain   TransactionType = "base_chain"
	TxTypeStreakBonus TransactionType = "streak_bonus"
)

type TransactionStatus string

const (
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusPending   TransactionStatus = "pending"
	TxStatusFailed    TransactionStatus = "failed"
)

// UserProfile is the per-wallet aggregate. TotalPoints equals the sum of
// points across the user's completed transactions; Tier and CurrentRank are
// derived projections refreshed by the designated recompute paths only.
type UserProfile struct {
	Address              string     `json:"address"`
	FID                  int64      `json:"fid,omitempty"`
	Username             string     `json:"username,omitempty"`
	DisplayName          string     `json:"display_name,omitempty"`
	AvatarURL            string     `json:"avatar_url,omitempty"`
	Tier                 Tier       `json:"tier"`
	TotalPoints          int64      `json:"total_points"`
	CurrentRank          int64      `json:"current_rank"`
	TotalTransactions    int64      `json:"total_transactions"`
	TokenBalance         float64    `json:"token_balance"`
	TokensEarned         float64    `json:"tokens_earned"`
	WeeklyStreak         int        `json:"weekly_streak"`
	LastHoldingBonusDate *time.Time `json:"last_holding_bonus_date,omitempty"`
	ReferralCount        int64      `json:"referral_count"`
	AchievementIDs       []string   `json:"achievement_ids,omitempty"`
	HasMintedNFT         bool       `json:"has_minted_nft"`
	JoinedAt             time.Time  `json:"joined_at"`
	LastActiveAt         time.Time  `json:"last_active_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// HasAchievement reports whether the achievement ID is already unlocked.
func (p *UserProfile) HasAchievement(id string) bool {
	for _, unlocked := range p.AchievementIDs {
		if unlocked == id {
			return true
		}
	}
	return false
}

// TradeMeta carries the fields relevant to buy/sell transactions only.
type TradeMeta struct {
	Price       float64 `json:"price,omitempty"`
	TokenSymbol string  `json:"token_symbol,omitempty"`
}

// ChainMeta carries the fields relevant to base-chain transactions only.
type ChainMeta struct {
	ChainID     int64  `json:"chain_id"`
	GasUsed     uint64 `json:"gas_used,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`
}

// BonusMeta carries the fields relevant to streak-bonus transactions only.
type BonusMeta struct {
	Streak    int    `json:"streak"`
	BonusType string `json:"bonus_type"`
}

// Transaction is an immutable ledger record. Once Status is completed the
// points and amount never change. Exactly one of Trade/Chain/Bonus is set,
// matching Type.
type Transaction struct {
	ID          string            `json:"id"`
	UserAddress string            `json:"user_address"`
	Type        TransactionType   `json:"type"`
	Amount      float64           `json:"amount"`
	Points      int64             `json:"points"`
	Status      TransactionStatus `json:"status"`
	TxHash      string            `json:"tx_hash,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Trade       *TradeMeta        `json:"trade,omitempty"`
	Chain       *ChainMeta        `json:"chain,omitempty"`
	Bonus       *BonusMeta        `json:"bonus,omitempty"`
}

type RequirementType string

const (
	RequirementTxCount   RequirementType = "transaction_count"
	RequirementPoints    RequirementType = "points"
	RequirementStreak    RequirementType = "streak"
	RequirementBalance   RequirementType = "balance"
	RequirementReferrals RequirementType = "referrals"
)

// Requirement is the qualifying condition of an achievement. Window limits
// the stat to a trailing timeframe when non-zero; only transaction counts
// support windowing.
type Requirement struct {
	Type      RequirementType `json:"type"`
	Threshold float64         `json:"threshold"`
	Window    time.Duration   `json:"window,omitempty"`
}

type Achievement struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Rarity       string      `json:"rarity"`
	Requirement  Requirement `json:"requirement"`
	RewardPoints int64       `json:"reward_points"`
	Active       bool        `json:"active"`
}

// UserAchievement is the (user, achievement) join record. At most one per
// pair; immutable once created.
type UserAchievement struct {
	UserAddress   string    `json:"user_address"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	Progress      float64   `json:"progress,omitempty"`
}

// LeaderboardEntry is a derived projection over UserProfile, never a source
// of truth.
type LeaderboardEntry struct {
	Address           string    `json:"address"`
	Username          string    `json:"username,omitempty"`
	DisplayName       string    `json:"display_name,omitempty"`
	Points            int64     `json:"points"`
	Rank              int       `json:"rank"`
	Tier              Tier      `json:"tier"`
	TotalTransactions int64     `json:"total_transactions"`
	TokenBalance      float64   `json:"token_balance"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DailyBonus is the unit of work the distribution engine hands to the store.
// The store applies it atomically per user: claim the (user, day) marker,
// append the streak-bonus transaction, update the profile.
type DailyBonus struct {
	UserAddress string
	Day         string // UTC calendar day, formatted 2006-01-02
	Points      int64
	Tokens      float64
	Streak      int
	Transaction *Transaction
}

type DistributionFailure struct {
	Address string `json:"address"`
	Reason  string `json:"reason"`
}

// DistributionResult is the outcome of one daily bonus run. Success means
// every enumerated user either received a bonus or was skipped as already
// processed.
type DistributionResult struct {
	Day        string                `json:"day"`
	Processed  int                   `json:"processed"`
	Bonused    int                   `json:"bonused"`
	Skipped    int                   `json:"skipped"`
	Failed     []DistributionFailure `json:"failed,omitempty"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
}

func (r *DistributionResult) Success() bool {
	return len(r.Failed) == 0
}

// PlatformStats is an aggregate counter snapshot, refreshed on demand.
type PlatformStats struct {
	TotalUsers        int64     `json:"total_users"`
	TotalTransactions int64     `json:"total_transactions"`
	TotalPoints       int64     `json:"total_points"`
	BonusesToday      int64     `json:"bonuses_today"`
	GeneratedAt       time.Time `json:"generated_at"`
}

var ethAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValidEthAddress checks the 0x-prefixed 40-hex-char wallet address format.
func IsValidEthAddress(address string) bool {
	return ethAddressRegex.MatchString(address)
}
