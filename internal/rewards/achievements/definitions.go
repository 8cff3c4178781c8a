package achievements

import (
	"time"

	"github.com/tradequest/rewards-backend/internal/rewards/types"
)

// DefaultDefinitions is the static achievement catalog. Admin additions land
// here; the evaluator honors the Active flag.
var DefaultDefinitions = []types.Achievement{
	{
		ID:           "first_trade",
		Name:         "First Trade",
		Description:  "Record your first transaction",
		Rarity:       "common",
		Requirement:  types.Requirement{Type: types.RequirementTxCount, Threshold: 1},
		RewardPoints: 10,
		Active:       true,
	},
	{
		ID:           "ten_trades",
		Name:         "Getting Started",
		Description:  "Record 10 transactions",
		Rarity:       "common",
		Requirement:  types.Requirement{Type: types.RequirementTxCount, Threshold: 10},
		RewardPoints: 50,
		Active:       true,
	},
	{
		ID:           "fifty_trades",
		Name:         "Regular",
		Description:  "Record 50 transactions",
		Rarity:       "rare",
		Requirement:  types.Requirement{Type: types.RequirementTxCount, Threshold: 50},
		RewardPoints: 250,
		Active:       true,
	},
	{
		ID:           "weekly_warrior",
		Name:         "Weekly Warrior",
		Description:  "Record 20 transactions in 7 days",
		Rarity:       "rare",
		Requirement:  types.Requirement{Type: types.RequirementTxCount, Threshold: 20, Window: 7 * 24 * time.Hour},
		RewardPoints: 150,
		Active:       true,
	},
	{
		ID:           "points_100",
		Name:         "Point Collector",
		Description:  "Reach 100 points",
		Rarity:       "common",
		Requirement:  types.Requirement{Type: types.RequirementPoints, Threshold: 100},
		RewardPoints: 25,
		Active:       true,
	},
	{
		ID:           "points_1000",
		Name:         "Point Hoarder",
		Description:  "Reach 1000 points",
		Rarity:       "rare",
		Requirement:  types.Requirement{Type: types.RequirementPoints, Threshold: 1000},
		RewardPoints: 100,
		Active:       true,
	},
	{
		ID:           "points_5000",
		Name:         "Point Whale",
		Description:  "Reach 5000 points",
		Rarity:       "legendary",
		Requirement:  types.Requirement{Type: types.RequirementPoints, Threshold: 5000},
		RewardPoints: 500,
		Active:       true,
	},
	{
		ID:           "streak_7",
		Name:         "Diamond Hands",
		Description:  "Hold for 7 consecutive days",
		Rarity:       "rare",
		Requirement:  types.Requirement{Type: types.RequirementStreak, Threshold: 7},
		RewardPoints: 100,
		Active:       true,
	},
	{
		ID:           "streak_30",
		Name:         "True Believer",
		Description:  "Hold for 30 consecutive days",
		Rarity:       "legendary",
		Requirement:  types.Requirement{Type: types.RequirementStreak, Threshold: 30},
		RewardPoints: 500,
		Active:       true,
	},
	{
		ID:           "whale_balance",
		Name:         "Whale",
		Description:  "Hold a balance of 1000 tokens",
		Rarity:       "epic",
		Requirement:  types.Requirement{Type: types.RequirementBalance, Threshold: 1000},
		RewardPoints: 200,
		Active:       true,
	},
	{
		ID:           "connector",
		Name:         "Connector",
		Description:  "Refer 5 traders",
		Rarity:       "epic",
		Requirement:  types.Requirement{Type: types.RequirementReferrals, Threshold: 5},
		RewardPoints: 150,
		Active:       true,
	},
}
