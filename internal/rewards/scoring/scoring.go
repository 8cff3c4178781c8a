// Package scoring holds the point formulas. All functions are pure,
// monotonic in their inputs, and capped.
package scoring

import (
	"math"

	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/errors"
)

const (
	buyBasePoints   = 10
	buyPerUnit      = 2
	buyPointsCap    = 500
	sellBasePoints  = 5
	sellPerUnit     = 1
	sellPointsCap   = 250
	baseChainPoints = 5

	bonusBasePoints  = 10
	bonusPerDay      = 5
	bonusPointsCap   = 50
	bonusBaseTokens  = 1.0
	bonusTokenPerDay = 0.5
	bonusTokensCap   = 5.0
)

// PointsFor computes the points awarded for a transaction of the given type
// and amount. Streak bonuses are scored by the distribution engine, never
// here.
func PointsFor(txType types.TransactionType, amount float64) (int64, error) {
	switch txType {
	case types.TxTypeBuy:
		return capped(buyBasePoints+int64(math.Floor(amount))*buyPerUnit, buyPointsCap), nil
	case types.TxTypeSell:
		return capped(sellBasePoints+int64(math.Floor(amount))*sellPerUnit, sellPointsCap), nil
	case types.TxTypeBaseChain:
		return baseChainPoints, nil
	default:
		return 0, errors.Validationf("unrecognized transaction type: %s", txType)
	}
}

// BonusPoints returns the holding bonus for the given streak length:
// 10 points on day one, +5 per consecutive day, capped at 50.
func BonusPoints(streakLength int) int64 {
	if streakLength < 1 {
		streakLength = 1
	}
	return capped(bonusBasePoints+int64(streakLength-1)*bonusPerDay, bonusPointsCap)
}

// BonusTokens returns the token bonus for the given streak length:
// 1.0 token on day one, +0.5 per consecutive day, capped at 5.0.
func BonusTokens(streakLength int) float64 {
	if streakLength < 1 {
		streakLength = 1
	}
	tokens := bonusBaseTokens + float64(streakLength-1)*bonusTokenPerDay
	if tokens > bonusTokensCap {
		return bonusTokensCap
	}
	return tokens
}

func capped(points, cap int64) int64 {
	if points > cap {
		return cap
	}
	return points
}
