package tiers

import (
	"math"
	"sort"

	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/errors"
)

// TierInfo is one row of the static tier table. Bounds are inclusive;
// MaxPoints of math.MaxInt64 marks the open-ended top tier.
type TierInfo struct {
	Name      types.Tier `json:"name"`
	MinPoints int64      `json:"min_points"`
	MaxPoints int64      `json:"max_points"`
	Color     string     `json:"color"`
}

// DefaultTiers is the production tier table.
var DefaultTiers = []TierInfo{
	{Name: types.TierBronze, MinPoints: 0, MaxPoints: 99, Color: "#CD7F32"},
	{Name: types.TierSilver, MinPoints: 100, MaxPoints: 499, Color: "#C0C0C0"},
	{Name: types.TierGold, MinPoints: 500, MaxPoints: 1999, Color: "#FFD700"},
	{Name: types.TierPlatinum, MinPoints: 2000, MaxPoints: 4999, Color: "#E5E4E2"},
	{Name: types.TierDiamond, MinPoints: 5000, MaxPoints: math.MaxInt64, Color: "#B9F2FF"},
}

// Table maps point totals to tiers. Built once at startup; TierFor is total
// over the non-negative integers.
type Table struct {
	tiers []TierInfo
}

// NewTable validates that the tiers partition the non-negative integers with
// no gaps and no overlaps. A violation is a ConfigurationError and fatal.
func NewTable(tiers []TierInfo) (*Table, error) {
	if len(tiers) == 0 {
		return nil, errors.Configurationf("tier table is empty")
	}

	sorted := make([]TierInfo, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinPoints < sorted[j].MinPoints
	})

	if sorted[0].MinPoints != 0 {
		return nil, errors.Configurationf("tier table must start at 0, got %d", sorted[0].MinPoints)
	}

	for i, tier := range sorted {
		if tier.MinPoints < 0 {
			return nil, errors.Configurationf("tier %q has negative min bound %d", tier.Name, tier.MinPoints)
		}
		if tier.MaxPoints < tier.MinPoints {
			return nil, errors.Configurationf("tier %q has max %d below min %d", tier.Name, tier.MaxPoints, tier.MinPoints)
		}
		if i > 0 && tier.MinPoints != sorted[i-1].MaxPoints+1 {
			return nil, errors.Configurationf("tier table gap or overlap between %q and %q", sorted[i-1].Name, tier.Name)
		}
	}

	if sorted[len(sorted)-1].MaxPoints != math.MaxInt64 {
		return nil, errors.Configurationf("top tier %q must be unbounded", sorted[len(sorted)-1].Name)
	}

	return &Table{tiers: sorted}, nil
}

// MustNewTable is for the static default table, where a violation is a
// programming error.
func MustNewTable(tiers []TierInfo) *Table {
	table, err := NewTable(tiers)
	if err != nil {
		panic(err)
	}
	return table
}

// TierFor selects the unique tier whose bounds contain points. Negative
// totals never occur; they clamp to the bottom tier.
func (t *Table) TierFor(points int64) TierInfo {
	for _, tier := range t.tiers {
		if points >= tier.MinPoints && points <= tier.MaxPoints {
			return tier
		}
	}
	return t.tiers[0]
}

// Tiers returns the validated table rows in ascending order.
func (t *Table) Tiers() []TierInfo {
	out := make([]TierInfo, len(t.tiers))
	copy(out, t.tiers)
	return out
}
