package repository

import (
	"context"
	"time"

	"github.com/tradequest/rewards-backend/internal/rewards/types"
)

// UserRepository reads and writes user profiles. Implementations serialize
// all mutations to a single user's profile relative to each other.
type UserRepository interface {
	GetByAddress(ctx context.Context, address string) (*types.UserProfile, error)
	Create(ctx context.Context, profile *types.UserProfile) error
	UpdateIdentity(ctx context.Context, req *types.UpdateProfileIdentityRequest) error
	UpdateRank(ctx context.Context, address string, rank int64) error
	// ListPage returns one page of profiles plus the paging state for the
	// next call; a nil next state means the enumeration is done.
	ListPage(ctx context.Context, pageSize int, pageState []byte) ([]*types.UserProfile, []byte, error)
	TopByPoints(ctx context.Context, n int) ([]*types.UserProfile, error)
	Count(ctx context.Context) (int64, error)
	TotalPoints(ctx context.Context) (int64, error)
}

// TransactionRepository is the immutable ledger. ApplyTransaction appends the
// record and increments the owning profile's totals as a single atomic unit
// per user; it returns the updated profile.
type TransactionRepository interface {
	ApplyTransaction(ctx context.Context, tx *types.Transaction) (*types.UserProfile, error)
	ListByUser(ctx context.Context, address string, limit int) ([]*types.Transaction, error)
	CountByUserSince(ctx context.Context, address string, since time.Time) (int64, error)
	SumPointsByUser(ctx context.Context, address string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// BonusRepository applies daily holding bonuses. ApplyDailyBonus claims the
// (user, day) idempotency marker, appends the streak-bonus transaction and
// updates the profile atomically; applied is false when the marker already
// existed, which callers treat as a benign no-op.
type BonusRepository interface {
	ApplyDailyBonus(ctx context.Context, bonus *types.DailyBonus) (profile *types.UserProfile, applied bool, err error)
	CountForDay(ctx context.Context, day string) (int64, error)
}

// AchievementRepository writes unlock records. Unlock creates the
// (user, achievement) pair if absent and adds the reward points to the
// profile; applied is false when the pair already existed, so concurrent
// evaluations never double-unlock.
type AchievementRepository interface {
	Unlock(ctx context.Context, ua *types.UserAchievement, rewardPoints int64) (applied bool, err error)
	ListUnlocked(ctx context.Context, address string) ([]*types.UserAchievement, error)
}

// Store aggregates the persistence collaborator's surfaces.
type Store interface {
	Users() UserRepository
	Transactions() TransactionRepository
	Bonuses() BonusRepository
	Achievements() AchievementRepository
}
