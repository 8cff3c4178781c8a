// Package leaderboard maintains a ranked projection over user profiles.
// Ranking is dense by points with ties broken by earliest join date, so the
// order is stable across refreshes. Reads serve a cached snapshot; the cache
// is refreshed when it exceeds its staleness bound or on explicit request.
package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

const (
	defaultMaxEntries = 500
	defaultStaleness  = 5 * time.Minute
)

type Ranker struct {
	users      repository.UserRepository
	logger     logging.Logger
	maxEntries int
	staleness  time.Duration
	now        func() time.Time

	mu          sync.RWMutex
	entries     []*types.LeaderboardEntry
	rankByUser  map[string]int64
	refreshedAt time.Time
}

type Option func(*Ranker)

// WithMaxEntries caps how many ranked entries the projection keeps.
func WithMaxEntries(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.maxEntries = n
		}
	}
}

// WithStaleness sets how old the cached projection may be before a read
// triggers a refresh.
func WithStaleness(d time.Duration) Option {
	return func(r *Ranker) {
		if d > 0 {
			r.staleness = d
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) { r.now = now }
}

func NewRanker(users repository.UserRepository, logger logging.Logger, opts ...Option) *Ranker {
	r := &Ranker{
		users:      users,
		logger:     logger,
		maxEntries: defaultMaxEntries,
		staleness:  defaultStaleness,
		now:        time.Now,
		rankByUser: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TopN returns the first n ranked entries, refreshing the projection when it
// is stale. The returned slice is a copy.
func (r *Ranker) TopN(ctx context.Context, n int) ([]*types.LeaderboardEntry, error) {
	if err := r.refreshIfStale(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]*types.LeaderboardEntry, n)
	for i := 0; i < n; i++ {
		entry := *r.entries[i]
		out[i] = &entry
	}
	return out, nil
}

// RankOf returns the cached rank for the address; zero means unranked (not in
// the projection, or never refreshed).
func (r *Ranker) RankOf(ctx context.Context, address string) (int64, error) {
	if err := r.refreshIfStale(ctx); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rankByUser[address], nil
}

// Refresh recomputes the projection from the profile table and persists each
// ranked user's position. Rank persistence is best effort; the cached
// projection is authoritative for reads.
func (r *Ranker) Refresh(ctx context.Context) error {
	profiles, err := r.users.TopByPoints(ctx, r.maxEntries)
	if err != nil {
		return err
	}
	now := r.now().UTC()

	entries := make([]*types.LeaderboardEntry, 0, len(profiles))
	rankByUser := make(map[string]int64, len(profiles))
	for i, profile := range profiles {
		rank := int64(i + 1)
		rankByUser[profile.Address] = rank
		entries = append(entries, &types.LeaderboardEntry{
			Address:           profile.Address,
			Username:          profile.Username,
			DisplayName:       profile.DisplayName,
			Points:            profile.TotalPoints,
			Rank:              i + 1,
			Tier:              profile.Tier,
			TotalTransactions: profile.TotalTransactions,
			TokenBalance:      profile.TokenBalance,
			UpdatedAt:         now,
		})

		if profile.CurrentRank != rank {
			if err := r.users.UpdateRank(ctx, profile.Address, rank); err != nil {
				r.logger.Warnf("Failed to persist rank %d for %s: %v", rank, profile.Address, err)
			}
		}
	}

	r.mu.Lock()
	r.entries = entries
	r.rankByUser = rankByUser
	r.refreshedAt = now
	r.mu.Unlock()

	r.logger.Debugf("Leaderboard refreshed: %d entries", len(entries))
	return nil
}

func (r *Ranker) refreshIfStale(ctx context.Context) error {
	r.mu.RLock()
	fresh := !r.refreshedAt.IsZero() && r.now().UTC().Sub(r.refreshedAt) < r.staleness
	r.mu.RUnlock()

	if fresh {
		return nil
	}
	return r.Refresh(ctx)
}
