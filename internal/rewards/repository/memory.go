package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tradequest/rewards-backend/internal/rewards/tiers"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/errors"
)

// InMemoryStore implements Store with process-local state. It backs engine
// tests and local development; its locking gives the same per-user
// serialization guarantee the ScyllaDB implementation provides with LWTs.
type InMemoryStore struct {
	mu           sync.Mutex
	tierTable    *tiers.Table
	profiles     map[string]*types.UserProfile
	transactions map[string][]*types.Transaction
	bonusDays    map[string]map[string]bool // address -> day key -> claimed
	unlocked     map[string]map[string]*types.UserAchievement

	// writeErrors injects per-address failures for batch-job tests.
	writeErrors map[string]error
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore(tierTable *tiers.Table) *InMemoryStore {
	return &InMemoryStore{
		tierTable:    tierTable,
		profiles:     make(map[string]*types.UserProfile),
		transactions: make(map[string][]*types.Transaction),
		bonusDays:    make(map[string]map[string]bool),
		unlocked:     make(map[string]map[string]*types.UserAchievement),
		writeErrors:  make(map[string]error),
	}
}

func (s *InMemoryStore) Users() UserRepository               { return s }
func (s *InMemoryStore) Transactions() TransactionRepository { return s }
func (s *InMemoryStore) Bonuses() BonusRepository            { return s }
func (s *InMemoryStore) Achievements() AchievementRepository { return s }

// FailWritesFor makes every write for the address fail with err until
// cleared with a nil err. Test hook.
func (s *InMemoryStore) FailWritesFor(address string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.writeErrors, address)
		return
	}
	s.writeErrors[address] = err
}

func (s *InMemoryStore) GetByAddress(ctx context.Context, address string) (*types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[address]
	if !ok {
		return nil, errors.NotFound("user profile", address)
	}
	return cloneProfile(profile), nil
}

func (s *InMemoryStore) Create(ctx context.Context, profile *types.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeErrors[profile.Address]; err != nil {
		return err
	}
	if _, exists := s.profiles[profile.Address]; exists {
		return errors.Conflict("profile already exists: " + profile.Address)
	}
	s.profiles[profile.Address] = cloneProfile(profile)
	return nil
}

func (s *InMemoryStore) UpdateIdentity(ctx context.Context, req *types.UpdateProfileIdentityRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[req.UserAddress]
	if !ok {
		return errors.NotFound("user profile", req.UserAddress)
	}
	if req.FID != 0 {
		profile.FID = req.FID
	}
	if req.Username != "" {
		profile.Username = req.Username
	}
	if req.DisplayName != "" {
		profile.DisplayName = req.DisplayName
	}
	if req.AvatarURL != "" {
		profile.AvatarURL = req.AvatarURL
	}
	profile.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryStore) UpdateRank(ctx context.Context, address string, rank int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[address]
	if !ok {
		return errors.NotFound("user profile", address)
	}
	profile.CurrentRank = rank
	return nil
}

func (s *InMemoryStore) ListPage(ctx context.Context, pageSize int, pageState []byte) ([]*types.UserProfile, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addresses := make([]string, 0, len(s.profiles))
	for address := range s.profiles {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	start := 0
	if len(pageState) > 0 {
		cursor := string(pageState)
		start = sort.SearchStrings(addresses, cursor)
		if start < len(addresses) && addresses[start] == cursor {
			start++
		}
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	end := start + pageSize
	if end > len(addresses) {
		end = len(addresses)
	}

	page := make([]*types.UserProfile, 0, end-start)
	for _, address := range addresses[start:end] {
		page = append(page, cloneProfile(s.profiles[address]))
	}

	var next []byte
	if end < len(addresses) {
		next = []byte(addresses[end-1])
	}
	return page, next, nil
}

func (s *InMemoryStore) TopByPoints(ctx context.Context, n int) ([]*types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*types.UserProfile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		all = append(all, cloneProfile(profile))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TotalPoints != all[j].TotalPoints {
			return all[i].TotalPoints > all[j].TotalPoints
		}
		if !all[i].JoinedAt.Equal(all[j].JoinedAt) {
			return all[i].JoinedAt.Before(all[j].JoinedAt)
		}
		return all[i].Address < all[j].Address
	})
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

func (s *InMemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.profiles)), nil
}

func (s *InMemoryStore) TotalPoints(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, profile := range s.profiles {
		total += profile.TotalPoints
	}
	return total, nil
}

func (s *InMemoryStore) ApplyTransaction(ctx context.Context, tx *types.Transaction) (*types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeErrors[tx.UserAddress]; err != nil {
		return nil, err
	}
	profile, ok := s.profiles[tx.UserAddress]
	if !ok {
		return nil, errors.NotFound("user profile", tx.UserAddress)
	}

	s.transactions[tx.UserAddress] = append(s.transactions[tx.UserAddress], cloneTransaction(tx))

	profile.TotalPoints += tx.Points
	profile.TotalTransactions++
	if tx.Type == types.TxTypeBuy {
		profile.TokenBalance += tx.Amount
	}
	if tx.Type == types.TxTypeSell {
		profile.TokenBalance -= tx.Amount
		if profile.TokenBalance < 0 {
			profile.TokenBalance = 0
		}
	}
	profile.Tier = s.tierTable.TierFor(profile.TotalPoints).Name
	profile.LastActiveAt = tx.Timestamp
	profile.UpdatedAt = tx.Timestamp

	return cloneProfile(profile), nil
}

func (s *InMemoryStore) ListByUser(ctx context.Context, address string, limit int) ([]*types.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.transactions[address]
	out := make([]*types.Transaction, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, cloneTransaction(records[i]))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountByUserSince(ctx context.Context, address string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, tx := range s.transactions[address] {
		if !tx.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) SumPointsByUser(ctx context.Context, address string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, tx := range s.transactions[address] {
		if tx.Status == types.TxStatusCompleted {
			sum += tx.Points
		}
	}
	return sum, nil
}

func (s *InMemoryStore) CountAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, records := range s.transactions {
		count += int64(len(records))
	}
	return count, nil
}

func (s *InMemoryStore) ApplyDailyBonus(ctx context.Context, bonus *types.DailyBonus) (*types.UserProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeErrors[bonus.UserAddress]; err != nil {
		return nil, false, err
	}
	profile, ok := s.profiles[bonus.UserAddress]
	if !ok {
		return nil, false, errors.NotFound("user profile", bonus.UserAddress)
	}

	days, ok := s.bonusDays[bonus.UserAddress]
	if !ok {
		days = make(map[string]bool)
		s.bonusDays[bonus.UserAddress] = days
	}
	if days[bonus.Day] {
		return cloneProfile(profile), false, nil
	}
	days[bonus.Day] = true

	s.transactions[bonus.UserAddress] = append(s.transactions[bonus.UserAddress], cloneTransaction(bonus.Transaction))

	profile.TotalPoints += bonus.Points
	profile.TokenBalance += bonus.Tokens
	profile.TokensEarned += bonus.Tokens
	profile.WeeklyStreak = bonus.Streak
	bonusTime := bonus.Transaction.Timestamp
	profile.LastHoldingBonusDate = &bonusTime
	profile.Tier = s.tierTable.TierFor(profile.TotalPoints).Name
	profile.UpdatedAt = bonusTime

	return cloneProfile(profile), true, nil
}

func (s *InMemoryStore) CountForDay(ctx context.Context, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, days := range s.bonusDays {
		if days[day] {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) Unlock(ctx context.Context, ua *types.UserAchievement, rewardPoints int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeErrors[ua.UserAddress]; err != nil {
		return false, err
	}
	profile, ok := s.profiles[ua.UserAddress]
	if !ok {
		return false, errors.NotFound("user profile", ua.UserAddress)
	}

	unlocked, ok := s.unlocked[ua.UserAddress]
	if !ok {
		unlocked = make(map[string]*types.UserAchievement)
		s.unlocked[ua.UserAddress] = unlocked
	}
	if _, exists := unlocked[ua.AchievementID]; exists {
		return false, nil
	}

	record := *ua
	unlocked[ua.AchievementID] = &record

	profile.TotalPoints += rewardPoints
	profile.AchievementIDs = append(profile.AchievementIDs, ua.AchievementID)
	profile.Tier = s.tierTable.TierFor(profile.TotalPoints).Name
	profile.UpdatedAt = ua.UnlockedAt

	return true, nil
}

func (s *InMemoryStore) ListUnlocked(ctx context.Context, address string) ([]*types.UserAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*types.UserAchievement, 0, len(s.unlocked[address]))
	for _, record := range s.unlocked[address] {
		clone := *record
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AchievementID < out[j].AchievementID })
	return out, nil
}

func cloneProfile(p *types.UserProfile) *types.UserProfile {
	clone := *p
	if p.LastHoldingBonusDate != nil {
		d := *p.LastHoldingBonusDate
		clone.LastHoldingBonusDate = &d
	}
	clone.AchievementIDs = append([]string(nil), p.AchievementIDs...)
	return &clone
}

func cloneTransaction(tx *types.Transaction) *types.Transaction {
	clone := *tx
	if tx.Trade != nil {
		m := *tx.Trade
		clone.Trade = &m
	}
	if tx.Chain != nil {
		m := *tx.Chain
		clone.Chain = &m
	}
	if tx.Bonus != nil {
		m := *tx.Bonus
		clone.Bonus = &m
	}
	return &clone
}
