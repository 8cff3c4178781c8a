package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var today = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	d := today.AddDate(0, 0, -n)
	return &d
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		lastBonus     *time.Time
		currentStreak int
		wantDecision  Decision
		wantStreak    int
	}{
		{"no previous bonus starts at 1", nil, 0, DecisionReset, 1},
		{"yesterday continues", daysAgo(1), 4, DecisionContinue, 5},
		{"three days ago resets", daysAgo(3), 4, DecisionReset, 1},
		{"today is already processed", daysAgo(0), 4, DecisionAlreadyProcessed, 4},
		{"two days ago resets", daysAgo(2), 10, DecisionReset, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(today, tt.lastBonus, tt.currentStreak)
			assert.Equal(t, tt.wantDecision, got.Decision)
			assert.Equal(t, tt.wantStreak, got.Streak)
		})
	}
}

// Calendar-day comparison must ignore time of day: a bonus at 23:59 yesterday
// still continues a streak evaluated at 00:01 today.
func TestEvaluateIgnoresTimeOfDay(t *testing.T) {
	lateLastNight := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	earlyToday := time.Date(2025, 3, 15, 0, 1, 0, 0, time.UTC)

	got := Evaluate(earlyToday, &lateLastNight, 6)
	assert.Equal(t, DecisionContinue, got.Decision)
	assert.Equal(t, 7, got.Streak)
}

func TestEvaluateNormalizesTimezones(t *testing.T) {
	// 2025-03-15 01:00 +05:00 is 2025-03-14 20:00 UTC, i.e. yesterday.
	loc := time.FixedZone("UTC+5", 5*3600)
	lastBonus := time.Date(2025, 3, 15, 1, 0, 0, 0, loc)

	got := Evaluate(today, &lastBonus, 2)
	assert.Equal(t, DecisionContinue, got.Decision)
	assert.Equal(t, 3, got.Streak)
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2025-03-15", DayKey(today))

	loc := time.FixedZone("UTC-8", -8*3600)
	lateEvening := time.Date(2025, 3, 14, 22, 0, 0, 0, loc) // 06:00 UTC next day
	assert.Equal(t, "2025-03-15", DayKey(lateEvening))
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(today, today.Add(10*time.Hour)))
	assert.False(t, SameDay(today, today.AddDate(0, 0, 1)))
}
