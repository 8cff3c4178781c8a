// Package streak decides whether a user's daily holding streak continues,
// resets, or was already processed today. Pure functions over injected
// dates; no wall clock.
package streak

import (
	"time"
)

// DayFormat is the key for one UTC calendar day.
const DayFormat = "2006-01-02"

type Decision int

const (
	// DecisionReset starts a fresh streak of 1: the last bonus is absent or
	// more than one day stale.
	DecisionReset Decision = iota
	// DecisionContinue extends the streak: the last bonus was exactly
	// yesterday.
	DecisionContinue
	// DecisionAlreadyProcessed means today's bonus already ran; the day is a
	// no-op.
	DecisionAlreadyProcessed
)

func (d Decision) String() string {
	switch d {
	case DecisionReset:
		return "reset"
	case DecisionContinue:
		return "continue"
	case DecisionAlreadyProcessed:
		return "already_processed"
	default:
		return "unknown"
	}
}

// Result carries the decision and the streak value that results from it.
// Streak is unchanged for DecisionAlreadyProcessed.
type Result struct {
	Decision Decision
	Streak   int
}

// Evaluate computes the streak decision for today given the last successful
// bonus date and the current streak count. All dates are compared as UTC
// calendar days.
func Evaluate(today time.Time, lastBonus *time.Time, currentStreak int) Result {
	if lastBonus == nil {
		return Result{Decision: DecisionReset, Streak: 1}
	}

	todayDay := truncateToDay(today)
	lastDay := truncateToDay(*lastBonus)

	switch {
	case lastDay.Equal(todayDay):
		return Result{Decision: DecisionAlreadyProcessed, Streak: currentStreak}
	case lastDay.Equal(todayDay.AddDate(0, 0, -1)):
		return Result{Decision: DecisionContinue, Streak: currentStreak + 1}
	default:
		return Result{Decision: DecisionReset, Streak: 1}
	}
}

// DayKey formats the UTC calendar day of t, used as the idempotency marker
// key.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
