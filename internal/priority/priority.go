package priority

import (
	"time"

	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Priority / Deadline Engine
// ============================================
//
// Pure functions. Score, level and deadline are computed exactly once at
// ticket creation and stored on the ticket; nothing here re-derives them
// later.

// Deadline offsets in days per priority level.
const (
	lowDeadlineDays    = 7
	mediumDeadlineDays = 4
	highDeadlineDays   = 2
)

// Score computes the weighted priority score from the four intake ratings,
// rounded to one decimal:
//
//	round((q1*3 + q2*2 + q3*3 + q4*2) / 10, 1)
//
// Callers supply ratings already validated to integers 1..5; the function
// itself does not range-check.
func Score(q1, q2, q3, q4 int) float64 {
	weighted := decimal.NewFromInt(int64(q1*3 + q2*2 + q3*3 + q4*2))
	score := weighted.Div(decimal.NewFromInt(10)).Round(1)
	f, _ := score.Float64()
	return f
}

// LevelForScore maps a score onto a priority level. Bands are inclusive on
// their lower bound: >= 4 High, >= 2.5 Medium, below that Low.
func LevelForScore(score float64) string {
	switch {
	case score >= 4:
		return types.PriorityHigh
	case score >= 2.5:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

// Deadline returns the due instant for a ticket created at createdAt with
// the given priority level. An unrecognized level gets the High (tightest)
// deadline.
func Deadline(createdAt time.Time, level string) time.Time {
	switch level {
	case types.PriorityLow:
		return createdAt.AddDate(0, 0, lowDeadlineDays)
	case types.PriorityMedium:
		return createdAt.AddDate(0, 0, mediumDeadlineDays)
	default:
		return createdAt.AddDate(0, 0, highDeadlineDays)
	}
}

// ============================================
// Lateness Evaluator
// ============================================

// activeStatuses are the statuses for which a passed deadline makes the
// ticket late.
var activeStatuses = map[string]bool{
	types.TicketInProgress: true,
	types.TicketToProcess:  true,
	types.TicketNew:        true,
}

// IsLate reports whether a ticket is overdue. A ticket flagged Overdue by
// the backend is late regardless of its deadline; StandBy and Done tickets
// are never late.
func IsLate(t *models.Ticket) bool {
	if t.Status == types.TicketOverdue {
		return true
	}
	if !activeStatuses[t.Status] {
		return false
	}
	deadline := t.DeadlineTime()
	if deadline.IsZero() {
		return false
	}
	return time.Now().After(deadline)
}

// DaysRemaining returns the whole-day difference between the deadline and
// now, negative when the deadline has passed. ok is false when the deadline
// is unset or unparseable.
func DaysRemaining(deadline string) (days int, ok bool) {
	if deadline == "" {
		return 0, false
	}
	t := (&models.Ticket{Deadline: deadline}).DeadlineTime()
	if t.IsZero() {
		return 0, false
	}
	return int(t.Sub(time.Now()).Hours() / 24), true
}
