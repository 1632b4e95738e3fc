package priority

import (
	"testing"
	"time"

	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	assert.Equal(t, 1.0, Score(1, 1, 1, 1))
	assert.Equal(t, 5.0, Score(5, 5, 5, 5))
	assert.Equal(t, 3.0, Score(5, 5, 1, 1))
	assert.Equal(t, 1.5, Score(2, 1, 1, 2))
}

func TestScoreBounds(t *testing.T) {
	for q1 := 1; q1 <= 5; q1++ {
		for q2 := 1; q2 <= 5; q2++ {
			for q3 := 1; q3 <= 5; q3++ {
				for q4 := 1; q4 <= 5; q4++ {
					s := Score(q1, q2, q3, q4)
					assert.GreaterOrEqual(t, s, 1.0)
					assert.LessOrEqual(t, s, 5.0)
					assert.Equal(t, s, Score(q1, q2, q3, q4), "deterministic")
				}
			}
		}
	}
}

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, types.PriorityHigh, LevelForScore(4.0))
	assert.Equal(t, types.PriorityHigh, LevelForScore(5.0))
	assert.Equal(t, types.PriorityMedium, LevelForScore(3.9))
	assert.Equal(t, types.PriorityMedium, LevelForScore(2.5))
	assert.Equal(t, types.PriorityLow, LevelForScore(2.4))
	assert.Equal(t, types.PriorityLow, LevelForScore(1.0))
}

func TestDeadline(t *testing.T) {
	created := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, created.AddDate(0, 0, 7), Deadline(created, types.PriorityLow))
	assert.Equal(t, created.AddDate(0, 0, 4), Deadline(created, types.PriorityMedium))
	assert.Equal(t, created.AddDate(0, 0, 2), Deadline(created, types.PriorityHigh))

	// Unrecognized levels fall back to the tightest deadline.
	assert.Equal(t, created.AddDate(0, 0, 2), Deadline(created, "Urgent"))
}

func TestIsLate(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1).Format(time.RFC3339)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(time.RFC3339)

	tests := []struct {
		name     string
		status   string
		deadline string
		want     bool
	}{
		{"in progress past deadline", types.TicketInProgress, yesterday, true},
		{"to process past deadline", types.TicketToProcess, yesterday, true},
		{"new past deadline", types.TicketNew, yesterday, true},
		{"in progress before deadline", types.TicketInProgress, tomorrow, false},
		{"done past deadline", types.TicketDone, yesterday, false},
		{"stand-by past deadline", types.TicketStandBy, yesterday, false},
		{"overdue regardless of deadline", types.TicketOverdue, tomorrow, true},
		{"overdue with no deadline", types.TicketOverdue, "", true},
		{"active with no deadline", types.TicketNew, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &models.Ticket{Status: tt.status, Deadline: tt.deadline}
			assert.Equal(t, tt.want, IsLate(ticket))
		})
	}
}

func TestDaysRemaining(t *testing.T) {
	_, ok := DaysRemaining("")
	assert.False(t, ok)

	_, ok = DaysRemaining("not a date")
	assert.False(t, ok)

	days, ok := DaysRemaining(time.Now().Add(72*time.Hour + time.Minute).Format(time.RFC3339))
	assert.True(t, ok)
	assert.Equal(t, 3, days)

	days, ok = DaysRemaining(time.Now().Add(-49 * time.Hour).Format(time.RFC3339))
	assert.True(t, ok)
	assert.Equal(t, -2, days)

	// Bare dates from the endpoint parse too.
	days, ok = DaysRemaining(time.Now().AddDate(0, 0, 5).Format("2006-01-02"))
	assert.True(t, ok)
}
