package intake

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/priority"
	"github.com/nocodecorp/portal-api/internal/types"
)

// ============================================
// Ticket Intake Wizard
// ============================================
//
// A linear three-step flow: Details -> Ratings -> Confirmation. Forward
// movement is blocked until the current step validates; Back only moves
// between Ratings and Details; Confirmation is terminal and reached only
// through a successful submission. Cancel discards everything.

type Step int

const (
	StepDetails Step = iota + 1
	StepRatings
	StepConfirmation
)

type Wizard struct {
	step    Step
	details models.TicketDetails
	ratings models.TicketRatings
}

func NewWizard() *Wizard {
	return &Wizard{step: StepDetails}
}

func (w *Wizard) Step() Step { return w.step }

// EnterDetails validates step one and, when clean, stores the details and
// advances to the ratings step. Field-level errors leave the wizard where
// it is.
func (w *Wizard) EnterDetails(d models.TicketDetails) map[string]string {
	if errs := ValidateDetails(d); len(errs) > 0 {
		return errs
	}
	w.details = d
	if w.step == StepDetails {
		w.step = StepRatings
	}
	return nil
}

// Back returns from the ratings step to the details step. Entered details
// are kept.
func (w *Wizard) Back() {
	if w.step == StepRatings {
		w.step = StepDetails
	}
}

// Submit validates the ratings, builds the ticket and advances to the
// confirmation step. It refuses to run before the details step has passed.
func (w *Wizard) Submit(r models.TicketRatings) (*models.Ticket, map[string]string) {
	if w.step != StepRatings {
		return nil, map[string]string{"step": "complete the details step first"}
	}
	if errs := ValidateRatings(r); len(errs) > 0 {
		return nil, errs
	}
	w.ratings = r
	w.step = StepConfirmation
	return BuildTicket(w.details, w.ratings, time.Now()), nil
}

// Cancel discards all entered data and resets to step one.
func (w *Wizard) Cancel() {
	*w = Wizard{step: StepDetails}
}

// ValidateDetails checks the step-one fields. Keys are field names, values
// the message shown inline next to the field.
func ValidateDetails(d models.TicketDetails) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(d.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(d.Description) == "" {
		errs["description"] = "description is required"
	}
	if !types.IsValidTicketType(d.Type) {
		errs["type"] = "select a request type"
	}
	if strings.TrimSpace(d.ProjectID) == "" {
		errs["projectId"] = "select a project"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateRatings checks that all four answers are set and within 1..5.
func ValidateRatings(r models.TicketRatings) map[string]string {
	errs := make(map[string]string)
	ratings := map[string]int{"q1": r.Q1, "q2": r.Q2, "q3": r.Q3, "q4": r.Q4}
	for field, v := range ratings {
		if v < 1 || v > 5 {
			errs[field] = "rate from 1 to 5"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// BuildTicket assembles a new ticket from validated intake data. Score,
// level and deadline are derived here, once; the ticket starts in New and
// the owning service fills in the client id.
func BuildTicket(d models.TicketDetails, r models.TicketRatings, createdAt time.Time) *models.Ticket {
	score := priority.Score(r.Q1, r.Q2, r.Q3, r.Q4)
	level := priority.LevelForScore(score)

	return &models.Ticket{
		ID:          "tick_" + uuid.New().String(),
		Title:       d.Title,
		Description: d.Description,
		Type:        d.Type,
		ProjectID:   d.ProjectID,
		Q1:          r.Q1,
		Q2:          r.Q2,
		Q3:          r.Q3,
		Q4:          r.Q4,
		Score:       score,
		Level:       level,
		CreatedAt:   createdAt.Format(time.RFC3339),
		Deadline:    priority.Deadline(createdAt, level).Format(time.RFC3339),
		Status:      types.TicketNew,
	}
}
