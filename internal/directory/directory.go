package directory

import (
	"strings"
	"time"

	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/types"
)

// ============================================
// Mock directory
// ============================================
//
// Fixed fallback data used when the Integration Endpoint is unreachable or
// returns nothing usable. Matching a mock client counts as a successful
// resolution and establishes a session, so a demo environment works with no
// webhook configured at all.

type Directory struct {
	clients  []models.Client
	projects map[string][]models.Project
	tickets  map[string][]models.Ticket
}

// Result is a resolved mock client with its projects and tickets.
type Result struct {
	Client   *models.Client
	Projects []models.Project
	Tickets  []models.Ticket
}

func New() *Directory {
	now := time.Now()

	return &Directory{
		clients: []models.Client{
			{
				ID:          "cli_1",
				Name:        "Jean Dupont",
				Email:       "jean.dupont@startup.io",
				Company:     "Startup IO",
				EmailStatus: types.EmailValid,
				ProjectIDs:  []string{"proj_1", "proj_2"},
			},
		},
		projects: map[string][]models.Project{
			"cli_1": {
				{
					ID:          "proj_1",
					Name:        "Website Redesign",
					Description: "Full rebuild of the marketing site.",
					ClientID:    "cli_1",
					ManagerID:   "pm_1",
					Status:      types.ProjectInProgress,
					TicketIDs:   []string{"tick_1", "tick_2"},
				},
				{
					ID:          "proj_2",
					Name:        "Mobile App MVP",
					Description: "First shippable cut of the mobile app.",
					ClientID:    "cli_1",
					ManagerID:   "pm_1",
					Status:      types.ProjectPaused,
					TicketIDs:   []string{},
				},
			},
		},
		tickets: map[string][]models.Ticket{
			"cli_1": {
				{
					ID:           "tick_1",
					Title:        "Mobile menu broken",
					Description:  "The hamburger menu does not open on iPhone.",
					Type:         types.TypeBug,
					ProjectID:    "proj_1",
					ClientID:     "cli_1",
					FreelancerID: "free_1",
					Q1:           5, Q2: 5, Q3: 5, Q4: 5,
					Score:     5.0,
					Level:     types.PriorityHigh,
					CreatedAt: now.AddDate(0, 0, -3).Format(time.RFC3339),
					Deadline:  now.AddDate(0, 0, -1).Format(time.RFC3339),
					Status:    types.TicketInProgress,
				},
				{
					ID:          "tick_2",
					Title:       "Add contact page",
					Description: "Contact page with a simple form.",
					Type:        types.TypeFeature,
					ProjectID:   "proj_1",
					ClientID:    "cli_1",
					Q1:          2, Q2: 1, Q3: 1, Q4: 2,
					Score:     1.5,
					Level:     types.PriorityLow,
					CreatedAt: now.Format(time.RFC3339),
					Deadline:  now.AddDate(0, 0, 7).Format(time.RFC3339),
					Status:    types.TicketNew,
				},
			},
		},
	}
}

// FindByEmail looks a mock client up by email, case-insensitively.
func (d *Directory) FindByEmail(email string) *Result {
	for i := range d.clients {
		if strings.EqualFold(d.clients[i].Email, email) {
			return d.result(&d.clients[i])
		}
	}
	return nil
}

// FindByID looks a mock client up by id.
func (d *Directory) FindByID(id string) *Result {
	for i := range d.clients {
		if d.clients[i].ID == id {
			return d.result(&d.clients[i])
		}
	}
	return nil
}

func (d *Directory) result(c *models.Client) *Result {
	return &Result{
		Client:   c,
		Projects: d.projects[c.ID],
		Tickets:  d.tickets[c.ID],
	}
}
