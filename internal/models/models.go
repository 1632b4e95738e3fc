package models

import "time"

// ============================================
// Domain Entities
// ============================================
//
// Wire names follow the Integration Endpoint contract. The endpoint
// predates this service, so `statut` (not `status`) is the status key on
// both projects and tickets.

type Client struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Company     string   `json:"company"`
	EmailStatus string   `json:"emailStatus"`
	ProjectIDs  []string `json:"projectIds"`
}

type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ClientID    string   `json:"clientId"`
	ManagerID   string   `json:"managerId,omitempty"`
	Status      string   `json:"statut"`
	TicketIDs   []string `json:"ticketIds"`
}

type Ticket struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	ProjectID   string `json:"projectId"`
	// ProjectName is a display fallback when id-based lookup fails.
	ProjectName  string  `json:"projectName,omitempty"`
	ClientID     string  `json:"clientId"`
	FreelancerID string  `json:"freelancerId,omitempty"`
	Q1           int     `json:"q1"`
	Q2           int     `json:"q2"`
	Q3           int     `json:"q3"`
	Q4           int     `json:"q4"`
	Score        float64 `json:"priorityScore"`
	Level        string  `json:"priorityLevel"`
	CreatedAt    string  `json:"createdAt"`
	Deadline     string  `json:"deadline"`
	Status       string  `json:"statut"`
	Notes        string  `json:"notes,omitempty"`
}

// CreatedAtTime parses the ticket's creation instant. Zero time on failure.
func (t *Ticket) CreatedAtTime() time.Time {
	ts, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// DeadlineTime parses the ticket's deadline. The endpoint may return either
// a full RFC 3339 instant or a bare YYYY-MM-DD date. Zero time on failure.
func (t *Ticket) DeadlineTime() time.Time {
	if ts, err := time.Parse(time.RFC3339, t.Deadline); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02", t.Deadline); err == nil {
		return ts
	}
	return time.Time{}
}

// ============================================
// Session
// ============================================

type Session struct {
	Token      string    `json:"-"`
	Email      string    `json:"email"`
	ClientID   string    `json:"clientId"`
	LastActive time.Time `json:"lastActive"`
}

// ============================================
// Request / Response DTOs
// ============================================

type CreateSessionRequest struct {
	ClientID string `json:"clientId"`
	Email    string `json:"email"`
}

type SessionResponse struct {
	Token  string  `json:"token"`
	Client *Client `json:"client"`
}

type DashboardTicket struct {
	Ticket
	Late          bool `json:"late"`
	DaysRemaining *int `json:"daysRemaining,omitempty"`
}

type DashboardResponse struct {
	Client   *Client           `json:"client"`
	Projects []Project         `json:"projects"`
	Tickets  []DashboardTicket `json:"tickets"`
}

type TicketDetails struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	ProjectID   string `json:"projectId"`
}

type TicketRatings struct {
	Q1 int `json:"q1"`
	Q2 int `json:"q2"`
	Q3 int `json:"q3"`
	Q4 int `json:"q4"`
}

type CreateTicketRequest struct {
	TicketDetails
	TicketRatings
}

// ValidateTicketRequest carries one wizard step for field-level validation.
// Step is "details" or "ratings".
type ValidateTicketRequest struct {
	Step    string         `json:"step"`
	Details *TicketDetails `json:"details,omitempty"`
	Ratings *TicketRatings `json:"ratings,omitempty"`
}

type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}
