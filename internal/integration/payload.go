package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/types"
)

// ============================================
// Wire shapes
// ============================================
//
// The Integration Endpoint is a no-code automation scenario and its output
// shape drifts between runs. Two quirks are accepted explicitly:
//
//  1. `projects` and `tickets` arrive either as JSON arrays or as
//     JSON-encoded strings containing an array (RawList).
//  2. id-like fields arrive either as a plain string or as a
//     single-element array (FlexID).
//
// The client identity itself may sit nested under `client` or flat at the
// top level of the envelope.

// FlexID unmarshals from a JSON string or a single-element string array,
// unwrapping to the first element.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			*f = FlexID(list[0])
		} else {
			*f = ""
		}
		return nil
	}
	return fmt.Errorf("id field is neither string nor string array: %s", data)
}

func (f FlexID) String() string { return string(f) }

// RawList defers decoding of a field that is either a JSON array or a
// JSON-encoded string of one.
type RawList json.RawMessage

func (r *RawList) UnmarshalJSON(data []byte) error {
	*r = RawList(data)
	return nil
}

// Decode unmarshals the list into dest, unwrapping one level of string
// encoding if present. An absent, null or empty-string field decodes to
// nothing and returns nil.
func (r RawList) Decode(dest interface{}) error {
	data := bytes.TrimSpace([]byte(r))
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		data = []byte(s)
	}
	return json.Unmarshal(data, dest)
}

type clientPayload struct {
	ID          FlexID   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Company     string   `json:"company"`
	EmailStatus string   `json:"emailStatus"`
	ProjectIDs  []string `json:"projectIds"`
}

type projectPayload struct {
	ID          FlexID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ClientID    FlexID   `json:"clientId"`
	ManagerID   FlexID   `json:"managerId"`
	Status      string   `json:"statut"`
	TicketIDs   []string `json:"ticketIds"`
}

type ticketPayload struct {
	ID           FlexID  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Type         string  `json:"type"`
	ProjectID    FlexID  `json:"projectId"`
	ProjectName  string  `json:"projectName"`
	ClientID     FlexID  `json:"clientId"`
	FreelancerID FlexID  `json:"freelancerId"`
	Q1           int     `json:"q1"`
	Q2           int     `json:"q2"`
	Q3           int     `json:"q3"`
	Q4           int     `json:"q4"`
	Score        float64 `json:"priorityScore"`
	Level        string  `json:"priorityLevel"`
	CreatedAt    string  `json:"createdAt"`
	Deadline     string  `json:"deadline"`
	Status       string  `json:"statut"`
	Notes        string  `json:"notes"`
}

// Envelope is the client-data fetch response.
type Envelope struct {
	Found       bool           `json:"found"`
	Client      *clientPayload `json:"client"`
	ID          FlexID         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Company     string         `json:"company"`
	EmailStatus string         `json:"emailStatus"`
	ProjectIDs  []string       `json:"projectIds"`
	Projects    RawList        `json:"projects"`
	Tickets     RawList        `json:"tickets"`
}

// identity returns the client identity from the nested `client` field when
// present, otherwise from the envelope's top-level fields. nil when neither
// carries a usable id or email.
func (e *Envelope) identity() *clientPayload {
	if e.Client != nil && (e.Client.ID != "" || e.Client.Email != "") {
		return e.Client
	}
	if e.ID != "" || e.Email != "" {
		return &clientPayload{
			ID:          e.ID,
			Name:        e.Name,
			Email:       e.Email,
			Company:     e.Company,
			EmailStatus: e.EmailStatus,
			ProjectIDs:  e.ProjectIDs,
		}
	}
	return nil
}

// Usable reports whether the response should be accepted as authoritative:
// an explicit found flag, or any recognizable client identity.
func (e *Envelope) Usable() bool {
	return e.Found || e.identity() != nil
}

// ============================================
// Normalization
// ============================================

var frenchDate = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// NormalizeDeadline rewrites a DD/MM/YYYY deadline into ISO YYYY-MM-DD.
// Anything not matching that pattern passes through unchanged.
func NormalizeDeadline(s string) string {
	m := frenchDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}

// ClientRecord returns the canonical client from the envelope, or nil when
// the envelope carries no usable identity.
func (e *Envelope) ClientRecord() *models.Client {
	id := e.identity()
	if id == nil {
		return nil
	}
	projectIDs := id.ProjectIDs
	if projectIDs == nil {
		projectIDs = []string{}
	}
	return &models.Client{
		ID:          id.ID.String(),
		Name:        id.Name,
		Email:       id.Email,
		Company:     id.Company,
		EmailStatus: id.EmailStatus,
		ProjectIDs:  projectIDs,
	}
}

// ProjectRecords decodes and normalizes the envelope's projects. A decode
// failure is logged and yields an empty list; it never fails the resolution.
// ownerID fills in a missing clientId, which the endpoint omits for projects
// returned inside their owner's payload.
func (e *Envelope) ProjectRecords(ownerID string) []models.Project {
	var raw []projectPayload
	if err := e.Projects.Decode(&raw); err != nil {
		log.Printf("[Integration] ⚠️ Unparseable projects field, ignoring: %v", err)
		return []models.Project{}
	}

	projects := make([]models.Project, 0, len(raw))
	for _, p := range raw {
		clientID := p.ClientID.String()
		if clientID == "" {
			clientID = ownerID
		}
		status := p.Status
		if status == "" {
			status = types.ProjectInProgress
		}
		ticketIDs := p.TicketIDs
		if ticketIDs == nil {
			ticketIDs = []string{}
		}
		projects = append(projects, models.Project{
			ID:          p.ID.String(),
			Name:        p.Name,
			Description: p.Description,
			ClientID:    clientID,
			ManagerID:   p.ManagerID.String(),
			Status:      status,
			TicketIDs:   ticketIDs,
		})
	}
	return projects
}

// TicketRecords decodes and normalizes the envelope's tickets. Same failure
// policy as ProjectRecords.
func (e *Envelope) TicketRecords() []models.Ticket {
	var raw []ticketPayload
	if err := e.Tickets.Decode(&raw); err != nil {
		log.Printf("[Integration] ⚠️ Unparseable tickets field, ignoring: %v", err)
		return []models.Ticket{}
	}

	tickets := make([]models.Ticket, 0, len(raw))
	for _, t := range raw {
		level := t.Level
		if level == "" {
			level = types.PriorityMedium
		}
		status := t.Status
		if status == "" {
			status = types.TicketNew
		}
		tickets = append(tickets, models.Ticket{
			ID:           t.ID.String(),
			Title:        t.Title,
			Description:  t.Description,
			Type:         t.Type,
			ProjectID:    t.ProjectID.String(),
			ProjectName:  t.ProjectName,
			ClientID:     t.ClientID.String(),
			FreelancerID: t.FreelancerID.String(),
			Q1:           t.Q1,
			Q2:           t.Q2,
			Q3:           t.Q3,
			Q4:           t.Q4,
			Score:        t.Score,
			Level:        level,
			CreatedAt:    t.CreatedAt,
			Deadline:     NormalizeDeadline(t.Deadline),
			Status:       status,
			Notes:        t.Notes,
		})
	}
	return tickets
}
