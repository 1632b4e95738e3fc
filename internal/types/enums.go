package types

// Priority Level values (derived from the four intake ratings)
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Ticket Status values
const (
	TicketNew        = "New"
	TicketStandBy    = "StandBy"
	TicketToProcess  = "ToProcess"
	TicketInProgress = "InProgress"
	TicketOverdue    = "Overdue"
	TicketDone       = "Done"
)

// Ticket Type values
const (
	TypeBug         = "Bug"
	TypeFeature     = "Feature"
	TypeSupport     = "Support"
	TypeDesign      = "Design"
	TypeDevelopment = "Development"
)

// Project Status values
const (
	ProjectInProgress = "InProgress"
	ProjectDone       = "Done"
	ProjectPaused     = "Paused"
)

// Client Email Status values
const (
	EmailValid         = "Valid"
	EmailInvalid       = "Invalid"
	EmailPendingUpdate = "PendingUpdate"
)

// Valid values for validation
var ValidTicketStatuses = []string{
	TicketNew, TicketStandBy, TicketToProcess,
	TicketInProgress, TicketOverdue, TicketDone,
}

var ValidPriorityLevels = []string{
	PriorityLow, PriorityMedium, PriorityHigh,
}

var ValidTicketTypes = []string{
	TypeBug, TypeFeature, TypeSupport, TypeDesign, TypeDevelopment,
}

var ValidProjectStatuses = []string{
	ProjectInProgress, ProjectDone, ProjectPaused,
}

// Helper functions for validation
func IsValidTicketStatus(status string) bool {
	for _, s := range ValidTicketStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidPriorityLevel(level string) bool {
	for _, l := range ValidPriorityLevels {
		if l == level {
			return true
		}
	}
	return false
}

func IsValidTicketType(ticketType string) bool {
	for _, t := range ValidTicketTypes {
		if t == ticketType {
			return true
		}
	}
	return false
}

func IsValidProjectStatus(status string) bool {
	for _, s := range ValidProjectStatuses {
		if s == status {
			return true
		}
	}
	return false
}
