package handlers

import (
	"github.com/nocodecorp/portal-api/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Session   *SessionHandler
	Dashboard *DashboardHandler
	Ticket    *TicketHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Session:   NewSessionHandler(services.Resolution),
		Dashboard: NewDashboardHandler(services.Resolution),
		Ticket:    NewTicketHandler(services.Ticket),
	}
}
