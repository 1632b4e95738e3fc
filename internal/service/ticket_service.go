package service

import (
	"context"
	"log"
	"time"

	"github.com/nocodecorp/portal-api/internal/config"
	"github.com/nocodecorp/portal-api/internal/integration"
	"github.com/nocodecorp/portal-api/internal/intake"
	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/socket"
	"github.com/nocodecorp/portal-api/internal/state"
	"github.com/nocodecorp/portal-api/internal/types"
)

// ============================================
// Ticket Service
// ============================================
//
// Owns what happens around the intake wizard's output: stamping the
// authenticated client id, the StandBy downgrade for clients with a broken
// email, the optimistic local insert, the fire-and-forget forward to the
// Integration Endpoint, and the delayed reconciliation fetch.

type TicketService interface {
	// ValidateStep runs field-level validation for one wizard step.
	ValidateStep(req models.ValidateTicketRequest) models.ValidationResponse
	// Create validates the full intake, builds the ticket and applies it.
	// Validation failures come back as field errors, not as an error.
	Create(ctx context.Context, sess *models.Session, req models.CreateTicketRequest) (*models.Ticket, map[string]string, error)
}

type ticketService struct {
	cfg         *config.Config
	endpoint    *integration.Client
	state       *state.Store
	broadcaster *socket.Broadcaster
	resolution  ResolutionService
}

func NewTicketService(deps *ServiceDeps, resolution ResolutionService) TicketService {
	return &ticketService{
		cfg:         deps.Config,
		endpoint:    deps.Endpoint,
		state:       deps.State,
		broadcaster: deps.Broadcaster,
		resolution:  resolution,
	}
}

func (s *ticketService) ValidateStep(req models.ValidateTicketRequest) models.ValidationResponse {
	var errs map[string]string
	switch req.Step {
	case "details":
		if req.Details == nil {
			errs = map[string]string{"details": "details are required"}
		} else {
			errs = intake.ValidateDetails(*req.Details)
		}
	case "ratings":
		if req.Ratings == nil {
			errs = map[string]string{"ratings": "ratings are required"}
		} else {
			errs = intake.ValidateRatings(*req.Ratings)
		}
	default:
		errs = map[string]string{"step": "unknown step"}
	}
	return models.ValidationResponse{Valid: len(errs) == 0, Errors: errs}
}

func (s *ticketService) Create(ctx context.Context, sess *models.Session, req models.CreateTicketRequest) (*models.Ticket, map[string]string, error) {
	if sess == nil {
		return nil, nil, ErrUnauthenticated
	}

	errs := intake.ValidateDetails(req.TicketDetails)
	for field, msg := range intake.ValidateRatings(req.TicketRatings) {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs[field] = msg
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}

	ticket := intake.BuildTicket(req.TicketDetails, req.TicketRatings, time.Now())

	// The client id always comes from the session, never from the form.
	ticket.ClientID = sess.ClientID

	snap := s.state.Get(sess.ClientID)
	if snap != nil {
		for _, p := range snap.Projects {
			if p.ID == ticket.ProjectID {
				ticket.ProjectName = p.Name
				break
			}
		}
		if snap.Client != nil && snap.Client.EmailStatus == types.EmailInvalid {
			// No reachable email means nobody to notify; park the ticket
			// until the client record is fixed.
			ticket.Status = types.TicketStandBy
		}
	}

	// Optimistic insert: the dashboard shows the ticket immediately, the
	// authoritative copy arrives with the reconciliation fetch.
	s.state.PrependTicket(sess.ClientID, *ticket)
	if s.broadcaster != nil {
		s.broadcaster.SendTicketCreated(sess.ClientID, map[string]interface{}{
			"id":            ticket.ID,
			"title":         ticket.Title,
			"priorityLevel": ticket.Level,
			"statut":        ticket.Status,
		})
	}

	go s.forward(*ticket)
	s.scheduleReconcile(sess)

	log.Printf("[Ticket] ✅ Ticket %s created for client %s (%s, score %.1f)",
		ticket.ID, sess.ClientID, ticket.Level, ticket.Score)
	return ticket, nil, nil
}

// forward sends the ticket to the Integration Endpoint. Failures are logged
// and swallowed: the optimistic insert already happened and is never rolled
// back.
func (s *ticketService) forward(ticket models.Ticket) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WebhookTimeout)
	defer cancel()

	if err := s.endpoint.SendTicket(ctx, &ticket); err != nil {
		log.Printf("[Ticket] ❌ Forwarding ticket %s failed: %v", ticket.ID, err)
	}
}

func (s *ticketService) scheduleReconcile(sess *models.Session) {
	clientID, email := sess.ClientID, sess.Email
	time.AfterFunc(s.cfg.ReconcileDelay, func() {
		s.resolution.Reconcile(clientID, email)
	})
}
