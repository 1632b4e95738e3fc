package service

import (
	"errors"

	"github.com/nocodecorp/portal-api/internal/config"
	"github.com/nocodecorp/portal-api/internal/directory"
	"github.com/nocodecorp/portal-api/internal/integration"
	"github.com/nocodecorp/portal-api/internal/session"
	"github.com/nocodecorp/portal-api/internal/socket"
	"github.com/nocodecorp/portal-api/internal/state"
)

var (
	ErrUnauthenticated = errors.New("no authenticated session")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Resolution ResolutionService
	Ticket     TicketService
	Tokens     *Tokenizer
}

type ServiceDeps struct {
	Config      *config.Config
	Endpoint    *integration.Client
	Sessions    session.Store
	State       *state.Store
	Directory   *directory.Directory
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	tokens := NewTokenizer(deps.Config.JWTSecret)

	resolution := NewResolutionService(deps, tokens)
	ticket := NewTicketService(deps, resolution)

	return &Services{
		Resolution: resolution,
		Ticket:     ticket,
		Tokens:     tokens,
	}
}
