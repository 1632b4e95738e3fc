package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nocodecorp/portal-api/internal/directory"
	"github.com/nocodecorp/portal-api/internal/integration"
	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/priority"
	"github.com/nocodecorp/portal-api/internal/session"
	"github.com/nocodecorp/portal-api/internal/socket"
	"github.com/nocodecorp/portal-api/internal/state"
)

// ============================================
// Client Resolution
// ============================================

// State is the outcome of a resolution attempt.
type State string

const (
	StateResolving       State = "resolving"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// Resolution is the result of resolving a client id, email or session into
// a full client record.
type Resolution struct {
	State   State
	Client  *models.Client
	Session *models.Session
	// Token is the signed session token, set when the resolution opened a
	// new session.
	Token string
}

type ResolutionService interface {
	// Resolve authenticates by explicit identity: client id takes priority
	// over email, matching the URL-parameter-before-stored-session order.
	Resolve(ctx context.Context, clientID, email string) (*Resolution, error)
	// ResolveSession re-authenticates from a stored session token.
	ResolveSession(ctx context.Context, token string) (*Resolution, error)
	// Refresh re-resolves an authenticated session to pick up backend-side
	// changes (called when the browser tab regains visibility).
	Refresh(ctx context.Context, token string) (*Resolution, error)
	// Logout tears the session and its snapshot down.
	Logout(ctx context.Context, token string) error
	// Dashboard returns the current snapshot for an authenticated session,
	// tickets annotated with lateness.
	Dashboard(session *models.Session) (*models.DashboardResponse, error)
	// Reconcile re-resolves in the background after a local mutation and
	// notifies the client's open tabs. Best effort, errors are logged.
	Reconcile(clientID, email string)
}

type resolutionService struct {
	endpoint     *integration.Client
	sessions     session.Store
	state        *state.Store
	directory    *directory.Directory
	broadcaster  *socket.Broadcaster
	tokens       *Tokenizer
	mockFallback bool

	// Monotonic per-identity request counter. A resolution response that
	// was superseded by a newer request for the same identity is dropped
	// instead of overwriting fresher state.
	seqMu sync.Mutex
	seq   map[string]uint64
}

func NewResolutionService(deps *ServiceDeps, tokens *Tokenizer) ResolutionService {
	return &resolutionService{
		endpoint:     deps.Endpoint,
		sessions:     deps.Sessions,
		state:        deps.State,
		directory:    deps.Directory,
		broadcaster:  deps.Broadcaster,
		tokens:       tokens,
		mockFallback: deps.Config.MockFallback,
		seq:          make(map[string]uint64),
	}
}

func (s *resolutionService) Resolve(ctx context.Context, clientID, email string) (*Resolution, error) {
	if clientID == "" && email == "" {
		return &Resolution{State: StateUnauthenticated}, nil
	}
	return s.resolve(ctx, clientID, email, nil)
}

func (s *resolutionService) ResolveSession(ctx context.Context, token string) (*Resolution, error) {
	sess, err := s.sessionFor(ctx, token)
	if err != nil || sess == nil {
		return &Resolution{State: StateUnauthenticated}, nil
	}
	return s.resolve(ctx, "", sess.Email, sess)
}

func (s *resolutionService) Refresh(ctx context.Context, token string) (*Resolution, error) {
	return s.ResolveSession(ctx, token)
}

func (s *resolutionService) Logout(ctx context.Context, token string) error {
	sess, err := s.sessionFor(ctx, token)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	s.state.Drop(sess.ClientID)
	if err := s.sessions.Delete(ctx, sess.Token); err != nil {
		return err
	}
	log.Printf("[Resolution] Client %s logged out", sess.ClientID)
	return nil
}

func (s *resolutionService) Dashboard(sess *models.Session) (*models.DashboardResponse, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	snap := s.state.Get(sess.ClientID)
	if snap == nil || snap.Client == nil {
		return nil, ErrNotFound
	}

	tickets := make([]models.DashboardTicket, len(snap.Tickets))
	for i := range snap.Tickets {
		t := models.DashboardTicket{
			Ticket: snap.Tickets[i],
			Late:   priority.IsLate(&snap.Tickets[i]),
		}
		if days, ok := priority.DaysRemaining(snap.Tickets[i].Deadline); ok {
			d := days
			t.DaysRemaining = &d
		}
		tickets[i] = t
	}

	return &models.DashboardResponse{
		Client:   snap.Client,
		Projects: snap.Projects,
		Tickets:  tickets,
	}, nil
}

func (s *resolutionService) Reconcile(clientID, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res, err := s.resolve(ctx, clientID, email, &models.Session{ClientID: clientID, Email: email})
	if err != nil {
		log.Printf("[Resolution] Reconcile for client %s failed: %v", clientID, err)
		return
	}
	if res.State == StateAuthenticated && s.broadcaster != nil {
		s.broadcaster.SendDataRefreshed(clientID)
	}
}

// sessionFor parses a signed token and loads its live session. Absent or
// expired sessions come back nil without error.
func (s *resolutionService) sessionFor(ctx context.Context, token string) (*models.Session, error) {
	sid, _, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil
	}
	return s.sessions.Get(ctx, sid)
}

// resolve is the single resolution path: Integration Endpoint first, mock
// directory fallback second, Unauthenticated last. A non-nil existing
// session is reused instead of opening a new one.
func (s *resolutionService) resolve(ctx context.Context, clientID, email string, existing *models.Session) (*Resolution, error) {
	key := clientID
	if key == "" {
		key = email
	}
	seq := s.nextSeq(key)

	env, err := s.endpoint.FetchClientData(ctx, integration.FetchParams{
		Email:    email,
		ClientID: clientID,
	})
	if err != nil {
		log.Printf("[Resolution] Endpoint fetch failed for %q: %v", key, err)
	}

	if err == nil && env.Usable() {
		// A found flag with no client identity anywhere in the envelope is
		// nothing we can open a session for; treat it like a miss.
		if client := env.ClientRecord(); client != nil {
			if s.superseded(key, seq) {
				log.Printf("[Resolution] Dropping superseded response for %q", key)
				return &Resolution{State: StateResolving}, nil
			}
			s.state.Apply(client, env.ProjectRecords(client.ID), env.TicketRecords())
			return s.authenticated(ctx, client, existing)
		}
		log.Printf("[Resolution] Endpoint response for %q carries no client identity", key)
	}

	if s.mockFallback {
		var match *directory.Result
		if clientID != "" {
			match = s.directory.FindByID(clientID)
		}
		if match == nil && email != "" {
			match = s.directory.FindByEmail(email)
		}
		if match != nil {
			if s.superseded(key, seq) {
				return &Resolution{State: StateResolving}, nil
			}
			log.Printf("[Resolution] Using mock directory for %q", key)
			s.state.Apply(match.Client, match.Projects, match.Tickets)
			return s.authenticated(ctx, match.Client, existing)
		}
	}

	// "Not found" and "service down" deliberately look the same.
	return &Resolution{State: StateUnauthenticated}, nil
}

func (s *resolutionService) authenticated(ctx context.Context, client *models.Client, existing *models.Session) (*Resolution, error) {
	res := &Resolution{
		State:  StateAuthenticated,
		Client: client,
	}

	if existing != nil {
		res.Session = existing
		return res, nil
	}

	email := client.Email
	sess, err := s.sessions.Create(ctx, email, client.ID)
	if err != nil {
		return nil, err
	}
	signed, err := s.tokens.Sign(sess)
	if err != nil {
		return nil, err
	}
	res.Session = sess
	res.Token = signed
	log.Printf("[Resolution] ✅ Session opened for client %s (%s)", client.ID, email)
	return res, nil
}

func (s *resolutionService) nextSeq(key string) uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.seq[key]++
	return s.seq[key]
}

func (s *resolutionService) superseded(key string, seq uint64) bool {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return s.seq[key] != seq
}
