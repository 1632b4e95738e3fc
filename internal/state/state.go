package state

import (
	"sync"

	"github.com/nocodecorp/portal-api/internal/models"
)

// ============================================
// Per-client state snapshots
// ============================================
//
// The portal owns no durable data. What it holds is the latest resolved
// snapshot per client: the client record plus its projects and tickets,
// refreshed on every successful resolution and mutated optimistically when
// a ticket is submitted.

type Snapshot struct {
	Client   *models.Client
	Projects []models.Project
	Tickets  []models.Ticket
}

type Store struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

func NewStore() *Store {
	return &Store{snapshots: make(map[string]*Snapshot)}
}

// Apply merges freshly resolved data into the client's snapshot. The client
// record always replaces the previous one; the project and ticket lists
// replace only when non-empty. The endpoint intermittently returns "[]" for
// sub-lists it failed to join, and clobbering good data with nothing makes
// the dashboard flicker empty, so absent-or-empty leaves the old list alone.
func (s *Store) Apply(client *models.Client, projects []models.Project, tickets []models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[client.ID]
	if !ok {
		snap = &Snapshot{Projects: []models.Project{}, Tickets: []models.Ticket{}}
		s.snapshots[client.ID] = snap
	}

	snap.Client = client
	if len(projects) > 0 {
		snap.Projects = projects
	}
	if len(tickets) > 0 {
		snap.Tickets = tickets
	}
}

// Get returns a copy of the client's snapshot, or nil when none exists.
func (s *Store) Get(clientID string) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[clientID]
	if !ok {
		return nil
	}

	out := &Snapshot{
		Client:   snap.Client,
		Projects: make([]models.Project, len(snap.Projects)),
		Tickets:  make([]models.Ticket, len(snap.Tickets)),
	}
	copy(out.Projects, snap.Projects)
	copy(out.Tickets, snap.Tickets)
	return out
}

// PrependTicket inserts a freshly created ticket at the head of the
// client's ticket list (newest first). The optimistic insert; the
// authoritative copy arrives with the next resolution.
func (s *Store) PrependTicket(clientID string, ticket models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[clientID]
	if !ok {
		return
	}
	snap.Tickets = append([]models.Ticket{ticket}, snap.Tickets...)
}

// Drop discards the client's snapshot on logout.
func (s *Store) Drop(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, clientID)
}

// ClientIDs lists clients with a live snapshot.
func (s *Store) ClientIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	return ids
}
