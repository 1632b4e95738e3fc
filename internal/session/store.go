package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nocodecorp/portal-api/internal/models"
)

// ============================================
// Session Store
// ============================================
//
// A session is the server-side record {email, clientId, lastActive} behind
// the token the browser holds. Sessions expire after a fixed idle window
// measured from the last recorded activity; expiry is advisory client
// logout, nothing server-side depends on it.

// DefaultIdleTTL is the inactivity window after which a session expires.
const DefaultIdleTTL = 30 * time.Minute

type Store interface {
	// Create opens a session for a resolved client, overwriting nothing:
	// each login gets a fresh token.
	Create(ctx context.Context, email, clientID string) (*models.Session, error)
	// Get returns the session for a token, or nil when the token is
	// unknown. An expired session is deleted and reported absent.
	Get(ctx context.Context, token string) (*models.Session, error)
	// Touch refreshes lastActive, but only if the session still exists.
	Touch(ctx context.Context, token string) error
	// Delete removes the session (explicit logout).
	Delete(ctx context.Context, token string) error
	// SweepExpired removes every expired session and returns the removed
	// records so connected browsers can be told to log out.
	SweepExpired(ctx context.Context) ([]models.Session, error)
}

// Expired reports whether a session has been idle past ttl.
func Expired(s *models.Session, ttl time.Duration, now time.Time) bool {
	return now.Sub(s.LastActive) > ttl
}

// ============================================
// In-memory store
// ============================================

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	idleTTL  time.Duration

	now func() time.Time
}

// NewMemoryStore returns the default single-process store.
func NewMemoryStore(idleTTL time.Duration) Store {
	if idleTTL == 0 {
		idleTTL = DefaultIdleTTL
	}
	return &memoryStore{
		sessions: make(map[string]*models.Session),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

func (m *memoryStore) Create(ctx context.Context, email, clientID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &models.Session{
		Token:      uuid.New().String(),
		Email:      email,
		ClientID:   clientID,
		LastActive: m.now(),
	}
	m.sessions[s.Token] = s

	copy := *s
	return &copy, nil
}

func (m *memoryStore) Get(ctx context.Context, token string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, nil
	}
	if Expired(s, m.idleTTL, m.now()) {
		delete(m.sessions, token)
		return nil, nil
	}

	copy := *s
	return &copy, nil
}

func (m *memoryStore) Touch(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[token]; ok {
		s.LastActive = m.now()
	}
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

func (m *memoryStore) SweepExpired(ctx context.Context) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var expired []models.Session
	for token, s := range m.sessions {
		if Expired(s, m.idleTTL, now) {
			expired = append(expired, *s)
			delete(m.sessions, token)
		}
	}
	return expired, nil
}
