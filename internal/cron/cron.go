package cron

import (
	"context"
	"log"
	"time"

	"github.com/nocodecorp/portal-api/internal/priority"
	"github.com/nocodecorp/portal-api/internal/session"
	"github.com/nocodecorp/portal-api/internal/socket"
	"github.com/nocodecorp/portal-api/internal/state"
	"github.com/robfig/cron/v3"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron        *cron.Cron
	sessions    session.Store
	state       *state.Store
	broadcaster *socket.Broadcaster
	sweepEvery  time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(sessions session.Store, st *state.Store, broadcaster *socket.Broadcaster, sweepEvery time.Duration) *Scheduler {
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	return &Scheduler{
		cron:        cron.New(),
		sessions:    sessions,
		state:       st,
		broadcaster: broadcaster,
		sweepEvery:  sweepEvery,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Expire idle sessions - every sweep interval (60s by default)
	s.cron.AddFunc("@every "+s.sweepEvery.String(), func() {
		s.sweepIdleSessions()
	})

	// Run every hour - flag tickets past their deadline
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running overdue ticket scan...")
		s.scanOverdueTickets()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// sweepIdleSessions removes sessions idle past their TTL and tells the
// affected browsers to drop back to the login screen.
func (s *Scheduler) sweepIdleSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		log.Printf("[Cron] Error sweeping sessions: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	for _, sess := range expired {
		s.state.Drop(sess.ClientID)
		if s.broadcaster != nil {
			s.broadcaster.SendSessionExpired(sess.ClientID)
		}
	}
	log.Printf("[Cron] ✅ Expired %d idle session(s)", len(expired))
}

// scanOverdueTickets logs tickets that have slipped past their deadline.
// Lateness is always computed at read time; this scan only surfaces it in
// the logs so operators see slippage without opening the dashboard.
func (s *Scheduler) scanOverdueTickets() {
	late := 0
	for _, clientID := range s.state.ClientIDs() {
		snap := s.state.Get(clientID)
		if snap == nil {
			continue
		}
		for i := range snap.Tickets {
			if priority.IsLate(&snap.Tickets[i]) {
				late++
				log.Printf("[Cron] ⚠️ Ticket %s (%s) for client %s is past its deadline (%s)",
					snap.Tickets[i].ID, snap.Tickets[i].Title, clientID, snap.Tickets[i].Deadline)
			}
		}
	}
	if late == 0 {
		log.Println("[Cron] No overdue tickets found")
	}
}
