package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Session is a server-held session record. The cookie handed to the
// client only carries the ID; the store remains the authority.
type Session struct {
	ID        string
	Identity  Identity
	CreatedAt int64 // epoch milliseconds
	ExpiresAt int64 // epoch milliseconds
}

// Store is an in-memory session registry. It owns its records
// exclusively and sweeps expired entries on a cron schedule.
//
// Absence and expiry are ordinary not-found outcomes, never errors:
// lookups return nil instead of failing.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session

	ttl           time.Duration
	sweepSchedule string
	cron          *cron.Cron
	logger        zerolog.Logger
}

// NewStore creates a session store. Sessions live for ttl; the sweep
// runs on sweepSchedule (standard 5-field cron expression) once Start
// is called.
func NewStore(ttl time.Duration, sweepSchedule string, logger zerolog.Logger) *Store {
	return &Store{
		sessions:      make(map[string]Session),
		ttl:           ttl,
		sweepSchedule: sweepSchedule,
		logger:        logger,
	}
}

// Start runs an immediate sweep and schedules periodic sweeps.
// Tests can skip Start and call Sweep directly.
func (s *Store) Start() error {
	s.Sweep()

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.sweepSchedule, func() {
		if removed := s.Sweep(); removed > 0 {
			s.logger.Debug().Int("removed", removed).Msg("Swept expired sessions")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.sweepSchedule, err)
	}
	s.cron.Start()

	return nil
}

// Stop halts the sweep scheduler. Safe to call when Start never ran.
func (s *Store) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Issue registers a new session for the identity and returns it.
// Session IDs are ULIDs: unique with overwhelming probability and not
// derivable from prior IDs.
func (s *Store) Issue(identity Identity) Session {
	now := time.Now()
	session := Session{
		ID:        ulid.Make().String(),
		Identity:  identity,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(s.ttl).UnixMilli(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Lookup returns the auth context for a live session, or nil. An
// expired entry is deleted as a side effect and never resurrected.
func (s *Store) Lookup(sessionID string) *Context {
	if sessionID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}

	if stored.ExpiresAt < time.Now().UnixMilli() {
		delete(s.sessions, sessionID)
		return nil
	}

	return &Context{
		Identity:  stored.Identity,
		Method:    MethodCookie,
		ExpiresAt: stored.ExpiresAt,
		SessionID: sessionID,
	}
}

// Delete removes a session and reports whether it existed. Idempotent.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	return ok
}

// Sweep removes all expired sessions and returns how many were removed
func (s *Store) Sweep() int {
	now := time.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.ExpiresAt < now {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of stored sessions, expired or not
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
