package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const testSweepSchedule = "*/15 * * * *"

func newTestStore(ttl time.Duration) *Store {
	return NewStore(ttl, testSweepSchedule, zerolog.Nop())
}

func TestStoreIssueLookup(t *testing.T) {
	store := newTestStore(time.Hour)

	session := store.Issue(testIdentity)
	if session.ID == "" {
		t.Fatal("Issue() returned empty session id")
	}
	if session.ExpiresAt != session.CreatedAt+time.Hour.Milliseconds() {
		t.Errorf("session expiresAt = %d, want createdAt + 1h (%d)",
			session.ExpiresAt, session.CreatedAt+time.Hour.Milliseconds())
	}

	ctx := store.Lookup(session.ID)
	if ctx == nil {
		t.Fatal("Lookup() returned nil immediately after Issue()")
	}
	if ctx.Identity != testIdentity {
		t.Errorf("Lookup() identity = %+v, want %+v", ctx.Identity, testIdentity)
	}
	if ctx.Method != MethodCookie {
		t.Errorf("Lookup() method = %q, want %q", ctx.Method, MethodCookie)
	}
	if ctx.SessionID != session.ID {
		t.Errorf("Lookup() sessionID = %q, want %q", ctx.SessionID, session.ID)
	}
	if ctx.ExpiresAt != session.ExpiresAt {
		t.Errorf("Lookup() expiresAt = %d, want %d", ctx.ExpiresAt, session.ExpiresAt)
	}
}

func TestStoreIssueUniqueIDs(t *testing.T) {
	store := newTestStore(time.Hour)

	seen := make(map[string]bool)
	for range 100 {
		session := store.Issue(testIdentity)
		if seen[session.ID] {
			t.Fatalf("Issue() produced duplicate session id %q", session.ID)
		}
		seen[session.ID] = true
	}
}

func TestStoreLookupExpired(t *testing.T) {
	store := newTestStore(-time.Second)

	session := store.Issue(testIdentity)

	if ctx := store.Lookup(session.ID); ctx != nil {
		t.Fatal("Lookup() returned a context for an expired session")
	}
	if store.Count() != 0 {
		t.Error("expired session was not removed by Lookup()")
	}

	// Expired sessions are never resurrected
	if ctx := store.Lookup(session.ID); ctx != nil {
		t.Error("second Lookup() resurrected an expired session")
	}
}

func TestStoreLookupUnknown(t *testing.T) {
	store := newTestStore(time.Hour)

	if ctx := store.Lookup("01ARZ3NDEKTSV4RRFFQ69G5FAV"); ctx != nil {
		t.Error("Lookup() returned a context for an unknown session id")
	}
	if ctx := store.Lookup(""); ctx != nil {
		t.Error("Lookup() returned a context for an empty session id")
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(time.Hour)

	session := store.Issue(testIdentity)

	if !store.Delete(session.ID) {
		t.Error("Delete() = false for an existing session")
	}
	if store.Delete(session.ID) {
		t.Error("Delete() = true for an already-deleted session")
	}
	if ctx := store.Lookup(session.ID); ctx != nil {
		t.Error("Lookup() returned a context after Delete()")
	}
}

func TestStoreSweep(t *testing.T) {
	store := newTestStore(time.Hour)

	live := store.Issue(testIdentity)

	// Insert expired entries directly; Issue always uses the store TTL
	now := time.Now().UnixMilli()
	for _, id := range []string{"expired-1", "expired-2"} {
		store.mu.Lock()
		store.sessions[id] = Session{
			ID:        id,
			Identity:  testIdentity,
			CreatedAt: now - 2*time.Hour.Milliseconds(),
			ExpiresAt: now - time.Hour.Milliseconds(),
		}
		store.mu.Unlock()
	}

	if removed := store.Sweep(); removed != 2 {
		t.Errorf("Sweep() removed %d sessions, want 2", removed)
	}
	if store.Count() != 1 {
		t.Errorf("store holds %d sessions after sweep, want 1", store.Count())
	}
	if ctx := store.Lookup(live.ID); ctx == nil {
		t.Error("Sweep() removed a live session")
	}
	if removed := store.Sweep(); removed != 0 {
		t.Errorf("second Sweep() removed %d sessions, want 0", removed)
	}
}

func TestStoreStartStop(t *testing.T) {
	store := newTestStore(time.Hour)
	if err := store.Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	store.Stop()
}

func TestStoreStartInvalidSchedule(t *testing.T) {
	store := NewStore(time.Hour, "not a cron expression", zerolog.Nop())
	if err := store.Start(); err == nil {
		t.Fatal("Start() accepted an invalid sweep schedule")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := newTestStore(time.Hour)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				session := store.Issue(testIdentity)
				store.Lookup(session.ID)
				store.Sweep()
				store.Delete(session.ID)
			}
		}()
	}
	wg.Wait()

	if store.Count() != 0 {
		t.Errorf("store holds %d sessions after concurrent issue/delete, want 0", store.Count())
	}
}
