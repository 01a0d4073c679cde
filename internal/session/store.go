package session

import (
	"context"
	"sync"
	"time"
)

// Store owns all session records, keyed by caller identity. Each record has
// its own lock so the full read-decide-write sequence of one inbound message
// is serialized per caller while distinct callers proceed concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	idleTimeout time.Duration
	onEvict     func(*Session)
}

type entry struct {
	mu   sync.Mutex
	sess *Session
}

// NewStore creates an empty store. idleTimeout <= 0 disables eviction.
func NewStore(idleTimeout time.Duration) *Store {
	return &Store{
		entries:     make(map[string]*entry),
		idleTimeout: idleTimeout,
	}
}

// SetEvictHook registers a callback invoked after the janitor drops a session.
func (st *Store) SetEvictHook(hook func(*Session)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onEvict = hook
}

func (st *Store) entryFor(callerID string) *entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[callerID]
	if !ok {
		e = &entry{sess: newSession(callerID)}
		st.entries[callerID] = e
	}
	return e
}

// Do runs fn with exclusive access to the caller's session, creating a
// zero-valued session on first contact. fn must not retain the session
// pointer after returning.
func (st *Store) Do(callerID string, fn func(*Session) error) error {
	e := st.entryFor(callerID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

// Reset discards the caller's session and recreates it empty.
func (st *Store) Reset(callerID string) {
	e := st.entryFor(callerID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess.Reset()
}

// ActiveCount returns the number of live session records.
func (st *Store) ActiveCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// Summary is a diagnostics view of one session. It deliberately carries no
// message content; the caller identity is expected to be masked before it
// leaves the process.
type Summary struct {
	CallerID        string    `json:"caller_id"`
	Authenticated   bool      `json:"authenticated"`
	MemberName      string    `json:"member_name,omitempty"`
	AuthAttempts    int       `json:"auth_attempts"`
	PendingQuestion bool      `json:"pending_question"`
	Turns           int       `json:"turns"`
	StartedAt       time.Time `json:"started_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
}

// Summaries snapshots every session for the diagnostics surface. Busy
// sessions (mid-turn) are skipped rather than waited on.
func (st *Store) Summaries() []Summary {
	st.mu.Lock()
	entries := make([]*entry, 0, len(st.entries))
	for _, e := range st.entries {
		entries = append(entries, e)
	}
	st.mu.Unlock()

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if !e.mu.TryLock() {
			continue
		}
		s := e.sess
		sum := Summary{
			CallerID:        s.CallerID,
			Authenticated:   s.Authenticated(),
			AuthAttempts:    s.AuthAttempts,
			PendingQuestion: s.PendingQuestion != "",
			Turns:           len(s.History),
			StartedAt:       s.StartedAt,
			LastActivityAt:  s.LastActivityAt,
		}
		if s.Member != nil {
			sum.MemberName = s.Member.Name
		}
		e.mu.Unlock()
		out = append(out, sum)
	}
	return out
}

// StartJanitor periodically drops sessions idle longer than the configured
// timeout. No-op when eviction is disabled.
func (st *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if st.idleTimeout <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.evictIdle()
			}
		}
	}()
}

func (st *Store) evictIdle() {
	now := time.Now().UTC()
	var evicted []*Session

	st.mu.Lock()
	hook := st.onEvict
	for id, e := range st.entries {
		// Skip sessions currently mid-turn; they are not idle.
		if !e.mu.TryLock() {
			continue
		}
		if now.Sub(e.sess.LastActivityAt) >= st.idleTimeout {
			delete(st.entries, id)
			evicted = append(evicted, e.sess)
		}
		e.mu.Unlock()
	}
	st.mu.Unlock()

	if hook != nil {
		for _, s := range evicted {
			hook(s)
		}
	}
}
