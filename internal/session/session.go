package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxHistory bounds the per-session conversation log. Oldest turns are
// evicted first.
const MaxHistory = 10

// MaxAuthAttempts is the lockout threshold for failed authentication.
const MaxAuthAttempts = 3

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one logged message within a session. Immutable once appended.
type Turn struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Member is the identity record attached on successful authentication.
type Member struct {
	Name string `json:"name"`
}

// Session is the per-caller conversation state. Member != nil is the
// authenticated state; AuthAttempts and PendingQuestion only carry meaning
// while Member == nil.
type Session struct {
	CallerID        string
	Member          *Member
	AuthAttempts    int
	PendingQuestion string
	History         []Turn
	StartedAt       time.Time
	LastActivityAt  time.Time
}

func newSession(callerID string) *Session {
	now := time.Now().UTC()
	return &Session{
		CallerID:       callerID,
		StartedAt:      now,
		LastActivityAt: now,
	}
}

// Authenticated reports whether the caller's identity has been established.
func (s *Session) Authenticated() bool { return s.Member != nil }

// Authenticate transitions to the authenticated state and clears the
// attempt counter.
func (s *Session) Authenticate(name string) {
	s.Member = &Member{Name: name}
	s.AuthAttempts = 0
}

// Reset returns the session to its first-contact state. Equivalent to
// discarding and recreating the record under the same caller identity.
func (s *Session) Reset() {
	now := time.Now().UTC()
	s.Member = nil
	s.AuthAttempts = 0
	s.PendingQuestion = ""
	s.History = nil
	s.StartedAt = now
	s.LastActivityAt = now
}

// AppendTurn records a timestamped turn and truncates the log to the most
// recent MaxHistory entries. Called on every path, including error replies,
// so a failed turn still shows up in history.
func (s *Session) AppendTurn(role Role, content string) {
	now := time.Now().UTC()
	s.History = append(s.History, Turn{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		At:      now,
	})
	if n := len(s.History); n > MaxHistory {
		s.History = append(s.History[:0], s.History[n-MaxHistory:]...)
	}
	s.LastActivityAt = now
}

// RecentContext formats the last n turns as "role: content" lines, oldest
// first, for inclusion in oracle prompts.
func (s *Session) RecentContext(n int) string {
	if n <= 0 || n > len(s.History) {
		n = len(s.History)
	}
	var b strings.Builder
	for _, t := range s.History[len(s.History)-n:] {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
