// Package engine implements the per-caller session state machine: reset
// commands, authenticated queries, and the bounded-retry authentication
// dialogue for everyone else.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rahulpdr/membergate/internal/archive"
	"github.com/rahulpdr/membergate/internal/content"
	"github.com/rahulpdr/membergate/internal/diag"
	"github.com/rahulpdr/membergate/internal/dialog"
	"github.com/rahulpdr/membergate/internal/observability"
	"github.com/rahulpdr/membergate/internal/policy"
	"github.com/rahulpdr/membergate/internal/session"
)

// historyContextTurns is how many recent turns ride along in answer prompts.
const historyContextTurns = 5

// Config wires the engine's collaborators.
type Config struct {
	Store         *session.Store
	Authenticator *dialog.Authenticator
	Responder     *dialog.Responder
	Corpus        *content.Loader
	Archive       archive.Store
	Hub           *diag.Hub
	Metrics       *observability.Metrics
	Logger        *slog.Logger
	CommunityName string
}

type Engine struct {
	store     *session.Store
	auth      *dialog.Authenticator
	responder *dialog.Responder
	corpus    *content.Loader
	archive   archive.Store
	hub       *diag.Hub
	metrics   *observability.Metrics
	log       *slog.Logger
	community string
	now       func() time.Time
}

func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:     cfg.Store,
		auth:      cfg.Authenticator,
		responder: cfg.Responder,
		corpus:    cfg.Corpus,
		archive:   cfg.Archive,
		hub:       cfg.Hub,
		metrics:   cfg.Metrics,
		log:       log,
		community: cfg.CommunityName,
		now:       time.Now,
	}
}

// HandleMessage processes one inbound message under the caller's session lock
// and returns exactly one reply. Every failure class still yields a reply,
// and both the inbound message and the reply are recorded in history.
func (e *Engine) HandleMessage(ctx context.Context, callerID, text string) string {
	text = strings.TrimSpace(text)

	var reply string
	_ = e.store.Do(callerID, func(s *session.Session) error {
		s.AppendTurn(session.RoleUser, text)
		e.record(ctx, s, session.RoleUser, text)

		reply = e.step(ctx, s, text)

		s.AppendTurn(session.RoleAssistant, reply)
		e.record(ctx, s, session.RoleAssistant, reply)
		return nil
	})
	return reply
}

// step decides the transition for one turn. A panic anywhere below is caught
// here, at the turn boundary, and converted to a single generic apology. Each
// branch performs its fallible work (oracle calls) before touching session
// state, so the recovered session is never observed half-mutated.
func (e *Engine) step(ctx context.Context, s *session.Session, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("turn handling panicked",
				"caller", policy.MaskCallerID(s.CallerID),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			e.metrics.WebhookMessages.WithLabelValues("panic").Inc()
			reply = replyUnexpected
		}
	}()

	corpus := e.corpus.Load()
	cmd := strings.ToLower(text)

	switch {
	case resetCommands[cmd]:
		return e.handleReset(ctx, s, cmd, corpus)
	case s.Authenticated():
		return e.handleAuthenticated(ctx, s, text, corpus)
	default:
		return e.handleUnauthenticated(ctx, s, text, corpus)
	}
}

// handleReset discards the session unconditionally; this transition wins even
// over an authenticated state.
func (e *Engine) handleReset(ctx context.Context, s *session.Session, cmd, corpus string) string {
	s.Reset()
	e.metrics.SessionEvents.WithLabelValues("reset").Inc()

	if greetingCommands[cmd] {
		return fmt.Sprintf(replyWelcomeBanner, e.community, dialog.TodayLine(e.now()))
	}

	menu, err := e.timedMenu(ctx, corpus)
	if err != nil {
		// The reset already applied; only the menu text degrades.
		e.log.Error("menu build failed", "error", err)
		return replyTransient
	}
	return menu
}

func (e *Engine) handleAuthenticated(ctx context.Context, s *session.Session, text, corpus string) string {
	answer, err := e.timedAnswer(ctx, text, s.Member.Name, corpus, s.RecentContext(historyContextTurns))
	if err != nil {
		e.log.Error("member query failed", "caller", policy.MaskCallerID(s.CallerID), "error", err)
		return replyTransient
	}
	return answer
}

// handleUnauthenticated treats every message as both a candidate credential
// and a candidate question: authentication is always attempted first.
func (e *Engine) handleUnauthenticated(ctx context.Context, s *session.Session, text, corpus string) string {
	start := e.now()
	outcome := e.auth.Verify(ctx, text, corpus)
	e.metrics.ObserveOracleLatency("auth", e.now().Sub(start))
	e.metrics.AuthDecisions.WithLabelValues(string(outcome.Decision)).Inc()

	switch outcome.Decision {
	case dialog.DecisionServiceError:
		// Infra failure, not an identity decision: no attempt is charged.
		e.metrics.OracleErrors.WithLabelValues("auth").Inc()
		e.log.Error("authentication oracle unavailable",
			"caller", policy.MaskCallerID(s.CallerID), "error", outcome.Err)
		return replyTransient

	case dialog.DecisionMatched:
		s.Authenticate(outcome.MemberName)
		e.metrics.SessionEvents.WithLabelValues("authenticated").Inc()
		welcome := fmt.Sprintf(replyAuthenticated, outcome.MemberName)

		question := s.PendingQuestion
		if question == "" {
			return welcome + replyOpenPrompt
		}
		s.PendingQuestion = ""
		answer, err := e.timedAnswer(ctx, question, s.Member.Name, corpus, s.RecentContext(historyContextTurns))
		if err != nil {
			// Authentication stands; only the answer slot degrades.
			e.log.Error("pending question answer failed", "error", err)
			answer = replyTransient
		}
		return fmt.Sprintf(replyPendingAnswered, welcome, question, answer)

	case dialog.DecisionAmbiguous, dialog.DecisionNeedsMoreInfo:
		s.AuthAttempts++
		return replyClarifyPrefix + outcome.Prompt

	default: // DecisionNoMatch
		s.AuthAttempts++

		// First-message heuristic: a fresh caller's first unmatched message
		// is more likely a genuine question than a failed login.
		if s.AuthAttempts == 1 && s.PendingQuestion == "" {
			s.PendingQuestion = text
			return fmt.Sprintf(replyCaptureQuestion, text)
		}
		if s.AuthAttempts >= session.MaxAuthAttempts {
			s.PendingQuestion = ""
			e.metrics.SessionEvents.WithLabelValues("lockout").Inc()
			return replyLockout
		}
		return fmt.Sprintf(replyRetry, session.MaxAuthAttempts-s.AuthAttempts)
	}
}

func (e *Engine) timedAnswer(ctx context.Context, question, memberName, corpus, history string) (string, error) {
	start := e.now()
	answer, err := e.responder.Answer(ctx, question, memberName, corpus, history)
	e.metrics.ObserveOracleLatency("answer", e.now().Sub(start))
	if err != nil {
		e.metrics.OracleErrors.WithLabelValues("answer").Inc()
	}
	return answer, err
}

func (e *Engine) timedMenu(ctx context.Context, corpus string) (string, error) {
	start := e.now()
	menu, err := e.responder.Menu(ctx, corpus)
	e.metrics.ObserveOracleLatency("menu", e.now().Sub(start))
	if err != nil {
		e.metrics.OracleErrors.WithLabelValues("menu").Inc()
	}
	return menu, err
}

// record archives the turn and publishes a diagnostics event. Both are
// best-effort; neither can fail the user-facing turn. Content is redacted
// before it leaves the session.
func (e *Engine) record(ctx context.Context, s *session.Session, role session.Role, text string) {
	redacted, changed := policy.RedactPII(text)

	if e.hub != nil {
		e.hub.Publish(diag.Event{
			Caller:        policy.MaskCallerID(s.CallerID),
			Role:          string(role),
			Content:       redacted,
			Authenticated: s.Authenticated(),
			At:            e.now().UTC(),
		})
	}

	if e.archive != nil {
		err := e.archive.SaveTurn(ctx, archive.TurnRecord{
			CallerID:      s.CallerID,
			Role:          string(role),
			Content:       redacted,
			Authenticated: s.Authenticated(),
			Redacted:      changed,
		})
		if err != nil {
			e.log.Warn("transcript archive write failed", "error", err)
		}
	}
}
