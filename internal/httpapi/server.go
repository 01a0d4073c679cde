// Package httpapi wraps the gateway core with its thin transport surface:
// the Twilio webhook, health probe, diagnostics, and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rahulpdr/membergate/internal/config"
	"github.com/rahulpdr/membergate/internal/diag"
	"github.com/rahulpdr/membergate/internal/dialog"
	"github.com/rahulpdr/membergate/internal/observability"
	"github.com/rahulpdr/membergate/internal/policy"
	"github.com/rahulpdr/membergate/internal/session"
)

// MessageHandler is the gateway core as seen by the transport.
type MessageHandler interface {
	HandleMessage(ctx context.Context, callerID, text string) string
}

type Server struct {
	cfg      config.Config
	handler  MessageHandler
	sessions *session.Store
	hub      *diag.Hub
	metrics  *observability.Metrics
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func New(cfg config.Config, handler MessageHandler, sessions *session.Store, hub *diag.Hub, metrics *observability.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		handler:  handler,
		sessions: sessions,
		hub:      hub,
		metrics:  metrics,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser clients may watch the diagnostics
				// stream unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recovery)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/twilio/webhook", s.handleWebhook)

	r.Get("/v1/diag/sessions", s.handleDiagSessions)
	r.Get("/v1/diag/events", s.handleDiagEvents)

	return r
}

// recovery keeps a panicking handler from killing the process; the webhook
// path has its own turn-boundary recover, this covers everything else.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"timestamp":         now.UTC().Format(time.RFC3339),
		"today":             dialog.TodayLine(now),
		"oracle_configured": s.cfg.OracleMode != "" && (s.cfg.OracleMode != "gemini" || s.cfg.GeminiAPIKey != ""),
	})
}

// handleDiagSessions exposes session counters with masked caller identities
// and no conversation content.
func (s *Server) handleDiagSessions(w http.ResponseWriter, _ *http.Request) {
	sums := s.sessions.Summaries()
	for i := range sums {
		sums[i].CallerID = policy.MaskCallerID(sums[i].CallerID)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"active_sessions": s.sessions.ActiveCount(),
		"sessions":        sums,
	})
}

// handleDiagEvents streams redacted turn events over a websocket.
func (s *Server) handleDiagEvents(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "event hub not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := s.hub.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	// Drain client frames so pings/close are processed; inbound data is ignored.
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
