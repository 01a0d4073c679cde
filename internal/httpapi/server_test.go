package httpapi

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rahulpdr/membergate/internal/config"
	"github.com/rahulpdr/membergate/internal/diag"
	"github.com/rahulpdr/membergate/internal/observability"
	"github.com/rahulpdr/membergate/internal/session"
)

var testMetrics = observability.NewMetrics("httpapi_test")

type echoHandler struct {
	lastCaller string
	lastText   string
	reply      string
}

func (h *echoHandler) HandleMessage(_ context.Context, callerID, text string) string {
	h.lastCaller = callerID
	h.lastText = text
	if h.reply != "" {
		return h.reply
	}
	return "echo: " + text
}

func newTestServer(t *testing.T, h MessageHandler, store *session.Store, hub *diag.Hub) *Server {
	t.Helper()
	cfg := config.Config{OracleMode: "mock", CommunityName: "EO Goa"}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, h, store, hub, testMetrics, log)
}

func TestWebhookRepliesWithTwiML(t *testing.T) {
	h := &echoHandler{reply: "✅ *Welcome, Jane Doe!*"}
	store := session.NewStore(0)
	srv := newTestServer(t, h, store, nil)

	form := url.Values{}
	form.Set("From", "whatsapp:+15550109999")
	form.Set("Body", "Jane Doe, 12-05-1990")

	req := httptest.NewRequest(http.MethodPost, "/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/xml" {
		t.Fatalf("Content-Type = %q, want text/xml", ct)
	}
	if h.lastCaller != "+15550109999" {
		t.Fatalf("caller = %q, want whatsapp: prefix stripped", h.lastCaller)
	}

	var parsed twimlResponse
	if err := xml.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal TwiML: %v\n%s", err, rec.Body.String())
	}
	if parsed.Message != "✅ *Welcome, Jane Doe!*" {
		t.Fatalf("Message = %q", parsed.Message)
	}
}

func TestWebhookRequiresCaller(t *testing.T) {
	srv := newTestServer(t, &echoHandler{}, session.NewStore(0), nil)

	req := httptest.NewRequest(http.MethodPost, "/twilio/webhook", strings.NewReader("Body=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &echoHandler{}, session.NewStore(0), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("status field = %v", body["status"])
	}
	if body["today"] == "" || body["today"] == nil {
		t.Fatalf("today field missing")
	}
	if body["oracle_configured"] != true {
		t.Fatalf("oracle_configured = %v, want true for mock mode", body["oracle_configured"])
	}
}

func TestDiagSessionsMasksCallers(t *testing.T) {
	store := session.NewStore(0)
	_ = store.Do("+15550109999", func(s *session.Session) error {
		s.AppendTurn(session.RoleUser, "a secret question")
		s.PendingQuestion = "a secret question"
		return nil
	})
	srv := newTestServer(t, &echoHandler{}, store, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/diag/sessions", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	raw := rec.Body.String()
	if strings.Contains(raw, "15550109999") {
		t.Fatalf("diagnostics leaked full caller id: %s", raw)
	}
	if strings.Contains(raw, "a secret question") {
		t.Fatalf("diagnostics leaked conversation content: %s", raw)
	}

	var body struct {
		ActiveSessions int               `json:"active_sessions"`
		Sessions       []session.Summary `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal diag body: %v", err)
	}
	if body.ActiveSessions != 1 || len(body.Sessions) != 1 {
		t.Fatalf("unexpected counts: %+v", body)
	}
	if !body.Sessions[0].PendingQuestion || body.Sessions[0].Turns != 1 {
		t.Fatalf("unexpected summary: %+v", body.Sessions[0])
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicky := &panicHandler{}
	store := session.NewStore(0)
	srv := newTestServer(t, panicky, store, nil)

	form := url.Values{}
	form.Set("From", "whatsapp:+15550001111")
	form.Set("Body", "boom")
	req := httptest.NewRequest(http.MethodPost, "/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

type panicHandler struct{}

func (panicHandler) HandleMessage(context.Context, string, string) string {
	panic("handler bug")
}

func TestDiagEventsRequiresHub(t *testing.T) {
	srv := newTestServer(t, &echoHandler{}, session.NewStore(0), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/diag/events", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestDiagEventsStreamsOverWebsocket(t *testing.T) {
	hub := diag.NewHub()
	srv := newTestServer(t, &echoHandler{}, session.NewStore(0), hub)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/diag/events"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()
	defer res.Body.Close()

	// The handler subscribes just after the handshake; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("ws handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(diag.Event{Caller: "**********99", Role: "user", Content: "[REDACTED_DATE]"})

	var ev diag.Event
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read ws event: %v", err)
	}
	if ev.Caller != "**********99" || ev.Role != "user" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
