package httpapi

import (
	"encoding/xml"
	"net/http"
	"strings"
)

// twimlResponse is the minimal TwiML envelope Twilio expects back from a
// messaging webhook.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// handleWebhook is the inbound messaging entry point. One form-encoded event
// in, exactly one TwiML message out.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.metrics.WebhookMessages.WithLabelValues("bad_request").Inc()
		respondError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	callerID := strings.TrimPrefix(strings.TrimSpace(r.PostFormValue("From")), "whatsapp:")
	body := strings.TrimSpace(r.PostFormValue("Body"))
	if callerID == "" {
		s.metrics.WebhookMessages.WithLabelValues("missing_caller").Inc()
		respondError(w, http.StatusBadRequest, "missing_caller", "form field From is required")
		return
	}

	reply := s.handler.HandleMessage(r.Context(), callerID, body)

	s.metrics.WebhookMessages.WithLabelValues("handled").Inc()
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twimlResponse{Message: reply})
}
