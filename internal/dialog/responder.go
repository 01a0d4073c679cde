package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rahulpdr/membergate/internal/oracle"
)

// Responder formats authenticated-member questions for the oracle. Replies
// are relayed verbatim after trimming; no structured parsing is applied.
type Responder struct {
	oracle    oracle.Client
	community string
	now       func() time.Time
}

func NewResponder(client oracle.Client, community string) *Responder {
	return &Responder{oracle: client, community: community, now: time.Now}
}

// Answer resolves a member question strictly against the corpus, with recent
// history as hidden context.
func (r *Responder) Answer(ctx context.Context, question, memberName, corpus, historyContext string) (string, error) {
	prompt := answerPrompt(r.community, question, memberName, corpus, historyContext, r.now())
	reply, err := r.oracle.Complete(ctx, prompt, answerMaxTokens)
	if err != nil {
		return "", fmt.Errorf("answer query: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// Menu derives a WhatsApp-formatted menu from the whole corpus.
func (r *Responder) Menu(ctx context.Context, corpus string) (string, error) {
	prompt := menuPrompt(r.community, corpus, r.now())
	reply, err := r.oracle.Complete(ctx, prompt, menuMaxTokens)
	if err != nil {
		return "", fmt.Errorf("build menu: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
