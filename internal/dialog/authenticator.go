package dialog

import (
	"context"
	"time"

	"github.com/rahulpdr/membergate/internal/oracle"
)

// Authenticator formats identity-verification requests for the oracle and
// decodes the constrained response grammar into a typed Outcome.
type Authenticator struct {
	oracle    oracle.Client
	community string
	now       func() time.Time
}

func NewAuthenticator(client oracle.Client, community string) *Authenticator {
	return &Authenticator{oracle: client, community: community, now: time.Now}
}

// Verify runs one authentication attempt against the member corpus. Transport
// failures surface as DecisionServiceError so the caller can distinguish an
// unreachable oracle from a negative identity decision.
func (a *Authenticator) Verify(ctx context.Context, userInput, corpus string) Outcome {
	prompt := authPrompt(a.community, userInput, corpus, a.now())
	reply, err := a.oracle.Complete(ctx, prompt, authMaxTokens)
	if err != nil {
		return Outcome{Decision: DecisionServiceError, Err: err}
	}
	return ParseOutcome(reply)
}
