package dialog

import "strings"

// Decision is the closed set of authentication outcomes.
type Decision string

const (
	DecisionMatched       Decision = "matched"
	DecisionAmbiguous     Decision = "ambiguous"
	DecisionNeedsMoreInfo Decision = "needs_more_info"
	DecisionNoMatch       Decision = "no_match"
	DecisionServiceError  Decision = "service_error"
)

// Outcome is the parsed result of one authentication oracle call.
type Outcome struct {
	Decision   Decision
	MemberName string // set iff DecisionMatched
	Prompt     string // clarifying prompt for ambiguous / needs-more-info
	Err        error  // set iff DecisionServiceError
}

const (
	prefixMatchFound      = "MATCH_FOUND:"
	prefixMultipleMatches = "MULTIPLE_MATCHES:"
	prefixNeedMoreInfo    = "NEED_MORE_INFO:"
)

// ParseOutcome decodes the oracle's constrained response grammar. The grammar
// is not guaranteed: anything that does not start with a recognized prefix is
// a NoMatch, never an error. An accidental free-text reply must not be
// mistaken for a clarification request.
func ParseOutcome(raw string) Outcome {
	reply := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(reply, prefixMatchFound):
		name := strings.TrimSpace(strings.TrimPrefix(reply, prefixMatchFound))
		if name == "" {
			return Outcome{Decision: DecisionNoMatch}
		}
		return Outcome{Decision: DecisionMatched, MemberName: name}
	case strings.HasPrefix(reply, prefixMultipleMatches):
		return Outcome{
			Decision: DecisionAmbiguous,
			Prompt:   strings.TrimSpace(strings.TrimPrefix(reply, prefixMultipleMatches)),
		}
	case strings.HasPrefix(reply, prefixNeedMoreInfo):
		return Outcome{
			Decision: DecisionNeedsMoreInfo,
			Prompt:   strings.TrimSpace(strings.TrimPrefix(reply, prefixNeedMoreInfo)),
		}
	default:
		return Outcome{Decision: DecisionNoMatch}
	}
}
