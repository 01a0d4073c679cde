package policy

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	dobPattern   = regexp.MustCompile(`\b\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\b`)
)

// RedactPII masks identity material before text leaves the process through a
// diagnostics surface or the transcript archive. Dates of birth are the
// credential in this system, so date-shaped tokens are masked too.
func RedactPII(input string) (redacted string, changed bool) {
	out := emailPattern.ReplaceAllString(input, "[REDACTED_EMAIL]")
	// Dates before phones: a dashed date is all digits and would otherwise
	// be classified as a phone number.
	out = dobPattern.ReplaceAllString(out, "[REDACTED_DATE]")
	out = phonePattern.ReplaceAllString(out, "[REDACTED_PHONE]")
	return out, out != input
}

// MaskCallerID keeps only the last two digits of a caller identity so
// operators can correlate events without seeing the full phone number.
func MaskCallerID(callerID string) string {
	id := strings.TrimSpace(callerID)
	if len(id) <= 2 {
		return "**"
	}
	return strings.Repeat("*", len(id)-2) + id[len(id)-2:]
}
