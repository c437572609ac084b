package feed

import (
	"fmt"
	"strings"
)

// Policy decides what the session does when a deletion names an absent price.
type Policy string

const (
	// PolicyAbort ends the session with the error.
	PolicyAbort Policy = "abort"
	// PolicyContinue logs the error and keeps streaming.
	PolicyContinue Policy = "continue"
	// PolicyResync rebuilds the book from a freshly fetched snapshot.
	PolicyResync Policy = "resync"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAbort, PolicyContinue, PolicyResync:
		return p, nil
	case "":
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown price-not-found policy %q (want abort, continue or resync)", s)
	}
}
