package owm

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies client failures so callers can branch on error
// category instead of matching message text.
type Kind int

const (
	KindConfig Kind = iota
	KindAuth
	KindNotFound
	KindRateLimited
	KindNetwork
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuth:
		return "authentication failed"
	case KindNotFound:
		return "location not found"
	case KindRateLimited:
		return "rate limited"
	case KindNetwork:
		return "network failure"
	case KindMalformed:
		return "malformed response"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the client. Endpoints
// records every endpoint URL attempted (two when the free-tier
// fallback fired), Field names the missing key for malformed
// responses, and Err carries the underlying transport or decode cause.
type Error struct {
	Kind      Kind
	Message   string
	Endpoints []string
	Field     string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Field != "" {
		fmt.Fprintf(&b, ": missing %s", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Endpoints) > 0 {
		fmt.Fprintf(&b, " (endpoints tried: %s)", strings.Join(e.Endpoints, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a client Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func newMalformed(field string, endpoints ...string) *Error {
	return &Error{Kind: KindMalformed, Field: field, Endpoints: endpoints}
}
