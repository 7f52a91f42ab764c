package marketdata

import (
	"errors"
	"fmt"
)

// Kind classifies an upstream failure. The orchestrator decides per kind
// whether to retry, fall back to synthetic data, or surface the error.
type Kind int

const (
	// KindUnknown is the zero Kind for errors that carry no classification.
	KindUnknown Kind = iota
	// KindAuth covers invalid or expired credentials (HTTP 401/403).
	KindAuth
	// KindRateLimited covers upstream throttling (HTTP 429).
	KindRateLimited
	// KindNotFound covers unknown symbols (HTTP 404).
	KindNotFound
	// KindParse covers malformed responses or missing required fields.
	KindParse
	// KindTransport covers connection failures and timeouts.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindParse:
		return "parse"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is a classified market-data failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err as a classified Error for the given operation.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the classification of err, or KindUnknown if err carries none.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindUnknown
}

// IsRateLimited reports whether err is classified as upstream throttling.
func IsRateLimited(err error) bool { return KindOf(err) == KindRateLimited }
