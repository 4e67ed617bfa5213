// Package airerr defines the tagged error taxonomy shared by the codec,
// session, and protocol client packages.
package airerr

import (
	"errors"
	"fmt"
)

// Kind identifies which class of failure an Error carries. Callers match
// on Kind (via errors.As) instead of parsing error strings.
type Kind int

const (
	// KindNetwork covers transport-level failures: timeout, socket error,
	// ICMP unreachable, non-2.xx CoAP response code. Recoverable by retry.
	KindNetwork Kind = iota
	// KindHandshakeFailed means the sync POST returned nothing parseable.
	KindHandshakeFailed
	// KindNotSynced means an operation requiring a counter ran before sync.
	KindNotSynced
	// KindMalformedFrame means an inbound frame failed length/hex/padding/UTF-8 checks.
	KindMalformedFrame
	// KindDigestMismatch means frame authentication failed.
	KindDigestMismatch
	// KindProtocolError means JSON parsed but the envelope shape was wrong.
	KindProtocolError
	// KindWriteRejected means the device returned a non-success status.
	KindWriteRejected
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindHandshakeFailed:
		return "HandshakeFailed"
	case KindNotSynced:
		return "NotSynced"
	case KindMalformedFrame:
		return "MalformedFrame"
	case KindDigestMismatch:
		return "DigestMismatch"
	case KindProtocolError:
		return "ProtocolError"
	case KindWriteRejected:
		return "WriteRejected"
	default:
		return "UnknownError"
	}
}

// Error is the concrete error type returned by this module. Op names the
// failing operation (e.g. "session.Sync", "codec.Verify") for diagnostics.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, airerr.New(airerr.KindDigestMismatch, "", nil))
// or more idiomatically check via errors.As and compare Kind directly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an Error of the given kind, wrapping cause if non-nil.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Is is a package-level helper: errors.As plus a Kind comparison, the
// form most call sites actually want.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
