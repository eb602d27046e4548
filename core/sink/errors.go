package sink

import (
	"errors"
	"fmt"
)

// Sentinel failures recognized by every transport.
var (
	// ErrClientAborted signals that the client disconnected while the
	// response was being produced. It is not an application fault: transports
	// treat it as a distinct quiet outcome and never log it as an error.
	ErrClientAborted = errors.New("client aborted request")

	// ErrNotModified short-circuits a conditional request. Transports map it
	// to status 304 with an empty body.
	ErrNotModified = errors.New("content not modified")

	// ErrContractViolation marks misuse of the sink contract, such as a
	// second terminal call. Match with errors.Is; the concrete value carries
	// the offending operations as a *ContractViolation.
	ErrContractViolation = errors.New("sink contract violation")
)

// ContractViolation reports a terminal operation invoked on an already
// committed sink. It unwraps to ErrContractViolation.
type ContractViolation struct {
	// Committed is the terminal operation that committed the sink.
	Committed string

	// Rejected is the operation that was refused.
	Rejected string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("sink contract violation: %s called after %s committed the response", e.Rejected, e.Committed)
}

func (e *ContractViolation) Unwrap() error { return ErrContractViolation }

// FailureKind classifies a forwarded failure for status mapping.
type FailureKind int

const (
	// KindApplication covers any failure without specialized mapping;
	// transports answer with an error status and a diagnostic body.
	KindApplication FailureKind = iota

	// KindNotModified maps to status 304 with an empty body.
	KindNotModified

	// KindClientAborted is not surfaced as an error at all.
	KindClientAborted

	// KindContractViolation is handler misuse; it is reported on the
	// transport's diagnostic channel, never silently dropped.
	KindContractViolation
)

// String returns the kind's diagnostic name.
func (k FailureKind) String() string {
	switch k {
	case KindNotModified:
		return "not_modified"
	case KindClientAborted:
		return "client_aborted"
	case KindContractViolation:
		return "contract_violation"
	default:
		return "application_error"
	}
}

// Classify resolves the failure kind of err. Wrapped sentinels are
// recognized through errors.Is; anything else is an application failure.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrNotModified):
		return KindNotModified
	case errors.Is(err, ErrClientAborted):
		return KindClientAborted
	case errors.Is(err, ErrContractViolation):
		return KindContractViolation
	default:
		return KindApplication
	}
}
