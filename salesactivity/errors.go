package salesactivity

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTypeNotFound means no activity type matched the configured internal name.
	ErrTypeNotFound = errors.New("sales activity type not found")

	// ErrOutcomeNotFound means no outcome of the matched type had the configured name.
	ErrOutcomeNotFound = errors.New("sales activity outcome not found")

	// ErrInProgress is returned when an identical invocation is still running.
	ErrInProgress = errors.New("sales activity already in progress")
)

// Kind classifies why an invocation failed.
type Kind int

const (
	KindIdentityLookupFailed Kind = iota + 1
	KindReferenceDataNotFound
	KindWriteFailed
	KindTimeout
	KindNetworkError
	KindCanceled
)

// String returns the snake_case name of the kind, as used in metric labels.
func (k Kind) String() string {
	switch k {
	case KindIdentityLookupFailed:
		return "identity_lookup_failed"
	case KindReferenceDataNotFound:
		return "reference_data_not_found"
	case KindWriteFailed:
		return "write_failed"
	case KindTimeout:
		return "timeout"
	case KindNetworkError:
		return "network_error"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Stage names the step at which an invocation failed.
type Stage string

const (
	StageOperator Stage = "operator"
	StageType     Stage = "type"
	StageOutcome  Stage = "outcome"
	StageWrite    Stage = "write"
)

// Error is returned by LogPhoneActivity when any step fails.
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s stage: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// classify wraps err, raised at stage, into an *Error. A deadline wins over
// the stage, then cancellation, then a no-match sentinel, then the stage's
// own failure kind.
func classify(stage Stage, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: kindFor(stage, err), Stage: stage, Err: err}
}

func kindFor(stage Stage, err error) Kind {
	if isTimeout(err) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, ErrTypeNotFound) || errors.Is(err, ErrOutcomeNotFound) {
		return KindReferenceDataNotFound
	}
	switch stage {
	case StageOperator:
		return KindIdentityLookupFailed
	case StageType, StageOutcome:
		return KindNetworkError
	default:
		return KindWriteFailed
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
