// Package simerr defines the error taxonomy used across the simulator.
//
// All errors here are programmer errors in the sense of spec.md §7: a
// config/loader error aborts before simulation starts, an invariant
// violation aborts the run carrying the identifiers the reporting site
// supplies (fiber id, row, outstanding psum ids); round and PE ids are not
// attached. Nothing here is a partial-failure
// recovery path.
package simerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the sentinel error categories from spec.md §7.
type Kind int

const (
	ConfigMissing Kind = iota
	WorkloadNotFound
	MatrixTypeUnsupported
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case ConfigMissing:
		return "ConfigMissing"
	case WorkloadNotFound:
		return "WorkloadNotFound"
	case MatrixTypeUnsupported:
		return "MatrixTypeUnsupported"
	case InvariantViolation:
		return "InvariantViolation"
	default:
		return "Unknown"
	}
}

// InvariantKind further classifies InvariantViolation errors.
type InvariantKind int

const (
	IncompletePsum InvariantKind = iota
	MissingFiber
	CacheOverflow
	DoubleSwapout
)

func (k InvariantKind) String() string {
	switch k {
	case IncompletePsum:
		return "IncompletePsum"
	case MissingFiber:
		return "MissingFiber"
	case CacheOverflow:
		return "CacheOverflow"
	case DoubleSwapout:
		return "DoubleSwapout"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by this module. Config and
// loader errors populate Kind only; invariant violations additionally
// carry the offending identifiers (fiber id, row, ...) via Context.
type Error struct {
	Kind      Kind
	Invariant InvariantKind
	Context   map[string]any
	cause     error
}

func (e *Error) Error() string {
	if e.Kind != InvariantViolation {
		return fmt.Sprintf("%s: %s", e.Kind, e.cause)
	}
	return fmt.Sprintf("%s{%s}: %s %s", e.Kind, e.Invariant, e.cause, e.Context)
}

func (e *Error) Unwrap() error { return e.cause }

// ConfigError reports a missing or malformed configuration.
func ConfigError(format string, args ...any) error {
	return &Error{Kind: ConfigMissing, cause: errors.Errorf(format, args...)}
}

// WorkloadError reports an unresolvable --workload/--category pair.
func WorkloadError(workload, category string) error {
	return &Error{
		Kind:  WorkloadNotFound,
		cause: errors.Errorf("workload %q not found for category %q", workload, category),
	}
}

// MatrixTypeError reports a loader input it cannot normalize to CSR.
func MatrixTypeError(format string) error {
	return &Error{Kind: MatrixTypeUnsupported, cause: errors.Errorf("unsupported matrix source format %q", format)}
}

// Invariant builds an InvariantViolation carrying the caller's ctx map as
// its Context. It always wraps a stack-bearing error via pkg/errors so the
// abort path can print where in the scheduler/engine the check fired.
func Invariant(kind InvariantKind, ctx map[string]any, format string, args ...any) error {
	return &Error{
		Kind:      InvariantViolation,
		Invariant: kind,
		Context:   ctx,
		cause:     errors.Errorf(format, args...),
	}
}

// As reports whether err is a *Error of the given Kind.
func As(err error, kind Kind) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == kind {
		return e, true
	}
	return nil, false
}
