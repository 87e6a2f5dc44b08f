package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/screengraph/pkg/schema"
)

// Construction errors. Build joins every problem it finds.
var (
	ErrDuplicateNodeName    = errors.New("duplicate node name")
	ErrUnresolvedEdgeTarget = errors.New("unresolved edge target")
	ErrUnknownInitialScreen = errors.New("unknown initial screen")
	ErrInvalidGuard         = errors.New("invalid guard")
	ErrInvalidEdge          = errors.New("invalid edge")
	ErrInvalidMutator       = errors.New("invalid mutator")
)

// Runtime errors.
var (
	ErrPathNotFound        = errors.New("path not found")
	ErrVerificationTimeout = errors.New("verification timeout")
	ErrActionNotAvailable  = errors.New("action not available")
	ErrUnknownScreen       = errors.New("unknown screen")
	ErrUndeclaredField     = schema.ErrUndeclared
	ErrMissingParam        = errors.New("missing action parameter")
	ErrNoDriver            = errors.New("no automation driver configured")

	// ErrDesynchronized means re-synchronisation recognised no screen.
	ErrDesynchronized = errors.New("current screen could not be determined")
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// Failure is the diagnostic context attached to navigation errors.
type Failure struct {
	// Path is the attempted path, one rendered edge per hop.
	Path []string
	// LastKnown is the last node the navigator had verified.
	LastKnown string
	// Recovery is the error of the recovery attempt, if it failed.
	Recovery error
}

// Context gives the navigator write access to the embedded Failure.
func (f *Failure) Context() *Failure { return f }

// FailureContext is implemented by every navigation error carrying a Failure.
type FailureContext interface {
	error
	Context() *Failure
}

func (f *Failure) suffix() string {
	var parts []string
	if f.LastKnown != "" {
		parts = append(parts, "last known "+f.LastKnown)
	}
	if len(f.Path) > 0 {
		parts = append(parts, "path "+strings.Join(f.Path, ", "))
	}
	if f.Recovery != nil {
		parts = append(parts, "recovery failed: "+f.Recovery.Error())
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}

// PathNotFoundError reports that no guard-satisfied path connects two nodes.
type PathNotFoundError struct {
	From, To string
	Failure
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found from %q to %q%s", e.From, e.To, e.suffix())
}

func (e *PathNotFoundError) Is(target error) bool { return target == ErrPathNotFound }

// VerificationTimeoutError reports that a node's on-enter condition never held.
type VerificationTimeoutError struct {
	Node    string
	Timeout time.Duration
	// Cause is the last error returned by the condition, if any.
	Cause error
	Failure
}

func (e *VerificationTimeoutError) Error() string {
	msg := fmt.Sprintf("verification of %q timed out after %s", e.Node, e.Timeout)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg + e.suffix()
}

func (e *VerificationTimeoutError) Is(target error) bool { return target == ErrVerificationTimeout }

func (e *VerificationTimeoutError) Unwrap() error { return e.Cause }

// ActionNotAvailableError reports that no edge reachable from From performs Action.
type ActionNotAvailableError struct {
	Action, From string
	Failure
}

func (e *ActionNotAvailableError) Error() string {
	return fmt.Sprintf("action %q not available from %q%s", e.Action, e.From, e.suffix())
}

func (e *ActionNotAvailableError) Is(target error) bool { return target == ErrActionNotAvailable }

// TransitionError wraps a failure of an edge's effect or mutators.
type TransitionError struct {
	Edge string
	Err  error
	Failure
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s: %v%s", e.Edge, e.Err, e.suffix())
}

func (e *TransitionError) Unwrap() error { return e.Err }
