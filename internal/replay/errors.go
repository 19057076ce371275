package replay

import (
	"errors"
	"fmt"
)

// Kind categorizes a fatal replay error, mirroring the distinct
// std::runtime_error call sites in the original log runner.
type Kind string

const (
	KindMismatchedLibRet Kind = "mismatched lib_ret"
	KindBadContextArgs   Kind = "args/string outside a lib call"
	KindUnknownTag       Kind = "unknown record tag"
)

// Error is a structured fatal replay error: an operation, the thread it
// occurred on (0 if not applicable), a Kind for programmatic matching,
// and an optional wrapped cause.
type Error struct {
	Op        string
	ThreadID  uint32
	HasThread bool
	Kind      Kind
	Inner     error
}

func (e *Error) Error() string {
	if e.HasThread {
		return fmt.Sprintf("replay: %s (thread=%d): %s", e.Op, e.ThreadID, e.Kind)
	}
	return fmt.Sprintf("replay: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// Is supports errors.Is comparison by Kind, so callers can write
// errors.Is(err, &replay.Error{Kind: replay.KindUnknownTag}) without
// needing the exact Op/ThreadID.
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return e.Kind == te.Kind
}

// NewError builds a fatal error not tied to a specific thread.
func NewError(op string, kind Kind) *Error {
	return &Error{Op: op, Kind: kind}
}

// NewThreadError builds a fatal error tied to threadID.
func NewThreadError(op string, threadID uint32, kind Kind) *Error {
	return &Error{Op: op, ThreadID: threadID, HasThread: true, Kind: kind}
}

// IsKind reports whether err is a *Error (possibly wrapped) of the given
// kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
