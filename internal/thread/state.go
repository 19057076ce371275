// Package thread holds per-thread replay state: liveness flags, the
// current basic-block pointer, the stack of outstanding API-call frames,
// the last-observed record tag, and the current suspension descriptor.
package thread

import "github.com/bbtrace/bbreplay/internal/record"

// WaitKind names which sync object family a thread is suspended on. At
// most one is active at a time (spec invariant: at most one wait
// descriptor may be non-zero).
type WaitKind int

const (
	WaitNone WaitKind = iota
	WaitEvent
	WaitMutex
	WaitCritSec
)

// Wait describes a pending suspension: the handle being waited on and the
// sequence number that must become current before the thread may resume.
type Wait struct {
	Kind   WaitKind
	Handle uint32
	Seq    uint32
}

// State is the per-thread replay state.
type State struct {
	ID       uint32
	Running  bool
	Finished bool

	LastTag record.Tag
	WithinBB uint32 // program counter, 0 when not inside a basic block
	BBCount  uint64

	FilePos int64

	apiStack []ApiCallFrame

	Wait Wait
}

// NewState returns a freshly created, non-running, non-finished thread
// state for id.
func NewState(id uint32) *State {
	return &State{ID: id}
}

// PushCall pushes a new API call frame and makes it current.
func (s *State) PushCall(f ApiCallFrame) {
	s.apiStack = append(s.apiStack, f)
}

// Current returns a pointer to the top-of-stack frame, or nil if the
// stack is empty. The pointer is only valid until the next Push/Pop;
// callers must not retain it across those calls. Deriving it from the
// slice index on every access, rather than caching a raw pointer, means
// it can never dangle after a push reallocates the backing array.
func (s *State) Current() *ApiCallFrame {
	if len(s.apiStack) == 0 {
		return nil
	}
	return &s.apiStack[len(s.apiStack)-1]
}

// PopCall removes and returns the top-of-stack frame. It panics if the
// stack is empty; callers must check Current() first.
func (s *State) PopCall() ApiCallFrame {
	f := s.apiStack[len(s.apiStack)-1]
	s.apiStack = s.apiStack[:len(s.apiStack)-1]
	return f
}

// StackDepth returns the number of outstanding API call frames.
func (s *State) StackDepth() int {
	return len(s.apiStack)
}
