// Package replay implements the trace replay engine: the multi-thread
// cooperative scheduler that consumes packet-framed binary record
// streams, maintains per-thread execution state, enforces happens-before
// ordering through recorded sync sequence numbers, and emits semantic
// events to consumers.
//
// Scheduling is single-threaded and cooperative by design: the Engine
// drives exactly one thread.State at a time to exactly one semantic
// unit per Step, then yields. Step must never be called concurrently
// from more than one goroutine.
package replay

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bbtrace/bbreplay/internal/record"
	"github.com/bbtrace/bbreplay/internal/symtab"
	"github.com/bbtrace/bbreplay/internal/syncreg"
	"github.com/bbtrace/bbreplay/internal/thread"
)

// Options configures engine behavior that would otherwise be a
// compile-time flag.
type Options struct {
	// LegacyANDMismatch reproduces the original LIB_RET mismatch check
	// (fatal only when *both* func and ret_addr disagree). The default,
	// stricter reading is OR: either field disagreeing is fatal.
	LegacyANDMismatch bool

	// ShowBB and ShowLibCall mirror the original LR_SHOW_BB /
	// LR_SHOW_LIBCALL compile-time flags, now runtime CLI flags.
	ShowBB      bool
	ShowLibCall bool

	// FilterNames are API names whose resolved addresses are tracked;
	// every completed call through one of them is dumped.
	FilterNames []string
}

// Engine is the trace replay scheduler.
type Engine struct {
	opts   Options
	log    zerolog.Logger
	sink   EventSink

	primaryPath string

	threads *thread.Registry
	sources map[uint32]*record.Source
	symbols *symtab.Table
	sync    *syncreg.Registry

	cursor    uint32
	hasCursor bool

	bbCountTotal uint64

	// fileTable is the observational CreateFileA/CloseHandle side table;
	// it has no bearing on replay correctness.
	fileTable map[uint32]string
}

// New constructs an Engine. sink may be nil, in which case events are
// discarded.
func New(opts Options, log zerolog.Logger, sink EventSink) *Engine {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Engine{
		opts:      opts,
		log:       log,
		sink:      sink,
		threads:   thread.New(),
		sources:   make(map[uint32]*record.Source),
		symbols:   symtab.New(opts.FilterNames),
		sync:      syncreg.New(),
		fileTable: make(map[uint32]string),
	}
}

// Symbols returns the engine's symbol table, for snapshot save/restore.
func (e *Engine) Symbols() *symtab.Table { return e.symbols }

// SyncRegistry returns the engine's sync registry, for diagnostics.
func (e *Engine) SyncRegistry() *syncreg.Registry { return e.sync }

// Threads returns the thread registry, for diagnostics and Summary.
func (e *Engine) Threads() *thread.Registry { return e.threads }

// TotalBlocks returns the cumulative basic-block count across all
// threads that have finalized so far.
func (e *Engine) TotalBlocks() uint64 { return e.bbCountTotal }

// Open creates thread 0, opens its Record Source, marks it running, and
// resets counters and the round-robin cursor.
func (e *Engine) Open(primaryPath string) error {
	src, err := record.Open(primaryPath)
	if err != nil {
		return fmt.Errorf("open primary log %q: %w", primaryPath, err)
	}
	e.primaryPath = primaryPath

	st := thread.NewState(0)
	st.Running = true
	e.threads.Insert(st)
	e.sources[0] = src

	e.bbCountTotal = 0
	e.hasCursor = false

	return nil
}

// Step advances the replay by one semantic unit. It returns (false, nil)
// when no thread is both non-finished and runnable: the replay is
// complete. A non-nil error is a fatal replay error; the caller should
// stop driving Step and may still call Summary on the
// engine's remaining state for diagnostics.
func (e *Engine) Step() (bool, error) {
	id, ok := e.schedule()
	if !ok {
		return false, nil
	}

	st, _ := e.threads.Get(id)
	src := e.sources[id]

	for st.Running {
		delivered, err := e.advance(st, src)
		if err != nil {
			return false, err
		}
		if delivered {
			break
		}
	}

	if next, ok := e.threads.Next(id); ok {
		e.cursor = next
		e.hasCursor = true
	}

	return true, nil
}

// schedule scans at most Len() threads starting from the cursor, waking
// any non-running thread whose sync wait has become due, and returns the
// first thread found running.
func (e *Engine) schedule() (uint32, bool) {
	n := e.threads.Len()
	if n == 0 {
		return 0, false
	}

	start := uint32(0)
	if e.hasCursor {
		start = e.cursor
	} else if ids := e.threads.IDs(); len(ids) > 0 {
		start = ids[0]
	}

	id := start
	first := true
	for i := 0; i < n; i++ {
		if !first {
			next, ok := e.threads.Next(id)
			if !ok {
				return 0, false
			}
			id = next
		}
		first = false

		st, ok := e.threads.Get(id)
		if !ok || st.Finished {
			continue
		}
		if !st.Running {
			e.wakeCheck(st)
		}
		if st.Running {
			return id, true
		}
	}
	return 0, false
}

// wakeCheck re-evaluates a suspended thread's pending wait against the
// sync registry's current high-water mark. Only one of critsec, event,
// or mutex may be pending at once for a given thread.
func (e *Engine) wakeCheck(st *thread.State) {
	if st.Wait.Kind == thread.WaitNone {
		return
	}
	critSec := st.Wait.Kind == thread.WaitCritSec
	if e.sync.TryAdvance(critSec, st.Wait.Handle, st.Wait.Seq) {
		st.Wait = thread.Wait{}
		st.Running = true
	}
}
