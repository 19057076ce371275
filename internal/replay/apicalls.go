package replay

import (
	"fmt"

	"github.com/bbtrace/bbreplay/internal/record"
	"github.com/bbtrace/bbreplay/internal/thread"
)

// apiCallRet pops the top-of-stack frame, routes well-known API names to
// the semantic layer, emits the ApiReturnEvent, and dumps the call if its
// function address is on the filter list.
func (e *Engine) apiCallRet(st *thread.State) error {
	frame := st.PopCall()

	switch frame.Name {
	case "CreateThread":
		e.onCreateThread(st, frame)
	case "ResumeThread":
		e.onResumeThread(frame)
	case "CreateFileA":
		e.onCreateFile(frame)
	case "CloseHandle":
		e.onCloseHandle(frame)
	}

	dump := e.symbols.Filtered(frame.Func)
	if e.opts.ShowLibCall {
		e.log.Debug().Uint32("thread", st.ID).Str("call", dumpFrame(frame)).Msg("libcall")
	}
	e.sink.OnApiReturn(ApiReturnEvent{ThreadID: st.ID, Frame: frame, Dump: dump})
	if dump {
		e.log.Info().
			Uint32("thread", st.ID).
			Str("call", dumpFrame(frame)).
			Msg("filtered call")
	}
	return nil
}

func dumpFrame(f thread.ApiCallFrame) string {
	return fmt.Sprintf("%s@%#x(%v %v) -> (%v %v) ret=%#x",
		f.Name, f.Func, f.CallArgs, f.CallStrings, f.RetArgs, f.RetStrings, f.RetAddr)
}

// onCreateThread extracts the child thread id and the create-suspended
// bit from fixed positions in the call/return argument lists. A zero id
// is ignored silently; a duplicate id is a non-fatal warning that keeps
// the existing thread state; a sibling log that fails to open is a
// non-fatal warning and the child is discarded.
func (e *Engine) onCreateThread(st *thread.State, frame thread.ApiCallFrame) {
	if len(frame.RetArgs) < 2 {
		e.log.Warn().Uint32("thread", st.ID).Msg("CreateThread: missing return args")
		return
	}
	newID := frame.RetArgs[1]
	if newID == 0 {
		return
	}

	if _, exists := e.threads.Get(newID); exists {
		e.log.Warn().Uint32("thread", newID).Msg("CreateThread: duplicate thread id, keeping original")
		return
	}

	suspended := false
	if len(frame.CallArgs) > 3 {
		suspended = frame.CallArgs[3]&0x4 == 0x4
	}

	siblingPath := fmt.Sprintf("%s.%d", e.primaryPath, newID)
	src, err := record.Open(siblingPath)
	if err != nil {
		e.log.Warn().Uint32("thread", newID).Str("path", siblingPath).Err(err).
			Msg("CreateThread: failed to open sibling log, discarding child")
		return
	}

	child := thread.NewState(newID)
	child.Running = !suspended
	e.threads.Insert(child)
	e.sources[newID] = src

	if child.Running {
		e.log.Info().Uint32("thread", newID).Msg("thread starting")
	} else {
		e.log.Info().Uint32("thread", newID).Msg("thread created suspended")
	}
}

// onResumeThread marks a known thread runnable.
func (e *Engine) onResumeThread(frame thread.ApiCallFrame) {
	if len(frame.RetArgs) < 2 {
		return
	}
	id := frame.RetArgs[1]
	if st, ok := e.threads.Get(id); ok {
		st.Running = true
		e.log.Info().Uint32("thread", id).Msg("thread resuming")
	}
}

// onCreateFile binds the observed path to the observed handle in the
// observational file table. It has no effect on replay correctness.
func (e *Engine) onCreateFile(frame thread.ApiCallFrame) {
	if len(frame.CallStrings) < 1 || len(frame.RetArgs) < 1 {
		return
	}
	e.fileTable[frame.RetArgs[0]] = frame.CallStrings[0]
}

// onCloseHandle is observational only.
func (e *Engine) onCloseHandle(thread.ApiCallFrame) {}
