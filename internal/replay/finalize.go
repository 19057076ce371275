package replay

import "github.com/bbtrace/bbreplay/internal/thread"

// finalizeThread synthesizes an api_call_ret for every remaining
// outstanding frame (so filter dumps still fire for in-flight calls),
// closes any open basic block, marks the thread Finished, and folds its
// basic-block count into the running total.
//
// logLine controls whether the per-thread termination line is emitted;
// Summary suppresses it because it has already printed a richer status
// line for threads it force-finishes.
func (e *Engine) finalizeThread(st *thread.State, logLine bool) {
	for st.Current() != nil {
		// apiCallRet never errors on a synthesized return: there is no
		// LIB_RET record to mismatch against.
		_ = e.apiCallRet(st)
	}

	if st.WithinBB != 0 {
		e.emitBlockEnd(st)
	}

	st.Finished = true
	st.Running = false
	e.bbCountTotal += st.BBCount

	if src, ok := e.sources[st.ID]; ok {
		src.Close()
	}

	if logLine {
		e.log.Info().Uint32("thread", st.ID).Uint64("bb_count", st.BBCount).Msg("thread finished")
	}
}

// Summary finalizes every still-non-finished thread, useful on user
// interrupt or premature EOF of the primary stream. It is the external
// entry point a CLI driver calls after breaking out of the Step loop
// early.
func (e *Engine) Summary() {
	e.threads.Each(func(st *thread.State) {
		if st.Finished {
			return
		}

		ev := e.log.Info().Uint32("thread", st.ID)
		if st.Running {
			ev.Bool("running", true).Msg("thread not finished")
		} else {
			switch st.Wait.Kind {
			case thread.WaitEvent:
				ev.Str("wait", "event").Uint32("handle", st.Wait.Handle).Uint32("seq", st.Wait.Seq)
			case thread.WaitMutex:
				ev.Str("wait", "mutex").Uint32("handle", st.Wait.Handle).Uint32("seq", st.Wait.Seq)
			case thread.WaitCritSec:
				ev.Str("wait", "critsec").Uint32("handle", st.Wait.Handle).Uint32("seq", st.Wait.Seq)
			}
			ev.Bool("running", false).Msg("thread not finished")
		}

		e.finalizeThread(st, false)
	})
}
