package snapshot

import (
	"fmt"
	"io"

	"github.com/bbtrace/bbreplay/internal/syncreg"
	"github.com/bbtrace/bbreplay/internal/thread"
)

// SaveState writes a diagnostic dump of the sync registries and every
// thread's state to w. Unlike SaveSymbols this is a one-way diagnostic
// format with no defined round-trip contract, only for the symbol table.
func SaveState(w io.Writer, sync *syncreg.Registry, threads *thread.Registry, bbTotal uint64) error {
	eventMutex, critSec := sync.Snapshot()

	for handle, seq := range eventMutex {
		if _, err := fmt.Fprintf(w, "wait_seq %d: %d\n", handle, seq); err != nil {
			return err
		}
	}
	for handle, seq := range critSec {
		if _, err := fmt.Fprintf(w, "critsec_seq %d: %d\n", handle, seq); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "bb_count: %d\n", bbTotal); err != nil {
		return err
	}

	var dumpErr error
	threads.Each(func(st *thread.State) {
		if dumpErr != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "thread %d: running=%v finished=%v last_tag=%s "+
			"within_bb=%#x bb_count=%d filepos=%d stack_depth=%d\n",
			st.ID, st.Running, st.Finished, st.LastTag, st.WithinBB, st.BBCount,
			st.FilePos, st.StackDepth()); err != nil {
			dumpErr = err
		}
	})
	return dumpErr
}
