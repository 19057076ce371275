package replay

import (
	"github.com/bbtrace/bbreplay/internal/record"
	"github.com/bbtrace/bbreplay/internal/thread"
)

// advance runs one iteration of the inner dispatch loop: it returns
// delivered=true once a semantic unit (an API return, a basic-block end,
// or a finalized thread) has been applied, at which point Step's caller
// breaks out and yields. Until then the thread stays in the loop,
// consuming records and updating state but emitting nothing observable.
func (e *Engine) advance(st *thread.State, src *record.Source) (bool, error) {
	// (a) Deferred LIB_RET completion: only once a non-ARGS/STRING
	// record proves no more fragments belong to the pending return.
	if st.Current() != nil && st.LastTag == record.TagLibRet {
		next := src.Peek()
		if next != record.TagArgs && next != record.TagString {
			if err := e.apiCallRet(st); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	// (b) Basic-block end: the next record proves the block is closed.
	if st.WithinBB != 0 {
		next := src.Peek()
		if next == record.TagBB || next == record.TagLibCall {
			e.emitBlockEnd(st)
			return true, nil
		}
	}

	// (c) Fetch one record; exhaustion finalizes the thread.
	buf, ok := src.Fetch(&st.FilePos)
	if !ok {
		e.finalizeThread(st, true)
		return true, nil
	}

	rec, err := record.Decode(buf)
	if err != nil {
		return false, NewThreadError("dispatch", st.ID, KindUnknownTag)
	}

	// (d) Dispatch.
	if err := e.dispatch(st, rec); err != nil {
		return false, err
	}
	if rec.Tag != record.TagArgs && rec.Tag != record.TagString {
		st.LastTag = rec.Tag
	}
	return false, nil
}

// emitBlockEnd reports a basic-block-end event and clears WithinBB.
func (e *Engine) emitBlockEnd(st *thread.State) {
	pc := st.WithinBB
	if e.opts.ShowBB {
		e.log.Debug().Uint32("thread", st.ID).Uint32("pc", pc).Msg("bb")
	}
	e.sink.OnBlockEnd(BlockEndEvent{ThreadID: st.ID, PC: pc})
	st.WithinBB = 0
}

// dispatch applies one record's semantic effect.
func (e *Engine) dispatch(st *thread.State, rec record.Record) error {
	switch rec.Tag {
	case record.TagBB:
		bb := rec.Payload.(record.BasicBlock)
		st.WithinBB = bb.PC
		st.BBCount++

	case record.TagSymbol:
		sym := rec.Payload.(record.Symbol)
		e.symbols.Register(sym.Func, sym.Name)

	case record.TagLibCall:
		lc := rec.Payload.(record.LibCall)
		name, _ := e.symbols.Lookup(lc.Func)
		st.PushCall(thread.ApiCallFrame{
			Func:     lc.Func,
			RetAddr:  lc.RetAddr,
			Name:     name,
			CallArgs: []uint32{lc.Arg},
		})

	case record.TagLibRet:
		lr := rec.Payload.(record.LibRet)
		top := st.Current()
		if top == nil {
			return NewThreadError("LIB_RET", st.ID, KindMismatchedLibRet)
		}
		mismatched := top.Func != lr.Func || top.RetAddr != lr.RetAddr
		if e.opts.LegacyANDMismatch {
			mismatched = top.Func != lr.Func && top.RetAddr != lr.RetAddr
		}
		if mismatched {
			return NewThreadError("LIB_RET", st.ID, KindMismatchedLibRet)
		}
		top.RetArgs = append(top.RetArgs, lr.RetVal)

	case record.TagArgs:
		args := rec.Payload.(record.Args)
		top := st.Current()
		if top == nil {
			return NewThreadError("ARGS", st.ID, KindBadContextArgs)
		}
		switch st.LastTag {
		case record.TagLibCall:
			top.CallArgs = append(top.CallArgs, args.Values[:]...)
		case record.TagLibRet:
			top.RetArgs = append(top.RetArgs, args.Values[:]...)
		default:
			return NewThreadError("ARGS", st.ID, KindBadContextArgs)
		}

	case record.TagString:
		s := rec.Payload.(record.Str)
		top := st.Current()
		if top == nil {
			return NewThreadError("STRING", st.ID, KindBadContextArgs)
		}
		switch st.LastTag {
		case record.TagLibCall:
			top.CallStrings = append(top.CallStrings, s.Value)
		case record.TagLibRet:
			top.RetStrings = append(top.RetStrings, s.Value)
		default:
			return NewThreadError("STRING", st.ID, KindBadContextArgs)
		}

	case record.TagSync:
		sy := rec.Payload.(record.Sync)
		critSec := sy.Kind == record.SyncCritSec
		if e.sync.TryAdvance(critSec, sy.Handle, sy.Seq) {
			// Registry caught up immediately; the thread continues.
		} else {
			kind := thread.WaitEvent
			switch sy.Kind {
			case record.SyncMutex:
				kind = thread.WaitMutex
			case record.SyncCritSec:
				kind = thread.WaitCritSec
			}
			st.Wait = thread.Wait{Kind: kind, Handle: sy.Handle, Seq: sy.Seq}
			st.Running = false
		}

	case record.TagWndProc, record.TagModule, record.TagRead, record.TagWrite,
		record.TagLoop, record.TagException, record.TagAppCall, record.TagAppRet:
		// Reserved: no semantic effect in the core replay engine.

	default:
		return NewThreadError("dispatch", st.ID, KindUnknownTag)
	}
	return nil
}
