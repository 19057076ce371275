package replay

import "github.com/bbtrace/bbreplay/internal/thread"

// ApiReturnEvent is emitted when an API call frame's return is complete:
// the deferred LIB_RET has been proven closed by the arrival of a
// non-ARGS/STRING record.
type ApiReturnEvent struct {
	ThreadID uint32
	Frame    thread.ApiCallFrame
	// Dump is true when Frame.Func resolved to a name on the user's
	// filter list.
	Dump bool
}

// BlockEndEvent is emitted when a basic block completes, either during
// normal dispatch or during thread finalization.
type BlockEndEvent struct {
	ThreadID uint32
	PC       uint32
}

// EventSink receives semantic events as the engine steps. The optional
// gRPC event bus (eventbus.Server) implements this interface; the
// flame-graph Graph does not. The engine itself is agnostic to what, if
// anything, is listening.
type EventSink interface {
	OnApiReturn(ApiReturnEvent)
	OnBlockEnd(BlockEndEvent)
}

// NoopSink discards every event. It is the Engine's default sink.
type NoopSink struct{}

func (NoopSink) OnApiReturn(ApiReturnEvent) {}
func (NoopSink) OnBlockEnd(BlockEndEvent)   {}

// MultiSink fans events out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) OnApiReturn(ev ApiReturnEvent) {
	for _, s := range m {
		s.OnApiReturn(ev)
	}
}

func (m MultiSink) OnBlockEnd(ev BlockEndEvent) {
	for _, s := range m {
		s.OnBlockEnd(ev)
	}
}
