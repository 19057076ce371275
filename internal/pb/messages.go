// Package pb holds the wire messages for the replay event bus described
// by replay.proto. There is no protoc toolchain in this environment, so
// these are hand-written Go structs rather than protoc-gen-go output;
// they are transported with the gob codec registered by
// internal/eventbus (see DESIGN.md). Timestamps still go through
// google.golang.org/protobuf's well-known Timestamp type, matching the
// original tracker's use of timestamppb for wall-clock conversion.
package pb

import "google.golang.org/protobuf/types/known/timestamppb"

// Empty is the StreamEvents request: there is nothing to configure, one
// stream carries every event.
type Empty struct{}

// ApiReturn mirrors replay.ApiReturnEvent on the wire.
type ApiReturn struct {
	ThreadID uint32
	FuncAddr uint32
	FuncName string
	CallArgs []uint32
	RetArgs  []uint32
	Dump     bool
}

// BlockEnd mirrors replay.BlockEndEvent on the wire.
type BlockEnd struct {
	ThreadID uint32
	PC       uint32
}

// Kind discriminates ReplayEvent's oneof payload.
type Kind int

const (
	KindApiReturn Kind = iota
	KindBlockEnd
)

// ReplayEvent is the single message type streamed to every event bus
// client. Exactly one of ApiReturn/BlockEnd is populated, selected by
// Kind.
type ReplayEvent struct {
	Ts        *timestamppb.Timestamp
	Kind      Kind
	ApiReturn *ApiReturn
	BlockEnd  *BlockEnd
}
