package eventbus

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// codecName identifies the gob codec registered below. gRPC's built-in
// "proto" codec requires messages to implement proto.Message, which the
// hand-written types in internal/pb do not (see DESIGN.md); gob encodes
// any exported struct without that machinery, so the server forces it
// (see ServerOption) rather than relying on content-subtype negotiation.
const codecName = "gob"

type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(gobCodec{})
}

// ServerOption forces every connection on the returned server to use the
// gob codec regardless of the content-subtype a client negotiates.
func ServerOption() grpc.ServerOption {
	return grpc.ForceServerCodec(gobCodec{})
}
