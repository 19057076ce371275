// Package eventbus streams the replay engine's semantic events
// (api returns, basic block ends) to subscribed gRPC clients, in the
// shape of the NERRF tracker's StreamEvents/broadcastEvents pattern
// generalized from syscall events to replay events.
package eventbus

import (
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/bbtrace/bbreplay/internal/pb"
	"github.com/bbtrace/bbreplay/internal/replay"
)

// clientBuffer bounds how many undelivered events a slow client may
// accumulate before new events are dropped for it, matching the
// original's 100-slot client channel.
const clientBuffer = 100

// Server implements the EventBus gRPC service and replay.EventSink:
// the replay engine drives it directly as its sink, and every connected
// client receives a copy of each event as it is produced.
type Server struct {
	log zerolog.Logger

	mu      sync.Mutex
	clients map[chan *pb.ReplayEvent]struct{}
}

// New returns a Server with no subscribers.
func New(log zerolog.Logger) *Server {
	return &Server{
		log:     log,
		clients: make(map[chan *pb.ReplayEvent]struct{}),
	}
}

// OnApiReturn implements replay.EventSink.
func (s *Server) OnApiReturn(ev replay.ApiReturnEvent) {
	s.broadcast(&pb.ReplayEvent{
		Ts:   timestamppb.Now(),
		Kind: pb.KindApiReturn,
		ApiReturn: &pb.ApiReturn{
			ThreadID: ev.ThreadID,
			FuncAddr: ev.Frame.Func,
			FuncName: ev.Frame.Name,
			CallArgs: ev.Frame.CallArgs,
			RetArgs:  ev.Frame.RetArgs,
			Dump:     ev.Dump,
		},
	})
}

// OnBlockEnd implements replay.EventSink.
func (s *Server) OnBlockEnd(ev replay.BlockEndEvent) {
	s.broadcast(&pb.ReplayEvent{
		Ts:   timestamppb.Now(),
		Kind: pb.KindBlockEnd,
		BlockEnd: &pb.BlockEnd{
			ThreadID: ev.ThreadID,
			PC:       ev.PC,
		},
	})
}

// broadcast fans ev out to every subscribed client, skipping any whose
// buffer is full rather than blocking the replay loop on a slow reader.
func (s *Server) broadcast(ev *pb.ReplayEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- ev:
		default:
			s.log.Warn().Msg("event bus client buffer full, dropping event")
		}
	}
}

// StreamEvents implements EventBusServer: register a client channel,
// relay events onto the stream until the client disconnects.
func (s *Server) StreamEvents(_ *pb.Empty, stream EventBus_StreamEventsServer) error {
	ch := make(chan *pb.ReplayEvent, clientBuffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, ch)
		s.mu.Unlock()
	}()

	for {
		select {
		case ev := <-ch:
			if err := stream.Send(ev); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}

// Register attaches the event bus service to a gRPC server, the
// hand-written equivalent of protoc-gen-go-grpc's RegisterXServer.
func Register(s *grpc.Server, srv EventBusServer) {
	s.RegisterService(&serviceDesc, srv)
}

// EventBusServer is the server-side interface protoc-gen-go-grpc would
// generate from replay.proto's EventBus service.
type EventBusServer interface {
	StreamEvents(*pb.Empty, EventBus_StreamEventsServer) error
}

// EventBus_StreamEventsServer is the generated-style server stream
// type for the StreamEvents RPC.
type EventBus_StreamEventsServer interface {
	Send(*pb.ReplayEvent) error
	grpc.ServerStream
}

type eventBusStreamEventsServer struct {
	grpc.ServerStream
}

func (x *eventBusStreamEventsServer) Send(ev *pb.ReplayEvent) error {
	return x.ServerStream.SendMsg(ev)
}

func _EventBus_StreamEvents_Handler(srv interface{}, stream grpc.ServerStream) error {
	req := new(pb.Empty)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(EventBusServer).StreamEvents(req, &eventBusStreamEventsServer{stream})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "bbreplay.eventbus.EventBus",
	HandlerType: (*EventBusServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamEvents",
			Handler:       _EventBus_StreamEvents_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "replay.proto",
}
