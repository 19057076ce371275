package main

import (
	"context"
	"net"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/bbtrace/bbreplay/internal/eventbus"
)

func serveCmd(log zerolog.Logger) *cobra.Command {
	var flags runFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <primary-log-file>",
		Short: "Replay a trace while streaming semantic events over gRPC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveReplay(log, args[0], &flags, addr)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:50051", "gRPC listen address for the event bus")
	return cmd
}

// serveReplay runs the gRPC event bus server and the replay loop
// together: one goroutine drives the engine, one serves clients, and
// golang.org/x/sync/errgroup collects the first error. Replay completion
// or a fatal replay error stops the server. A server error or a signal
// also stops the server, but the replay goroutine does not watch the
// context: it runs to the end of the trace before serveReplay returns.
// golang.org/x/sys/unix supplies SIGTERM, which the portable os/signal
// package cannot name.
func serveReplay(log zerolog.Logger, primaryPath string, flags *runFlags, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	bus := eventbus.New(log)
	srv := grpc.NewServer(eventbus.ServerOption())
	eventbus.Register(srv, bus)
	reflection.Register(srv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("event bus listening")
		return srv.Serve(lis)
	})

	g.Go(func() error {
		err := runReplay(log, primaryPath, flags, bus)
		srv.GracefulStop()
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		srv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
