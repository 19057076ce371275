package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bbtrace/bbreplay/internal/replay"
	"github.com/bbtrace/bbreplay/internal/snapshot"
)

func runCmd(log zerolog.Logger) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <primary-log-file>",
		Short: "Replay a trace to completion and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(log, args[0], &flags, nil)
		},
	}
	flags.register(cmd)
	return cmd
}

// runReplay opens primaryPath, restores a snapshot if requested, steps
// the engine to completion (or fatal error), saves a snapshot if
// requested, and prints the summary. extraSink, if non-nil, additionally
// receives every event alongside the log (used by serve to feed the
// event bus).
func runReplay(log zerolog.Logger, primaryPath string, flags *runFlags, extraSink replay.EventSink) error {
	names, err := flags.resolveFilters()
	if err != nil {
		return err
	}

	sink := replay.EventSink(replay.NoopSink{})
	if extraSink != nil {
		sink = extraSink
	}

	engine := replay.New(replay.Options{
		LegacyANDMismatch: flags.legacyAND,
		ShowBB:            flags.showBB,
		ShowLibCall:       flags.showLibCall,
		FilterNames:       names,
	}, log, sink)

	if err := engine.Open(primaryPath); err != nil {
		return err
	}

	if flags.snapshotIn != "" {
		if err := restoreSnapshot(flags.snapshotIn, engine); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
	}

	for {
		more, err := engine.Step()
		if err != nil {
			engine.Summary()
			return err
		}
		if !more {
			break
		}
	}
	engine.Summary()

	log.Info().Uint64("bb_total", engine.TotalBlocks()).Msg("replay complete")

	if flags.snapshotOut != "" {
		if err := saveSnapshot(flags.snapshotOut, engine); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	return nil
}

func restoreSnapshot(path string, engine *replay.Engine) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return snapshot.RestoreSymbols(f, engine.Symbols())
}

func saveSnapshot(path string, engine *replay.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return snapshot.SaveSymbols(f, engine.Symbols())
}
