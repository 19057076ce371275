// Command bbreplay replays an instrumented native program's execution
// from binary trace logs, reconstructing thread state, sync ordering,
// and API-call semantics one record at a time.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bbtrace/bbreplay/internal/config"
)

// runFlags holds the flags shared by run and serve, mirroring the
// original CLI's LR_SHOW_BB/LR_SHOW_LIBCALL compile-time switches and
// the snapshot/filter options it exposed as getopt flags.
type runFlags struct {
	filters     []string
	filterFile  string
	showBB      bool
	showLibCall bool
	legacyAND   bool
	snapshotIn  string
	snapshotOut string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "API name to track and dump on return (repeatable)")
	cmd.Flags().StringVar(&f.filterFile, "filter-file", "", "YAML file listing API names to track")
	cmd.Flags().BoolVar(&f.showBB, "show-bb", false, "log every basic block end")
	cmd.Flags().BoolVar(&f.showLibCall, "show-libcall", false, "log every library call return")
	cmd.Flags().BoolVar(&f.legacyAND, "legacy-and-mismatch", false, "use the original AND-based lib_ret mismatch check")
	cmd.Flags().StringVar(&f.snapshotIn, "snapshot-in", "", "restore symbol table from this snapshot file before replay")
	cmd.Flags().StringVar(&f.snapshotOut, "snapshot-out", "", "save symbol table to this snapshot file after replay")
}

// resolveFilters merges --filter values with --filter-file's list.
func (f *runFlags) resolveFilters() ([]string, error) {
	names := append([]string(nil), f.filters...)
	if f.filterFile != "" {
		ff, err := config.LoadFilterFile(f.filterFile)
		if err != nil {
			return nil, err
		}
		names = append(names, ff.Filters...)
	}
	return names, nil
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:   "bbreplay",
		Short: "Replay binary execution traces",
	}
	root.AddCommand(runCmd(log))
	root.AddCommand(serveCmd(log))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
