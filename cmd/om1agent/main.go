// Command om1agent runs the sense-fuse-decide-act robot agent loop
// described by internal/runtime: a config-driven set of sensors feeds a
// Fuser, whose prompt goes to one LLM backend, whose tool calls go to a
// set of connectors, alongside a background task scheduler. Grounded on
// the teacher's cmd/nexus/main.go: a cobra root command, a JSON slog
// default logger, and build-info variables set via ldflags.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version, commit, and date are set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "om1agent",
		Short: "Run the sense-fuse-decide-act robot agent loop",
		Long: "om1agent loads a YAML configuration describing a set of sensors, an LLM backend, " +
			"a set of actions and their connectors, and an optional set of background tasks, " +
			"then drives the tick loop that connects them until interrupted.",
	}

	root.AddCommand(buildServeCmd())
	root.AddCommand(buildVersionCmd())
	return root
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "om1agent %s (commit %s, built %s)\n", version, commit, date)
			return nil
		},
	}
}
