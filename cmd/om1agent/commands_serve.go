package main

import (
	"github.com/spf13/cobra"
)

// defaultConfigPath mirrors the teacher's profile.DefaultConfigPath, scaled
// down to this module's single config file rather than a profile directory.
const defaultConfigPath = "om1agent.yaml"

// buildServeCmd creates the "serve" command that runs the tick loop until
// interrupted.
func buildServeCmd() *cobra.Command {
	var (
		configPath      string
		debug           bool
		diagnosticsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the agent loop",
		Long: `Run the agent loop with the sensors, LLM backend, actions, and background
tasks described by the configuration file.

The process will:
1. Load and schema-validate the YAML configuration
2. Construct every configured sensor, connector, and background task through the plugin registry
3. Run the tick loop: fuse sensor buffers into a prompt, ask the LLM backend, dispatch the returned actions
4. Run the background scheduler and every connector's periodic tick alongside the tick loop

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		Example: `  # Start with default config
  om1agent serve

  # Start with a custom config
  om1agent serve --config /etc/om1agent/production.yaml

  # Start with debug logging
  om1agent serve --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, debug, diagnosticsAddr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to YAML configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging (verbose output)")
	cmd.Flags().StringVar(&diagnosticsAddr, "diagnostics-addr", ":9090", "Address to serve /metrics and onboard-status RPCs on (empty disables)")

	return cmd
}
