// Package cmd provides the CLI commands for csight.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/csight/csight/internal/logging"
	"github.com/csight/csight/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the csight CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csight",
		Short: "Code intelligence for C codebases",
		Long: `csight answers questions about a C codebase by combining three
retrieval sources: semantic vector search, the function call graph,
and the file dependency graph. Results are fused, reranked and fed
to a local language model.

Run 'csight ask "how does parse_header work?"' in an indexed project.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("csight version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.csight/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	cfg.WriteToStderr = debugMode

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		// Logging is observability, not a reason to refuse to run.
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	if debugMode {
		slog.Debug("debug logging enabled", "log_file", logging.DefaultLogPath())
	}
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
