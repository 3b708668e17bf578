package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/config"
	"github.com/at-ishikawa/notekeeper/internal/logger"
)

var (
	configFile string
	cliLogger  = zap.NewNop()
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	var debugMode bool
	rootCommand := &cobra.Command{
		Use:           "notekeeper",
		Short:         "Operate a notekeeper database from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := setupLogger(debugMode)
			if err != nil {
				return err
			}
			cliLogger = log
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newSummaryCommand(),
		newExportCommand(),
		newImportCommand(),
		newMigrateCommand(),
	)
	return rootCommand
}

// setupLogger builds the logger of the CLI. Logs go to stderr so reports can be piped.
func setupLogger(debugMode bool) (*zap.Logger, error) {
	level := "info"
	if debugMode {
		level = "debug"
	}
	log, err := logger.New(config.LogConfig{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("logger.New() > %w", err)
	}
	return log, nil
}
