package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dygy/codegroove/internal/config"
	"github.com/dygy/codegroove/internal/logging"
	"github.com/dygy/codegroove/internal/progress"
	"github.com/dygy/codegroove/internal/scales"
)

var (
	version = "0.1.0"
)

// Shared flags
var (
	scaleName  string
	scalesFile string
	verbose    bool
	logLevel   string
)

// Populated by the root PersistentPreRunE
var (
	cfg      *config.Config
	registry *scales.Registry
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		progress.NewReporter(os.Stderr, false).Error(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codegroove",
	Short: "Turn source code into music",
	Long: `codegroove reads source code line by line and turns it into a
deterministic sequence of notes and drum hits plus a tempo.

Indentation picks the pitch, line length the duration, control flow
the drums, and loop keywords the tempo.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(scalesCmd)
	rootCmd.AddCommand(kitsCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&scaleName, "scale", "s", "", "Scale to pick notes from (default: $CODEGROOVE_SCALE or dorian)")
	pf.StringVar(&scalesFile, "scales", "", "HCL file with custom scales (default: $CODEGROOVE_SCALES_FILE)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $LOG_LEVEL)")

	initComposeFlags()
	initRenderFlags()
	initBatchFlags()
	initServeFlags()
}

// setup loads configuration, installs the logger and builds the scale
// registry shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Load()

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	} else if verbose {
		level = "debug"
	}
	logger := logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
	slog.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

	registry = scales.NewRegistry()

	path := cfg.ScalesFile
	if scalesFile != "" {
		path = scalesFile
	}
	if path != "" {
		loaded, err := registry.LoadFile(path)
		if err != nil {
			return err
		}
		logger.Debug("loaded custom scales", "path", path, "count", len(loaded))
	}

	if cfg.Scale != "" {
		if err := registry.SetDefault(cfg.Scale); err != nil {
			return fmt.Errorf("CODEGROOVE_SCALE: %w", err)
		}
	}
	return nil
}

// selectedScale resolves --scale against the registry.
func selectedScale() (scales.Scale, error) {
	return registry.Lookup(scaleName)
}

func newReporter(cmd *cobra.Command) *progress.Reporter {
	return progress.NewReporter(cmd.ErrOrStderr(), verbose)
}
