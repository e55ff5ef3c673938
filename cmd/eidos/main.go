package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eidos/internal/config"
	"eidos/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workspace  string
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "eidos",
	Short: "eidos - symbolic program synthesis engine",
	Long: `eidos searches a space of small symbolic programs for one consistent
with a set of input/output examples.

It combines three coupled engines over one tree representation:
an enumerative synthesizer (exhaustive, size-ordered), a genetic
programming engine (population-based), and a meta-strategy selector
that learns which engine to use per problem shape. Programs that
generalize can be registered back as new primitives.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := logging.Initialize(workspace); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = ".eidos/config.yaml"
	}
	return config.Load(path)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default .eidos/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", ".", "workspace directory")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "wall-clock deadline per search")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(evolveCmd)
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
