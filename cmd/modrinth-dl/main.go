package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/handiism/modrinth-downloader/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger

	// Loaded in PersistentPreRunE, then overridden by command flags
	settings *config.Settings
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "modrinth-dl",
	Short: "Resolve Modrinth mod links for one game version and loader",
	Long: `modrinth-dl turns a list of Modrinth project links into either download
page links or a single archive holding the matching mod files.

Input is one link per line. Anything after " — ", " # " or two spaces is
kept as a comment:

  https://modrinth.com/mod/sodium — rendering
  https://modrinth.com/mod/lithium  server tick

For interactive mode, use: modrinth-tui`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		settings, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config %s: %w", path, err)
		}
		logger.Debug("config loaded", zap.String("path", path))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// exitError carries a non-default exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output and debug logs")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: "+config.DefaultPath()+")")

	// Add commands to root
	rootCmd.AddCommand(newLinksCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newBundleCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
