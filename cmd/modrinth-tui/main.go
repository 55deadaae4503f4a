package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/handiism/modrinth-downloader/internal/config"
	"github.com/handiism/modrinth-downloader/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFlag = flag.String("config", config.DefaultPath(), "Path to config file")
		logFlag    = flag.String("log", "", "Write debug logs to this file")
	)
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The alternate screen owns the terminal, so logs only go to a file.
	logger := zap.NewNop()
	if *logFlag != "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{*logFlag}
		cfg.ErrorOutputPaths = []string{*logFlag}
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer logger.Sync()
	}

	return tui.Run(settings, *configFlag, logger)
}
