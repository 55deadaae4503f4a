package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/modrinth-downloader/internal/config"
	"github.com/handiism/modrinth-downloader/internal/download"
	ioutils "github.com/handiism/modrinth-downloader/internal/io"
	"github.com/handiism/modrinth-downloader/internal/model"
	"github.com/handiism/modrinth-downloader/internal/modrinth"
	"github.com/handiism/modrinth-downloader/internal/report"
)

// inputFlags are shared by every command.
type inputFlags struct {
	file        string
	gameVersion string
	loader      string
	channel     string
	report      string
}

func (f *inputFlags) register(cmd *cobra.Command, withChannel bool) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read links from a file, - for stdin")
	cmd.Flags().StringVar(&f.gameVersion, "game-version", "", "Minecraft version, e.g. 1.21.8 (default from config)")
	cmd.Flags().StringVar(&f.loader, "loader", "", "Mod loader, e.g. fabric (default from config)")
	if withChannel {
		cmd.Flags().StringVar(&f.channel, "channel", "", "Preferred channel: release, beta or alpha (default from config)")
	}
	cmd.Flags().StringVar(&f.report, "report", "", "Report format: text, markdown or json (default from config)")
}

// criteria merges flags over the configured defaults.
func (f *inputFlags) criteria(s *config.Settings) (model.Criteria, error) {
	crit := s.Criteria()
	if f.gameVersion != "" {
		crit.GameVersion = f.gameVersion
	}
	if f.loader != "" {
		crit.Loader = f.loader
	}
	if f.channel != "" {
		crit.Channel = f.channel
	}
	return crit, crit.Validate()
}

// lines collects input from positional arguments and the -f source, in
// that order.
func (f *inputFlags) lines(cmd *cobra.Command, args []string) ([]model.InputLine, error) {
	text := strings.Join(args, "\n")

	if f.file != "" {
		var r io.Reader
		if f.file == "-" {
			r = cmd.InOrStdin()
		} else {
			file, err := os.Open(f.file)
			if err != nil {
				return nil, err
			}
			defer file.Close()
			r = file
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.file, err)
		}
		text += "\n" + string(data)
	}

	lines := modrinth.ParseInput(text)
	if len(lines) == 0 {
		return nil, model.ErrEmptyInput
	}
	return lines, nil
}

func (f *inputFlags) renderer(cmd *cobra.Command, s *config.Settings) (*report.Renderer, error) {
	name := s.ReportFormat
	if f.report != "" {
		name = f.report
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return report.NewRenderer(format, format == report.FormatText && isTerminal(cmd.OutOrStdout())), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// printProgress writes manager events to stderr so the report on stdout
// stays clean.
func printProgress(w io.Writer) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "✗ "
		case download.LevelWarning:
			prefix = "! "
		case download.LevelSuccess:
			prefix = "✓ "
		case download.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		fmt.Fprintln(w, prefix+event.Message)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func newLinksCmd() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "links [urls...]",
		Short: "Print the download page link of every project",
		Long: `Builds one Modrinth download page link per input line, pre-filtered to the
game version and loader. No request is made.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := flags.lines(cmd, args)
			if err != nil {
				return err
			}
			crit, err := flags.criteria(settings)
			if err != nil {
				return err
			}
			renderer, err := flags.renderer(cmd, settings)
			if err != nil {
				return err
			}

			manager := download.NewManager(settings, nil, download.WithLogger(logger))
			links, err := manager.BuildLinks(lines, crit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderer.RenderLinks(links))
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newResolveCmd() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "resolve [urls...]",
		Short: "Show which file would be downloaded for every project",
		Long: `Queries the Modrinth catalog for every input line and reports the selected
version and file without downloading anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := flags.lines(cmd, args)
			if err != nil {
				return err
			}
			crit, err := flags.criteria(settings)
			if err != nil {
				return err
			}
			renderer, err := flags.renderer(cmd, settings)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			manager := download.NewManager(settings, printProgress(cmd.ErrOrStderr()), download.WithLogger(logger))
			results, err := manager.Resolve(ctx, lines, crit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderer.RenderOutcomes(results))
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newBundleCmd() *cobra.Command {
	var (
		flags    inputFlags
		output   string
		format   string
		checksum bool
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:   "bundle [urls...]",
		Short: "Download every resolved file into one archive",
		Long: `Resolves every input line, downloads the selected files one after another
and writes them into mods-<version>-<loader>.<ext> in the output directory.

Lines that cannot be resolved and files that cannot be downloaded are
reported and skipped. The command exits with status 2 when no file could
be archived.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := flags.lines(cmd, args)
			if err != nil {
				return err
			}
			crit, err := flags.criteria(settings)
			if err != nil {
				return err
			}
			renderer, err := flags.renderer(cmd, settings)
			if err != nil {
				return err
			}

			// Apply flags
			if output != "" {
				settings.OutputDir = output
			}
			if format != "" {
				settings.ArchiveFormat = format
			}
			if checksum {
				settings.WriteChecksum = true
			}
			if noVerify {
				settings.VerifyHashes = false
			}
			if f, err := ioutils.ParseFormat(settings.ArchiveFormat); err != nil || !f.Available() {
				return fmt.Errorf("%w: %s", model.ErrDependencyMissing, settings.ArchiveFormat)
			}

			ctx, cancel := signalContext()
			defer cancel()

			manager := download.NewManager(settings, printProgress(cmd.ErrOrStderr()), download.WithLogger(logger))
			result, err := manager.Bundle(ctx, lines, crit)
			if err != nil {
				return err
			}

			var path string
			if result.State == model.StateReady {
				path, err = manager.SaveBundle(ctx, result)
				if err != nil {
					return err
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), renderer.RenderBundle(result, path))

			if result.State != model.StateReady {
				if ctx.Err() != nil {
					return &exitError{code: 130, err: ctx.Err()}
				}
				return &exitError{code: 2, err: result.Err}
			}
			logger.Info("bundle complete",
				zap.String("run_id", result.RunID),
				zap.String("path", path),
				zap.String("size", humanize.Bytes(uint64(result.Size()))))
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "Archive format: zip, tar.gz or tar.xz (default from config)")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "Write a BLAKE3 <archive>.b3 checksum file")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip checking downloads against catalog hashes")
	return cmd
}
