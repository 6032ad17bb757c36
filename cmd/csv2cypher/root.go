package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csv2cypher/internal/config"
	"github.com/JonMunkholm/csv2cypher/internal/core"
	"github.com/JonMunkholm/csv2cypher/internal/handler"
	"github.com/JonMunkholm/csv2cypher/internal/history"
	"github.com/JonMunkholm/csv2cypher/internal/logging"
	"github.com/JonMunkholm/csv2cypher/internal/tabular"
	"github.com/JonMunkholm/csv2cypher/internal/ui"
)

// app is the state shared by every subcommand, built once the root
// command's flags are parsed.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	converter *core.Converter
	logCloser io.Closer

	// Global flags.
	strictEscape bool
	aliasFile    string
	logLevel     string

	// detector overrides encoding detection in tests.
	detector tabular.Detector
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
	if err != nil {
		printer(a.stderr).Error(err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "csv2cypher",
		Short: "Convert knowledge point spreadsheets into Neo4j Cypher",
		Long: `csv2cypher reads knowledge point and prerequisite files (CSV in any of the
common Chinese encodings, or XLSX) and writes batched Cypher scripts that
create the knowledge point nodes and the prerequisite relationships.

Configuration comes from the environment (and a .env file); flags override it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&a.strictEscape, "strict-escape", false, "escape backslashes before quotes (overrides CYPHER_STRICT_ESCAPE)")
	flags.StringVar(&a.aliasFile, "aliases", "", "YAML file of extra column aliases (overrides FIELD_ALIAS_FILE)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		a.convertCmd(),
		a.nodesCmd(),
		a.prereqsCmd(),
		a.pairsCmd(),
		a.serveCmd(),
		a.historyCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides, configures logging and
// builds the converter.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("strict-escape") {
		cfg.Convert.StrictEscape = a.strictEscape
	}
	if flags.Changed("aliases") {
		cfg.Convert.AliasFile = a.aliasFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	a.logCloser = logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	slog.Debug("configuration loaded", "config", cfg.String())

	fields, err := core.LoadFieldSet(cfg.Convert.AliasFile)
	if err != nil {
		return err
	}

	logger := slog.Default()
	readerOpts := []tabular.Option{
		tabular.WithThreshold(cfg.Convert.ConfidenceThreshold),
		tabular.WithCandidates(cfg.Convert.Candidates),
		tabular.WithMaxFileSize(cfg.Convert.MaxFileSize),
		tabular.WithLogger(logger),
	}
	if a.detector != nil {
		readerOpts = append(readerOpts, tabular.WithDetector(a.detector))
	}

	escape := core.Escape
	if cfg.Convert.StrictEscape {
		escape = core.EscapeStrict
	}

	a.converter = core.NewConverter(
		core.WithReader(tabular.NewReader(readerOpts...)),
		core.WithFieldSet(fields),
		core.WithEscape(escape),
		core.WithLogger(logger),
	)
	return nil
}

// openHistory returns the configured history store, or Nop when none is
// configured. When required is false a connection failure degrades to Nop.
func (a *app) openHistory(ctx context.Context, required bool) (history.Store, error) {
	if !a.cfg.History.Enabled() {
		if required {
			return nil, fmt.Errorf("history is disabled: set DATABASE_URL")
		}
		return history.Nop{}, nil
	}

	store, err := history.Open(ctx, a.cfg.History)
	if err != nil {
		if required {
			return nil, err
		}
		slog.Warn("history disabled", "error", err)
		return history.Nop{}, nil
	}
	return store, nil
}

func (a *app) pipeline(rec history.Recorder, outDir string) *handler.Pipeline {
	return handler.NewPipeline(a.converter,
		handler.WithRecorder(rec),
		handler.WithOutputDir(outDir),
		handler.WithTimeout(a.cfg.Convert.Timeout),
	)
}

// printer styles output for w; color is used only on a terminal.
func printer(w io.Writer) *ui.Printer {
	if f, ok := w.(*os.File); ok {
		return ui.NewFilePrinter(f)
	}
	return ui.NewPrinter(w, false)
}
