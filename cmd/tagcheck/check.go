package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/tagcheck/internal/config"
	"github.com/nao1215/tagcheck/internal/console"
	"github.com/nao1215/tagcheck/internal/database"
	"github.com/nao1215/tagcheck/internal/document"
	"github.com/nao1215/tagcheck/internal/model"
	"github.com/nao1215/tagcheck/internal/pipeline"
	"github.com/nao1215/tagcheck/internal/report"
	"github.com/nao1215/tagcheck/internal/validator"
)

// errNoDocuments is returned when the given paths hold no HTML files.
var errNoDocuments = errors.New("no HTML documents found")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check HTML documents for tag balance problems",
		Long: `Check validates each document and reports its first tag balance problem.

Directories are searched recursively for .html, .htm and .xhtml files.
Use - to read a document from stdin.

The exit code is 0 when every document is balanced, 2 when at least one
document has a problem, and 1 on any other error.

Examples:
  # Check a single file
  tagcheck check index.html

  # Check a whole site, four documents at a time
  tagcheck check -b 4 site/

  # Check stdin
  curl -s https://example.com | tagcheck check -

  # Accept custom elements and write a Markdown report
  tagcheck check -t my-widget -t x-card -m -o report.md site/

Configuration file (.tagcheck) example:
  extra_tags: [my-widget]
  excerpt_radius: 30
  ignore:
    - node_modules
    - "*.min.html"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	addCheckFlags(cmd)
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of documents checked concurrently")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")

	return cmd
}

// addCheckFlags registers the flags shared by check and watch.
func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .tagcheck in current or home directory)")
	cmd.Flags().StringSliceP("tag", "t", nil,
		"Additional tag name to accept (repeatable)")
	cmd.Flags().IntP("radius", "r", config.DefaultExcerptRadius,
		"Bytes of context shown on each side of a problem")
	cmd.Flags().Int64("max-size", config.DefaultMaxDocumentSize,
		"Largest document read, in bytes")
	cmd.Flags().BoolP("stats", "s", false,
		"Collect structural statistics for each document")
	cmd.Flags().BoolP("quiet", "q", false,
		"Only print documents with problems")
	cmd.Flags().Bool("no-history", false,
		"Do not record results in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from the flags registered by addCheckFlags
// and the project file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Paths = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	flags := cmd.Flags()

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.ExtraTags, err = flags.GetStringSlice("tag"); err != nil {
		return nil, err
	}
	if cfg.ExcerptRadius, err = flags.GetInt("radius"); err != nil {
		return nil, err
	}
	if cfg.MaxDocumentSize, err = flags.GetInt64("max-size"); err != nil {
		return nil, err
	}
	if cfg.Stats, err = flags.GetBool("stats"); err != nil {
		return nil, err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if cfg.NoHistory, err = flags.GetBool("no-history"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}

	project, err := config.Load(cfg.ConfigFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	cfg.ApplyProject(project, flags.Changed("radius"))

	return cfg, nil
}

// readReportFlags reads the flags that only check has.
func readReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	flags := cmd.Flags()

	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}
	return nil
}

// runCheck expands the paths, checks every document and writes the report.
func runCheck(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	paths, err := document.Expand(cfg.Paths, cfg.Ignored)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w in %s", errNoDocuments, strings.Join(cfg.Paths, ", "))
	}

	logger.Info("starting check",
		"documents", len(paths),
		"batchSize", cfg.BatchSize,
		"history", !cfg.NoHistory,
	)

	var store pipeline.HistoryStore
	if !cfg.NoHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		store = db
	}

	writer, closeOutput, err := newReportWriter(cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	factory := checkPipelineFactory(cfg, validator.New(cfg.ValidatorOptions()...), store, cmd.InOrStdin(), logger)
	reports, batchErr := checkAll(ctx, cmd.ErrOrStderr(), paths, factory, cfg.BatchSize, logger)

	summary := model.NewSummary(reports)
	for _, r := range reports {
		if r == nil {
			continue
		}
		if _, err := writer.Write(r); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if _, err := writer.WriteSummary(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	switch {
	case batchErr != nil:
		return batchErr
	case summary.Invalid > 0:
		return ErrInvalidDocuments
	case summary.Failed > 0:
		return fmt.Errorf("%d of %d documents could not be checked", summary.Failed, summary.Total)
	default:
		return nil
	}
}

// checkPipelineFactory returns a factory of check pipelines sharing v and store.
func checkPipelineFactory(
	cfg *config.Config,
	v *validator.Validator,
	store pipeline.HistoryStore,
	stdin io.Reader,
	logger *slog.Logger,
) func() *pipeline.Pipeline {
	return func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline(
			[]pipeline.Option{pipeline.WithLogger(logger)},
			pipeline.WithPipelineValidator(v),
			pipeline.WithPipelineMaxSize(cfg.MaxDocumentSize),
			pipeline.WithPipelineExcerptRadius(cfg.ExcerptRadius),
			pipeline.WithPipelineInspect(cfg.Stats),
			pipeline.WithPipelineHistory(store),
			pipeline.WithPipelineStdin(stdin),
			pipeline.WithPipelineLogger(logger),
		)
	}
}

// checkAll runs the batch and returns the reports in input order. A
// spinner on progressOut shows progress when it is a terminal.
func checkAll(
	ctx context.Context,
	progressOut io.Writer,
	paths []string,
	factory func() *pipeline.Pipeline,
	concurrency int,
	logger *slog.Logger,
) ([]*model.CheckReport, error) {
	spinner := console.NewSpinner(progressOut, fmt.Sprintf("Checking %d documents...", len(paths)))
	spinner.Start()
	defer spinner.Stop()

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu      sync.Mutex
		done    int
		reports = make([]*model.CheckReport, len(paths))
	)
	err := bp.ProcessBatchWithCallback(ctx, paths, func(r *model.CheckReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		reports[index] = r
		done++
		spinner.UpdateMessage(fmt.Sprintf("Checked %d/%d documents...", done, len(paths)))
	})

	return reports, err
}

// newReportWriter selects the report writer for cfg. With a report file,
// the terminal keeps the plain text output and the file gets the chosen
// format. The returned function closes the file.
func newReportWriter(out io.Writer, cfg *config.Config) (report.Writer, func(), error) {
	terminal := report.NewSimpleWriter(out,
		report.WithQuiet(cfg.Quiet),
		report.WithVerbose(cfg.Verbose),
	)

	if cfg.ReportFile == "" {
		return formatWriter(out, cfg, terminal), func() {}, nil
	}

	f, err := createOutputFile(cfg.ReportFile)
	if err != nil {
		return nil, nil, err
	}
	file := formatWriter(f, cfg, report.NewSimpleWriter(f,
		report.WithStyler(console.Plain()),
		report.WithVerbose(cfg.Verbose),
	))

	return report.NewMultiWriter(terminal, file), func() { _ = f.Close() }, nil
}

// formatWriter returns the JSON or Markdown writer for w, or fallback.
func formatWriter(w io.Writer, cfg *config.Config, fallback report.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return fallback
	}
}

// createOutputFile creates path and its parent directories.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen output path
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
