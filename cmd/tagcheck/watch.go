package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nao1215/tagcheck/internal/config"
	"github.com/nao1215/tagcheck/internal/database"
	"github.com/nao1215/tagcheck/internal/document"
	"github.com/nao1215/tagcheck/internal/console"
	"github.com/nao1215/tagcheck/internal/model"
	"github.com/nao1215/tagcheck/internal/pipeline"
	"github.com/nao1215/tagcheck/internal/report"
	"github.com/nao1215/tagcheck/internal/validator"
)

// defaultDebounce is how long watch waits after the last change before
// checking again.
const defaultDebounce = 300 * time.Millisecond

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <paths...>",
		Short: "Re-check documents whenever they change",
		Long: `Watch checks the given files and directories once, then re-checks every
HTML file that is written or created below them until interrupted.

Changes are collected for a short debounce period so that an editor
saving several files at once triggers a single check.

Examples:
  tagcheck watch site/
  tagcheck watch -q --no-history index.html about.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWatchCmd,
	}

	addCheckFlags(cmd)
	cmd.Flags().Duration("debounce", defaultDebounce, "Quiet period before re-checking")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	if slices.Contains(args, document.StdinPath) {
		return errors.New("watch cannot read from stdin")
	}

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	if debounce <= 0 {
		return errors.New("--debounce must be positive")
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	var store pipeline.HistoryStore
	if !cfg.NoHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		store = db
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	files, err := addWatches(watcher, cfg.Paths, cfg.Ignored)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &watchSession{
		cfg:      cfg,
		out:      cmd.OutOrStdout(),
		factory:  checkPipelineFactory(cfg, validator.New(cfg.ValidatorOptions()...), store, nil, logger),
		logger:   logger,
		debounce: debounce,
		files:    files,
	}
	return s.run(ctx, watcher)
}

// addWatches watches every directory named in paths, recursively, and the
// parent directory of every file. It returns the explicitly named files.
func addWatches(w *fsnotify.Watcher, paths []string, ignore func(string) bool) (map[string]bool, error) {
	files := make(map[string]bool)

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", document.ErrNotFound, p)
			}
			return nil, err
		}

		if !info.IsDir() {
			files[filepath.Clean(p)] = true
			if err := w.Add(filepath.Dir(p)); err != nil {
				return nil, fmt.Errorf("failed to watch %s: %w", p, err)
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != p && ignore != nil && ignore(path) {
				return filepath.SkipDir
			}
			return w.Add(path)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	return files, nil
}

// watchSession holds the state of one watch run.
type watchSession struct {
	cfg      *config.Config
	out      io.Writer
	factory  func() *pipeline.Pipeline
	logger   *slog.Logger
	debounce time.Duration

	// files are the explicitly watched files. Directories watched because
	// of a file argument only report changes to those files.
	files map[string]bool
}

// run checks all paths once and then re-checks changed files until ctx
// is done.
func (s *watchSession) run(ctx context.Context, w *fsnotify.Watcher) error {
	paths, err := document.Expand(s.cfg.Paths, s.cfg.Ignored)
	if err != nil {
		return err
	}

	styler := console.NewStyler(s.out)
	fmt.Fprintln(s.out, styler.FormatInfo(fmt.Sprintf("Watching %d documents for changes. Press Ctrl+C to stop.", len(paths))))
	s.check(ctx, paths)

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if event.Has(fsnotify.Create) && s.isNewDir(event.Name) {
				if err := w.Add(event.Name); err != nil {
					s.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
				continue
			}

			if !s.relevant(event.Name) {
				continue
			}
			s.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			pending[event.Name] = true
			timer.Reset(s.debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)

			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, styler.FormatInfo(fmt.Sprintf("[%s] %d changed", time.Now().Format("15:04:05"), len(changed))))
			s.check(ctx, changed)

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			s.logger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			timer.Stop()
			fmt.Fprintln(s.out, "\nStopped watching.")
			return nil
		}
	}
}

// isNewDir reports whether name is a new, not ignored directory below a
// directory argument.
func (s *watchSession) isNewDir(name string) bool {
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return false
	}
	return !s.cfg.Ignored(name) && s.underWatchedDir(name)
}

// relevant reports whether a change to name should trigger a check.
func (s *watchSession) relevant(name string) bool {
	name = filepath.Clean(name)
	if s.files[name] {
		return true
	}
	if !document.IsHTMLFile(name) || s.cfg.Ignored(name) {
		return false
	}
	return s.underWatchedDir(name)
}

// underWatchedDir reports whether name lies below a directory argument.
func (s *watchSession) underWatchedDir(name string) bool {
	for _, p := range s.cfg.Paths {
		if s.files[filepath.Clean(p)] {
			continue
		}
		rel, err := filepath.Rel(p, name)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// check runs the pipeline over paths and prints the reports.
func (s *watchSession) check(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	bp := pipeline.NewBatchProcessor(s.factory,
		pipeline.WithConcurrency(s.cfg.BatchSize),
		pipeline.WithBatchLogger(s.logger),
	)
	reports, err := bp.ProcessBatch(ctx, paths)
	if err != nil && ctx.Err() != nil {
		return
	}

	w := report.NewSimpleWriter(s.out,
		report.WithQuiet(s.cfg.Quiet),
		report.WithVerbose(s.cfg.Verbose),
	)
	for _, r := range reports {
		if _, err := w.Write(r); err != nil {
			s.logger.Error("failed to write report", "error", err)
			return
		}
	}
	if _, err := w.WriteSummary(model.NewSummary(reports)); err != nil {
		s.logger.Error("failed to write report", "error", err)
	}
}
