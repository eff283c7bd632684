package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/tagcheck/internal/config"
	"github.com/nao1215/tagcheck/internal/database"
	"github.com/nao1215/tagcheck/internal/model"
	"github.com/nao1215/tagcheck/internal/report"
)

// Outcomes of comparing two checks of the same source.
const (
	changeFixed     = "fixed"
	changeRegressed = "regressed"
	changeChanged   = "changed"
	changeUnchanged = "unchanged"
)

// defaultHistoryLimit is the number of checks listed without --limit.
const defaultHistoryLimit = 20

// errCheckNotFound is returned by --id for an unknown check.
var errCheckNotFound = errors.New("check not found")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source]",
		Short: "List and compare past checks",
		Long: `History shows checks recorded by 'tagcheck check'.

Without flags it lists the most recent checks, optionally for one source.

Examples:
  # Latest checks of every document
  tagcheck history

  # All recorded checks of one document
  tagcheck history -n 0 site/index.html

  # Compare the last two checks of a document
  tagcheck history --compare site/index.html

  # Show one stored report in full
  tagcheck history --id 3f0c2c9e-...

  # List checked documents
  tagcheck history -L

  # Delete checks older than 30 days
  tagcheck history --prune 720h`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-sources", "L", false, "List every checked source")
	cmd.Flags().StringP("id", "i", "", "Show the stored report with this ID")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of checks listed (0 for all)")
	cmd.Flags().Bool("compare", false, "Compare the last two checks of the source")
	cmd.Flags().Duration("prune", 0, "Delete checks older than this duration")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// historyOptions are the parsed flags of the history command.
type historyOptions struct {
	listSources bool
	id          string
	limit       int
	compare     bool
	prune       time.Duration
	json        bool
	dbDir       string
}

// parseHistoryFlags reads the history flags.
func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	var (
		opts historyOptions
		err  error
	)
	flags := cmd.Flags()

	if opts.listSources, err = flags.GetBool("list-sources"); err != nil {
		return opts, err
	}
	if opts.id, err = flags.GetString("id"); err != nil {
		return opts, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.compare, err = flags.GetBool("compare"); err != nil {
		return opts, err
	}
	if opts.prune, err = flags.GetDuration("prune"); err != nil {
		return opts, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return opts, err
	}
	return opts, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	var source string
	if len(args) > 0 {
		source = args[0]
	}
	if opts.compare && source == "" {
		return errors.New("--compare requires a source")
	}
	if opts.prune < 0 {
		return errors.New("--prune must be positive")
	}

	out := cmd.OutOrStdout()

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No check history yet. Use 'tagcheck check' to record checks.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	jw := report.NewJSONWriter(out, report.WithPrettyPrint())

	switch {
	case opts.prune > 0:
		return pruneHistory(ctx, out, db, opts.prune)
	case opts.listSources:
		return listSources(ctx, out, jw, db, opts.json)
	case opts.id != "":
		return showCheck(ctx, out, jw, db, opts.id, opts.json)
	case opts.compare:
		return compareLatest(ctx, out, jw, db, source, opts.json)
	default:
		return listHistory(ctx, out, jw, db, source, opts.limit, opts.json)
	}
}

// pruneHistory deletes checks older than age.
func pruneHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, age time.Duration) error {
	n, err := db.PruneBefore(ctx, time.Now().Add(-age))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Pruned %d %s older than %s\n", n, pluralChecks(int(n)), age)
	return nil
}

// listSources prints every checked source.
func listSources(ctx context.Context, out io.Writer, jw *report.JSONWriter, db *database.HistoryDB, asJSON bool) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		if sources == nil {
			sources = []string{}
		}
		_, err := jw.WriteValue(sources)
		return err
	}

	if len(sources) == 0 {
		fmt.Fprintln(out, "No documents checked yet.")
		return nil
	}

	fmt.Fprintf(out, "Checked documents (%d):\n\n", len(sources))
	for _, s := range sources {
		fmt.Fprintf(out, "  %s\n", s)
	}
	return nil
}

// showCheck prints one stored report.
func showCheck(ctx context.Context, out io.Writer, jw *report.JSONWriter, db *database.HistoryDB, id string, asJSON bool) error {
	check, err := db.GetCheckByID(ctx, id)
	if err != nil {
		return err
	}
	if check == nil {
		return fmt.Errorf("%w: %s", errCheckNotFound, id)
	}

	if asJSON {
		_, err := jw.WriteValue(check)
		return err
	}

	fmt.Fprintf(out, "Check %s (%s)\n", check.ID, check.DateChecked.Local().Format("2006-01-02 15:04:05"))
	_, err = report.NewSimpleWriter(out, report.WithVerbose(true)).Write(check)
	return err
}

// listHistory prints the most recent checks.
func listHistory(
	ctx context.Context,
	out io.Writer,
	jw *report.JSONWriter,
	db *database.HistoryDB,
	source string,
	limit int,
	asJSON bool,
) error {
	records, err := db.ListChecks(ctx, source, limit)
	if err != nil {
		return fmt.Errorf("failed to get check history: %w", err)
	}

	if asJSON {
		if records == nil {
			records = []database.CheckRecord{}
		}
		_, err := jw.WriteValue(records)
		return err
	}

	if len(records) == 0 {
		if source != "" {
			fmt.Fprintf(out, "No check history found for %s\n", source)
		} else {
			fmt.Fprintln(out, "No check history found.")
		}
		return nil
	}

	title := "Recent checks"
	if source != "" {
		title = "Check history for " + source
	}
	fmt.Fprintf(out, "%s (%d %s):\n\n", title, len(records), pluralChecks(len(records)))
	fmt.Fprintf(out, "  %-36s  %-19s  %-8s  %-8s  %s\n", "ID", "Date", "Status", "Where", "Source")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 96))

	for _, r := range records {
		fmt.Fprintf(out, "  %-36s  %-19s  %-8s  %-8s  %s\n",
			r.ID,
			r.CheckedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status(),
			recordLocation(r),
			r.Source,
		)
	}

	fmt.Fprintln(out, "\nUse 'tagcheck history --id <id>' to show a stored report.")
	return nil
}

// comparison is the outcome of compareLatest.
type comparison struct {
	Source   string               `json:"source"`
	Change   string               `json:"change"`
	Previous database.CheckRecord `json:"previous"`
	Current  database.CheckRecord `json:"current"`
}

// compareLatest compares the last two checks of source.
func compareLatest(ctx context.Context, out io.Writer, jw *report.JSONWriter, db *database.HistoryDB, source string, asJSON bool) error {
	records, err := db.ListChecks(ctx, source, 2)
	if err != nil {
		return err
	}
	if len(records) < 2 {
		fmt.Fprintf(out, "Need at least two checks of %s to compare (found %d).\n", source, len(records))
		return nil
	}

	c := comparison{
		Source:   source,
		Current:  records[0],
		Previous: records[1],
		Change:   compareChecks(records[1], records[0]),
	}

	if asJSON {
		_, err := jw.WriteValue(c)
		return err
	}

	fmt.Fprintf(out, "Comparing checks of %s\n\n", source)
	for _, row := range []struct {
		label string
		r     database.CheckRecord
	}{{"Previous", c.Previous}, {"Current", c.Current}} {
		fmt.Fprintf(out, "  %-8s  %s  %-7s  %s\n",
			row.label,
			row.r.CheckedAt.Local().Format("2006-01-02 15:04:05"),
			row.r.Status(),
			recordDetail(row.r),
		)
	}
	fmt.Fprintf(out, "\nResult: %s\n", c.Change)
	return nil
}

// compareChecks classifies the change from prev to cur.
func compareChecks(prev, cur database.CheckRecord) string {
	prevOK := prev.Status() == model.StatusValid
	curOK := cur.Status() == model.StatusValid

	switch {
	case !prevOK && curOK:
		return changeFixed
	case prevOK && !curOK:
		return changeRegressed
	case prev.Status() != cur.Status() || prev.Kind != cur.Kind || prev.Position != cur.Position:
		return changeChanged
	default:
		return changeUnchanged
	}
}

// recordLocation returns "line:col" of a record, or "-".
func recordLocation(r database.CheckRecord) string {
	if r.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", r.Line, r.Column)
}

// recordDetail describes the problem of a record in one line.
func recordDetail(r database.CheckRecord) string {
	switch r.Status() {
	case model.StatusFailed:
		return r.Error
	case model.StatusValid:
		return ""
	default:
		return fmt.Sprintf("%s at %s", r.Kind.Title(), recordLocation(r))
	}
}

func pluralChecks(n int) string {
	if n == 1 {
		return "check"
	}
	return "checks"
}
