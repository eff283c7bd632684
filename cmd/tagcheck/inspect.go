package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/tagcheck/internal/config"
	"github.com/nao1215/tagcheck/internal/document"
	"github.com/nao1215/tagcheck/internal/inspect"
	"github.com/nao1215/tagcheck/internal/parser"
	"github.com/nao1215/tagcheck/internal/report"
)

// errConflictingViews is returned when more than one inspect view is requested.
var errConflictingViews = errors.New("--tree, --tags, --text and --stats cannot be used together")

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Show the element structure of a document",
		Long: `Inspect parses a document into an element tree and prints one view of it.

The parser is tolerant: it never fails on unbalanced markup, so inspect
works on documents that check reports as invalid.

Views:
  --stats        element, text node and link counts (default)
  --tree         the element tree, two spaces per level
  --tags         every distinct tag name
  --text <tag>   the text directly inside each <tag> element

Examples:
  tagcheck inspect --tree index.html
  tagcheck inspect --text h1 index.html
  cat page.html | tagcheck inspect --tags -`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCmd,
	}

	cmd.Flags().Bool("tree", false, "Print the element tree")
	cmd.Flags().Bool("tags", false, "List distinct tag names")
	cmd.Flags().String("text", "", "Print the text inside each element with this tag")
	cmd.Flags().Bool("stats", false, "Print structural statistics")
	cmd.Flags().BoolP("json", "j", false, "Output statistics as JSON")
	cmd.Flags().Int64("max-size", config.DefaultMaxDocumentSize, "Largest document read, in bytes")

	return cmd
}

// inspectOptions are the parsed flags of the inspect command.
type inspectOptions struct {
	tree    bool
	tags    bool
	textTag string
	stats   bool
	json    bool
	maxSize int64
}

// parseInspectFlags reads and checks the view flags.
func parseInspectFlags(cmd *cobra.Command) (inspectOptions, error) {
	var (
		opts inspectOptions
		err  error
	)
	flags := cmd.Flags()

	if opts.tree, err = flags.GetBool("tree"); err != nil {
		return opts, err
	}
	if opts.tags, err = flags.GetBool("tags"); err != nil {
		return opts, err
	}
	if opts.textTag, err = flags.GetString("text"); err != nil {
		return opts, err
	}
	if opts.stats, err = flags.GetBool("stats"); err != nil {
		return opts, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.maxSize, err = flags.GetInt64("max-size"); err != nil {
		return opts, err
	}

	views := 0
	for _, on := range []bool{opts.tree, opts.tags, opts.textTag != "", opts.stats} {
		if on {
			views++
		}
	}
	if views > 1 {
		return opts, errConflictingViews
	}
	if views == 0 {
		opts.stats = true
	}
	return opts, nil
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseInspectFlags(cmd)
	if err != nil {
		return err
	}

	var doc *document.Document
	if args[0] == document.StdinPath {
		doc, err = document.LoadReader(cmd.Context(), document.StdinSource, cmd.InOrStdin(), opts.maxSize)
	} else {
		doc, err = document.Load(cmd.Context(), args[0], opts.maxSize)
	}
	if err != nil {
		return err
	}

	root, err := parser.ParseString(doc.Content)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", doc.Source, err)
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.tree:
		return inspect.WriteTree(out, root)
	case opts.tags:
		return writeLines(out, inspect.Tags(root))
	case opts.textTag != "":
		return writeLines(out, inspect.TextByTag(root, opts.textTag))
	default:
		return writeStats(out, doc, inspect.Collect(doc.Content, root), opts.json)
	}
}

// writeLines prints one item per line.
func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeStats prints stats as aligned text or JSON.
func writeStats(w io.Writer, doc *document.Document, stats inspect.Stats, asJSON bool) error {
	if asJSON {
		_, err := report.NewJSONWriter(w, report.WithPrettyPrint()).WriteValue(struct {
			Source   string `json:"source"`
			Encoding string `json:"encoding"`
			Size     int64  `json:"size"`
			inspect.Stats
		}{doc.Source, doc.Encoding, doc.Size, stats})
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Document:       %s (%s, %d bytes)\n", doc.Source, doc.Encoding, doc.Size)
	fmt.Fprintf(&sb, "Elements:       %d\n", stats.Elements)
	fmt.Fprintf(&sb, "Distinct tags:  %d\n", stats.DistinctTags)
	fmt.Fprintf(&sb, "Text nodes:     %d\n", stats.TextNodes)
	fmt.Fprintf(&sb, "Max depth:      %d\n", stats.MaxDepth)
	fmt.Fprintf(&sb, "External links: %d\n", stats.ExternalLinks)

	if len(stats.TagCounts) > 0 {
		sb.WriteString("\nTag counts:\n")
		for _, tag := range slices.Sorted(maps.Keys(stats.TagCounts)) {
			fmt.Fprintf(&sb, "  %-12s %d\n", tag, stats.TagCounts[tag])
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
