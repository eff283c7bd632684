package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/tagcheck/internal/log"
)

// Log formats accepted by --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// Exit codes.
const (
	exitError   = 1
	exitInvalid = 2
)

// ErrInvalidDocuments is returned by check when at least one document has
// a tag balance problem. It maps to exit code 2.
var ErrInvalidDocuments = errors.New("invalid documents found")

// NewRootCmd creates the root command for tagcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tagcheck",
		Short: "Check HTML documents for tag balance problems",
		Long: `tagcheck reports the first tag balance problem of each HTML document:
malformed chevrons, unknown tag names, closing tags without an opener,
overlapping closures and tags left open at the end of the document.

Results are stored in a local history database so later runs can be
listed and compared.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", logFormatText, "Log format on stderr (text or json)")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the process exit code.
func run(args []string) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)

	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidDocuments):
		return exitInvalid
	default:
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger creates the stderr logger selected by --verbose and --log-format.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}

	verbose := getVerboseFlag(cmd)
	switch format {
	case logFormatText:
		return log.NewLogger(cmd.ErrOrStderr(), verbose), nil
	case logFormatJSON:
		return log.NewJSONLogger(cmd.ErrOrStderr(), verbose), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, logFormatText, logFormatJSON)
	}
}
