// Package log builds the slog loggers used by tagcheck.
//
// Log records often carry fragments of the checked documents: tag names,
// excerpts, whole lines of minified HTML. ExcerptHandler wraps another
// slog.Handler and keeps such values readable:
//   - string values longer than a limit are cut and marked with their size
//   - control characters are escaped so every record stays on one line
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("validated", "source", path, "excerpt", excerpt)
//	slog.SetDefault(logger)
package log
