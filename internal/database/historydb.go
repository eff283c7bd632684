package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/tagcheck/internal/model"
	"github.com/nao1215/tagcheck/internal/validator"
)

// FileName is the database file name inside the database directory.
const FileName = "tagcheck.db"

// storedTimeFormat sorts lexicographically in chronological order.
const storedTimeFormat = "2006-01-02 15:04:05.000000000"

// HistoryDB stores the outcome of past checks.
type HistoryDB struct {
	db *sql.DB

	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// CheckRecord is the listing view of a stored check.
type CheckRecord struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Hash      string         `json:"hash,omitempty"`
	CheckedAt time.Time      `json:"checked_at"`
	Valid     bool           `json:"valid"`
	Kind      validator.Kind `json:"kind"`
	Message   string         `json:"message,omitempty"`
	Position  int            `json:"position"`
	Line      int            `json:"line,omitempty"`
	Column    int            `json:"column,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Status returns the model status string of the record.
func (r CheckRecord) Status() string {
	switch {
	case r.Error != "":
		return model.StatusFailed
	case r.Valid:
		return model.StatusValid
	default:
		return model.StatusInvalid
	}
}

// Open opens or creates a HistoryDB in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	var dsn string
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, ErrDatabaseNotFound)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checks (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		hash TEXT,
		checked_at TEXT NOT NULL,
		valid INTEGER NOT NULL,
		kind TEXT NOT NULL,
		message TEXT,
		position INTEGER NOT NULL,
		line INTEGER,
		col INTEGER,
		error TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_checks_source ON checks(source);
	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
	CREATE INDEX IF NOT EXISTS idx_checks_hash ON checks(hash);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCheck stores report, replacing an earlier row with the same ID.
func (h *HistoryDB) SaveCheck(ctx context.Context, report *model.CheckReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO checks
		(id, source, hash, checked_at, valid, kind, message, position, line, col, error, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = h.db.ExecContext(ctx, query,
		report.ID,
		report.Source,
		report.Hash,
		formatTimestamp(report.DateChecked),
		report.Valid(),
		report.Result.Kind.String(),
		report.Result.Message,
		report.Result.Position,
		report.Line,
		report.Column,
		report.ErrorMessage,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save check: %w", err)
	}

	return nil
}

// GetCheckByID returns the stored report with the given ID,
// or nil if there is none.
func (h *HistoryDB) GetCheckByID(ctx context.Context, id string) (*model.CheckReport, error) {
	return h.queryReport(ctx, `SELECT report_json FROM checks WHERE id = ?`, id)
}

// LatestCheck returns the most recent report for source, or nil if source
// was never checked.
func (h *HistoryDB) LatestCheck(ctx context.Context, source string) (*model.CheckReport, error) {
	query := `
	SELECT report_json FROM checks
	WHERE source = ?
	ORDER BY checked_at DESC
	LIMIT 1
	`
	return h.queryReport(ctx, query, source)
}

// queryReport runs a single-row query selecting report_json.
func (h *HistoryDB) queryReport(ctx context.Context, query string, args ...any) (*model.CheckReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check: %w", err)
	}

	var report model.CheckReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListChecks returns stored checks, newest first. An empty source lists
// every source; limit <= 0 returns all rows.
func (h *HistoryDB) ListChecks(ctx context.Context, source string, limit int) ([]CheckRecord, error) {
	query := `
	SELECT id, source, hash, checked_at, valid, kind, message, position, line, col, error
	FROM checks
	WHERE 1=1
	`
	args := make([]any, 0)

	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	query += " ORDER BY checked_at DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var records []CheckRecord
	for rows.Next() {
		var (
			rec       CheckRecord
			hash      sql.NullString
			checkedAt string
			kind      string
			message   sql.NullString
			line      sql.NullInt64
			col       sql.NullInt64
			errText   sql.NullString
		)

		err := rows.Scan(
			&rec.ID,
			&rec.Source,
			&hash,
			&checkedAt,
			&rec.Valid,
			&kind,
			&message,
			&rec.Position,
			&line,
			&col,
			&errText,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}

		rec.Hash = hash.String
		rec.CheckedAt = parseTimestamp(checkedAt)
		rec.Message = message.String
		rec.Line = int(line.Int64)
		rec.Column = int(col.Int64)
		rec.Error = errText.String
		if k, err := validator.ParseKind(kind); err == nil {
			rec.Kind = k
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListSources returns every checked source, sorted.
func (h *HistoryDB) ListSources(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT source FROM checks
	ORDER BY source
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// PruneBefore deletes checks older than t and returns how many were removed.
func (h *HistoryDB) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx, `DELETE FROM checks WHERE checked_at < ?`, formatTimestamp(t))
	if err != nil {
		return 0, fmt.Errorf("failed to prune checks: %w", err)
	}
	return res.RowsAffected()
}

// formatTimestamp renders t in UTC using storedTimeFormat.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimeFormat)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimeFormat,
	"2006-01-02 15:04:05", // SQLite default datetime format
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp parses s with the known formats, returning the zero time
// when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
