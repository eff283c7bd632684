package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/nao1215/tagcheck/internal/document"
	"github.com/nao1215/tagcheck/internal/pipeline"
	"github.com/nao1215/tagcheck/internal/validator"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tagcheck"

	// DefaultBatchSize is the number of documents checked concurrently.
	DefaultBatchSize = pipeline.DefaultConcurrency

	// DefaultExcerptRadius is the number of bytes shown on each side of a
	// problem position.
	DefaultExcerptRadius = validator.DefaultExcerptRadius

	// DefaultMaxDocumentSize is the largest document read, in bytes.
	DefaultMaxDocumentSize = document.DefaultMaxSize
)

// Config holds the options of a check run. It is populated from CLI
// flags and the project file and passed down explicitly.
type Config struct {
	// Paths are the files and directories to check. "-" reads stdin.
	Paths []string

	// BatchSize is the number of documents checked concurrently.
	BatchSize int

	// ConfigFilePath is the project file given with --config.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// Project is the loaded project file, or nil when there is none.
	Project *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// terminal still gets the plain text output.
	ReportFile string

	// ExcerptRadius is the excerpt size on each side of a problem.
	ExcerptRadius int

	// MaxDocumentSize is the largest document read, in bytes.
	MaxDocumentSize int64

	// ExtraTags are tag names accepted in addition to the known set.
	ExtraTags []string

	// Stats adds structural statistics to each report.
	Stats bool

	// Quiet hides documents without problems.
	Quiet bool

	// Verbose enables debug logging and document metadata in reports.
	Verbose bool

	// NoHistory disables the history database.
	NoHistory bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/tagcheck on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize:       DefaultBatchSize,
		ExcerptRadius:   DefaultExcerptRadius,
		MaxDocumentSize: DefaultMaxDocumentSize,
		DBDir:           XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for tagcheck.
// On Linux: ~/.local/share/tagcheck
// On macOS: ~/Library/Application Support/tagcheck
// On Windows: %LOCALAPPDATA%\tagcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tagcheck.
// On Linux: ~/.config/tagcheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return ErrNoTarget
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.ExcerptRadius < 0 {
		return ErrInvalidExcerptRadius
	}

	if c.MaxDocumentSize <= 0 {
		return ErrInvalidMaxDocumentSize
	}

	return nil
}

// ApplyProject merges the project file into c. Values already set from
// flags win; extra tags are combined.
func (c *Config) ApplyProject(f *File, radiusFromFlag bool) {
	c.Project = f
	if f == nil {
		return
	}
	if !radiusFromFlag && f.ExcerptRadius != nil {
		c.ExcerptRadius = *f.ExcerptRadius
	}
}

// ValidatorOptions returns the validator options of the project file
// plus the extra tags given on the command line.
func (c *Config) ValidatorOptions() []validator.Option {
	var opts []validator.Option
	if c.Project != nil {
		opts = c.Project.ValidatorOptions()
	}
	if len(c.ExtraTags) > 0 {
		opts = append(opts, validator.WithExtraTags(c.ExtraTags))
	}
	return opts
}

// Ignored reports whether path matches an ignore pattern of the project
// file.
func (c *Config) Ignored(path string) bool {
	return c.Project != nil && c.Project.Ignored(path)
}
