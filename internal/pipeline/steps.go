package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/tagcheck/internal/document"
	"github.com/nao1215/tagcheck/internal/inspect"
	"github.com/nao1215/tagcheck/internal/model"
	"github.com/nao1215/tagcheck/internal/parser"
	"github.com/nao1215/tagcheck/internal/validator"
)

// ErrNoDocument is returned by steps that need a loaded document when the
// load step has not run or has failed.
var ErrNoDocument = errors.New("no document loaded")

// HistoryStore persists finished checks.
// It is satisfied by *database.HistoryDB.
type HistoryStore interface {
	SaveCheck(ctx context.Context, report *model.CheckReport) error
}

// LoadStep reads the document named by report.Source.
type LoadStep struct {
	maxSize int64
	stdin   io.Reader
	logger  *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadMaxSize sets the maximum document size. Zero disables the limit.
func WithLoadMaxSize(size int64) LoadStepOption {
	return func(s *LoadStep) {
		s.maxSize = size
	}
}

// WithLoadStdin sets the reader used for the "-" source.
func WithLoadStdin(r io.Reader) LoadStepOption {
	return func(s *LoadStep) {
		s.stdin = r
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new load step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		maxSize: document.DefaultMaxSize,
		stdin:   os.Stdin,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do loads the document and attaches it to the report.
func (s *LoadStep) Do(ctx context.Context, report *model.CheckReport) error {
	var (
		doc *document.Document
		err error
	)
	if report.Source == document.StdinPath || report.Source == document.StdinSource {
		doc, err = document.LoadReader(ctx, document.StdinSource, s.stdin, s.maxSize)
		report.Source = document.StdinSource
	} else {
		doc, err = document.Load(ctx, report.Source, s.maxSize)
	}
	if err != nil {
		return err
	}

	report.SetDocument(doc)
	s.logger.Debug("document loaded",
		"source", doc.Source,
		"size", doc.Size,
		"encoding", doc.Encoding,
	)
	return nil
}

// ValidateStep runs the tag balance validator on the loaded document.
type ValidateStep struct {
	validator *validator.Validator
	radius    int
	logger    *slog.Logger
}

// ValidateStepOption configures a ValidateStep.
type ValidateStepOption func(*ValidateStep)

// WithExcerptRadius sets how many bytes of context surround a problem.
func WithExcerptRadius(radius int) ValidateStepOption {
	return func(s *ValidateStep) {
		s.radius = radius
	}
}

// WithValidateLogger sets a custom logger for the validate step.
func WithValidateLogger(logger *slog.Logger) ValidateStepOption {
	return func(s *ValidateStep) {
		s.logger = logger
	}
}

// NewValidateStep creates a validate step using v.
// A nil v uses a validator with the default tag lists.
func NewValidateStep(v *validator.Validator, opts ...ValidateStepOption) *ValidateStep {
	if v == nil {
		v = validator.New()
	}
	s := &ValidateStep{
		validator: v,
		radius:    validator.DefaultExcerptRadius,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do validates the document and records the result.
// An invalid document is not a step failure.
func (s *ValidateStep) Do(_ context.Context, report *model.CheckReport) error {
	if report.Document == nil {
		return ErrNoDocument
	}

	content := report.Document.Content
	res := s.validator.Validate(content)
	report.SetResult(content, res, s.radius)

	if !res.Valid {
		s.logger.Debug("tag balance problem",
			"source", report.Source,
			"kind", res.Kind.String(),
			"position", res.Position,
			"excerpt", report.Excerpt,
		)
	}
	return nil
}

// InspectStep collects structural statistics of the document.
type InspectStep struct{}

// NewInspectStep creates a new inspect step.
func NewInspectStep() *InspectStep {
	return &InspectStep{}
}

// Name returns the step name.
func (s *InspectStep) Name() string {
	return "inspect"
}

// Do parses the document and stores its statistics in the report.
func (s *InspectStep) Do(_ context.Context, report *model.CheckReport) error {
	if report.Document == nil {
		return ErrNoDocument
	}

	root, err := parser.ParseString(report.Document.Content)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", report.Source, err)
	}
	stats := inspect.Collect(report.Document.Content, root)
	report.Stats = &stats
	return nil
}

// HistoryStep saves the report in a HistoryStore.
type HistoryStep struct {
	store HistoryStore
}

// NewHistoryStep creates a step that saves reports to store.
func NewHistoryStep(store HistoryStore) *HistoryStep {
	return &HistoryStep{store: store}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do saves the report.
func (s *HistoryStep) Do(ctx context.Context, report *model.CheckReport) error {
	if err := s.store.SaveCheck(ctx, report); err != nil {
		return fmt.Errorf("failed to save check history: %w", err)
	}
	return nil
}

// DefaultPipelineConfig holds the settings DefaultPipeline builds steps from.
type DefaultPipelineConfig struct {
	// MaxSize is the maximum document size in bytes.
	MaxSize int64

	// ExcerptRadius is the context size around a problem position.
	ExcerptRadius int

	// Validator checks the documents. Nil uses the default tag lists.
	Validator *validator.Validator

	// Inspect adds the inspect step.
	Inspect bool

	// History adds the history step when non-nil.
	History HistoryStore

	// Stdin is read for the "-" source.
	Stdin io.Reader

	// Logger is passed to the steps.
	Logger *slog.Logger
}

// DefaultPipelineOption configures DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMaxSize sets the maximum document size.
func WithPipelineMaxSize(size int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxSize = size
	}
}

// WithPipelineExcerptRadius sets the excerpt radius.
func WithPipelineExcerptRadius(radius int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ExcerptRadius = radius
	}
}

// WithPipelineValidator sets the validator.
func WithPipelineValidator(v *validator.Validator) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Validator = v
	}
}

// WithPipelineInspect enables structural statistics.
func WithPipelineInspect(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Inspect = enabled
	}
}

// WithPipelineHistory enables saving reports to store.
func WithPipelineHistory(store HistoryStore) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.History = store
	}
}

// WithPipelineStdin sets the reader for the "-" source.
func WithPipelineStdin(r io.Reader) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Stdin = r
	}
}

// WithPipelineLogger sets the logger passed to the steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the check pipeline: load, validate, then
// optionally inspect and history.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		MaxSize:       document.DefaultMaxSize,
		ExcerptRadius: validator.DefaultExcerptRadius,
		Stdin:         os.Stdin,
		Logger:        slog.Default(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewLoadStep(
			WithLoadMaxSize(cfg.MaxSize),
			WithLoadStdin(cfg.Stdin),
			WithLoadLogger(cfg.Logger),
		),
		NewValidateStep(cfg.Validator,
			WithExcerptRadius(cfg.ExcerptRadius),
			WithValidateLogger(cfg.Logger),
		),
	)
	if cfg.Inspect {
		p.AddStep(NewInspectStep())
	}
	if cfg.History != nil {
		p.AddStep(NewHistoryStep(cfg.History))
	}

	return p
}
