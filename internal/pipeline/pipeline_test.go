package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/nao1215/tagcheck/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.CheckReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.CheckReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "step-1"}, &mockStep{name: "step-2"}, &mockStep{name: "step-3"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddStep(&mockStep{name: "second"})
		p.AddStep(&mockStep{name: "third"})

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *model.CheckReport) error {
					order = append(order, name)
					return nil
				},
			}
		}

		p := New()
		p.AddSteps(record("step-1"), record("step-2"))

		report := model.NewCheckReport("index.html")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(order, ",") != "step-1,step-2" {
			t.Errorf("unexpected order %v", order)
		}
		if report.Failed() {
			t.Error("report should not be failed")
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("step 1 failed")
		step1 := &mockStep{
			name:   "step-1",
			doFunc: func(_ context.Context, _ *model.CheckReport) error { return stepErr },
		}
		step2 := &mockStep{name: "step-2"}

		p := New()
		p.AddSteps(step1, step2)

		report := model.NewCheckReport("index.html")
		err := p.Execute(context.Background(), report)

		if !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
		if step2.callCount != 0 {
			t.Error("step 2 should not have been called")
		}
		if !errors.Is(report.Error, stepErr) || report.ErrorMessage != "step 1 failed" {
			t.Errorf("error not recorded: %v / %q", report.Error, report.ErrorMessage)
		}
		if report.Status() != model.StatusFailed {
			t.Errorf("Status() = %s, want failed", report.Status())
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		step1 := &mockStep{
			name:   "step-1",
			doFunc: func(_ context.Context, _ *model.CheckReport) error { return errors.New("boom") },
		}
		step2 := &mockStep{name: "step-2"}

		p := New(WithContinueOnError(true))
		p.AddSteps(step1, step2)

		report := model.NewCheckReport("index.html")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if step2.callCount != 1 {
			t.Error("step 2 should have been called")
		}
		if !report.Failed() {
			t.Error("error should still be recorded")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		report := model.NewCheckReport("index.html")
		err := p.Execute(ctx, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not run after cancellation")
		}
		if !errors.Is(report.Error, context.Canceled) {
			t.Error("cancellation should be recorded in the report")
		}
	})
}

// TestPipelineLogger tests logging through a custom logger.
func TestPipelineLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := New(WithLogger(logger))
	p.AddStep(&mockStep{
		name:   "broken",
		doFunc: func(_ context.Context, _ *model.CheckReport) error { return errors.New("nope") },
	})
	_ = p.Execute(context.Background(), model.NewCheckReport("index.html")) //nolint:errcheck // asserting on logs

	out := buf.String()
	for _, want := range []string{"executing step", "step failed", "step=broken", "source=index.html"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
