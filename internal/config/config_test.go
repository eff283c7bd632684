package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/tagcheck/internal/validator"
)

// TestNewConfig verifies the defaults of NewConfig.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BatchSize is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 10 {
			t.Errorf("expected BatchSize to be 10, got %d", cfg.BatchSize)
		}
	})

	t.Run("default ExcerptRadius is 20", func(t *testing.T) {
		t.Parallel()
		if cfg.ExcerptRadius != 20 {
			t.Errorf("expected ExcerptRadius to be 20, got %d", cfg.ExcerptRadius)
		}
	})

	t.Run("default MaxDocumentSize is 10MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDocumentSize != 10*1024*1024 {
			t.Errorf("expected MaxDocumentSize to be 10MB, got %d", cfg.MaxDocumentSize)
		}
	})

	t.Run("history is enabled in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.NoHistory {
			t.Error("expected history to be enabled")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

// TestConfigValidate tests each validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Paths = []string{"index.html"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config returns nil",
			modify:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "no paths",
			modify:  func(c *Config) { c.Paths = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "zero batch size",
			modify:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name: "json and markdown together",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative excerpt radius",
			modify:  func(c *Config) { c.ExcerptRadius = -1 },
			wantErr: ErrInvalidExcerptRadius,
		},
		{
			name:    "zero excerpt radius is allowed",
			modify:  func(c *Config) { c.ExcerptRadius = 0 },
			wantErr: nil,
		},
		{
			name:    "zero max document size",
			modify:  func(c *Config) { c.MaxDocumentSize = 0 },
			wantErr: ErrInvalidMaxDocumentSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// writeConfig writes content to a project file in a new temp dir.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestLoadConfigFile tests reading project files.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		f, err := LoadConfigFile("/nonexistent/path/.tagcheck")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if f != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads valid YAML", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `extra_tags:
  - my-widget
void_tags: [br, hr]
excerpt_radius: 30
ignore:
  - node_modules
  - "*.min.html"
`)

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := &File{
			ExtraTags:     []string{"my-widget"},
			VoidTags:      []string{"br", "hr"},
			ExcerptRadius: f.ExcerptRadius,
			Ignore:        []string{"node_modules", "*.min.html"},
		}
		if diff := cmp.Diff(want, f); diff != "" {
			t.Errorf("file mismatch (-want +got):\n%s", diff)
		}
		if f.ExcerptRadius == nil || *f.ExcerptRadius != 30 {
			t.Errorf("expected excerpt radius 30, got %v", f.ExcerptRadius)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `invalid: yaml: content: [}`)
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects malformed ignore pattern", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "ignore: [\"[\"]\n")
		if _, err := LoadConfigFile(path); !errors.Is(err, ErrInvalidIgnorePattern) {
			t.Errorf("expected ErrInvalidIgnorePattern, got %v", err)
		}
	})

	t.Run("rejects negative excerpt radius", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "excerpt_radius: -5\n")
		if _, err := LoadConfigFile(path); !errors.Is(err, ErrInvalidExcerptRadius) {
			t.Errorf("expected ErrInvalidExcerptRadius, got %v", err)
		}
	})
}

// TestFileValidatorOptions tests that tag settings reach the validator.
func TestFileValidatorOptions(t *testing.T) {
	t.Parallel()

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		f := &File{}
		if opts := f.ValidatorOptions(); len(opts) != 0 {
			t.Errorf("expected no options, got %d", len(opts))
		}
	})

	t.Run("extra tags become known", func(t *testing.T) {
		t.Parallel()

		f := &File{ExtraTags: []string{"my-widget"}}
		v := validator.New(f.ValidatorOptions()...)
		if res := v.Validate("<my-widget></my-widget>"); !res.Valid {
			t.Errorf("expected valid, got %s", res.Message)
		}
	})

	t.Run("known tags replace the default set", func(t *testing.T) {
		t.Parallel()

		f := &File{KnownTags: []string{"a", "b"}}
		v := validator.New(f.ValidatorOptions()...)
		if res := v.Validate("<div></div>"); res.Kind != validator.KindUnknownTag {
			t.Errorf("expected unknown tag, got %s", res.Kind)
		}
	})

	t.Run("config merges file and flag tags", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyProject(&File{ExtraTags: []string{"x-one"}}, false)
		cfg.ExtraTags = []string{"x-two"}

		v := validator.New(cfg.ValidatorOptions()...)
		if res := v.Validate("<x-one><x-two></x-two></x-one>"); !res.Valid {
			t.Errorf("expected valid, got %s", res.Message)
		}
	})
}

// TestApplyProject tests merging the project file into the config.
func TestApplyProject(t *testing.T) {
	t.Parallel()

	radius := 7

	t.Run("file radius applies without flag", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyProject(&File{ExcerptRadius: &radius}, false)
		if cfg.ExcerptRadius != 7 {
			t.Errorf("expected 7, got %d", cfg.ExcerptRadius)
		}
	})

	t.Run("flag radius wins", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ExcerptRadius = 3
		cfg.ApplyProject(&File{ExcerptRadius: &radius}, true)
		if cfg.ExcerptRadius != 3 {
			t.Errorf("expected 3, got %d", cfg.ExcerptRadius)
		}
	})

	t.Run("nil file", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyProject(nil, false)
		if cfg.Project != nil || cfg.Ignored("node_modules/a.html") {
			t.Error("nil project should ignore nothing")
		}
	})
}

// TestIgnored tests ignore pattern matching.
func TestIgnored(t *testing.T) {
	t.Parallel()

	f := &File{Ignore: []string{"node_modules", "*.min.html", "build/*.html"}}

	tests := []struct {
		path string
		want bool
	}{
		{"index.html", false},
		{"node_modules/pkg/index.html", true},
		{"site/node_modules/a.html", true},
		{"app.min.html", true},
		{"dist/app.min.html", true},
		{"build/out.html", true},
		{"build/sub/out.html", false},
		{"./build/out.html", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := f.Ignored(tt.path); got != tt.want {
				t.Errorf("Ignored(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "extra_tags: []\n")
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestLoad tests finding and loading in one step.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := Load("/nonexistent/.tagcheck")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "/nonexistent/.tagcheck") {
			t.Errorf("error should name the path: %v", err)
		}
	})

	t.Run("explicit file is loaded", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "extra_tags: [foo-bar]\n")
		f, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f == nil || len(f.ExtraTags) != 1 {
			t.Errorf("unexpected file %+v", f)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("unexpected XDG data dir %q", dir)
	}
	if dir := XDGConfigDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("unexpected XDG config dir %q", dir)
	}
}
