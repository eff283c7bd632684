package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/tagcheck/internal/validator"
)

// DefaultConfigFile is the default project file name.
const DefaultConfigFile = ".tagcheck"

// xdgConfigFile is the project file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// File is the content of a project file.
type File struct {
	// KnownTags replaces the built-in tag set when non-empty.
	KnownTags []string `yaml:"known_tags,omitempty"`

	// ExtraTags are accepted in addition to the known set.
	ExtraTags []string `yaml:"extra_tags,omitempty"`

	// VoidTags replaces the built-in void tag set when non-empty.
	VoidTags []string `yaml:"void_tags,omitempty"`

	// ExcerptRadius overrides the default excerpt radius.
	ExcerptRadius *int `yaml:"excerpt_radius,omitempty"`

	// Ignore lists glob patterns. A path is skipped when the pattern
	// matches the whole path or any of its elements.
	Ignore []string `yaml:"ignore,omitempty"`
}

// LoadConfigFile loads a project file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &f, nil
}

// validate checks the ignore patterns and the excerpt radius.
func (f *File) validate() error {
	for _, pattern := range f.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidIgnorePattern, pattern, err)
		}
	}
	if f.ExcerptRadius != nil && *f.ExcerptRadius < 0 {
		return ErrInvalidExcerptRadius
	}
	return nil
}

// ValidatorOptions converts the tag settings to validator options.
func (f *File) ValidatorOptions() []validator.Option {
	var opts []validator.Option
	if len(f.KnownTags) > 0 {
		opts = append(opts, validator.WithKnownTags(f.KnownTags))
	}
	if len(f.ExtraTags) > 0 {
		opts = append(opts, validator.WithExtraTags(f.ExtraTags))
	}
	if len(f.VoidTags) > 0 {
		opts = append(opts, validator.WithVoidTags(f.VoidTags))
	}
	return opts
}

// Ignored reports whether path matches one of the ignore patterns,
// either as a whole or through one of its elements.
func (f *File) Ignored(path string) bool {
	if len(f.Ignore) == 0 {
		return false
	}

	clean := filepath.ToSlash(filepath.Clean(path))
	elems := strings.Split(clean, "/")
	for _, pattern := range f.Ignore {
		pattern = filepath.ToSlash(pattern)
		if ok, _ := filepath.Match(pattern, clean); ok {
			return true
		}
		for _, elem := range elems {
			if ok, _ := filepath.Match(pattern, elem); ok {
				return true
			}
		}
	}
	return false
}

// FindConfigFile searches for the project file in the following order:
//  1. configPath, if given
//  2. .tagcheck in the current directory
//  3. config.yaml in XDGConfigDir
//  4. .tagcheck in the user's home directory
//
// Returns the path found, or "" if there is none.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// Load finds and loads the project file. A missing file is not an error
// unless configPath was given explicitly.
func Load(configPath string) (*File, error) {
	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, fmt.Errorf("%s: %w", configPath, ErrConfigNotFound)
		}
		return nil, nil //nolint:nilnil // no project file is fine
	}

	f, err := LoadConfigFile(path)
	if errors.Is(err, ErrConfigNotFound) && configPath == "" {
		return nil, nil //nolint:nilnil // removed between find and load
	}
	return f, err
}
