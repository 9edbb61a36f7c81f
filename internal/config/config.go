package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sjhan/stagesync/internal/layout"
)

// Config is the complete, immutable stagesync configuration. It is
// constructed once at startup and passed into the sync engine; nothing in
// the engine reads ambient global state.
type Config struct {
	// Root is the project root all stage folders and destination paths are
	// resolved against. Always absolute.
	Root string `yaml:"-"`

	// Stages are the staging folder names scanned under Root, in scan order.
	Stages []string `yaml:"stages"`

	// Areas is the area-folder to destination mapping table, in processing
	// order.
	Areas []layout.AreaMapping `yaml:"areas"`

	// Exclude lists extra entry names to skip during copying, in addition
	// to the built-in hidden-file and dependency-cache exclusions.
	Exclude []string `yaml:"exclude"`
}

// Default returns the compiled-in configuration anchored at root. This is
// the configuration used when no override file is given, matching the
// zero-configuration pre-commit invocation.
func Default(root string) *Config {
	// Cloned so mutating a Config never aliases the package-level tables.
	return &Config{
		Root:   root,
		Stages: slices.Clone(layout.DefaultStages),
		Areas:  slices.Clone(layout.DefaultAreas),
	}
}

// Load reads an optional override file and merges it over the defaults.
// Non-empty stages/areas lists replace the built-in tables; exclude entries
// are additive.
func Load(configPath, root string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default(root)
	if len(override.Stages) > 0 {
		cfg.Stages = override.Stages
	}
	if len(override.Areas) > 0 {
		cfg.Areas = override.Areas
	}
	cfg.Exclude = append(cfg.Exclude, override.Exclude...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if !filepath.IsAbs(c.Root) {
		return fmt.Errorf("root must be an absolute path: %s", c.Root)
	}

	if len(c.Stages) == 0 {
		return fmt.Errorf("at least one stage folder is required")
	}
	for _, stage := range c.Stages {
		if err := validateName(stage); err != nil {
			return fmt.Errorf("invalid stage folder %q: %w", stage, err)
		}
	}

	if len(c.Areas) == 0 {
		return fmt.Errorf("at least one area mapping is required")
	}
	for _, m := range c.Areas {
		if err := validateName(m.Area); err != nil {
			return fmt.Errorf("invalid area name %q: %w", m.Area, err)
		}
		if err := validateDest(m.Dest); err != nil {
			return fmt.Errorf("invalid destination %q for area %q: %w", m.Dest, m.Area, err)
		}
	}

	for _, name := range c.Exclude {
		if err := validateName(name); err != nil {
			return fmt.Errorf("invalid exclude entry %q: %w", name, err)
		}
	}

	return nil
}

// validateName checks a single folder/entry name (no path components).
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name must not contain path separators")
	}
	return nil
}

// validateDest checks a destination path: relative, slash-separated, and not
// escaping the project root.
func validateDest(dest string) error {
	if dest == "" {
		return fmt.Errorf("destination must not be empty")
	}
	if strings.HasPrefix(dest, "/") || filepath.IsAbs(dest) {
		return fmt.Errorf("destination must be relative to the project root")
	}
	cleaned := path.Clean(dest)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("destination must not escape the project root")
	}
	return nil
}

// StageDir returns the absolute path of a stage folder.
func (c *Config) StageDir(stage string) string {
	return filepath.Join(c.Root, stage)
}

// AreaDir returns the absolute source path of an area folder within a stage.
func (c *Config) AreaDir(stage string, m layout.AreaMapping) string {
	return filepath.Join(c.Root, stage, m.Area)
}

// DestDir returns the absolute destination path for an area mapping.
func (c *Config) DestDir(m layout.AreaMapping) string {
	return filepath.Join(c.Root, filepath.FromSlash(m.Dest))
}

// DestRoots returns the unique top-level destination directories of the
// mapping table, in table order (e.g. "pages", "api").
func (c *Config) DestRoots() []string {
	seen := make(map[string]bool)
	var roots []string
	for _, m := range c.Areas {
		root, _, _ := strings.Cut(path.Clean(m.Dest), "/")
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots
}
