// Package config loads the scanner configuration profile from a yaml
// file (.viewcheck.yml by default) and resolves it into the values the
// engine and scanner consume.
//
// A missing or unreadable profile falls back to an all-default
// configuration: partial results beat a hard stop for a pre-commit tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viewcheck/viewcheck/engine"
)

// DefaultFile is the conventional profile filename.
const DefaultFile = ".viewcheck.yml"

// Profile is the on-disk configuration shape.
type Profile struct {
	// TemplateRoot is the directory scanned for templates, relative to
	// the profile location. Default "app/views", falling back to ".".
	TemplateRoot string `yaml:"template_root"`

	// Extensions lists template file extensions to scan.
	// Default: .html.erb, .erb, .html.
	Extensions []string `yaml:"extensions"`

	// Rules maps rule id to enabled state.
	Rules map[string]bool `yaml:"rules"`

	// Ignore lists rules suppressed with a reason.
	Ignore []engine.Ignore `yaml:"ignore"`

	// StateFile is the change-tracker state location.
	// Default: .viewcheck-state.json.
	StateFile string `yaml:"state_file"`

	// HistoryFile is the sqlite scan-history location. Empty disables
	// history recording.
	HistoryFile string `yaml:"history_file"`

	// WatchInterval is the poll interval for watch mode.
	WatchInterval Duration `yaml:"watch_interval"`
}

// Duration wraps time.Duration so profiles can write "2s" or "500ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(v)
	return nil
}

// defaults fills unset fields.
func (p *Profile) defaults() {
	if p.TemplateRoot == "" {
		if info, err := os.Stat("app/views"); err == nil && info.IsDir() {
			p.TemplateRoot = "app/views"
		} else {
			p.TemplateRoot = "."
		}
	}
	if len(p.Extensions) == 0 {
		p.Extensions = []string{".html.erb", ".erb", ".html"}
	}
	if p.StateFile == "" {
		p.StateFile = ".viewcheck-state.json"
	}
	if p.WatchInterval <= 0 {
		p.WatchInterval = Duration(2 * time.Second)
	}
}

// Load reads a profile from path. Any failure (missing file, bad yaml)
// returns the all-default profile and the error for optional logging;
// callers are expected to continue.
func Load(path string) (*Profile, error) {
	p := &Profile{}
	defer p.defaults()

	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		*p = Profile{}
		return p, fmt.Errorf("parse config %s: %w", path, err)
	}
	return p, nil
}

// Engine resolves the profile into the engine's rule configuration.
func (p *Profile) Engine() *engine.Config {
	return &engine.Config{Rules: p.Rules, Ignores: p.Ignore}
}

// AbsTemplateRoot resolves the template root against the current
// directory.
func (p *Profile) AbsTemplateRoot() string {
	abs, err := filepath.Abs(p.TemplateRoot)
	if err != nil {
		return p.TemplateRoot
	}
	return abs
}

// Scaffold writes a starter profile to path, refusing to overwrite an
// existing file.
func Scaffold(path string) error {
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	starter := `# viewcheck configuration
template_root: app/views

# Disable individual rules:
# rules:
#   skip-link: false

# Suppress a rule with a recorded reason, optionally scoped to a path glob:
# ignore:
#   - rule: missing-landmark
#     path: app/views/admin/*
#     reason: legacy admin layout, tracked in ACC-142

state_file: .viewcheck-state.json
`
	return os.WriteFile(path, []byte(starter), 0o644)
}
