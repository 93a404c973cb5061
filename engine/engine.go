// Package engine runs configured rule checks against a document and
// aggregates their findings.
//
// Each check runs in isolation: a panic inside one check is recovered,
// logged, and treated as zero findings, so one broken rule never
// suppresses the others. Findings are returned in check-registration
// order, which keeps repeated runs on unchanged input byte-identical.
package engine

import (
	"log/slog"
	"path"
	"path/filepath"

	"github.com/viewcheck/viewcheck/checks"
)

// Ignore disables one rule with a recorded reason. Without a path the
// rule is suppressed everywhere; with a path glob only findings in
// matching files are dropped.
type Ignore struct {
	// Rule is the rule id to suppress.
	Rule string `json:"rule" yaml:"rule"`
	// Path is an optional glob matched against the finding's file (full
	// slash path or basename). Empty suppresses the rule globally.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Reason documents why the rule is suppressed.
	Reason string `json:"reason" yaml:"reason"`
}

// Config is the resolved rule configuration consumed by the engine.
// Profile merging and file parsing belong to the config loader; the
// engine only reads the resolved values. Immutable once handed over.
type Config struct {
	// Rules maps rule id to enabled state. Rules not present keep their
	// default enabled state.
	Rules map[string]bool `json:"rules" yaml:"rules"`
	// Ignores lists rules suppressed with a reason.
	Ignores []Ignore `json:"ignore" yaml:"ignore"`
}

// Enabled reports whether a check should run under this configuration.
func (c *Config) Enabled(chk checks.Check) bool {
	if c == nil {
		return chk.DefaultEnabled()
	}
	for _, ig := range c.Ignores {
		if ig.Rule == chk.ID() && ig.Path == "" {
			return false
		}
	}
	if enabled, ok := c.Rules[chk.ID()]; ok {
		return enabled
	}
	return chk.DefaultEnabled()
}

// suppressed reports whether a finding falls under a path-scoped ignore.
func (c *Config) suppressed(f checks.Finding) bool {
	if c == nil {
		return false
	}
	for _, ig := range c.Ignores {
		if ig.Rule != f.Rule || ig.Path == "" {
			continue
		}
		file := filepath.ToSlash(f.File)
		if ok, _ := path.Match(ig.Path, file); ok {
			return true
		}
		if ok, _ := path.Match(ig.Path, path.Base(file)); ok {
			return true
		}
	}
	return false
}

// Engine evaluates a fixed list of checks under a configuration.
type Engine struct {
	cfg    *Config
	chks   []checks.Check
	logger *slog.Logger
}

// New creates an engine over the given checks. A nil config means every
// check keeps its default enabled state; a nil check list means all
// registered checks.
func New(cfg *Config, chks []checks.Check, logger *slog.Logger) *Engine {
	if chks == nil {
		chks = checks.All()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, chks: chks, logger: logger}
}

// Check runs every enabled check against the document and returns all
// findings in check-registration order.
func (e *Engine) Check(doc checks.Document, ctx *checks.Context) []checks.Finding {
	var findings []checks.Finding
	for _, chk := range e.chks {
		if !e.cfg.Enabled(chk) {
			continue
		}
		for _, f := range e.runOne(chk, doc, ctx) {
			if e.cfg.suppressed(f) {
				continue
			}
			findings = append(findings, f)
		}
	}
	return findings
}

// runOne evaluates a single check, converting a panic into zero findings
// plus a logged diagnostic.
func (e *Engine) runOne(chk checks.Check, doc checks.Document, ctx *checks.Context) (out []checks.Finding) {
	defer func() {
		if r := recover(); r != nil {
			file := ""
			if ctx != nil {
				file = ctx.File
			}
			e.logger.Error("rule check failed", "rule", chk.ID(), "file", file, "panic", r)
			out = nil
		}
	}()
	return chk.Evaluate(doc, ctx)
}
