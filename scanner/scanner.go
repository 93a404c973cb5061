// Package scanner ties the pipeline together: change tracking, markup
// extraction, DOM parsing, file-local rule checks, composition-graph
// discovery, page-level checks and source line mapping.
//
// Scanning is single-threaded and synchronous per file: each file is
// extracted, parsed, checked and line-mapped to completion before the
// next. Nothing in the check contract forbids parallelizing later; the
// only shared mutable state is the tracker's state file and the finding
// collector.
package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/viewcheck/viewcheck/checks"
	"github.com/viewcheck/viewcheck/compose"
	"github.com/viewcheck/viewcheck/config"
	"github.com/viewcheck/viewcheck/domtree"
	"github.com/viewcheck/viewcheck/engine"
	"github.com/viewcheck/viewcheck/extract"
	"github.com/viewcheck/viewcheck/locate"
	"github.com/viewcheck/viewcheck/pagescan"
	"github.com/viewcheck/viewcheck/tracker"
)

// Result is the outcome of one scan run.
type Result struct {
	// Findings holds all findings: file-local first (in file order),
	// then page-level (in graph discovery order).
	Findings []checks.Finding
	// FilesScanned counts the template files actually checked.
	FilesScanned int
}

// Scanner runs the static analysis pipeline over a template tree.
type Scanner struct {
	profile *config.Profile
	files   *engine.Engine
	pages   *pagescan.Scanner
	track   *tracker.Tracker
	logger  *slog.Logger
}

// New creates a scanner from a resolved profile.
func New(profile *config.Profile, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := profile.Engine()
	return &Scanner{
		profile: profile,
		files:   engine.New(cfg, checks.FileLevel(), logger),
		pages:   pagescan.New(cfg, logger),
		track:   tracker.New(profile.StateFile),
		logger:  logger,
	}
}

// Tracker exposes the change tracker, used by the poll watch loop.
func (s *Scanner) Tracker() *tracker.Tracker { return s.track }

// ListTemplates returns every template file under root with a recognized
// extension, in walk order.
func (s *Scanner) ListTemplates(root string) []string {
	var out []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		for _, ext := range s.profile.Extensions {
			if strings.HasSuffix(path, ext) {
				out = append(out, path)
				return nil
			}
		}
		return nil
	})
	return out
}

// ScanDir scans every template under root. With changedOnly, files whose
// modification time matches the persisted state are skipped.
func (s *Scanner) ScanDir(root string, changedOnly bool) (*Result, error) {
	files := s.ListTemplates(root)
	if changedOnly {
		files = s.track.Changed(files)
	}
	res := s.ScanFiles(root, files)
	if err := s.track.Update(files); err != nil {
		// State persistence failure degrades to a full re-scan next run.
		s.logger.Error("persisting scan state failed", "error", err)
	}
	return res, nil
}

// ScanFiles scans the given template files: file-local checks per file,
// then page-level checks for every entry view whose composition graph
// contains one of the files. Editing a shared partial or layout therefore
// re-runs the page checks of every view that includes it, not just the
// edited file.
func (s *Scanner) ScanFiles(root string, files []string) *Result {
	res := &Result{}
	builder := compose.NewBuilder(root, s.logger)
	cache := pagescan.NewCache()

	sources := make(map[string]string, len(files))
	scanned := make(map[string]bool, len(files))

	for _, path := range files {
		scanned[path] = true
		raw, err := os.ReadFile(path)
		if err != nil {
			s.logger.Debug("skipping unreadable template", "file", path, "error", err)
			continue
		}
		sources[path] = string(raw)
		res.FilesScanned++

		doc, err := domtree.Parse(extract.Extract(string(raw)), path)
		if err != nil {
			s.logger.Debug("skipping unparsable template", "file", path, "error", err)
			continue
		}
		findings := s.files.Check(doc, &checks.Context{File: path})
		res.Findings = append(res.Findings, s.mapLines(findings, sources)...)
	}

	for _, path := range s.pageEntries(root, files) {
		graph := builder.Build(path)
		if !touchesAny(graph, scanned) {
			continue
		}
		findings := s.pages.Scan(graph, path, cache)
		res.Findings = append(res.Findings, s.mapLines(findings, sources)...)
	}

	return res
}

// pageEntries returns the entry views whose page-level findings the
// scanned files may affect. When every scanned file is itself an entry
// view the set is just those files; a scanned partial or layout widens it
// to every entry under the root, since a fragment can be included from
// anywhere. The graph-membership filter above trims the widened set back
// to the pages actually touched.
func (s *Scanner) pageEntries(root string, files []string) []string {
	widen := false
	for _, path := range files {
		if !isEntryView(path) {
			widen = true
			break
		}
	}
	candidates := files
	if widen {
		candidates = s.ListTemplates(root)
	}
	var out []string
	for _, path := range candidates {
		if isEntryView(path) {
			out = append(out, path)
		}
	}
	return out
}

// touchesAny reports whether any graph member is in the scanned set.
func touchesAny(g *compose.Graph, scanned map[string]bool) bool {
	for _, f := range g.Files {
		if scanned[f] {
			return true
		}
	}
	return false
}

// mapLines fills in source lines for findings whose file is readable.
// Failed mapping leaves the line at zero; the file alone is reported.
func (s *Scanner) mapLines(findings []checks.Finding, sources map[string]string) []checks.Finding {
	for i, f := range findings {
		if f.File == "" || f.Line != 0 {
			continue
		}
		src, ok := sources[f.File]
		if !ok {
			data, err := os.ReadFile(f.File)
			if err != nil {
				continue
			}
			src = string(data)
			sources[f.File] = src
		}
		findings[i].Line = locate.FindLine(src, f)
	}
	return findings
}

// isEntryView reports whether a template is a page entry point: not a
// partial (underscore prefix) and not a layout.
func isEntryView(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "_") {
		return false
	}
	dir := filepath.ToSlash(filepath.Dir(path))
	return !strings.HasSuffix(dir, "/layouts") && filepath.Base(dir) != "layouts"
}
