// Package pagescan runs whole-page rule checks over the union of all
// files in a composition graph.
//
// Heading structure, landmark presence and identifier uniqueness are only
// meaningful at page granularity: the h1 and the main landmark usually
// live in the layout, and id collisions span layout, view and partials.
// Scanning a view file in isolation would misreport all three.
package pagescan

import (
	"log/slog"
	"os"
	"strings"

	"github.com/viewcheck/viewcheck/checks"
	"github.com/viewcheck/viewcheck/compose"
	"github.com/viewcheck/viewcheck/domtree"
	"github.com/viewcheck/viewcheck/engine"
	"github.com/viewcheck/viewcheck/extract"
)

// Cache deduplicates page scans within one run. Two entry files that
// resolve to the same composition graph (e.g. two views sharing a layout
// scanned back to back) produce the page findings only once.
//
// A Cache is constructed once per scan run and passed by reference;
// Reset clears it for reuse.
type Cache struct {
	seen map[string]bool
}

// NewCache creates an empty dedup cache.
func NewCache() *Cache {
	return &Cache{seen: make(map[string]bool)}
}

// Reset clears the cache.
func (c *Cache) Reset() {
	c.seen = make(map[string]bool)
}

// key builds the cache key from the graph's member files.
func (c *Cache) key(g *compose.Graph) string {
	return strings.Join(g.Files, "\x00")
}

// Scanner evaluates page-level checks over composition graphs.
type Scanner struct {
	engine *engine.Engine
	logger *slog.Logger
}

// New creates a page scanner running the page-level checks under cfg.
func New(cfg *engine.Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		engine: engine.New(cfg, checks.PageLevel(), logger),
		logger: logger,
	}
}

// Scan runs the page-level checks over every file in the graph. Member
// order follows graph discovery order, so layout-level findings surface
// before leaf-partial findings. entry stamps findings that have no
// specific target node (landmark and skip-link absences).
//
// A graph already present in the cache yields no findings.
func (s *Scanner) Scan(g *compose.Graph, entry string, cache *Cache) []checks.Finding {
	if cache != nil {
		k := cache.key(g)
		if cache.seen[k] {
			return nil
		}
		cache.seen[k] = true
	}

	docs := make([]*domtree.Document, 0, len(g.Files))
	for _, path := range g.Files {
		raw, err := os.ReadFile(path)
		if err != nil {
			s.logger.Debug("skipping unreadable graph member", "file", path, "error", err)
			continue
		}
		doc, err := domtree.Parse(extract.Extract(string(raw)), path)
		if err != nil {
			s.logger.Debug("skipping unparsable graph member", "file", path, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil
	}

	page := domtree.Composite(docs)
	ctx := &checks.Context{File: entry}
	return s.engine.Check(page, ctx)
}
