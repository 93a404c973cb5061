// Package compose reconstructs the full composition of a rendered page:
// given an entry view file it discovers the layout and every recursively
// included fragment, producing the deduplicated, cycle-safe file list for
// one logical page.
package compose

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// templateExtensions are the recognized template file extensions, in
// resolution priority order.
var templateExtensions = []string{".html.erb", ".erb", ".html"}

// sharedDirs are the conventional directories searched for fragments
// that do not resolve next to their referrer.
var sharedDirs = []string{"shared", "partials", "application", "layouts"}

// defaultLayouts are tried when the entry file declares no layout.
var defaultLayouts = []string{
	"layouts/application.html.erb",
	"layouts/application.erb",
	"layouts/application.html",
}

// maxGraphFiles is a defensive ceiling on graph size. The visited set
// already guarantees termination on cyclic includes; the cap bounds
// pathological trees.
const maxGraphFiles = 256

// layoutDecl matches an explicit layout declaration in template text.
var layoutDecl = regexp.MustCompile(`\blayout\s*\(?\s*["']([^"']+)["']`)

// renderCall matches the recognized include shapes:
//
//	render "card"                 (literal)
//	render partial: "card"        (keyword)
//	render "admin/users/form"     (namespaced)
//	render @product / render item (shorthand from a data object)
var renderCall = regexp.MustCompile(`\brender[\s(]+(?:partial:\s*)?(?:["']([^"']+)["']|@?([a-zA-Z_][a-zA-Z0-9_]*))`)

// shorthandSkip lists identifiers that look like a shorthand object but
// are render options or non-template render modes.
var shorthandSkip = map[string]bool{
	"partial": true, "layout": true, "template": true, "collection": true,
	"json": true, "plain": true, "html": true, "xml": true, "status": true,
	"locals": true, "file": true, "inline": true, "nothing": true,
}

// Graph is the ordered, deduplicated set of files rendering one logical
// page: layout (if any), entry view, then fragments in depth-first
// discovery order. Built fresh per entry file, never cached across files.
type Graph struct {
	// Files holds absolute paths in discovery order.
	Files []string
	// Layout is the resolved layout path, or "" when the page has none.
	Layout string
}

// Builder builds composition graphs under one template root.
type Builder struct {
	// Root is the template root directory.
	Root string
	// Logger receives debug notes about unresolved fragments.
	Logger *slog.Logger
}

// NewBuilder creates a Builder for the given template root.
func NewBuilder(root string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Root: root, Logger: logger}
}

// Build constructs the composition graph for an entry file. Unresolved
// fragment references are skipped silently (missing partials are common
// mid-refactor); the graph always terminates and never contains a path
// twice.
func (b *Builder) Build(entry string) *Graph {
	g := &Graph{}
	visited := make(map[string]bool)

	entryText := readFile(entry)

	if layout := b.resolveLayout(entry, entryText); layout != "" {
		g.Layout = layout
		g.Files = append(g.Files, layout)
		visited[layout] = true
	}
	if !visited[entry] {
		g.Files = append(g.Files, entry)
		visited[entry] = true
	}

	// Expand layout first, then the entry, so layout-level fragments
	// surface before view-level ones in the final order.
	if g.Layout != "" {
		b.expand(g.Layout, readFile(g.Layout), g, visited)
	}
	b.expand(entry, entryText, g, visited)

	return g
}

// expand discovers include references in text and recurses depth-first
// into each newly-resolved fragment before continuing with siblings, so
// concatenation order roughly mirrors document order.
func (b *Builder) expand(referrer, text string, g *Graph, visited map[string]bool) {
	if len(g.Files) >= maxGraphFiles {
		return
	}
	for _, ref := range findIncludes(text) {
		path := b.resolveFragment(referrer, ref)
		if path == "" {
			b.Logger.Debug("unresolved fragment reference", "referrer", referrer, "name", ref)
			continue
		}
		if visited[path] {
			continue
		}
		visited[path] = true
		g.Files = append(g.Files, path)
		if len(g.Files) >= maxGraphFiles {
			return
		}
		b.expand(path, readFile(path), g, visited)
	}
}

// findIncludes returns fragment references in source order.
func findIncludes(text string) []string {
	var refs []string
	for _, m := range renderCall.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			refs = append(refs, m[1])
			continue
		}
		if name := m[2]; name != "" && !shorthandSkip[name] {
			refs = append(refs, name)
		}
	}
	return refs
}

// resolveLayout finds the entry's layout file: an explicit declaration in
// the entry text wins; otherwise the conventional default layout is used
// when present; otherwise the page has no layout.
func (b *Builder) resolveLayout(entry, entryText string) string {
	if m := layoutDecl.FindStringSubmatch(entryText); m != nil {
		name := m[1]
		dir, base := filepath.Split(name)
		candidates := candidateNames(base, false)
		// Explicit layouts resolve under layouts/, next to the entry,
		// then anywhere under the root.
		for _, c := range candidates {
			if p := existing(filepath.Join(b.Root, "layouts", dir, c)); p != "" {
				return p
			}
		}
		for _, c := range candidates {
			if p := existing(filepath.Join(filepath.Dir(entry), dir, c)); p != "" {
				return p
			}
		}
		if dir != "" {
			for _, c := range candidates {
				if p := existing(filepath.Join(b.Root, dir, c)); p != "" {
					return p
				}
			}
		}
		return b.searchRoot(candidates)
	}
	for _, rel := range defaultLayouts {
		if p := existing(filepath.Join(b.Root, rel)); p != "" {
			return p
		}
	}
	return ""
}

// resolveFragment resolves one include reference to a file, trying in
// order: the referrer's directory with the partial naming convention,
// the conventional shared directories, and finally an exhaustive
// recursive search of the template root. The first existing path wins.
func (b *Builder) resolveFragment(referrer, ref string) string {
	dir, base := filepath.Split(ref)
	candidates := candidateNames(base, true)

	for _, c := range candidates {
		if p := existing(filepath.Join(filepath.Dir(referrer), dir, c)); p != "" {
			return p
		}
	}
	if dir != "" {
		for _, c := range candidates {
			if p := existing(filepath.Join(b.Root, dir, c)); p != "" {
				return p
			}
		}
	}
	for _, shared := range sharedDirs {
		for _, c := range candidates {
			if p := existing(filepath.Join(b.Root, shared, dir, c)); p != "" {
				return p
			}
		}
	}
	return b.searchRoot(candidates)
}

// searchRoot walks the template root for the first file whose basename
// matches a candidate name.
func (b *Builder) searchRoot(candidates []string) string {
	want := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		want[c] = true
	}
	var found string
	filepath.Walk(b.Root, func(path string, info os.FileInfo, err error) error {
		if found != "" {
			return filepath.SkipAll
		}
		// An unreadable subtree must not abort the search elsewhere.
		if err != nil {
			return nil
		}
		if !info.IsDir() && want[info.Name()] {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// candidateNames expands a bare fragment name into concrete filenames.
// Partials get the underscore naming convention applied; a name that
// already carries an extension is also tried verbatim.
func candidateNames(base string, partial bool) []string {
	var out []string
	if strings.Contains(base, ".") {
		out = append(out, base)
	}
	stem := base
	if idx := strings.IndexByte(stem, '.'); idx >= 0 {
		stem = stem[:idx]
	}
	names := []string{stem}
	if partial && !strings.HasPrefix(stem, "_") {
		names = []string{"_" + stem, stem}
	}
	for _, n := range names {
		for _, ext := range templateExtensions {
			out = append(out, n+ext)
		}
	}
	return out
}

// existing returns path when it exists as a regular file, else "".
func existing(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

// readFile reads a template file, degrading to empty text on error.
func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
