package scanner

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/viewcheck/viewcheck/checks"
	"github.com/viewcheck/viewcheck/config"
)

// fixtureProfile builds a scan profile over a temp template tree.
func fixtureProfile(t *testing.T, files map[string]string) (*config.Profile, string, func(string) string) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	p := &config.Profile{
		TemplateRoot: root,
		Extensions:   []string{".html.erb", ".erb", ".html"},
		StateFile:    filepath.Join(t.TempDir(), "state.json"),
	}
	return p, root, func(rel string) string { return filepath.Join(root, rel) }
}

func countRule(findings []checks.Finding, rule string) int {
	n := 0
	for _, f := range findings {
		if f.Rule == rule {
			n++
		}
	}
	return n
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestScanDirFullPipeline(t *testing.T) {
	profile, root, abs := fixtureProfile(t, map[string]string{
		"layouts/application.html.erb": `<main><h1>Site</h1><a href="#main">Skip to content</a><%= yield %></main>`,
		"page.html.erb":                `<h2><%= @title %></h2><%= render "card" %><div id="x"></div>`,
		"_card.html.erb":               `<img src="icon.png"><button id="x">x</button>`,
	})
	s := New(profile, discard())

	res, err := s.ScanDir(root, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.FilesScanned != 3 {
		t.Errorf("FilesScanned = %d, want 3", res.FilesScanned)
	}

	// One missing alt from the partial.
	if n := countRule(res.Findings, "missing-alt"); n != 1 {
		t.Errorf("missing-alt = %d, want 1: %+v", n, res.Findings)
	}
	// One cross-file id collision, attributed to the second occurrence.
	if n := countRule(res.Findings, "duplicate-id"); n != 1 {
		t.Errorf("duplicate-id = %d, want 1: %+v", n, res.Findings)
	}
	for _, f := range res.Findings {
		switch f.Rule {
		case "missing-alt":
			if f.File != abs("_card.html.erb") || f.Line != 1 {
				t.Errorf("missing-alt at %s:%d, want %s:1", f.File, f.Line, abs("_card.html.erb"))
			}
		case "duplicate-id":
			if f.File != abs("_card.html.erb") {
				t.Errorf("duplicate-id at %s, want the partial", f.File)
			}
		}
	}

	// The layout supplies the h1, landmark and skip link: no page-level
	// structure findings.
	for _, rule := range []string{"heading-structure", "missing-landmark", "skip-link"} {
		if n := countRule(res.Findings, rule); n != 0 {
			t.Errorf("%s = %d, want 0: %+v", rule, n, res.Findings)
		}
	}
}

func TestScanDirIdempotent(t *testing.T) {
	profile, root, _ := fixtureProfile(t, map[string]string{
		"page.html.erb": `<h2>t</h2><img src="a.png">`,
	})
	s := New(profile, discard())

	first, err := s.ScanDir(root, false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.ScanDir(root, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Errorf("repeated scans differ:\n%+v\n%+v", first.Findings, second.Findings)
	}
}

func TestScanDirChangedOnly(t *testing.T) {
	profile, root, abs := fixtureProfile(t, map[string]string{
		"page.html.erb":  `<h2>a</h2>`,
		"other.html.erb": `<h2>b</h2>`,
	})
	s := New(profile, discard())

	if _, err := s.ScanDir(root, false); err != nil {
		t.Fatal(err)
	}

	// Nothing changed: nothing rescanned.
	res, err := s.ScanDir(root, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.FilesScanned != 0 {
		t.Errorf("FilesScanned = %d, want 0 after no-op rescan", res.FilesScanned)
	}

	// Touching one file rescans exactly that file.
	if err := os.WriteFile(abs("page.html.erb"), []byte(`<h2>a2</h2>`), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err = s.ScanDir(root, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1 after touching one file", res.FilesScanned)
	}
}

func TestScanDirChangedPartialRefreshesPageFindings(t *testing.T) {
	// WHAT: Editing only a partial re-runs the page-level checks of the
	// entry views that include it.
	// WHY: Cross-file findings (duplicate ids, heading structure) would
	// otherwise go stale in changed-only and watch scans, which never list
	// the entry view itself as changed.
	profile, root, abs := fixtureProfile(t, map[string]string{
		"layouts/application.html.erb": `<main><h1>Site</h1><a href="#main">Skip</a><div id="x"></div><%= yield %></main>`,
		"page.html.erb":                `<h2>t</h2><%= render "card" %>`,
		"_card.html.erb":               `<div class="card"></div>`,
	})
	s := New(profile, discard())

	res, err := s.ScanDir(root, false)
	if err != nil {
		t.Fatal(err)
	}
	if n := countRule(res.Findings, "duplicate-id"); n != 0 {
		t.Fatalf("clean tree duplicate-id = %d, want 0: %+v", n, res.Findings)
	}

	// Collide with the layout's id by editing only the partial.
	if err := os.WriteFile(abs("_card.html.erb"), []byte(`<p id="x"></p>`), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err = s.ScanDir(root, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want just the edited partial", res.FilesScanned)
	}
	if n := countRule(res.Findings, "duplicate-id"); n != 1 {
		t.Errorf("duplicate-id after partial edit = %d, want 1: %+v", n, res.Findings)
	}
	for _, f := range res.Findings {
		if f.Rule == "duplicate-id" && f.File != abs("_card.html.erb") {
			t.Errorf("duplicate-id at %s, want the edited partial", f.File)
		}
	}
}

func TestListTemplatesHonorsExtensions(t *testing.T) {
	profile, root, _ := fixtureProfile(t, map[string]string{
		"a.html.erb": "<p>a</p>",
		"b.erb":      "<p>b</p>",
		"c.html":     "<p>c</p>",
		"d.txt":      "not a template",
		"e.rb":       "code",
	})
	s := New(profile, discard())

	got := s.ListTemplates(root)
	if len(got) != 3 {
		t.Errorf("ListTemplates = %v, want 3 templates", got)
	}
}

func TestIsEntryView(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"views/index.html.erb", true},
		{"views/_card.html.erb", false},
		{"layouts/application.html.erb", false},
		{"admin/layouts/base.html.erb", false},
		{"admin/users/show.html.erb", true},
	}
	for _, tt := range tests {
		if got := isEntryView(tt.path); got != tt.want {
			t.Errorf("isEntryView(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
