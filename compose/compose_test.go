package compose

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates a template tree under a temp root and returns the
// root plus a resolver from relative path to absolute.
func writeTree(t *testing.T, files map[string]string) (string, func(string) string) {
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
	return root, func(rel string) string { return filepath.Join(root, rel) }
}

func newBuilder(root string) *Builder {
	return NewBuilder(root, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func assertFiles(t *testing.T, g *Graph, abs func(string) string, want ...string) {
	t.Helper()
	if len(g.Files) != len(want) {
		t.Fatalf("graph = %v, want %d files %v", g.Files, len(want), want)
	}
	for i, rel := range want {
		if g.Files[i] != abs(rel) {
			t.Errorf("file %d = %s, want %s", i, g.Files[i], abs(rel))
		}
	}
}

func TestBuildDefaultLayout(t *testing.T) {
	root, abs := writeTree(t, map[string]string{
		"layouts/application.html.erb": "<html><%= yield %></html>",
		"products/index.html.erb":      "<h2>Products</h2>",
	})
	g := newBuilder(root).Build(abs("products/index.html.erb"))

	if g.Layout != abs("layouts/application.html.erb") {
		t.Errorf("Layout = %s", g.Layout)
	}
	assertFiles(t, g, abs, "layouts/application.html.erb", "products/index.html.erb")
}

func TestBuildExplicitLayout(t *testing.T) {
	root, abs := writeTree(t, map[string]string{
		"layouts/application.html.erb": "<html>default</html>",
		"layouts/admin.html.erb":       "<html>admin</html>",
		"admin/index.html.erb":         `<% layout "admin" %><h2>Admin</h2>`,
	})
	g := newBuilder(root).Build(abs("admin/index.html.erb"))

	if g.Layout != abs("layouts/admin.html.erb") {
		t.Errorf("Layout = %s, want the declared admin layout", g.Layout)
	}
}

func TestBuildNoLayout(t *testing.T) {
	root, abs := writeTree(t, map[string]string{
		"standalone.html.erb": "<p>bare</p>",
	})
	g := newBuilder(root).Build(abs("standalone.html.erb"))

	if g.Layout != "" {
		t.Errorf("Layout = %s, want none", g.Layout)
	}
	assertFiles(t, g, abs, "standalone.html.erb")
}

func TestBuildFragmentResolution(t *testing.T) {
	root, abs := writeTree(t, map[string]string{
		"products/index.html.erb": `<%= render "card" %><%= render "shared/footer" %>`,
		"products/_card.html.erb": `<div class="card"></div>`,
		"shared/_footer.html.erb": "<footer></footer>",
	})
	g := newBuilder(root).Build(abs("products/index.html.erb"))

	assertFiles(t, g, abs,
		"products/index.html.erb",
		"products/_card.html.erb",
		"shared/_footer.html.erb")
}

func TestBuildIncludeShapes(t *testing.T) {
	root, abs := writeTree(t, map[string]string{
		"views/show.html.erb": `
			<%= render "literal" %>
			<%= render partial: "keyword" %>
			<%= render "admin/users/form" %>
			<%= render @product %>
			<%= render item %>
			<%= render json: data %>
		`,
		"views/_literal.html.erb":    "<p>a</p>",
		"views/_keyword.html.erb":    "<p>b</p>",
		"admin/users/_form.html.erb": "<form></form>",
		"views/_product.html.erb":    "<p>c</p>",
		"views/_item.html.erb":       "<p>d</p>",
	})
	g := newBuilder(root).Build(abs("views/show.html.erb"))

	assertFiles(t, g, abs,
		"views/show.html.erb",
		"views/_literal.html.erb",
		"views/_keyword.html.erb",
		"admin/users/_form.html.erb",
		"views/_product.html.erb",
		"views/_item.html.erb")
}

func TestBuildCycleSafety(t *testing.T) {
	root, abs := writeTree(t, map[string]string{
		"views/entry.html.erb": `<%= render "a" %>`,
		"views/_a.html.erb":    `<%= render "b" %>`,
		"views/_b.html.erb":    `<%= render "a" %>`,
	})
	g := newBuilder(root).Build(abs("views/entry.html.erb"))

	assertFiles(t, g, abs,
		"views/entry.html.erb",
		"views/_a.html.erb",
		"views/_b.html.erb")
}

func TestBuildDedupAcrossBranches(t *testing.T) {
	// The same partial rendered from the layout and the view appears once,
	// at its first (layout-side) position.
	root, abs := writeTree(t, map[string]string{
		"layouts/application.html.erb": `<%= render "shared/nav" %><%= yield %>`,
		"views/index.html.erb":         `<%= render "shared/nav" %><%= render "hero" %>`,
		"shared/_nav.html.erb":         "<nav></nav>",
		"views/_hero.html.erb":         "<section></section>",
	})
	g := newBuilder(root).Build(abs("views/index.html.erb"))

	assertFiles(t, g, abs,
		"layouts/application.html.erb",
		"views/index.html.erb",
		"shared/_nav.html.erb",
		"views/_hero.html.erb")
}

func TestBuildDepthFirstOrder(t *testing.T) {
	root, abs := writeTree(t, map[string]string{
		"views/index.html.erb":   `<%= render "first" %><%= render "second" %>`,
		"views/_first.html.erb":  `<%= render "nested" %>`,
		"views/_nested.html.erb": "<p>deep</p>",
		"views/_second.html.erb": "<p>late</p>",
	})
	g := newBuilder(root).Build(abs("views/index.html.erb"))

	assertFiles(t, g, abs,
		"views/index.html.erb",
		"views/_first.html.erb",
		"views/_nested.html.erb",
		"views/_second.html.erb")
}

func TestBuildUnresolvedFragmentSkipped(t *testing.T) {
	root, abs := writeTree(t, map[string]string{
		"views/index.html.erb": `<%= render "missing" %><%= render "real" %>`,
		"views/_real.html.erb": "<p>x</p>",
	})
	g := newBuilder(root).Build(abs("views/index.html.erb"))

	assertFiles(t, g, abs, "views/index.html.erb", "views/_real.html.erb")
}

func TestSearchRootSkipsUnreadableDirs(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	root, abs := writeTree(t, map[string]string{
		"a_locked/filler.txt":     "",
		"z_open/_target.html.erb": "<p>x</p>",
	})
	locked := filepath.Join(root, "a_locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	// The locked directory walks first lexically; the search must still
	// reach the fragment beyond it.
	got := newBuilder(root).searchRoot([]string{"_target.html.erb"})
	if got != abs("z_open/_target.html.erb") {
		t.Errorf("searchRoot = %q, want the fragment past the unreadable directory", got)
	}
}

func TestFindIncludes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"literal", `<%= render "card" %>`, []string{"card"}},
		{"keyword", `<%= render partial: "form" %>`, []string{"form"}},
		{"namespaced", `<%= render "admin/users/form" %>`, []string{"admin/users/form"}},
		{"shorthand ivar", `<%= render @product %>`, []string{"product"}},
		{"shorthand local", `<%= render item %>`, []string{"item"}},
		{"render json skipped", `render json: payload`, nil},
		{"render plain skipped", `render plain: "ok"`, nil},
		{"no renders", "<p>static</p>", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findIncludes(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("findIncludes = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ref %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCandidateNames(t *testing.T) {
	got := candidateNames("card", true)
	want := []string{"_card.html.erb", "_card.erb", "_card.html", "card.html.erb", "card.erb", "card.html"}
	if len(got) != len(want) {
		t.Fatalf("candidateNames = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}

	// An underscore-prefixed reference is not double-prefixed.
	for _, c := range candidateNames("_card", true) {
		if len(c) > 1 && c[:2] == "__" {
			t.Errorf("double underscore candidate %q", c)
		}
	}
}
