package domtree

import (
	"testing"
)

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := Parse(markup, "test.html.erb")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestQuery(t *testing.T) {
	doc := mustParse(t, `
<main>
  <h1 id="title" class="hero big">Hello</h1>
  <form>
    <label for="q">Search</label>
    <input id="q" type="text">
    <input type="submit" value="Go">
  </form>
  <a href="#main" class="skip">Skip</a>
  <img src="a.png" alt="">
</main>`)

	tests := []struct {
		selector string
		want     int
	}{
		{"h1", 1},
		{"#title", 1},
		{".hero", 1},
		{".hero.big", 1},
		{".missing", 0},
		{"input", 2},
		{"input[type=text]", 1},
		{"input[type=submit]", 1},
		{"[id]", 2},
		{"[alt]", 1},
		{"label[for]", 1},
		{"a[href^=#]", 1},
		{"h1, input", 3},
		{"form input", 2},
		{"main form input[type=text]", 1},
		{"div input", 0},
		{"", 0},
		{"???", 0},
	}
	for _, tt := range tests {
		if got := len(doc.Query(tt.selector)); got != tt.want {
			t.Errorf("Query(%q) = %d nodes, want %d", tt.selector, got, tt.want)
		}
	}
}

func TestAttrPresenceVsEmpty(t *testing.T) {
	// WHAT: An absent attribute is distinguishable from an empty one.
	// WHY: alt="" is valid (decorative image); a missing alt is an error.
	doc := mustParse(t, `<img src="a.png" alt=""><img src="b.png">`)

	imgs := doc.Query("img")
	if len(imgs) != 2 {
		t.Fatalf("expected 2 images, got %d", len(imgs))
	}
	if v, ok := imgs[0].Attr("alt"); !ok || v != "" {
		t.Errorf("first image: alt = (%q, %v), want (\"\", true)", v, ok)
	}
	if _, ok := imgs[1].Attr("alt"); ok {
		t.Error("second image: alt reported present, want absent")
	}
}

func TestNodeContract(t *testing.T) {
	doc := mustParse(t, `<div id="outer"><p>Some  <b>bold</b>
	text</p></div>`)

	ps := doc.Query("p")
	if len(ps) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(ps))
	}
	p := ps[0]

	if p.TagName() != "p" {
		t.Errorf("TagName = %q, want p", p.TagName())
	}
	if got := p.Text(); got != "Some bold text" {
		t.Errorf("Text = %q, want %q", got, "Some bold text")
	}
	parent := p.Parent()
	if parent == nil || parent.TagName() != "div" {
		t.Fatalf("Parent = %v, want div", parent)
	}

	// Identity: the same element reached twice is the same node value.
	if doc.Query("#outer")[0] != parent {
		t.Error("same element produced distinct node values")
	}
}

func TestSourceFile(t *testing.T) {
	doc := mustParse(t, "<p>x</p>")
	n := doc.Query("p")[0]
	sf, ok := n.(interface{ SourceFile() string })
	if !ok {
		t.Fatal("node does not expose SourceFile")
	}
	if sf.SourceFile() != "test.html.erb" {
		t.Errorf("SourceFile = %q", sf.SourceFile())
	}
}

func TestComposite(t *testing.T) {
	// WHAT: Composite queries concatenate per-document results in order.
	// WHY: Page-level heading analysis depends on discovery order.
	layout, _ := Parse("<h1>Site</h1>", "layout.html.erb")
	view, _ := Parse("<h2>Page</h2>", "view.html.erb")

	page := Composite([]*Document{layout, view})
	hs := page.Query("h1, h2, h3, h4, h5, h6")
	if len(hs) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(hs))
	}
	if hs[0].TagName() != "h1" || hs[1].TagName() != "h2" {
		t.Errorf("heading order = %s, %s; want h1, h2", hs[0].TagName(), hs[1].TagName())
	}
}
