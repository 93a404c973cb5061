package checks

import "strings"

// AccessibleNameCheck verifies that interactive elements (links, buttons,
// button-like inputs) expose an accessible name.
//
// An element is considered named if it has non-empty text content, a
// non-empty aria-label, aria-labelledby, or title attribute, or — for
// icon links and buttons — a wrapped image with a non-empty alt.
type AccessibleNameCheck struct{}

func (c *AccessibleNameCheck) ID() string           { return "missing-accessible-name" }
func (c *AccessibleNameCheck) DefaultEnabled() bool { return true }
func (c *AccessibleNameCheck) PageLevel() bool      { return false }

func (c *AccessibleNameCheck) Evaluate(doc Document, ctx *Context) []Finding {
	candidates := doc.Query("a[href], button, input[type=submit], input[type=button], input[type=reset], input[type=image]")
	if len(candidates) == 0 {
		return nil
	}

	unnamed := make([]Node, 0, len(candidates))
	for _, n := range candidates {
		if hasAccessibleName(n) {
			continue
		}
		unnamed = append(unnamed, n)
	}
	if len(unnamed) == 0 {
		return nil
	}

	// A wrapped image with non-empty alt names its interactive ancestor.
	named := make(map[Node]bool)
	for _, img := range doc.Query("img") {
		if !attrNonEmpty(img, "alt") {
			continue
		}
		for p := img.Parent(); p != nil; p = p.Parent() {
			named[p] = true
		}
	}

	var findings []Finding
	for _, n := range unnamed {
		if named[n] {
			continue
		}
		findings = append(findings, newFinding(c.ID(), SeverityError, n, ctx,
			"Interactive element has no accessible name",
			"Add visible text, aria-label, or alt text on the wrapped image",
			"WCAG 4.1.2"))
	}
	return findings
}

// hasAccessibleName checks the element's own naming sources, ignoring
// wrapped images (handled by the caller).
func hasAccessibleName(n Node) bool {
	if strings.TrimSpace(n.Text()) != "" {
		return true
	}
	for _, attr := range []string{"aria-label", "aria-labelledby", "title"} {
		if attrNonEmpty(n, attr) {
			return true
		}
	}
	// Button-like inputs are named by their value attribute.
	if n.TagName() == "input" && attrNonEmpty(n, "value") {
		return true
	}
	return false
}
