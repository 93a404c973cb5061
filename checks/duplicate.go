package checks

import (
	"fmt"
	"strings"
)

// DuplicateIDCheck verifies that id attributes are unique across the whole
// page. Page-level: the same id appearing in the layout and in a partial
// is a real collision at render time even though each file is valid alone.
//
// Identifiers containing the extractor's placeholder token are excluded:
// they are built from runtime expressions, so two occurrences of the same
// literal skeleton are expected to differ once rendered and must never be
// reported as duplicates.
type DuplicateIDCheck struct{}

func (c *DuplicateIDCheck) ID() string           { return "duplicate-id" }
func (c *DuplicateIDCheck) DefaultEnabled() bool { return true }
func (c *DuplicateIDCheck) PageLevel() bool      { return true }

func (c *DuplicateIDCheck) Evaluate(doc Document, ctx *Context) []Finding {
	seen := make(map[string]bool)
	var findings []Finding
	for _, n := range doc.Query("[id]") {
		id, _ := n.Attr("id")
		id = strings.TrimSpace(id)
		if id == "" || strings.Contains(id, ctx.PlaceholderToken()) {
			continue
		}
		if seen[id] {
			// Reported on the second and later occurrences; the first
			// occurrence is the one that keeps the id.
			findings = append(findings, newFinding(c.ID(), SeverityError, n, ctx,
				fmt.Sprintf("Duplicate identifier %q", id),
				"Rename the element id so every id on the page is unique",
				"WCAG 4.1.1"))
			continue
		}
		seen[id] = true
	}
	return findings
}
