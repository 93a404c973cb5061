package checks

import "fmt"

// HeadingCheck verifies the document heading structure: a single <h1>
// exists and no heading skips a level.
//
// The check is page-level: headings commonly live in the layout while the
// content headings live in views and partials, so evaluating a single file
// in isolation would produce false "missing h1" findings.
//
// Two distinct defects are reported and never double-fire for the same
// page:
//   - no h1 present: the first heading found is deeper than h1. Reported
//     once, naming the actual first level. A page opening with an h2 is
//     exactly this case and is not additionally a skipped level.
//   - skipped level: a heading is more than one level deeper than its
//     immediate predecessor. The walk starts at the second heading.
type HeadingCheck struct{}

func (c *HeadingCheck) ID() string           { return "heading-structure" }
func (c *HeadingCheck) DefaultEnabled() bool { return true }
func (c *HeadingCheck) PageLevel() bool      { return true }

func (c *HeadingCheck) Evaluate(doc Document, ctx *Context) []Finding {
	headings := doc.Query("h1, h2, h3, h4, h5, h6")
	if len(headings) == 0 {
		return nil
	}

	var findings []Finding

	first := headingLevel(headings[0])
	if first != 1 {
		findings = append(findings, newFinding(c.ID(), SeverityError, headings[0], ctx,
			fmt.Sprintf("Page has no <h1>; first heading is <h%d>", first),
			"Give the page a single <h1> describing its main content",
			"WCAG 1.3.1, 2.4.6"))
	}

	h1Seen := false
	for _, h := range headings {
		if headingLevel(h) != 1 {
			continue
		}
		if h1Seen {
			findings = append(findings, newFinding(c.ID(), SeverityError, h, ctx,
				"Page has more than one <h1>",
				"Demote secondary headings to <h2>",
				"WCAG 1.3.1, 2.4.6"))
		}
		h1Seen = true
	}

	for i := 1; i < len(headings); i++ {
		prev := headingLevel(headings[i-1])
		cur := headingLevel(headings[i])
		if cur > prev+1 {
			findings = append(findings, newFinding(c.ID(), SeverityError, headings[i], ctx,
				fmt.Sprintf("Heading level skipped: <h%d> follows <h%d>", cur, prev),
				fmt.Sprintf("Use <h%d> instead, or restructure the section", prev+1),
				"WCAG 1.3.1, 2.4.6"))
		}
	}

	return findings
}

// headingLevel returns the numeric level of an h1..h6 node.
func headingLevel(n Node) int {
	tag := n.TagName()
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
