package checks

import "strings"

// LandmarkCheck verifies that the page exposes a main content landmark.
//
// Page-level and warning-only: the landmark almost always lives in the
// layout, so its presence anywhere in the composition graph satisfies the
// rule, and pages rendered without a layout would otherwise produce a hard
// error on every view.
type LandmarkCheck struct{}

func (c *LandmarkCheck) ID() string           { return "missing-landmark" }
func (c *LandmarkCheck) DefaultEnabled() bool { return true }
func (c *LandmarkCheck) PageLevel() bool      { return true }

func (c *LandmarkCheck) Evaluate(doc Document, ctx *Context) []Finding {
	if len(doc.Query("main, [role=main]")) > 0 {
		return nil
	}
	return []Finding{newFinding(c.ID(), SeverityWarning, nil, ctx,
		"Page has no main content landmark",
		`Wrap the primary content in <main> (or role="main")`,
		"WCAG 1.3.6, 2.4.1")}
}

// SkipLinkCheck verifies that the page offers a skip-navigation link: an
// in-page anchor, conventionally the first focusable element, that jumps
// past repeated navigation. Warning-only.
type SkipLinkCheck struct{}

func (c *SkipLinkCheck) ID() string           { return "skip-link" }
func (c *SkipLinkCheck) DefaultEnabled() bool { return true }
func (c *SkipLinkCheck) PageLevel() bool      { return true }

func (c *SkipLinkCheck) Evaluate(doc Document, ctx *Context) []Finding {
	for _, a := range doc.Query("a[href^=#]") {
		if href, _ := a.Attr("href"); strings.TrimPrefix(href, "#") != "" {
			return nil
		}
	}
	return []Finding{newFinding(c.ID(), SeverityWarning, nil, ctx,
		"Page has no skip-navigation link",
		`Add an in-page link (e.g. <a href="#main">Skip to content</a>) before the navigation`,
		"WCAG 2.4.1")}
}
