// Package checks defines the accessibility rule checks and the node
// contract they evaluate against.
//
// Every check is stateless: running the same check twice on the same
// document yields identical findings. Checks consume the Document/Node
// contract only, so the same rule code runs against the static extractor
// pipeline and against a live browser session.
package checks

import "strings"

// Severity classifies a finding as an error or a warning.
type Severity string

const (
	// SeverityError marks findings that should fail a scan.
	SeverityError Severity = "error"
	// SeverityWarning marks advisory findings.
	SeverityWarning Severity = "warning"
)

// DefaultPlaceholder is the token substituted for embedded runtime
// expressions during extraction. Checks treat identifiers containing it as
// dynamic and statically incomparable.
const DefaultPlaceholder = "dynamic"

// Finding represents a single reported accessibility defect.
//
// A Finding is immutable once created. Line is 0 when source-line recovery
// failed; the file alone is still reported.
type Finding struct {
	// Rule is the stable identifier of the check that produced the finding.
	Rule string `json:"rule"`
	// Message is a human-readable description of the defect.
	Message string `json:"message"`
	// Severity is "error" or "warning".
	Severity Severity `json:"severity"`

	// Tag is the element tag name of the offending node.
	Tag string `json:"tag,omitempty"`
	// ID is the id attribute of the offending node, if any.
	ID string `json:"id,omitempty"`
	// Src is the src attribute of the offending node, if any.
	Src string `json:"src,omitempty"`
	// Href is the href attribute of the offending node, if any.
	Href string `json:"href,omitempty"`
	// Type is the type attribute of the offending node, if any.
	Type string `json:"type,omitempty"`
	// Text is the truncated text content of the offending node.
	Text string `json:"text,omitempty"`

	// File is the template file the finding belongs to.
	File string `json:"file,omitempty"`
	// Line is the 1-based source line, or 0 when unknown.
	Line int `json:"line,omitempty"`

	// Remediation is a short hint on how to fix the defect.
	Remediation string `json:"remediation,omitempty"`
	// Guideline references the WCAG success criterion the rule maps to.
	Guideline string `json:"guideline,omitempty"`
}

// Node is the minimal element contract shared by the static DOM adapter
// and the live browser adapter.
type Node interface {
	// TagName returns the lowercase element tag name.
	TagName() string
	// Attr returns the attribute value and whether the attribute is
	// present. An empty value with present=true is distinct from an
	// absent attribute.
	Attr(name string) (string, bool)
	// Text returns the concatenated, whitespace-normalized text content.
	Text() string
	// Parent returns the parent element node, or nil at the root.
	Parent() Node
}

// Document is the queryable tree contract consumed by every check.
type Document interface {
	// Query returns all nodes matching the selector in document order.
	// A selector matching nothing returns an empty slice, never an error.
	Query(selector string) []Node
}

// SourceFiler is implemented by nodes that know which template file they
// were parsed from. Composite page documents rely on it to attribute
// findings to the correct graph member.
type SourceFiler interface {
	SourceFile() string
}

// Context carries per-run information into check evaluation.
type Context struct {
	// File is the template file under scan, used to stamp findings.
	File string
	// Placeholder is the extractor's placeholder token. Empty means
	// DefaultPlaceholder.
	Placeholder string
}

// PlaceholderToken returns the effective placeholder token.
func (c *Context) PlaceholderToken() string {
	if c == nil || c.Placeholder == "" {
		return DefaultPlaceholder
	}
	return c.Placeholder
}

// Check is one independent, stateless accessibility rule evaluator.
type Check interface {
	// ID returns the stable rule identifier.
	ID() string
	// DefaultEnabled reports whether the rule runs when the
	// configuration does not mention it.
	DefaultEnabled() bool
	// PageLevel reports whether the rule is only meaningful over a whole
	// composition graph rather than a single file.
	PageLevel() bool
	// Evaluate runs the rule and returns zero or more findings.
	Evaluate(doc Document, ctx *Context) []Finding
}

// registry holds all known checks in registration order. The engine runs
// checks in this order so finding output is deterministic.
var registry = []Check{
	&LabelCheck{},
	&AltCheck{},
	&AccessibleNameCheck{},
	&HeadingCheck{},
	&DialogFocusCheck{},
	&LandmarkCheck{},
	&ErrorAssociationCheck{},
	&TableHeaderCheck{},
	&DuplicateIDCheck{},
	&SkipLinkCheck{},
	&ContrastCheck{},
}

// All returns every known check in registration order.
func All() []Check {
	out := make([]Check, len(registry))
	copy(out, registry)
	return out
}

// FileLevel returns the checks that run per extracted file.
func FileLevel() []Check {
	var out []Check
	for _, c := range registry {
		if !c.PageLevel() {
			out = append(out, c)
		}
	}
	return out
}

// PageLevel returns the checks that run once per composition graph.
func PageLevel() []Check {
	var out []Check
	for _, c := range registry {
		if c.PageLevel() {
			out = append(out, c)
		}
	}
	return out
}

// newFinding builds a finding for node n, filling the target descriptor
// fields and stamping the context file (or the node's own source file when
// it knows one).
func newFinding(rule string, sev Severity, n Node, ctx *Context, msg, remediation, guideline string) Finding {
	f := Finding{
		Rule:        rule,
		Message:     msg,
		Severity:    sev,
		Remediation: remediation,
		Guideline:   guideline,
	}
	if ctx != nil {
		f.File = ctx.File
	}
	if n != nil {
		f.Tag = n.TagName()
		if v, ok := n.Attr("id"); ok {
			f.ID = v
		}
		if v, ok := n.Attr("src"); ok {
			f.Src = v
		}
		if v, ok := n.Attr("href"); ok {
			f.Href = v
		}
		if v, ok := n.Attr("type"); ok {
			f.Type = v
		}
		f.Text = truncate(n.Text(), 40)
		if sf, ok := n.(SourceFiler); ok && sf.SourceFile() != "" {
			f.File = sf.SourceFile()
		}
	}
	return f
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// attrNonEmpty reports whether the attribute is present with a non-empty,
// non-whitespace value.
func attrNonEmpty(n Node, name string) bool {
	v, ok := n.Attr(name)
	return ok && strings.TrimSpace(v) != ""
}
