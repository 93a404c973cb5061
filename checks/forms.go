package checks

import (
	"fmt"
	"strings"
)

// unlabelableTypes are input types that never need a visible label.
var unlabelableTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

// LabelCheck verifies that every labelable form field is associated with a
// label: a <label for> matching the field id, a wrapping <label>, or an
// aria-label/aria-labelledby attribute.
//
// Fields without a non-empty id attribute are silently skipped: without an
// id there is nothing to associate a label with statically, and flagging
// them would drown real findings in noise on legacy forms.
type LabelCheck struct{}

func (c *LabelCheck) ID() string           { return "missing-label" }
func (c *LabelCheck) DefaultEnabled() bool { return true }
func (c *LabelCheck) PageLevel() bool      { return false }

func (c *LabelCheck) Evaluate(doc Document, ctx *Context) []Finding {
	// Collect ids referenced by <label for="...">.
	labeled := make(map[string]bool)
	for _, l := range doc.Query("label[for]") {
		if v, ok := l.Attr("for"); ok && strings.TrimSpace(v) != "" {
			labeled[v] = true
		}
	}

	var findings []Finding
	for _, n := range doc.Query("input, select, textarea") {
		if t, ok := n.Attr("type"); ok && unlabelableTypes[strings.ToLower(t)] {
			continue
		}
		id, ok := n.Attr("id")
		if !ok || strings.TrimSpace(id) == "" {
			continue
		}
		if labeled[id] || attrNonEmpty(n, "aria-label") || attrNonEmpty(n, "aria-labelledby") {
			continue
		}
		if hasAncestorTag(n, "label") {
			continue
		}
		findings = append(findings, newFinding(c.ID(), SeverityError, n, ctx,
			fmt.Sprintf("Form field %q has no associated label", id),
			`Add <label for="`+id+`">, wrap the field in a <label>, or set aria-label`,
			"WCAG 1.3.1, 3.3.2"))
	}
	return findings
}

// ErrorAssociationCheck verifies that fields flagged as invalid reference
// an error message element the assistive technology can announce.
type ErrorAssociationCheck struct{}

func (c *ErrorAssociationCheck) ID() string           { return "error-association" }
func (c *ErrorAssociationCheck) DefaultEnabled() bool { return true }
func (c *ErrorAssociationCheck) PageLevel() bool      { return false }

func (c *ErrorAssociationCheck) Evaluate(doc Document, ctx *Context) []Finding {
	var findings []Finding
	for _, n := range doc.Query("[aria-invalid=true]") {
		refs := describedByIDs(n)
		if len(refs) == 0 {
			findings = append(findings, newFinding(c.ID(), SeverityError, n, ctx,
				"Invalid field is not associated with an error message",
				"Point aria-describedby (or aria-errormessage) at the error text element",
				"WCAG 3.3.1"))
			continue
		}
		for _, ref := range refs {
			// Ids built from runtime expressions cannot be resolved
			// statically.
			if strings.Contains(ref, ctx.PlaceholderToken()) {
				continue
			}
			if len(doc.Query("[id="+ref+"]")) == 0 {
				findings = append(findings, newFinding(c.ID(), SeverityError, n, ctx,
					fmt.Sprintf("aria-describedby references %q, which does not exist", ref),
					"Make the reference match the id of the error message element",
					"WCAG 3.3.1"))
			}
		}
	}
	return findings
}

// describedByIDs returns the ids referenced by aria-describedby or
// aria-errormessage, in document attribute order.
func describedByIDs(n Node) []string {
	var out []string
	for _, attr := range []string{"aria-describedby", "aria-errormessage"} {
		if v, ok := n.Attr(attr); ok {
			out = append(out, strings.Fields(v)...)
		}
	}
	return out
}

// hasAncestorTag walks the parent chain looking for the given tag.
func hasAncestorTag(n Node, tag string) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.TagName() == tag {
			return true
		}
	}
	return false
}
