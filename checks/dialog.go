package checks

// focusableSelector matches elements a keyboard user can reach.
const focusableSelector = "a[href], button, input, select, textarea, [tabindex]"

// DialogFocusCheck verifies that every dialog contains at least one
// focusable element. A dialog that traps focus with nothing to focus is
// unusable with a keyboard.
type DialogFocusCheck struct{}

func (c *DialogFocusCheck) ID() string           { return "dialog-focus" }
func (c *DialogFocusCheck) DefaultEnabled() bool { return true }
func (c *DialogFocusCheck) PageLevel() bool      { return false }

func (c *DialogFocusCheck) Evaluate(doc Document, ctx *Context) []Finding {
	dialogs := doc.Query("dialog, [role=dialog]")
	if len(dialogs) == 0 {
		return nil
	}

	focusable := doc.Query(focusableSelector)

	var findings []Finding
	for _, d := range dialogs {
		if containsAny(d, focusable) {
			continue
		}
		findings = append(findings, newFinding(c.ID(), SeverityError, d, ctx,
			"Dialog contains no focusable content",
			"Add a focusable control (close button, form field, or link) inside the dialog",
			"WCAG 2.1.1, 2.4.3"))
	}
	return findings
}

// containsAny reports whether any candidate node is a descendant of root.
func containsAny(root Node, candidates []Node) bool {
	for _, n := range candidates {
		if n == root {
			continue
		}
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p == root {
				return true
			}
		}
	}
	return false
}
