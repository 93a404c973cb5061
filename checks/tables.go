package checks

// TableHeaderCheck verifies that every data table declares header cells.
// Tables marked role="presentation" (or "none") are layout tables and are
// skipped.
type TableHeaderCheck struct{}

func (c *TableHeaderCheck) ID() string           { return "table-headers" }
func (c *TableHeaderCheck) DefaultEnabled() bool { return true }
func (c *TableHeaderCheck) PageLevel() bool      { return false }

func (c *TableHeaderCheck) Evaluate(doc Document, ctx *Context) []Finding {
	tables := doc.Query("table")
	if len(tables) == 0 {
		return nil
	}

	headers := doc.Query("th")

	var findings []Finding
	for _, t := range tables {
		if role, _ := t.Attr("role"); role == "presentation" || role == "none" {
			continue
		}
		if containsAny(t, headers) {
			continue
		}
		findings = append(findings, newFinding(c.ID(), SeverityError, t, ctx,
			"Table has no header cells",
			"Mark header cells with <th scope=...> so rows and columns are announced",
			"WCAG 1.3.1"))
	}
	return findings
}
