package checks

// AltCheck verifies that every <img> carries an alt attribute.
//
// Only a fully absent attribute is a defect: alt="" is the documented way
// to mark a decorative image and must never fire.
type AltCheck struct{}

func (c *AltCheck) ID() string           { return "missing-alt" }
func (c *AltCheck) DefaultEnabled() bool { return true }
func (c *AltCheck) PageLevel() bool      { return false }

func (c *AltCheck) Evaluate(doc Document, ctx *Context) []Finding {
	var findings []Finding
	for _, n := range doc.Query("img") {
		if _, ok := n.Attr("alt"); ok {
			continue
		}
		findings = append(findings, newFinding(c.ID(), SeverityError, n, ctx,
			"Image has no alt attribute",
			`Describe the image with alt="...", or mark it decorative with alt=""`,
			"WCAG 1.1.1"))
	}
	return findings
}
