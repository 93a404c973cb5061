package checks

// ContrastCheck is a placeholder for text color contrast analysis.
//
// True contrast requires computed styles and rendered pixel colors, which
// a static scan of template markup cannot provide. The rule id is
// registered so configurations referencing it stay valid, but evaluation
// always yields zero findings.
type ContrastCheck struct{}

func (c *ContrastCheck) ID() string           { return "color-contrast" }
func (c *ContrastCheck) DefaultEnabled() bool { return true }
func (c *ContrastCheck) PageLevel() bool      { return false }

func (c *ContrastCheck) Evaluate(doc Document, ctx *Context) []Finding {
	return nil
}
