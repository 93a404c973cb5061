package domtree

import (
	"strings"

	"golang.org/x/net/html"
)

// The selector engine supports the subset the rule checks need:
//
//	tag  #id  .class  [attr]  [attr=val]  [attr^=val]
//	compound selectors (input[type=text])
//	descendant combinator (dialog button)
//	comma-separated lists
//
// Anything unparsable matches nothing.

// attrCond is one [attr...] condition.
type attrCond struct {
	name string
	op   string // "", "=", "^="
	val  string
}

// compound is one simple selector: tag + id + classes + attribute conditions.
type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrCond
	ok      bool
}

// selector is a descendant chain of compounds; the node must match the
// last compound and earlier compounds must match ancestors in order.
type selector struct {
	parts []compound
}

// parseSelectorList splits a comma-separated selector list.
func parseSelectorList(s string) []selector {
	var out []selector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sel := parseSelector(part)
		if len(sel.parts) == 0 {
			continue
		}
		out = append(out, sel)
	}
	return out
}

func parseSelector(s string) selector {
	var sel selector
	for _, field := range strings.Fields(s) {
		c := parseCompound(field)
		if !c.ok {
			return selector{}
		}
		sel.parts = append(sel.parts, c)
	}
	return sel
}

// parseCompound scans one simple selector like input#q.wide[type=text].
func parseCompound(s string) compound {
	c := compound{ok: true}
	i := 0
	readName := func() string {
		start := i
		for i < len(s) {
			ch := s[i]
			if ch == '#' || ch == '.' || ch == '[' {
				break
			}
			i++
		}
		return s[start:i]
	}

	if i < len(s) && s[i] != '#' && s[i] != '.' && s[i] != '[' {
		c.tag = strings.ToLower(readName())
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			i++
			c.id = readName()
		case '.':
			i++
			c.classes = append(c.classes, readName())
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return compound{}
			}
			cond, ok := parseAttrCond(s[i+1 : i+end])
			if !ok {
				return compound{}
			}
			c.attrs = append(c.attrs, cond)
			i += end + 1
		default:
			return compound{}
		}
	}
	return c
}

func parseAttrCond(s string) (attrCond, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return attrCond{}, false
	}
	for _, op := range []string{"^=", "="} {
		if idx := strings.Index(s, op); idx > 0 {
			val := strings.Trim(s[idx+len(op):], `"'`)
			return attrCond{name: strings.ToLower(s[:idx]), op: op, val: val}, true
		}
	}
	return attrCond{name: strings.ToLower(s)}, true
}

func (sel selector) match(n *html.Node) bool {
	last := len(sel.parts) - 1
	if !sel.parts[last].match(n) {
		return false
	}
	// Earlier compounds must match ancestors, innermost-first.
	anc := n.Parent
	for i := last - 1; i >= 0; i-- {
		for {
			if anc == nil {
				return false
			}
			if anc.Type == html.ElementNode && sel.parts[i].match(anc) {
				anc = anc.Parent
				break
			}
			anc = anc.Parent
		}
	}
	return true
}

func (c compound) match(n *html.Node) bool {
	if c.tag != "" && !strings.EqualFold(n.Data, c.tag) {
		return false
	}
	if c.id != "" {
		if v, ok := attrOf(n, "id"); !ok || v != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		v, _ := attrOf(n, "class")
		have := strings.Fields(v)
		for _, want := range c.classes {
			found := false
			for _, cls := range have {
				if cls == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, cond := range c.attrs {
		v, ok := attrOf(n, cond.name)
		if !ok {
			return false
		}
		switch cond.op {
		case "=":
			if v != cond.val {
				return false
			}
		case "^=":
			if !strings.HasPrefix(v, cond.val) {
				return false
			}
		}
	}
	return true
}

func attrOf(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}
