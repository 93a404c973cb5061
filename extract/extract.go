// Package extract converts raw ERB template text into HTML-like markup
// suitable for structural accessibility analysis.
//
// The transform is one-directional and best-effort:
//
//   - recognized helper calls (form fields, images, links, buttons) are
//     rewritten into the literal element they would render, preserving
//     explicit id/name/src arguments;
//   - print expressions inside an attribute value become the fixed
//     Placeholder token, never deleted, so identifiers assembled from
//     runtime values keep their literal skeleton;
//   - print expressions in element bodies become constant placeholder
//     text, so non-empty-text checks do not misfire on runtime content;
//   - statements and comments are stripped and whitespace is normalized.
//
// Unrecognized constructs degrade to deletion (statements) or placeholder
// substitution (values). That trade-off keeps the extractor robust on
// templates it has never seen, at the cost of structural precision.
package extract

import "strings"

// Placeholder is the token substituted for embedded runtime expressions.
// It survives into extracted ids, so downstream duplicate analysis can
// recognize dynamic identifiers.
const Placeholder = "dynamic"

// tagKind classifies one ERB tag.
type tagKind int

const (
	kindStatement tagKind = iota // <% ... %>
	kindExpr                     // <%= ... %>
	kindComment                  // <%# ... %>
)

// Extract converts ERB source into HTML-like markup.
func Extract(source string) string {
	var out strings.Builder
	out.Grow(len(source))

	inTag := false // inside a literal <...> element tag
	var quote byte // active quote char inside a literal tag, or 0

	i := 0
	for i < len(source) {
		if strings.HasPrefix(source[i:], "<%") {
			code, kind, next := scanERBTag(source, i)
			i = next
			switch kind {
			case kindComment, kindStatement:
				// Emits nothing at render time that we can model.
			case kindExpr:
				out.WriteString(renderExpr(code, inTag))
			}
			continue
		}

		ch := source[i]
		switch {
		case inTag && quote != 0:
			if ch == quote {
				quote = 0
			}
		case inTag && (ch == '"' || ch == '\''):
			quote = ch
		case inTag && ch == '>':
			inTag = false
		case !inTag && ch == '<':
			inTag = true
		}
		out.WriteByte(ch)
		i++
	}

	return normalizeWhitespace(out.String())
}

// scanERBTag scans one <% ... %> tag starting at position i, returning the
// inner code, its kind, and the position after the closing delimiter. An
// unterminated tag consumes the rest of the input.
func scanERBTag(source string, i int) (string, tagKind, int) {
	j := i + 2
	kind := kindStatement
	if j < len(source) {
		switch source[j] {
		case '=':
			kind = kindExpr
			j++
		case '#':
			kind = kindComment
			j++
		case '-':
			j++
		}
	}

	end := strings.Index(source[j:], "%>")
	if end < 0 {
		return strings.TrimSpace(source[j:]), kind, len(source)
	}
	code := source[j : j+end]
	code = strings.TrimSuffix(strings.TrimSpace(code), "-")
	return strings.TrimSpace(code), kind, j + end + 2
}

// renderExpr renders a print expression: a recognized helper call becomes
// its literal element, anything else becomes the placeholder. Inside a
// literal element tag only the bare token is ever emitted, since element
// markup cannot nest inside an attribute value.
func renderExpr(code string, inTag bool) string {
	if inTag {
		return Placeholder
	}
	if markup, ok := rewriteHelperCall(code); ok {
		return markup
	}
	return Placeholder
}

// normalizeWhitespace collapses horizontal space runs and drops lines left
// empty after statement stripping, preserving the remaining line order.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n")
}
