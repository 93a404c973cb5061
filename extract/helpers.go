package extract

import (
	"regexp"
	"sort"
	"strings"
)

// The helper-call catalogue. Each entry recognizes one call shape used to
// emit a standard element and rewrites it into the markup it would render.
// The catalogue deliberately mirrors the framework's form/asset helper
// naming so existing templates are covered without configuration.

// fieldTypes maps form-builder field helpers to the input type they render.
var fieldTypes = map[string]string{
	"text_field":      "text",
	"password_field":  "password",
	"email_field":     "email",
	"number_field":    "number",
	"search_field":    "search",
	"telephone_field": "tel",
	"phone_field":     "tel",
	"url_field":       "url",
	"date_field":      "date",
	"file_field":      "file",
	"hidden_field":    "hidden",
	"check_box":       "checkbox",
	"radio_button":    "radio",
}

// builderCall matches `f.helper args` / `form.helper args` calls,
// with or without arguments.
var builderCall = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\.([a-z_]+)(?:[\s(]+(.*))?$`)

// rewriteHelperCall rewrites one recognized helper call into literal
// markup. The second return is false when the call shape is not in the
// catalogue and the caller should degrade to the placeholder.
func rewriteHelperCall(code string) (string, bool) {
	code = strings.TrimSpace(code)

	// Form-builder calls: f.text_field :email, id: "signup_email"
	if m := builderCall.FindStringSubmatch(code); m != nil {
		return rewriteBuilderCall(m[2], strings.TrimSuffix(m[3], ")"))
	}

	// Bare helper calls: image_tag "logo.png", alt: "Logo"
	name, rest, ok := splitCall(code)
	if !ok {
		return "", false
	}
	args := parseArgs(rest)

	switch name {
	case "image_tag":
		return renderImage(args), true
	case "link_to":
		return renderLink(args), true
	case "button_tag":
		return "<button" + renderAria(args) + ">" + args.positionalText(Placeholder) + "</button>", true
	case "submit_tag":
		return `<input type="submit" value="` + args.positionalText("Save") + `"` + renderAria(args) + ">", true
	case "label_tag":
		return `<label for="` + args.firstName() + `">` + args.textOr(humanize(args.firstName())) + "</label>", true
	case "text_field_tag", "password_field_tag", "email_field_tag", "number_field_tag",
		"search_field_tag", "telephone_field_tag", "url_field_tag", "file_field_tag",
		"hidden_field_tag", "check_box_tag", "radio_button_tag":
		kind := strings.TrimSuffix(name, "_tag")
		return renderInput(fieldTypes[kind], args), true
	case "text_area_tag":
		return renderNamed("textarea", args), true
	case "select_tag":
		return renderNamed("select", args), true
	}
	return "", false
}

// rewriteBuilderCall rewrites a form-builder helper (f.text_field ...).
func rewriteBuilderCall(helper, rest string) (string, bool) {
	args := parseArgs(rest)
	if t, ok := fieldTypes[helper]; ok {
		return renderInput(t, args), true
	}
	switch helper {
	case "text_area":
		return renderNamed("textarea", args), true
	case "select", "collection_select":
		return renderNamed("select", args), true
	case "label":
		return `<label for="` + args.firstName() + `">` + args.textOr(humanize(args.firstName())) + "</label>", true
	case "submit":
		return `<input type="submit" value="` + args.positionalText("Save") + `"` + renderAria(args) + ">", true
	case "button":
		return "<button" + renderAria(args) + ">" + args.positionalText(Placeholder) + "</button>", true
	}
	return "", false
}

// renderInput renders an <input> preserving the field identifier and any
// explicit id/name/aria overrides.
func renderInput(inputType string, args callArgs) string {
	id := args.keyword("id")
	if id == "" {
		id = args.firstName()
	}
	name := args.keyword("name")
	if name == "" {
		name = args.firstName()
	}
	var b strings.Builder
	b.WriteString(`<input type="` + inputType + `"`)
	if id != "" {
		b.WriteString(` id="` + id + `"`)
	}
	if name != "" {
		b.WriteString(` name="` + name + `"`)
	}
	b.WriteString(renderAria(args))
	b.WriteString(">")
	return b.String()
}

// renderNamed renders a container field (<textarea>, <select>).
func renderNamed(tag string, args callArgs) string {
	id := args.keyword("id")
	if id == "" {
		id = args.firstName()
	}
	open := "<" + tag
	if id != "" {
		open += ` id="` + id + `" name="` + id + `"`
	}
	return open + renderAria(args) + "></" + tag + ">"
}

// renderImage renders image_tag output. The alt attribute is emitted only
// when the call provides one: its absence must survive so the alt check
// can see it.
func renderImage(args callArgs) string {
	src := args.positional(0, Placeholder)
	out := `<img src="` + src + `"`
	if alt, ok := args.keywordOK("alt"); ok {
		out += ` alt="` + alt + `"`
	}
	return out + renderAria(args) + ">"
}

// renderLink renders link_to output. The href keeps the raw path
// expression so the line mapper can match on it.
func renderLink(args callArgs) string {
	text := args.positional(0, Placeholder)
	href := args.positional(1, Placeholder)
	return `<a href="` + href + `"` + renderAria(args) + ">" + text + "</a>"
}

// renderAria carries explicit title/aria-* keyword arguments through to
// the rendered element.
func renderAria(args callArgs) string {
	keys := make([]string, 0, len(args.keywords))
	for k := range args.keywords {
		if k == "title" || strings.HasPrefix(k, "aria-") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(" " + k + `="` + args.keywords[k] + `"`)
	}
	return b.String()
}

// splitCall splits "name args..." / "name(args...)" into name and args.
func splitCall(code string) (string, string, bool) {
	for i := 0; i < len(code); i++ {
		ch := code[i]
		if ch == ' ' || ch == '(' {
			rest := code[i+1:]
			if ch == '(' {
				rest = strings.TrimSuffix(rest, ")")
			}
			return code[:i], rest, isIdent(code[:i])
		}
	}
	return code, "", isIdent(code)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'a' && ch <= 'z' || ch == '_' || ch >= '0' && ch <= '9' && i > 0 {
			continue
		}
		return false
	}
	return true
}

// callArgs holds the parsed arguments of one helper call.
type callArgs struct {
	positionals []string          // literal values; expressions become Placeholder
	symbols     []string          // :field style positionals, in order
	keywords    map[string]string // keyword arguments with literal values
}

// parseArgs splits a Ruby-ish argument list on top-level commas and
// classifies each part. Values that are not string/symbol literals keep
// their raw text when they look like bare path expressions, and degrade
// to the placeholder otherwise.
func parseArgs(s string) callArgs {
	args := callArgs{keywords: make(map[string]string)}
	for _, part := range splitTopLevel(s) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if key, val, ok := splitKeyword(part); ok {
			args.keywords[key] = literalValue(val)
			continue
		}
		if sym, ok := strings.CutPrefix(part, ":"); ok {
			args.symbols = append(args.symbols, sym)
			continue
		}
		args.positionals = append(args.positionals, literalValue(part))
	}
	return args
}

// splitTopLevel splits on commas outside quotes, parens, brackets and
// braces.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[' || ch == '{':
			depth++
		case ch == ')' || ch == ']' || ch == '}':
			depth--
		case ch == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// splitKeyword recognizes `key: value` and `"key": value` pairs.
func splitKeyword(part string) (string, string, bool) {
	idx := keywordColon(part)
	if idx < 0 {
		return "", "", false
	}
	key := strings.Trim(strings.TrimSpace(part[:idx]), `"'`)
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(part[idx+1:]), true
}

// keywordColon finds the keyword-separating colon: outside quotes, not
// the leading colon of a symbol, and followed by whitespace or a value.
func keywordColon(s string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == ':':
			if i == 0 || i == len(s)-1 {
				return -1
			}
			// ":sym" style symbol values start with a colon after a space;
			// the keyword colon directly follows the key.
			if s[i-1] == ' ' {
				return -1
			}
			return i
		}
	}
	return -1
}

// literalValue resolves an argument to a literal string: quoted strings
// and symbols keep their content, bare identifiers/paths keep their raw
// text, anything else becomes the placeholder.
func literalValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		inner := s[1 : len(s)-1]
		return substituteInterpolations(inner)
	}
	if sym, ok := strings.CutPrefix(s, ":"); ok {
		return sym
	}
	if isBarePath(s) {
		return s
	}
	return Placeholder
}

// substituteInterpolations replaces #{...} interpolations inside a string
// literal with the placeholder, keeping the literal prefix and suffix.
func substituteInterpolations(s string) string {
	var b strings.Builder
	for {
		idx := strings.Index(s, "#{")
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		b.WriteString(Placeholder)
		end := strings.IndexByte(s[idx:], '}')
		if end < 0 {
			return b.String()
		}
		s = s[idx+end+1:]
	}
}

// isBarePath reports whether s looks like a bare route/path expression
// (root_path, user_url(user)) worth keeping verbatim for line matching.
func isBarePath(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' ||
			ch >= '0' && ch <= '9' || ch == '(' || ch == ')' || ch == '.' || ch == '@' {
			continue
		}
		return false
	}
	return s != ""
}

// firstName returns the first symbol argument (the field identifier).
func (a callArgs) firstName() string {
	if len(a.symbols) > 0 {
		return a.symbols[0]
	}
	if len(a.positionals) > 0 {
		return a.positionals[0]
	}
	return ""
}

// keyword returns a keyword argument value, or "".
func (a callArgs) keyword(key string) string {
	return a.keywords[key]
}

// keywordOK returns a keyword argument and whether it was present.
func (a callArgs) keywordOK(key string) (string, bool) {
	v, ok := a.keywords[key]
	return v, ok
}

// positional returns the i-th non-symbol positional, or fallback.
func (a callArgs) positional(i int, fallback string) string {
	if i < len(a.positionals) {
		return a.positionals[i]
	}
	return fallback
}

// positionalText returns the first positional, or fallback.
func (a callArgs) positionalText(fallback string) string {
	return a.positional(0, fallback)
}

// textOr returns the second positional (label text), or fallback.
func (a callArgs) textOr(fallback string) string {
	if len(a.positionals) > 0 {
		return a.positionals[0]
	}
	if fallback == "" {
		return Placeholder
	}
	return fallback
}

// humanize turns a field identifier into display text (user_name -> User name).
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
