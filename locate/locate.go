// Package locate recovers the best-matching source line for a finding's
// target node.
//
// This is a heuristic re-match against the raw template text, not a true
// source map: extraction does not track positions, so the mapper searches
// the original source for the most identifying trace of the target.
// Occasional mis-attribution on structurally-identical elements is
// expected and accepted.
package locate

import (
	"strings"

	"github.com/viewcheck/viewcheck/checks"
)

// helperTokens maps a rendered tag to the helper-call tokens that emit
// it, for elements that never appear literally in template source.
var helperTokens = map[string][]string{
	"img":      {"image_tag"},
	"a":        {"link_to"},
	"button":   {"button_tag", ".button"},
	"input":    {"_field", "check_box", "radio_button", "submit"},
	"textarea": {"text_area"},
	"select":   {".select", "select_tag"},
	"label":    {".label", "label_tag"},
}

// FindLine returns the 1-based line of the finding's target in the
// original template source, or 0 when no heuristic matches.
//
// Heuristic priority, first match wins:
//  1. line with the tag-open token and an id attribute exactly matching
//     the target id
//  2. same with a matching src
//  3. same with a matching href
//  4. same with a matching type attribute
//  5. first line with the tag-open token at all
//
// For helper-emitted elements the same ladder is retried with the
// helper-call tokens in place of the tag-open token.
func FindLine(source string, f checks.Finding) int {
	if f.Tag == "" {
		return 0
	}
	lines := strings.Split(source, "\n")

	openTokens := []string{"<" + f.Tag}
	if ht, ok := helperTokens[f.Tag]; ok {
		openTokens = append(openTokens, ht...)
	}

	attrs := []struct{ name, value string }{
		{"id", f.ID},
		{"src", f.Src},
		{"href", f.Href},
		{"type", f.Type},
	}
	for _, open := range openTokens {
		for _, attr := range attrs {
			if attr.value == "" {
				continue
			}
			if ln := matchLine(lines, open, attr.name, attr.value); ln > 0 {
				return ln
			}
		}
	}

	// Fallback: first open-tag occurrence of the tag name.
	for _, open := range openTokens {
		for i, line := range lines {
			if strings.Contains(line, open) {
				return i + 1
			}
		}
	}
	return 0
}

// matchLine finds the first line containing both the open token and the
// attribute value, either as a literal attribute or as a helper argument.
func matchLine(lines []string, open, name, value string) int {
	patterns := []string{
		name + `="` + value + `"`,
		name + `='` + value + `'`,
		":" + value,
		`"` + value + `"`,
		`'` + value + `'`,
	}
	for i, line := range lines {
		if !strings.Contains(line, open) {
			continue
		}
		for _, p := range patterns {
			if strings.Contains(line, p) {
				return i + 1
			}
		}
	}
	return 0
}
