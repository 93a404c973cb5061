// Package report renders finding lists for the CLI: a grouped plain-text
// format for terminals and a stable JSON format for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/viewcheck/viewcheck/checks"
)

// WriteJSON writes the findings as a JSON document.
func WriteJSON(w io.Writer, findings []checks.Finding) error {
	payload := struct {
		Findings []checks.Finding `json:"findings"`
		Errors   int              `json:"errors"`
		Warnings int              `json:"warnings"`
	}{
		Findings: findings,
	}
	if payload.Findings == nil {
		payload.Findings = []checks.Finding{}
	}
	for _, f := range findings {
		switch f.Severity {
		case checks.SeverityError:
			payload.Errors++
		case checks.SeverityWarning:
			payload.Warnings++
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// WriteText writes findings grouped by file, ordered by line within each
// group.
func WriteText(w io.Writer, findings []checks.Finding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(w, "No accessibility issues found.")
		return err
	}

	byFile := make(map[string][]checks.Finding)
	var files []string
	for _, f := range findings {
		if _, ok := byFile[f.File]; !ok {
			files = append(files, f.File)
		}
		byFile[f.File] = append(byFile[f.File], f)
	}

	errors, warnings := 0, 0
	for _, file := range files {
		group := byFile[file]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Line < group[j].Line })

		name := file
		if name == "" {
			name = "(no file)"
		}
		if _, err := fmt.Fprintf(w, "%s\n", name); err != nil {
			return err
		}
		for _, f := range group {
			loc := "   -"
			if f.Line > 0 {
				loc = fmt.Sprintf("%4d", f.Line)
			}
			if _, err := fmt.Fprintf(w, "  %s  %-7s %-24s %s\n", loc, f.Severity, f.Rule, f.Message); err != nil {
				return err
			}
			if f.Remediation != "" {
				if _, err := fmt.Fprintf(w, "        %s\n", f.Remediation); err != nil {
					return err
				}
			}
			switch f.Severity {
			case checks.SeverityError:
				errors++
			case checks.SeverityWarning:
				warnings++
			}
		}
	}

	_, err := fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", errors, warnings)
	return err
}

// Worst returns the highest severity present: "error", "warning" or "".
func Worst(findings []checks.Finding) checks.Severity {
	worst := checks.Severity("")
	for _, f := range findings {
		if f.Severity == checks.SeverityError {
			return checks.SeverityError
		}
		worst = checks.SeverityWarning
	}
	return worst
}
