package probe

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ethicslab/aigov/internal/types"
)

// Summary counts verdicts across a run.
type Summary struct {
	Pass   int `json:"pass" yaml:"pass"`
	Fail   int `json:"fail" yaml:"fail"`
	Errors int `json:"errors" yaml:"errors"`
}

// Summarize tallies the verdicts of a finished run.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Verdict {
		case VerdictPass:
			s.Pass++
		case VerdictFail:
			s.Fail++
		default:
			s.Errors++
		}
	}
	return s
}

// Failed reports whether any probe produced a FAIL verdict.
func (s Summary) Failed() bool {
	return s.Fail > 0
}

// ReportDocument renders a finished run as a guide-kind document so the
// evidence lands in the library next to the cards it backs.
func ReportDocument(set Set, results []Result, model string, now time.Time) types.Document {
	sum := Summarize(results)
	title := fmt.Sprintf("Probe Report: %s (%s)", set.Name, now.Format("2006-01-02"))

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if set.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", set.Description)
	}
	fmt.Fprintf(&b, "- **Model:** %s\n", model)
	fmt.Fprintf(&b, "- **Probes:** %d\n", len(results))
	fmt.Fprintf(&b, "- **Verdicts:** %d pass, %d fail, %d error\n\n", sum.Pass, sum.Fail, sum.Errors)

	b.WriteString("## Results\n\n")
	b.WriteString("| ID | Category | Expectation | Outcome | Verdict | Detail |\n")
	b.WriteString("|----|----------|-------------|---------|---------|--------|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Probe.ID, escapeCell(r.Probe.Category), r.Probe.Expectation,
			r.Outcome, r.Verdict, escapeCell(r.Detail))
	}

	fmt.Fprintf(&b, "\n> Generated on %s by aigov\n", now.Format("2006-01-02"))

	return types.Document{
		Front: types.Frontmatter{
			ID:        uuid.NewString(),
			Kind:      types.KindGuide,
			Title:     title,
			Model:     model,
			Status:    types.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Body: b.String(),
	}
}

// escapeCell keeps free text from breaking the Markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
