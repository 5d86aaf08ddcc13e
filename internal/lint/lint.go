// Package lint validates governance documents: frontmatter completeness,
// controlled-vocabulary values, and required document structure. Checks are
// report-only; nothing is rewritten.
package lint

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethicslab/aigov/internal/docs"
	"github.com/ethicslab/aigov/internal/mdscan"
	"github.com/ethicslab/aigov/internal/taxonomy"
	"github.com/ethicslab/aigov/internal/types"
	"github.com/ethicslab/aigov/internal/worker"
)

// Rule identifiers are stable so findings can be filtered and suppressed.
const (
	// RuleParse fires when a file cannot be read or its frontmatter parsed.
	RuleParse = "parse"

	// RuleFrontmatter fires on missing or empty required frontmatter fields.
	RuleFrontmatter = "frontmatter"

	// RuleVocabulary fires on values outside a controlled vocabulary.
	RuleVocabulary = "vocabulary"

	// RuleCanonicalCase fires when a value matches a vocabulary entry but
	// not its canonical spelling.
	RuleCanonicalCase = "canonical-case"

	// RuleHeading fires when a kind-required heading is absent.
	RuleHeading = "required-heading"

	// RuleGenerated fires when a card is missing its generation-date line.
	RuleGenerated = "generation-date"

	// RuleTasks fires when a checklist carries no task-list items.
	RuleTasks = "task-list"
)

// requiredHeadings lists the level-2 headings each card kind must carry.
var requiredHeadings = map[types.DocKind][]string{
	types.KindModelCard: {"Model Safety Features", "Data Provenance & Ethics"},
	types.KindDataCard:  {"Collection & Provenance", "Ethics Review"},
}

// generatedPrefix marks the generation-date line rendered into every card.
const generatedPrefix = "> Generated on "

var validStatuses = map[types.DocStatus]bool{
	types.StatusDraft:    true,
	types.StatusReview:   true,
	types.StatusApproved: true,
	types.StatusRetired:  true,
}

// Report aggregates findings across a batch of files.
type Report struct {
	// Checked is the number of files examined.
	Checked int `json:"checked" yaml:"checked"`

	// Findings holds all findings in input order.
	Findings []types.Finding `json:"findings" yaml:"findings"`
}

// Counts returns the number of error and warning findings.
func (r Report) Counts() (errs, warnings int) {
	for _, f := range r.Findings {
		switch f.Severity {
		case types.SeverityError:
			errs++
		case types.SeverityWarning:
			warnings++
		}
	}
	return errs, warnings
}

// Failed reports whether any finding is an error. Warnings alone do not
// fail a run.
func (r Report) Failed() bool {
	errs, _ := r.Counts()
	return errs > 0
}

// Linter validates documents against vocabulary and structure rules.
type Linter struct {
	root        string
	concurrency int
}

// New returns a Linter. root, when non-empty, is stripped from finding
// paths for display. concurrency <= 0 means one worker per CPU.
func New(root string, concurrency int) *Linter {
	return &Linter{root: root, concurrency: concurrency}
}

// File lints a single file on disk.
func (l *Linter) File(path string) []types.Finding {
	rel := l.display(path)
	doc, err := docs.Load(path, rel)
	if err != nil {
		return []types.Finding{{
			Path:     rel,
			Rule:     RuleParse,
			Severity: types.SeverityError,
			Message:  err.Error(),
		}}
	}
	return Check(doc)
}

// Files lints a batch of files concurrently, preserving input order.
func (l *Linter) Files(paths []string) Report {
	pool := worker.NewPool[[]types.Finding](l.concurrency)
	results := pool.Process(paths, func(path string) ([]types.Finding, error) {
		return l.File(path), nil
	})

	report := Report{Checked: len(paths)}
	for _, r := range results {
		report.Findings = append(report.Findings, r.Value...)
	}
	return report
}

func (l *Linter) display(path string) string {
	if l.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(l.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Check runs all document-level rules against a parsed document.
func Check(doc types.Document) []types.Finding {
	var findings []types.Finding
	add := func(sev types.Severity, rule, format string, args ...any) {
		findings = append(findings, types.Finding{
			Path:     doc.Path,
			Rule:     rule,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	fm := doc.Front
	if fm.ID == "" {
		add(types.SeverityError, RuleFrontmatter, "missing id")
	}
	if fm.Kind == "" {
		add(types.SeverityError, RuleFrontmatter, "missing kind")
	} else if !fm.Kind.Valid() {
		add(types.SeverityError, RuleVocabulary, "unknown kind %q", fm.Kind)
	}
	if fm.Title == "" {
		add(types.SeverityError, RuleFrontmatter, "missing title")
	}

	if fm.Tier != "" {
		canonical, err := taxonomy.CanonicalTier(string(fm.Tier))
		switch {
		case err != nil:
			add(types.SeverityError, RuleVocabulary, "unknown risk tier %q", fm.Tier)
		case canonical != fm.Tier:
			add(types.SeverityWarning, RuleCanonicalCase, "tier %q should be written %q", fm.Tier, canonical)
		}
	}
	if fm.Category != "" {
		canonical, err := taxonomy.CanonicalCategory(string(fm.Category))
		switch {
		case err != nil:
			add(types.SeverityError, RuleVocabulary, "unknown safety category %q", fm.Category)
		case canonical != fm.Category:
			add(types.SeverityWarning, RuleCanonicalCase, "category %q should be written %q", fm.Category, canonical)
		}
	}
	if fm.Framework != "" {
		canonical, err := taxonomy.CanonicalFramework(string(fm.Framework))
		switch {
		case err != nil:
			add(types.SeverityError, RuleVocabulary, "unknown framework %q", fm.Framework)
		case canonical != fm.Framework:
			add(types.SeverityWarning, RuleCanonicalCase, "framework %q should be written %q", fm.Framework, canonical)
		}
	}
	if fm.Status != "" && !validStatuses[fm.Status] {
		add(types.SeverityError, RuleVocabulary, "unknown status %q", fm.Status)
	}

	switch fm.Kind {
	case types.KindModelCard, types.KindDataCard:
		if fm.Tier == "" {
			add(types.SeverityWarning, RuleFrontmatter, "%s should declare an EU AI Act risk tier", fm.Kind)
		}
		if fm.Category == "" {
			add(types.SeverityWarning, RuleFrontmatter, "%s should declare a NIST AI 600-1 category", fm.Kind)
		}
	case types.KindChecklist:
		if fm.Framework == "" {
			add(types.SeverityWarning, RuleFrontmatter, "checklist should declare a framework")
		}
	}

	findings = append(findings, checkBody(doc)...)
	return findings
}

// checkBody runs the structure rules that need the Markdown body.
func checkBody(doc types.Document) []types.Finding {
	var findings []types.Finding
	scan := mdscan.Scan([]byte(doc.Body))

	if want, ok := requiredHeadings[doc.Front.Kind]; ok {
		have := make(map[string]bool, len(scan.Headings))
		for _, h := range scan.Headings {
			if h.Level == 2 {
				have[h.Text] = true
			}
		}
		for _, heading := range want {
			if !have[heading] {
				findings = append(findings, types.Finding{
					Path:     doc.Path,
					Rule:     RuleHeading,
					Severity: types.SeverityError,
					Message:  fmt.Sprintf("missing required heading %q", heading),
				})
			}
		}

		if !hasGeneratedLine(doc.Body) {
			findings = append(findings, types.Finding{
				Path:     doc.Path,
				Rule:     RuleGenerated,
				Severity: types.SeverityWarning,
				Message:  "missing generation-date line",
			})
		}
	}

	if doc.Front.Kind == types.KindChecklist && len(scan.Tasks) == 0 {
		findings = append(findings, types.Finding{
			Path:     doc.Path,
			Rule:     RuleTasks,
			Severity: types.SeverityWarning,
			Message:  "checklist has no task items",
		})
	}

	return findings
}

func hasGeneratedLine(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, generatedPrefix) {
			return true
		}
	}
	return false
}
