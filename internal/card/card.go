// Package card renders model and data cards from collected field values.
//
// Card generation is deliberately permissive: values are interpolated
// verbatim, with no vocabulary checks, so teams can document systems that
// predate the controlled taxonomies. Validation is a separate concern
// handled by the lint package against managed documents.
package card

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/google/renameio/v2"

	"github.com/ethicslab/aigov/internal/types"
)

const (
	// OutputFilename is the fixed model card filename written to the
	// working directory. Repeated runs overwrite it in place.
	OutputFilename = "MODEL_CARD.md"

	// DataOutputFilename is the fixed data card filename.
	DataOutputFilename = "DATA_CARD.md"
)

// Prompt is one interactive question with its default answer.
type Prompt struct {
	// Field is the stable field key, used by --set overrides.
	Field string

	// Label is the question shown to the user.
	Label string

	// Default is used when the user submits a blank line.
	Default string
}

// Fields holds the seven model card values in prompt order.
type Fields struct {
	// Name is the model or agent name.
	Name string

	// Version is the model version string.
	Version string

	// Tier is the EU AI Act risk tier.
	Tier string

	// Category is the NIST AI 600-1 safety category.
	Category string

	// Protection is the jailbreak protection level.
	Protection string

	// DataSource describes the training data source.
	DataSource string

	// Privacy is the privacy protection technique.
	Privacy string
}

// ModelPrompts returns the model card questions in presentation order.
func ModelPrompts() []Prompt {
	return []Prompt{
		{Field: "name", Label: "Model/Agent Name", Default: "precision-medicine-mcp"},
		{Field: "version", Label: "Version", Default: "1.0.0"},
		{Field: "tier", Label: "EU AI Act Risk Tier", Default: "High"},
		{Field: "category", Label: "NIST AI 600-1 Safety Category", Default: "Data Privacy"},
		{Field: "protection", Label: "Jailbreak Protection Level", Default: "High"},
		{Field: "source", Label: "Data Source", Default: "De-identified clinical records"},
		{Field: "privacy", Label: "Privacy Protection", Default: "Differential privacy"},
	}
}

// FromAnswers maps answers in prompt order onto Fields. The answers slice
// must have one entry per model prompt.
func FromAnswers(answers []string) (Fields, error) {
	if len(answers) != len(ModelPrompts()) {
		return Fields{}, fmt.Errorf("expected %d answers, got %d", len(ModelPrompts()), len(answers))
	}
	return Fields{
		Name:       answers[0],
		Version:    answers[1],
		Tier:       answers[2],
		Category:   answers[3],
		Protection: answers[4],
		DataSource: answers[5],
		Privacy:    answers[6],
	}, nil
}

// modelCardTemplate is the fixed card layout. Only the Date value varies
// between runs with identical answers.
const modelCardTemplate = `# Model Card: {{.Name}}

> Generated on {{.Date}} by aigov

| Field | Value |
| ----- | ----- |
| Version | {{.Version}} |
| EU AI Act Risk Tier | {{.Tier}} |
| Safety Standard | NIST AI 600-1 |

## Model Safety Features

- Primary safety category: {{.Category}}
- Jailbreak protection: {{.Protection}}
- All consequential tool actions require human-in-the-loop approval before execution.

## Data Provenance & Ethics

- Data source: {{.DataSource}}
- Privacy protection: {{.Privacy}}
- Training data reviewed for representational bias with documented mitigations.

---

*Produced by the aigov model card generator for AI governance reviews.*
`

type templateData struct {
	Fields
	Date string
}

var modelTmpl = template.Must(template.New("model-card").Parse(modelCardTemplate))

// Render produces the model card Markdown for the given fields. The date
// line uses now's calendar date; everything else is a pure function of the
// fields.
func Render(f Fields, now time.Time) (string, error) {
	var b strings.Builder
	data := templateData{Fields: f, Date: now.Format("2006-01-02")}
	if err := modelTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render model card: %w", err)
	}
	return b.String(), nil
}

// Write stores card content at the fixed filename under dir, replacing any
// previous card atomically.
func Write(dir, filename, content string) error {
	path := filepath.Join(dir, filename)
	if err := renameio.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write card %s: %w", path, err)
	}
	return nil
}

// DataFields holds the data card values in prompt order.
type DataFields struct {
	// Dataset is the dataset name.
	Dataset string

	// Steward is the accountable data steward.
	Steward string

	// Collection describes how the data was collected.
	Collection string

	// Consent is the legal basis for processing.
	Consent string

	// Retention is the retention period.
	Retention string

	// PHIHandling describes protected health information handling.
	PHIHandling string
}

// DataPrompts returns the data card questions in presentation order.
func DataPrompts() []Prompt {
	return []Prompt{
		{Field: "dataset", Label: "Dataset Name", Default: "oncology-outcomes-2025"},
		{Field: "steward", Label: "Data Steward", Default: "Clinical Data Office"},
		{Field: "collection", Label: "Collection Method", Default: "EHR extraction under IRB protocol"},
		{Field: "consent", Label: "Consent Basis", Default: "IRB waiver with de-identification"},
		{Field: "retention", Label: "Retention Period", Default: "7 years"},
		{Field: "phi", Label: "PHI Handling", Default: "Safe Harbor de-identification before ingest"},
	}
}

// DataFromAnswers maps answers in prompt order onto DataFields.
func DataFromAnswers(answers []string) (DataFields, error) {
	if len(answers) != len(DataPrompts()) {
		return DataFields{}, fmt.Errorf("expected %d answers, got %d", len(DataPrompts()), len(answers))
	}
	return DataFields{
		Dataset:     answers[0],
		Steward:     answers[1],
		Collection:  answers[2],
		Consent:     answers[3],
		Retention:   answers[4],
		PHIHandling: answers[5],
	}, nil
}

const dataCardTemplate = `# Data Card: {{.Dataset}}

> Generated on {{.Date}} by aigov

| Field | Value |
| ----- | ----- |
| Steward | {{.Steward}} |
| Consent Basis | {{.Consent}} |
| Retention | {{.Retention}} |

## Collection & Provenance

- Collection method: {{.Collection}}
- PHI handling: {{.PHIHandling}}
- Lineage recorded from source system to training snapshot.

## Ethics Review

- Representational coverage assessed against the served population.
- Known gaps and exclusions documented with the steward.

---

*Produced by the aigov data card generator for AI governance reviews.*
`

type dataTemplateData struct {
	DataFields
	Date string
}

var dataTmpl = template.Must(template.New("data-card").Parse(dataCardTemplate))

// RenderData produces the data card Markdown for the given fields.
func RenderData(f DataFields, now time.Time) (string, error) {
	var b strings.Builder
	data := dataTemplateData{DataFields: f, Date: now.Format("2006-01-02")}
	if err := dataTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render data card: %w", err)
	}
	return b.String(), nil
}

// ManagedFrontmatter builds the frontmatter for a card stored in the
// library. Values are carried verbatim; vocabulary checks stay in lint.
func ManagedFrontmatter(f Fields, id string, now time.Time) types.Frontmatter {
	return types.Frontmatter{
		ID:        id,
		Kind:      types.KindModelCard,
		Title:     "Model Card: " + f.Name,
		Model:     f.Name,
		Version:   f.Version,
		Tier:      types.RiskTier(f.Tier),
		Category:  types.SafetyCategory(f.Category),
		Status:    types.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ManagedDataFrontmatter builds the frontmatter for a data card stored in
// the library. Data card fields are free text, so only the title carries
// field content.
func ManagedDataFrontmatter(f DataFields, id string, now time.Time) types.Frontmatter {
	return types.Frontmatter{
		ID:        id,
		Kind:      types.KindDataCard,
		Title:     "Data Card: " + f.Dataset,
		Status:    types.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
