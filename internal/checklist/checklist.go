// Package checklist materializes embedded framework checklists into a
// library and reports task-list completion per section.
package checklist

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ethicslab/aigov/embedded"
	"github.com/ethicslab/aigov/internal/library"
	"github.com/ethicslab/aigov/internal/mdscan"
	"github.com/ethicslab/aigov/internal/taxonomy"
	"github.com/ethicslab/aigov/internal/types"
)

// ErrExists is returned when a framework checklist is already materialized
// and force was not given.
var ErrExists = errors.New("checklist already exists")

// Template returns the embedded checklist body for a framework.
func Template(fw types.Framework) (string, error) {
	raw, err := embedded.Checklists.ReadFile("checklists/" + string(fw) + ".md")
	if err != nil {
		return "", fmt.Errorf("no embedded checklist for %s: %w", fw, err)
	}
	return string(raw), nil
}

// Title returns the document title used for a framework checklist.
func Title(fw types.Framework) string {
	if info, ok := taxonomy.Frameworks[fw]; ok {
		return info.Title + " Checklist"
	}
	return string(fw) + " Checklist"
}

// Find returns the library's checklist document for a framework, or nil
// when none is materialized yet.
func Find(lib *library.Library, fw types.Framework) (*types.Document, error) {
	documents, _, err := lib.Scan()
	if err != nil {
		return nil, err
	}
	for _, doc := range documents {
		if doc.Front.Kind == types.KindChecklist && doc.Front.Framework == fw {
			return &doc, nil
		}
	}
	return nil, nil
}

// Materialize writes the framework checklist into the library. An existing
// checklist for the framework is refused unless force is set, in which
// case it is rewritten in place keeping its id and creation time.
func Materialize(lib *library.Library, fw types.Framework, force bool, now time.Time) (types.Document, error) {
	body, err := Template(fw)
	if err != nil {
		return types.Document{}, err
	}

	doc := types.Document{
		Front: types.Frontmatter{
			ID:        uuid.NewString(),
			Kind:      types.KindChecklist,
			Title:     Title(fw),
			Framework: fw,
			Status:    types.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Body: body,
	}

	existing, err := Find(lib, fw)
	if err != nil {
		return types.Document{}, err
	}
	if existing != nil {
		if !force {
			return types.Document{}, fmt.Errorf("%w: %s at %s", ErrExists, fw, existing.Path)
		}
		doc.Path = existing.Path
		doc.Front.ID = existing.Front.ID
		doc.Front.CreatedAt = existing.Front.CreatedAt
	}

	return lib.WriteDocument(doc)
}

// SectionProgress is task completion within one level-2 section.
type SectionProgress struct {
	Section string `json:"section" yaml:"section"`
	Done    int    `json:"done" yaml:"done"`
	Total   int    `json:"total" yaml:"total"`
}

// Progress is task completion for one checklist document.
type Progress struct {
	Path      string            `json:"path" yaml:"path"`
	Title     string            `json:"title" yaml:"title"`
	Framework types.Framework   `json:"framework" yaml:"framework"`
	Done      int               `json:"done" yaml:"done"`
	Total     int               `json:"total" yaml:"total"`
	Sections  []SectionProgress `json:"sections" yaml:"sections"`
}

// Percent returns completion as 0-100, or 0 for an empty checklist.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total) * 100
}

// StatusOf computes task completion for a checklist document, grouping
// tasks under the nearest preceding level-2 heading.
func StatusOf(doc types.Document) Progress {
	progress := Progress{
		Path:      doc.Path,
		Title:     doc.Front.Title,
		Framework: doc.Front.Framework,
	}

	scan := mdscan.Scan([]byte(doc.Body))

	sectionFor := func(line int) string {
		name := ""
		for _, h := range scan.Headings {
			if h.Level == 2 && h.Line <= line {
				name = h.Text
			}
		}
		return name
	}

	totals := make(map[string]*SectionProgress)
	var order []string
	for _, task := range scan.Tasks {
		section := sectionFor(task.Line)
		sp, ok := totals[section]
		if !ok {
			sp = &SectionProgress{Section: section}
			totals[section] = sp
			order = append(order, section)
		}
		sp.Total++
		progress.Total++
		if task.Checked {
			sp.Done++
			progress.Done++
		}
	}

	for _, section := range order {
		progress.Sections = append(progress.Sections, *totals[section])
	}
	return progress
}

// StatusAll computes progress for every checklist in the library, in
// scan order.
func StatusAll(lib *library.Library) ([]Progress, error) {
	documents, _, err := lib.Scan()
	if err != nil {
		return nil, err
	}

	var all []Progress
	for _, doc := range documents {
		if doc.Front.Kind != types.KindChecklist {
			continue
		}
		all = append(all, StatusOf(doc))
	}
	return all, nil
}
