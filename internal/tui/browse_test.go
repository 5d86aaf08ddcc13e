package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ethicslab/aigov/internal/library"
	"github.com/ethicslab/aigov/internal/types"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	lib := library.New(t.TempDir())
	if err := lib.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	seed := []types.Document{
		{
			Front: types.Frontmatter{
				ID: "b-0000001", Kind: types.KindModelCard, Title: "Oncology Triage",
				Tier: types.TierHigh, Status: types.StatusDraft, CreatedAt: now, UpdatedAt: now,
			},
			Body: "# Oncology Triage\n\nSafety features summary.\n",
		},
		{
			Front: types.Frontmatter{
				ID: "b-0000002", Kind: types.KindDataCard, Title: "Cohort Dataset",
				Tier: types.TierLimited, Status: types.StatusDraft, CreatedAt: now, UpdatedAt: now,
			},
			Body: "# Cohort Dataset\n\nProvenance notes.\n",
		},
		{
			Front: types.Frontmatter{
				ID: "b-0000003", Kind: types.KindGuide, Title: "Escalation Runbook",
				Status: types.StatusDraft, CreatedAt: now, UpdatedAt: now,
			},
			Body: "# Escalation Runbook\n\nPage the on-call reviewer.\n",
		},
	}
	for _, doc := range seed {
		if _, err := lib.WriteDocument(doc); err != nil {
			t.Fatal(err)
		}
	}

	m, err := New(lib)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewBuildsRows(t *testing.T) {
	m := newTestModel(t)

	if len(m.all) != 3 {
		t.Fatalf("all = %d documents, want 3", len(m.all))
	}
	if len(m.table.Rows()) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.table.Rows()))
	}

	// Documents are sorted by path, so cards come before guides.
	first := m.table.Rows()[0]
	if first[0] != "data-card" && first[0] != "model-card" {
		t.Errorf("first row kind = %q", first[0])
	}
}

func TestFilterNarrowsRows(t *testing.T) {
	m := newTestModel(t)

	m.filter = "triage"
	m.rebuildRows()

	if len(m.visible) != 1 {
		t.Fatalf("visible = %d, want 1", len(m.visible))
	}
	if m.visible[0].Front.Title != "Oncology Triage" {
		t.Errorf("visible = %q", m.visible[0].Front.Title)
	}

	m.filter = ""
	m.rebuildRows()
	if len(m.visible) != 3 {
		t.Errorf("cleared filter shows %d rows, want 3", len(m.visible))
	}
}

func TestMatchesSearchesAllColumns(t *testing.T) {
	doc := types.Document{
		Path: "cards/2026-07-01-oncology-triage-b000000.md",
		Front: types.Frontmatter{
			Kind:  types.KindModelCard,
			Tier:  types.TierHigh,
			Title: "Oncology Triage",
		},
	}

	for _, needle := range []string{"model-card", "high", "oncology", "cards/2026"} {
		if !matches(doc, needle) {
			t.Errorf("matches(%q) = false", needle)
		}
	}
	if matches(doc, "checklist") {
		t.Error("matches(checklist) = true")
	}
}

func TestLoadPreview(t *testing.T) {
	m := newTestModel(t)

	m.loadPreview()

	if m.previewPath == "" {
		t.Fatal("preview path not set")
	}
	if m.previewPath != m.visible[0].Path {
		t.Errorf("preview path = %q, want %q", m.previewPath, m.visible[0].Path)
	}
	if !strings.Contains(m.preview.View(), strings.Split(m.visible[0].Front.Title, " ")[0]) {
		t.Error("preview does not show the selected document")
	}
}

func TestUpdateFilterMode(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(keyRunes("/"))
	m = next.(Model)
	if !m.isFiltering {
		t.Fatal("slash did not enter filter mode")
	}

	for _, r := range "cohort" {
		next, _ = m.Update(keyRunes(string(r)))
		m = next.(Model)
	}
	if m.filter != "cohort" {
		t.Errorf("filter = %q", m.filter)
	}
	if len(m.visible) != 1 {
		t.Errorf("visible = %d, want 1", len(m.visible))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.isFiltering || m.filter != "" {
		t.Errorf("esc did not clear filter: %q", m.filter)
	}
	if len(m.visible) != 3 {
		t.Errorf("visible = %d after clear, want 3", len(m.visible))
	}
}

func TestUpdateQuits(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestFooterCounts(t *testing.T) {
	m := newTestModel(t)

	if !strings.Contains(m.footerView(), "3/3 documents") {
		t.Errorf("footer = %q", m.footerView())
	}

	m.filter = "cohort"
	m.rebuildRows()
	if !strings.Contains(m.footerView(), "1/3 documents") {
		t.Errorf("filtered footer = %q", m.footerView())
	}
}

func TestViewShowsError(t *testing.T) {
	m := Model{err: errors.New("scan failed")}
	if !strings.Contains(m.View(), "scan failed") {
		t.Error("error not surfaced in view")
	}
}
