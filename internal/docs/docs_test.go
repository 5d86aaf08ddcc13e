package docs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethicslab/aigov/internal/types"
)

const sampleDoc = `---
id: 3f2c9a1e-0b7d-4c2a-9e61-8f3d5a7b1c20
kind: model-card
title: "Model Card: precision-medicine-mcp"
model: precision-medicine-mcp
version: 1.0.0
tier: High
category: Data Privacy
status: draft
created_at: 2026-03-14T09:00:00Z
updated_at: 2026-03-14T09:00:00Z
---

# Model Card: precision-medicine-mcp

Body text here.
`

func TestSplit(t *testing.T) {
	front, body, err := Split([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if !strings.Contains(string(front), "kind: model-card") {
		t.Errorf("frontmatter missing kind:\n%s", front)
	}
	if strings.Contains(string(front), "Body text") {
		t.Error("frontmatter contains body content")
	}
	if !strings.HasPrefix(body, "# Model Card: precision-medicine-mcp") {
		t.Errorf("body start = %q", body[:min(len(body), 50)])
	}
}

func TestSplitErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"no frontmatter", "# Just Markdown\n", ErrNoFrontmatter},
		{"empty file", "", ErrNoFrontmatter},
		{"unclosed", "---\nid: x\nno closing delimiter\n", ErrUnclosedFrontmatter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Split([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Split() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitHandlesCRLF(t *testing.T) {
	crlf := strings.ReplaceAll(sampleDoc, "\n", "\r\n")
	front, _, err := Split([]byte(crlf))
	if err != nil {
		t.Fatalf("Split CRLF failed: %v", err)
	}
	if !strings.Contains(string(front), "kind: model-card") {
		t.Error("CRLF frontmatter not parsed")
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse("cards/sample.md", []byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Front.Kind != types.KindModelCard {
		t.Errorf("Kind = %q, want model-card", doc.Front.Kind)
	}
	if doc.Front.Tier != types.TierHigh {
		t.Errorf("Tier = %q, want High", doc.Front.Tier)
	}
	if doc.Front.Model != "precision-medicine-mcp" {
		t.Errorf("Model = %q", doc.Front.Model)
	}
	want := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if !doc.Front.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", doc.Front.CreatedAt, want)
	}
	if len(doc.Checksum) != 16 {
		t.Errorf("Checksum length = %d, want 16", len(doc.Checksum))
	}
}

func TestParseBadYAML(t *testing.T) {
	input := "---\nid: [unclosed\n---\n\nbody\n"
	if _, err := Parse("x.md", []byte(input)); err == nil {
		t.Error("Parse with invalid YAML expected error")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original, err := Parse("cards/sample.md", []byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	out, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	reparsed, err := Parse("cards/sample.md", out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}

	if reparsed.Front.ID != original.Front.ID {
		t.Errorf("ID changed: %q vs %q", reparsed.Front.ID, original.Front.ID)
	}
	if reparsed.Front.Title != original.Front.Title {
		t.Errorf("Title changed: %q vs %q", reparsed.Front.Title, original.Front.Title)
	}
	if reparsed.Body != original.Body {
		t.Errorf("Body changed:\n%q\nvs\n%q", reparsed.Body, original.Body)
	}
}

func TestChecksumStable(t *testing.T) {
	a := Checksum([]byte("content"))
	b := Checksum([]byte("content"))
	c := Checksum([]byte("different"))
	if a != b {
		t.Error("checksum not deterministic")
	}
	if a == c {
		t.Error("different content has same checksum")
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()

	dirs := []string{"cards", "guides", ".aigov"}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	files := map[string]string{
		"cards/good.md":   sampleDoc,
		"guides/plain.md": "# No frontmatter here\n",
		".aigov/skip.md":  sampleDoc,
		"cards/notes.txt": "not markdown",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	found, failures, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(found) != 1 {
		t.Fatalf("found %d documents, want 1: %+v", len(found), found)
	}
	if found[0].Path != "cards/good.md" {
		t.Errorf("found path = %q", found[0].Path)
	}
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1 (the plain markdown)", len(failures))
	}
	if failures[0].Path != "guides/plain.md" {
		t.Errorf("failure path = %q", failures[0].Path)
	}
	if !errors.Is(failures[0].Err, ErrNoFrontmatter) {
		t.Errorf("failure err = %v, want ErrNoFrontmatter", failures[0].Err)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, _, err := Scan(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Scan of missing root expected error")
	}
}
