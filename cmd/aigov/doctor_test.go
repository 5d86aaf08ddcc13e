package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethicslab/aigov/internal/library"
)

func TestComputeResult(t *testing.T) {
	tests := []struct {
		name       string
		checks     []doctorCheck
		wantResult string
	}{
		{
			name: "all pass",
			checks: []doctorCheck{
				{Name: "a", Status: "pass", Required: true},
				{Name: "b", Status: "pass", Required: true},
			},
			wantResult: "HEALTHY",
		},
		{
			name: "one failure",
			checks: []doctorCheck{
				{Name: "a", Status: "pass", Required: true},
				{Name: "b", Status: "fail", Required: true},
			},
			wantResult: "UNHEALTHY",
		},
		{
			name: "warnings only",
			checks: []doctorCheck{
				{Name: "a", Status: "pass", Required: true},
				{Name: "b", Status: "warn", Required: false},
			},
			wantResult: "DEGRADED",
		},
		{
			name: "mixed failures and warnings",
			checks: []doctorCheck{
				{Name: "a", Status: "fail", Required: true},
				{Name: "b", Status: "warn", Required: false},
				{Name: "c", Status: "pass", Required: true},
			},
			wantResult: "UNHEALTHY",
		},
		{
			name:       "empty checks",
			checks:     []doctorCheck{},
			wantResult: "HEALTHY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := computeResult(tt.checks)
			if output.Result != tt.wantResult {
				t.Errorf("computeResult() result = %q, want %q", output.Result, tt.wantResult)
			}
			if len(output.Checks) != len(tt.checks) {
				t.Errorf("computeResult() kept %d checks, want %d", len(output.Checks), len(tt.checks))
			}
		})
	}
}

func TestBuildDoctorSummary(t *testing.T) {
	tests := []struct {
		name                        string
		passes, fails, warns, total int
		want                        string
	}{
		{"all pass", 5, 0, 0, 5, "5/5 checks passed"},
		{"one warning", 4, 0, 1, 5, "4/5 checks passed, 1 warning"},
		{"two warnings", 3, 0, 2, 5, "3/5 checks passed, 2 warnings"},
		{"one failure", 4, 1, 0, 5, "4/5 checks passed, 1 failed"},
		{"failures and warnings", 2, 2, 1, 5, "2/5 checks passed, 1 warning, 2 failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildDoctorSummary(tt.passes, tt.fails, tt.warns, tt.total)
			if got != tt.want {
				t.Errorf("buildDoctorSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountCheckStatuses(t *testing.T) {
	checks := []doctorCheck{
		{Name: "a", Status: "pass"},
		{Name: "b", Status: "pass"},
		{Name: "c", Status: "warn"},
		{Name: "d", Status: "fail"},
	}

	passes, fails, warns := countCheckStatuses(checks)
	if passes != 2 {
		t.Errorf("passes = %d, want 2", passes)
	}
	if fails != 1 {
		t.Errorf("fails = %d, want 1", fails)
	}
	if warns != 1 {
		t.Errorf("warns = %d, want 1", warns)
	}
}

func TestHasRequiredFailure(t *testing.T) {
	t.Run("required failure", func(t *testing.T) {
		checks := []doctorCheck{
			{Name: "a", Status: "pass", Required: true},
			{Name: "b", Status: "fail", Required: true},
		}
		if !hasRequiredFailure(checks) {
			t.Error("expected required failure to be detected")
		}
	})

	t.Run("optional failure ignored", func(t *testing.T) {
		checks := []doctorCheck{
			{Name: "a", Status: "pass", Required: true},
			{Name: "b", Status: "fail", Required: false},
		}
		if hasRequiredFailure(checks) {
			t.Error("optional failure should not count as required")
		}
	})

	t.Run("no failures", func(t *testing.T) {
		checks := []doctorCheck{
			{Name: "a", Status: "pass", Required: true},
			{Name: "b", Status: "warn", Required: true},
		}
		if hasRequiredFailure(checks) {
			t.Error("expected no required failure")
		}
	})
}

func TestDoctorStatusIcon(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"pass", "✓"},
		{"warn", "!"},
		{"fail", "✗"},
		{"unknown", "?"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := doctorStatusIcon(tt.status); got != tt.want {
				t.Errorf("doctorStatusIcon(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestRenderDoctorTable(t *testing.T) {
	output := doctorOutput{
		Checks: []doctorCheck{
			{Name: "Library", Status: "pass", Detail: "/tmp/lib", Required: true},
			{Name: "Search Index", Status: "warn", Detail: "not built (run 'aigov index')", Required: false},
		},
		Result:  "DEGRADED",
		Summary: "1/2 checks passed, 1 warning",
	}

	var buf bytes.Buffer
	renderDoctorTable(&buf, output)
	got := buf.String()

	for _, want := range []string{"aigov doctor", "✓ Library", "! Search Index", "1/2 checks passed, 1 warning"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}
}

func TestCheckLayout(t *testing.T) {
	t.Run("complete layout", func(t *testing.T) {
		lib := library.New(t.TempDir())
		if err := lib.Init(); err != nil {
			t.Fatalf("init: %v", err)
		}

		result := checkLayout(lib)
		if result.Status != "pass" {
			t.Errorf("status = %q, want pass (detail: %s)", result.Status, result.Detail)
		}
	})

	t.Run("missing directories", func(t *testing.T) {
		lib := library.New(t.TempDir())

		result := checkLayout(lib)
		if result.Status != "fail" {
			t.Errorf("status = %q, want fail (detail: %s)", result.Status, result.Detail)
		}
		if !strings.Contains(result.Detail, "cards/") {
			t.Errorf("detail should name the missing directory, got %q", result.Detail)
		}
	})
}

func TestCheckSearchIndex(t *testing.T) {
	t.Run("no index", func(t *testing.T) {
		lib := library.New(t.TempDir())
		if err := lib.Init(); err != nil {
			t.Fatalf("init: %v", err)
		}

		result := checkSearchIndex(lib)
		if result.Status != "warn" {
			t.Errorf("status = %q, want warn (detail: %s)", result.Status, result.Detail)
		}
	})

	t.Run("fresh index", func(t *testing.T) {
		lib := library.New(t.TempDir())
		if err := lib.Init(); err != nil {
			t.Fatalf("init: %v", err)
		}
		doc := filepath.Join(lib.Root(), "cards", "a.md")
		if err := os.WriteFile(doc, []byte("# A"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(lib.IndexPath(), []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		result := checkSearchIndex(lib)
		if result.Status != "pass" {
			t.Errorf("status = %q, want pass (detail: %s)", result.Status, result.Detail)
		}
	})

	t.Run("stale index", func(t *testing.T) {
		lib := library.New(t.TempDir())
		if err := lib.Init(); err != nil {
			t.Fatalf("init: %v", err)
		}
		if err := os.WriteFile(lib.IndexPath(), []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-time.Hour)
		if err := os.Chtimes(lib.IndexPath(), old, old); err != nil {
			t.Fatal(err)
		}
		doc := filepath.Join(lib.Root(), "cards", "a.md")
		if err := os.WriteFile(doc, []byte("# A"), 0o644); err != nil {
			t.Fatal(err)
		}

		result := checkSearchIndex(lib)
		if result.Status != "warn" {
			t.Errorf("status = %q, want warn (detail: %s)", result.Status, result.Detail)
		}
	})
}

func TestNewestDocumentTime(t *testing.T) {
	t.Run("empty tree", func(t *testing.T) {
		got := newestDocumentTime(t.TempDir())
		if !got.IsZero() {
			t.Errorf("expected zero time for empty tree, got %v", got)
		}
	})

	t.Run("skips dot directories", func(t *testing.T) {
		tmp := t.TempDir()
		hidden := filepath.Join(tmp, ".aigov")
		if err := os.MkdirAll(hidden, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(hidden, "notes.md"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		got := newestDocumentTime(tmp)
		if !got.IsZero() {
			t.Errorf("dot directory contents should be ignored, got %v", got)
		}
	})

	t.Run("newest wins", func(t *testing.T) {
		tmp := t.TempDir()
		older := filepath.Join(tmp, "old.md")
		newer := filepath.Join(tmp, "new.md")
		if err := os.WriteFile(older, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(newer, []byte("y"), 0o644); err != nil {
			t.Fatal(err)
		}
		past := time.Now().Add(-2 * time.Hour)
		if err := os.Chtimes(older, past, past); err != nil {
			t.Fatal(err)
		}

		got := newestDocumentTime(tmp)
		if got.Before(time.Now().Add(-time.Hour)) {
			t.Errorf("expected the newer file's mtime, got %v", got)
		}
	})
}

func TestCheckConfig(t *testing.T) {
	t.Run("no config files", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("AIGOV_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		result := checkConfig(nil)
		if result.Status != "pass" {
			t.Errorf("status = %q, want pass (detail: %s)", result.Status, result.Detail)
		}
		if !strings.Contains(result.Detail, "defaults") {
			t.Errorf("detail should mention defaults, got %q", result.Detail)
		}
	})

	t.Run("valid config", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		tmp := t.TempDir()
		path := filepath.Join(tmp, "config.yaml")
		if err := os.WriteFile(path, []byte("output: json\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("AIGOV_CONFIG", path)

		result := checkConfig(nil)
		if result.Status != "pass" {
			t.Errorf("status = %q, want pass (detail: %s)", result.Status, result.Detail)
		}
		if !strings.Contains(result.Detail, path) {
			t.Errorf("detail should list the parsed file, got %q", result.Detail)
		}
	})

	t.Run("malformed config", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		tmp := t.TempDir()
		path := filepath.Join(tmp, "config.yaml")
		if err := os.WriteFile(path, []byte("output: [unclosed\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("AIGOV_CONFIG", path)

		result := checkConfig(nil)
		if result.Status != "fail" {
			t.Errorf("status = %q, want fail (detail: %s)", result.Status, result.Detail)
		}
	})
}

func TestCheckAPIKey(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		result := checkAPIKey()
		if result.Status != "pass" {
			t.Errorf("status = %q, want pass", result.Status)
		}
	})

	t.Run("unset", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		result := checkAPIKey()
		if result.Status != "warn" {
			t.Errorf("status = %q, want warn", result.Status)
		}
	})
}
