package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/config"
	"github.com/ethicslab/aigov/internal/library"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check library health",
	Long: `Run health checks on the governance library.

Validates the library layout, config files, catalog database, search
index freshness, and probe credentials. Optional components are
reported as warnings but do not cause failure.

Examples:
  aigov doctor
  aigov doctor --json`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks"`
	Result  string        `json:"result"` // "HEALTHY", "DEGRADED", "UNHEALTHY"
	Summary string        `json:"summary"`
}

// gatherDoctorChecks runs all doctor checks and returns the results.
func gatherDoctorChecks() []doctorCheck {
	checks := []doctorCheck{
		{Name: "aigov CLI", Status: "pass", Detail: fmt.Sprintf("v%s", version), Required: true},
	}

	lib, err := discoverLibrary()
	if err != nil {
		checks = append(checks,
			doctorCheck{Name: "Library", Status: "fail", Detail: err.Error(), Required: true},
			skippedCheck("Library Layout"),
			skippedCheck("Catalog"),
			skippedCheck("Search Index"),
		)
		lib = nil
	} else {
		checks = append(checks,
			doctorCheck{Name: "Library", Status: "pass", Detail: lib.Root(), Required: true},
			checkLayout(lib),
			checkCatalog(lib),
			checkSearchIndex(lib),
		)
	}

	checks = append(checks, checkConfig(lib), checkAPIKey())
	return checks
}

// skippedCheck marks a library-dependent check that could not run. It
// never fails the run; the Library check already did.
func skippedCheck(name string) doctorCheck {
	return doctorCheck{Name: name, Status: "warn", Detail: "skipped: no library", Required: false}
}

// checkLayout verifies the library's document directories exist.
func checkLayout(lib *library.Library) doctorCheck {
	var missing []string
	for _, dir := range []string{library.CardsDir, library.ChecklistsDir, library.GuidesDir} {
		if info, err := os.Stat(filepath.Join(lib.Root(), dir)); err != nil || !info.IsDir() {
			missing = append(missing, dir+"/")
		}
	}

	if len(missing) > 0 {
		return doctorCheck{
			Name:     "Library Layout",
			Status:   "fail",
			Detail:   fmt.Sprintf("missing %s (run 'aigov init')", strings.Join(missing, ", ")),
			Required: true,
		}
	}
	return doctorCheck{Name: "Library Layout", Status: "pass", Detail: "cards/, checklists/, guides/", Required: true}
}

// checkCatalog opens the catalog database and counts its rows.
func checkCatalog(lib *library.Library) doctorCheck {
	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return doctorCheck{Name: "Catalog", Status: "fail", Detail: err.Error(), Required: true}
	}
	defer func() { _ = cat.Close() }()

	count, err := cat.Count(context.Background())
	if err != nil {
		return doctorCheck{Name: "Catalog", Status: "fail", Detail: err.Error(), Required: true}
	}
	return doctorCheck{
		Name:     "Catalog",
		Status:   "pass",
		Detail:   fmt.Sprintf("%d document(s)", count),
		Required: true,
	}
}

// checkSearchIndex verifies the index exists and is at least as new as
// the newest document.
func checkSearchIndex(lib *library.Library) doctorCheck {
	info, err := os.Stat(lib.IndexPath())
	if err != nil {
		return doctorCheck{
			Name:     "Search Index",
			Status:   "warn",
			Detail:   "not built (run 'aigov index')",
			Required: false,
		}
	}

	newest := newestDocumentTime(lib.Root())
	if newest.After(info.ModTime()) {
		return doctorCheck{
			Name:     "Search Index",
			Status:   "warn",
			Detail:   "older than the latest document (run 'aigov index')",
			Required: false,
		}
	}
	return doctorCheck{Name: "Search Index", Status: "pass", Detail: "up to date", Required: false}
}

// newestDocumentTime finds the most recent modification time of any
// Markdown file in the library, skipping dot directories.
func newestDocumentTime(root string) time.Time {
	var newest time.Time
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}

// checkConfig parses every config file that exists. lib may be nil when
// no library was found.
func checkConfig(lib *library.Library) doctorCheck {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".aigov", "config.yaml"))
	}
	if override := os.Getenv("AIGOV_CONFIG"); override != "" {
		paths = append(paths, override)
	} else if lib != nil {
		paths = append(paths, lib.ConfigPath())
	} else if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".aigov", "config.yaml"))
	}

	var parsed []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return doctorCheck{Name: "Config", Status: "fail", Detail: fmt.Sprintf("%s: %v", path, err), Required: false}
		}
		var cfg config.Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return doctorCheck{Name: "Config", Status: "fail", Detail: fmt.Sprintf("%s: %v", path, err), Required: false}
		}
		parsed = append(parsed, path)
	}

	if len(parsed) == 0 {
		return doctorCheck{Name: "Config", Status: "pass", Detail: "using defaults (no config files)", Required: false}
	}
	return doctorCheck{Name: "Config", Status: "pass", Detail: strings.Join(parsed, ", "), Required: false}
}

// checkAPIKey reports whether live probes can run.
func checkAPIKey() doctorCheck {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return doctorCheck{Name: "GEMINI_API_KEY", Status: "pass", Detail: "set", Required: false}
	}
	return doctorCheck{
		Name:     "GEMINI_API_KEY",
		Status:   "warn",
		Detail:   "not set ('aigov probe run' unavailable)",
		Required: false,
	}
}

// doctorStatusIcon returns the display icon for a check status.
func doctorStatusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	case "fail":
		return "✗"
	}
	return "?"
}

// renderDoctorTable writes the formatted doctor output table.
func renderDoctorTable(w io.Writer, output doctorOutput) {
	fmt.Fprintln(w, "aigov doctor")
	fmt.Fprintln(w, "────────────")

	maxName := 0
	for _, c := range output.Checks {
		if len(c.Name) > maxName {
			maxName = len(c.Name)
		}
	}

	for _, c := range output.Checks {
		padding := strings.Repeat(" ", maxName-len(c.Name))
		fmt.Fprintf(w, "%s %s%s  %s\n", doctorStatusIcon(c.Status), c.Name, padding, c.Detail)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", output.Summary)
}

// hasRequiredFailure returns true if any required check has failed.
func hasRequiredFailure(checks []doctorCheck) bool {
	for _, c := range checks {
		if c.Required && c.Status == "fail" {
			return true
		}
	}
	return false
}

// countCheckStatuses tallies pass, fail, and warn counts from checks.
func countCheckStatuses(checks []doctorCheck) (passes, fails, warns int) {
	for _, c := range checks {
		switch c.Status {
		case "pass":
			passes++
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}
	return passes, fails, warns
}

// buildDoctorSummary constructs a human-readable summary from check tallies.
func buildDoctorSummary(passes, fails, warns, total int) string {
	switch {
	case fails == 0 && warns == 0:
		return fmt.Sprintf("%d/%d checks passed", passes, total)
	case fails == 0:
		summary := fmt.Sprintf("%d/%d checks passed, %d warning", passes, total, warns)
		if warns > 1 {
			summary += "s"
		}
		return summary
	default:
		parts := []string{fmt.Sprintf("%d/%d checks passed", passes, total)}
		if warns > 0 {
			w := fmt.Sprintf("%d warning", warns)
			if warns > 1 {
				w += "s"
			}
			parts = append(parts, w)
		}
		parts = append(parts, fmt.Sprintf("%d failed", fails))
		return strings.Join(parts, ", ")
	}
}

// computeResult classifies the overall health from the check statuses.
func computeResult(checks []doctorCheck) doctorOutput {
	passes, fails, warns := countCheckStatuses(checks)
	total := len(checks)

	result := "HEALTHY"
	switch {
	case fails > 0:
		result = "UNHEALTHY"
	case warns > 0:
		result = "DEGRADED"
	}

	return doctorOutput{
		Checks:  checks,
		Result:  result,
		Summary: buildDoctorSummary(passes, fails, warns, total),
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	output := computeResult(gatherDoctorChecks())
	w := cmd.OutOrStdout()

	if doctorJSON || GetOutput() == "json" {
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal doctor output: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	renderDoctorTable(w, output)

	if hasRequiredFailure(output.Checks) {
		return fmt.Errorf("doctor failed: one or more required checks did not pass")
	}

	return nil
}
