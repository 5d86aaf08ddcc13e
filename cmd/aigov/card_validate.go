package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/lint"
)

var cardValidateAll bool

var cardValidateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "Validate documents against the governance rules",
	Long: `Check managed documents for frontmatter completeness, vocabulary
conformance, and required structure.

Errors fail the run (non-zero exit); warnings are reported but do not.
Without arguments every document in the library is checked.

Examples:
  aigov card validate
  aigov card validate cards/2026-05-01-oncology-triage-ab12cd3.md
  aigov card validate --all -o json`,
	RunE: runCardValidate,
}

func init() {
	cardValidateCmd.Flags().BoolVar(&cardValidateAll, "all", false, "Validate every document in the library")
	cardCmd.AddCommand(cardValidateCmd)
}

func runCardValidate(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	var paths []string
	if len(args) == 0 || cardValidateAll {
		paths, err = collectMarkdown(lib.Root())
		if err != nil {
			return err
		}
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		for _, arg := range args {
			if filepath.IsAbs(arg) {
				paths = append(paths, arg)
				continue
			}
			// Library-relative and cwd-relative arguments both work.
			libPath := filepath.Join(lib.Root(), arg)
			if _, statErr := os.Stat(libPath); statErr == nil {
				paths = append(paths, libPath)
				continue
			}
			paths = append(paths, filepath.Join(cwd, arg))
		}
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would validate %d file(s)\n", len(paths))
		return nil
	}

	if len(paths) == 0 {
		fmt.Println("No documents to validate.")
		return nil
	}

	linter := lint.New(lib.Root(), 0)
	report := linter.Files(paths)

	if err := outputLintReport(report); err != nil {
		return err
	}

	if report.Failed() {
		errs, _ := report.Counts()
		return fmt.Errorf("validation failed: %d error(s)", errs)
	}
	return nil
}

// collectMarkdown gathers every Markdown file under root, skipping dot
// directories such as .aigov and .git.
func collectMarkdown(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk library: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func outputLintReport(report lint.Report) error {
	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(report)

	default:
		for _, f := range report.Findings {
			fmt.Println(f.String())
		}
		errs, warnings := report.Counts()
		if len(report.Findings) > 0 {
			fmt.Println()
		}
		fmt.Printf("%d file(s) checked: %d error(s), %d warning(s)\n", report.Checked, errs, warnings)
		return nil
	}
}
