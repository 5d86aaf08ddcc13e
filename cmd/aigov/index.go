package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/search"
)

// indexSummary is the machine-readable result of a reindex run.
type indexSummary struct {
	Indexed    int      `json:"indexed" yaml:"indexed"`
	Pruned     int      `json:"pruned" yaml:"pruned"`
	SearchDocs int      `json:"search_documents" yaml:"search_documents"`
	Failures   []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the catalog and search index from the files",
	Long: `Rebuild the derived state from the Markdown files.

The catalog gains a row per managed document (rows whose files vanished
are pruned) and the search index is rebuilt and saved. Files that fail
to parse are reported and skipped.

Run this after editing files outside of aigov, or after a bundle
import.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would rebuild the catalog and search index at %s\n", lib.Root())
		return nil
	}

	documents, failures, err := lib.Scan()
	if err != nil {
		return err
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	ctx := cmd.Context()
	stats, err := cat.Reindex(ctx, documents)
	if err != nil {
		return err
	}

	idx, err := search.Build(lib.Root())
	if err != nil {
		return err
	}
	if err := idx.Save(lib.IndexPath()); err != nil {
		return err
	}

	details := fmt.Sprintf("indexed %d, pruned %d", stats.Indexed, stats.Pruned)
	if err := cat.LogAction(ctx, catalog.ActionReindex, details); err != nil {
		return err
	}

	summary := indexSummary{
		Indexed:    stats.Indexed,
		Pruned:     stats.Pruned,
		SearchDocs: idx.Docs(),
	}
	for _, fe := range failures {
		summary.Failures = append(summary.Failures, fe.Error())
	}

	return outputIndexSummary(summary)
}

func outputIndexSummary(summary indexSummary) error {
	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(summary)

	default:
		for _, failure := range summary.Failures {
			fmt.Printf("warning: %s\n", failure)
		}
		fmt.Printf("Indexed %d document(s), pruned %d stale row(s)\n", summary.Indexed, summary.Pruned)
		VerbosePrintf("Search index covers %d document(s)\n", summary.SearchDocs)
		return nil
	}
}
