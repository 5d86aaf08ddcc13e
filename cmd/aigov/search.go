package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/search"
)

var searchLimit int

// searchHit is one search result enriched from the catalog.
type searchHit struct {
	Path  string `json:"path" yaml:"path"`
	Score int    `json:"score" yaml:"score"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the library",
	Long: `Search the governance library using the saved term index.

Results are ranked by matched terms and enriched with kind and title
from the catalog. The index is rebuilt by 'aigov index'.

Examples:
  aigov search "differential privacy"
  aigov search hipaa --limit 20 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	idx, err := search.Load(lib.IndexPath())
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println("No search index found.")
		fmt.Println("Run 'aigov index' first.")
		return nil
	}
	if err != nil {
		return err
	}

	results := idx.Search(query, searchLimit)
	if len(results) == 0 {
		fmt.Printf("No results found for: %s\n", query)
		return nil
	}

	hits := make([]searchHit, 0, len(results))
	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	ctx := cmd.Context()
	for _, r := range results {
		hit := searchHit{Path: r.Path, Score: r.Score}
		if rec, recErr := cat.GetByPath(ctx, r.Path); recErr == nil {
			hit.Kind = rec.Kind
			hit.Title = rec.Title
		}
		hits = append(hits, hit)
	}

	return outputSearchHits(hits)
}

func outputSearchHits(hits []searchHit) error {
	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(hits)

	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "SCORE\tKIND\tTITLE\tPATH")
		for _, hit := range hits {
			kind := hit.Kind
			if kind == "" {
				kind = "-"
			}
			title := hit.Title
			if title == "" {
				title = "-"
			}
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", hit.Score, kind, title, hit.Path)
		}
		return w.Flush()
	}
}
