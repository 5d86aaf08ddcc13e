package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/catalog"
)

var (
	cardListKind      string
	cardListTier      string
	cardListCategory  string
	cardListFramework string
	cardListStatus    string
	cardListTitle     string
)

var cardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged documents",
	Long: `List documents from the catalog, newest first.

Filters combine with AND. The catalog is derived from the files on disk;
run 'aigov index' if recent changes are missing.

Examples:
  aigov card list
  aigov card list --kind model-card --tier High
  aigov card list --title triage -o json`,
	Args: cobra.NoArgs,
	RunE: runCardList,
}

func init() {
	cardListCmd.Flags().StringVar(&cardListKind, "kind", "", "Filter by kind (model-card, data-card, checklist, guide)")
	cardListCmd.Flags().StringVar(&cardListTier, "tier", "", "Filter by EU AI Act risk tier")
	cardListCmd.Flags().StringVar(&cardListCategory, "category", "", "Filter by NIST AI 600-1 category")
	cardListCmd.Flags().StringVar(&cardListFramework, "framework", "", "Filter by compliance framework")
	cardListCmd.Flags().StringVar(&cardListStatus, "status", "", "Filter by review status")
	cardListCmd.Flags().StringVar(&cardListTitle, "title", "", "Filter by title substring")
	cardCmd.AddCommand(cardListCmd)
}

func runCardList(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	records, err := cat.List(cmd.Context(), catalog.Filter{
		Kind:      cardListKind,
		Tier:      cardListTier,
		Category:  cardListCategory,
		Framework: cardListFramework,
		Status:    cardListStatus,
		Title:     cardListTitle,
	})
	if err != nil {
		return err
	}

	return outputRecords(records)
}

func outputRecords(records []catalog.Record) error {
	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(records)

	default:
		return outputRecordsTable(records)
	}
}

func outputRecordsTable(records []catalog.Record) error {
	if len(records) == 0 {
		fmt.Println("No documents in the catalog.")
		fmt.Println("Run 'aigov index' after adding files to the library.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	//nolint:errcheck // CLI tabwriter output to stdout
	fmt.Fprintln(w, "KIND\tTITLE\tTIER\tSTATUS\tPATH")
	for _, rec := range records {
		tier := rec.Tier
		if tier == "" {
			tier = "-"
		}
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.Kind, rec.Title, tier, rec.Status, rec.Path)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d document(s)\n", len(records))
	return nil
}
