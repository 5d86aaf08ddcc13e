package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/checklist"
	"github.com/ethicslab/aigov/internal/taxonomy"
)

// checklistOverview is one row of 'checklist list' output.
type checklistOverview struct {
	Framework string `json:"framework" yaml:"framework"`
	Title     string `json:"title" yaml:"title"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

var checklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available framework checklists",
	Long: `List the embedded framework checklist templates and whether each
one has been materialized into the library.

Examples:
  aigov checklist list
  aigov checklist list -o yaml`,
	Args: cobra.NoArgs,
	RunE: runChecklistList,
}

func init() {
	checklistCmd.AddCommand(checklistListCmd)
}

func runChecklistList(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	rows := make([]checklistOverview, 0, len(taxonomy.FrameworkOrder))
	for _, fw := range taxonomy.FrameworkOrder {
		row := checklistOverview{
			Framework: string(fw),
			Title:     checklist.Title(fw),
		}
		doc, err := checklist.Find(lib, fw)
		if err != nil {
			return err
		}
		if doc != nil {
			row.Path = doc.Path
		}
		rows = append(rows, row)
	}

	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(rows)

	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "FRAMEWORK\tTITLE\tMATERIALIZED")
		for _, row := range rows {
			where := "-"
			if row.Path != "" {
				where = row.Path
			}
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%s\t%s\n", row.Framework, row.Title, where)
		}
		return w.Flush()
	}
}
