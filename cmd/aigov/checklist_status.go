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

var checklistStatusCmd = &cobra.Command{
	Use:   "status [framework]",
	Short: "Show checklist completion",
	Long: `Report task completion for materialized checklists.

Progress is computed from the GFM task lists in the checklist files,
grouped by section. With a framework argument only that checklist is
shown; --verbose adds per-section detail.

Examples:
  aigov checklist status
  aigov checklist status hipaa -v
  aigov checklist status -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChecklistStatus,
}

func init() {
	checklistCmd.AddCommand(checklistStatusCmd)
}

func runChecklistStatus(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	var progress []checklist.Progress
	if len(args) == 1 {
		fw, err := taxonomy.CanonicalFramework(args[0])
		if err != nil {
			return err
		}
		doc, err := checklist.Find(lib, fw)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("no %s checklist in the library (run 'aigov checklist init %s')", fw, fw)
		}
		progress = []checklist.Progress{checklist.StatusOf(*doc)}
	} else {
		progress, err = checklist.StatusAll(lib)
		if err != nil {
			return err
		}
	}

	return outputProgress(progress)
}

func outputProgress(progress []checklist.Progress) error {
	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(progress)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(progress)

	default:
		return outputProgressTable(progress)
	}
}

func outputProgressTable(progress []checklist.Progress) error {
	if len(progress) == 0 {
		fmt.Println("No checklists in the library.")
		fmt.Println("Run 'aigov checklist init <framework>' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	//nolint:errcheck // CLI tabwriter output to stdout
	fmt.Fprintln(w, "FRAMEWORK\tCHECKLIST\tDONE\tPROGRESS")
	for _, p := range progress {
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%.0f%%\n", p.Framework, p.Title, p.Done, p.Total, p.Percent())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if GetVerbose() {
		for _, p := range progress {
			fmt.Printf("\n%s\n", p.Title)
			for _, s := range p.Sections {
				name := s.Section
				if name == "" {
					name = "(no section)"
				}
				fmt.Printf("  %-40s %d/%d\n", name, s.Done, s.Total)
			}
		}
	}
	return nil
}
