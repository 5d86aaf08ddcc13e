package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Browse the governance vocabularies",
	Long: `Browse the controlled vocabularies used across the library: EU AI Act
risk tiers, NIST AI 600-1 risk categories, agentic threat classes,
jailbreak protection levels, privacy techniques, and compliance
frameworks.

These vocabularies back 'card new --strict', 'card validate', and the
catalog filters.

Examples:
  aigov taxonomy list
  aigov taxonomy show tiers
  aigov taxonomy show threats -v`,
}

var taxonomyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the vocabularies",
	Args:  cobra.NoArgs,
	RunE:  runTaxonomyList,
}

var taxonomyShowCmd = &cobra.Command{
	Use:   "show <vocabulary>",
	Short: "Show the values of one vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaxonomyShow,
}

func init() {
	taxonomyCmd.AddCommand(taxonomyListCmd)
	taxonomyCmd.AddCommand(taxonomyShowCmd)
	rootCmd.AddCommand(taxonomyCmd)
}

// taxonomyEntry is one vocabulary value with whatever detail the
// vocabulary carries. Unused fields stay empty.
type taxonomyEntry struct {
	Value                string   `json:"value" yaml:"value"`
	Summary              string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Reference            string   `json:"reference,omitempty" yaml:"reference,omitempty"`
	Severity             string   `json:"severity,omitempty" yaml:"severity,omitempty"`
	Mitigation           string   `json:"mitigation,omitempty" yaml:"mitigation,omitempty"`
	Obligations          []string `json:"obligations,omitempty" yaml:"obligations,omitempty"`
	ConformityAssessment bool     `json:"conformity_assessment,omitempty" yaml:"conformity_assessment,omitempty"`
}

func runTaxonomyList(cmd *cobra.Command, args []string) error {
	names := taxonomy.VocabularyNames()

	type vocabRow struct {
		Vocabulary string `json:"vocabulary" yaml:"vocabulary"`
		Values     int    `json:"values" yaml:"values"`
	}
	rows := make([]vocabRow, 0, len(names))
	for _, name := range names {
		entries, err := taxonomyEntries(name)
		if err != nil {
			return err
		}
		rows = append(rows, vocabRow{Vocabulary: name, Values: len(entries)})
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
		fmt.Fprintln(w, "VOCABULARY\tVALUES")
		for _, row := range rows {
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%d\n", row.Vocabulary, row.Values)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println("\nUse 'aigov taxonomy show <vocabulary>' for the values.")
		return nil
	}
}

func runTaxonomyShow(cmd *cobra.Command, args []string) error {
	vocab := strings.ToLower(strings.TrimSpace(args[0]))
	entries, err := taxonomyEntries(vocab)
	if err != nil {
		return err
	}

	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(entries)

	default:
		return renderTaxonomyTable(vocab, entries)
	}
}

// taxonomyEntries flattens one vocabulary into display entries, in the
// vocabulary's documented order.
func taxonomyEntries(vocab string) ([]taxonomyEntry, error) {
	switch vocab {
	case "tiers":
		entries := make([]taxonomyEntry, 0, len(taxonomy.TierOrder))
		for _, tier := range taxonomy.TierOrder {
			info := taxonomy.Tiers[tier]
			entries = append(entries, taxonomyEntry{
				Value:                string(tier),
				Summary:              info.Summary,
				Obligations:          info.Obligations,
				ConformityAssessment: info.ConformityAssessment,
			})
		}
		return entries, nil

	case "categories":
		entries := make([]taxonomyEntry, 0, len(taxonomy.CategoryOrder))
		for _, cat := range taxonomy.CategoryOrder {
			info := taxonomy.Categories[cat]
			entries = append(entries, taxonomyEntry{
				Value:     string(cat),
				Summary:   info.Summary,
				Reference: info.Reference,
			})
		}
		return entries, nil

	case "threats":
		entries := make([]taxonomyEntry, 0, len(taxonomy.ThreatOrder))
		for _, threat := range taxonomy.ThreatOrder {
			info := taxonomy.Threats[threat]
			entries = append(entries, taxonomyEntry{
				Value:      string(threat),
				Summary:    info.Summary,
				Severity:   info.Severity,
				Mitigation: info.Mitigation,
			})
		}
		return entries, nil

	case "levels":
		entries := make([]taxonomyEntry, 0, len(taxonomy.LevelOrder))
		for _, level := range taxonomy.LevelOrder {
			entries = append(entries, taxonomyEntry{
				Value:   string(level),
				Summary: taxonomy.LevelSummaries[level],
			})
		}
		return entries, nil

	case "techniques":
		entries := make([]taxonomyEntry, 0, len(taxonomy.TechniqueOrder))
		for _, technique := range taxonomy.TechniqueOrder {
			entries = append(entries, taxonomyEntry{
				Value:   string(technique),
				Summary: taxonomy.TechniqueSummaries[technique],
			})
		}
		return entries, nil

	case "frameworks":
		entries := make([]taxonomyEntry, 0, len(taxonomy.FrameworkOrder))
		for _, fw := range taxonomy.FrameworkOrder {
			info := taxonomy.Frameworks[fw]
			entries = append(entries, taxonomyEntry{
				Value:     string(fw),
				Summary:   info.Title,
				Reference: info.Citation,
			})
		}
		return entries, nil

	default:
		return nil, fmt.Errorf("unknown vocabulary %q (valid: %s)",
			vocab, strings.Join(taxonomy.VocabularyNames(), ", "))
	}
}

func renderTaxonomyTable(vocab string, entries []taxonomyEntry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	switch vocab {
	case "tiers":
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "TIER\tCONFORMITY ASSESSMENT\tSUMMARY")
		for _, e := range entries {
			required := "no"
			if e.ConformityAssessment {
				required = "required"
			}
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Value, required, e.Summary)
		}

	case "categories", "frameworks":
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "VALUE\tREFERENCE\tSUMMARY")
		for _, e := range entries {
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Value, e.Reference, e.Summary)
		}

	case "threats":
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "THREAT\tSEVERITY\tSUMMARY")
		for _, e := range entries {
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Value, e.Severity, e.Summary)
		}

	default:
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "VALUE\tSUMMARY")
		for _, e := range entries {
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%s\n", e.Value, e.Summary)
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if GetVerbose() {
		for _, e := range entries {
			if len(e.Obligations) == 0 && e.Mitigation == "" {
				continue
			}
			fmt.Printf("\n%s\n", e.Value)
			for _, ob := range e.Obligations {
				fmt.Printf("  - %s\n", ob)
			}
			if e.Mitigation != "" {
				fmt.Printf("  mitigation: %s\n", e.Mitigation)
			}
		}
	}
	return nil
}
