package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/probe"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run live safety probes against a Gemini model",
	Long: `Send curated adversarial and benign prompts to a deployed Gemini
model and grade how each one is handled.

Probe sets cover jailbreak attempts, harmful content requests, privacy
leaks, and scope adherence for a clinical assistant. A probe passes when
the platform blocks it, the model refuses it, or a benign prompt gets a
real answer, depending on what the probe expects.

Requires GEMINI_API_KEY.

Examples:
  aigov probe list
  aigov probe run
  aigov probe run --set privacy-leak --model gemini-2.5-pro`,
}

var probeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the embedded probe sets",
	Args:  cobra.NoArgs,
	RunE:  runProbeList,
}

func init() {
	probeCmd.AddCommand(probeListCmd)
	rootCmd.AddCommand(probeCmd)
}

func runProbeList(cmd *cobra.Command, args []string) error {
	sets, err := probe.Sets()
	if err != nil {
		return err
	}

	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sets)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(sets)

	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "SET\tPROBES\tDESCRIPTION")
		for _, set := range sets {
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%d\t%s\n", set.Name, len(set.Probes), set.Description)
		}
		return w.Flush()
	}
}
