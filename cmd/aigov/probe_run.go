package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/config"
	"github.com/ethicslab/aigov/internal/probe"
)

var (
	probeRunSet   string
	probeRunModel string
)

// probeRunOutput is the machine-readable result of a probe run.
type probeRunOutput struct {
	Set     string         `json:"set" yaml:"set"`
	Model   string         `json:"model" yaml:"model"`
	Results []probe.Result `json:"results" yaml:"results"`
	Summary probe.Summary  `json:"summary" yaml:"summary"`
	Report  string         `json:"report,omitempty" yaml:"report,omitempty"`
}

var probeRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a probe set against the configured model",
	Long: `Run every probe in a set against the configured Gemini model and
grade the outcomes.

Each probe is one generation call under the configured safety settings.
The verdicts are printed as a table and written into the library as a
probe report (a guide-kind document), and the run is recorded in the
audit trail. The command exits non-zero if any probe fails.

Requires GEMINI_API_KEY. Probe model, temperature, block threshold,
timeout, and concurrency come from config (see 'aigov config show').

Examples:
  aigov probe run
  aigov probe run --set scope-adherence
  aigov probe run --set jailbreak --model gemini-2.5-pro -o json`,
	Args: cobra.NoArgs,
	RunE: runProbeRun,
}

func init() {
	probeRunCmd.Flags().StringVar(&probeRunSet, "set", "jailbreak", "Probe set to run (see 'aigov probe list')")
	probeRunCmd.Flags().StringVar(&probeRunModel, "model", "", "Override the configured probe model")
	probeCmd.AddCommand(probeRunCmd)
}

func runProbeRun(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}

	model := cfg.Probe.Model
	if probeRunModel != "" {
		model = probeRunModel
	}

	set, err := probe.LoadSet(probeRunSet)
	if err != nil {
		return err
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would run %d probe(s) from set %s against %s\n", len(set.Probes), set.Name, model)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := probe.Options{
		Model:          model,
		Temperature:    cfg.Probe.Temperature,
		BlockThreshold: cfg.Probe.BlockThreshold,
		Timeout:        time.Duration(cfg.Probe.TimeoutSeconds) * time.Second,
		Concurrency:    cfg.Probe.Concurrency,
	}

	engine, err := probe.NewEngine(ctx, os.Getenv("GEMINI_API_KEY"), opts)
	if errors.Is(err, probe.ErrNoAPIKey) {
		return fmt.Errorf("%w; export it to run live probes", err)
	}
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	if GetOutput() == "table" {
		fmt.Printf("Running %d probe(s) from %s against %s\n\n", len(set.Probes), set.Name, model)
	}

	results, err := engine.Run(ctx, set)
	if err != nil {
		return err
	}
	summary := probe.Summarize(results)

	now := time.Now()
	report := probe.ReportDocument(set, results, model, now)
	written, err := lib.WriteDocument(report)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	if err := cat.Upsert(ctx, written); err != nil {
		return err
	}
	details := fmt.Sprintf("%s against %s: %d pass, %d fail, %d error",
		set.Name, model, summary.Pass, summary.Fail, summary.Errors)
	if err := cat.LogAction(ctx, catalog.ActionProbeRun, details); err != nil {
		return err
	}

	out := probeRunOutput{
		Set:     set.Name,
		Model:   model,
		Results: results,
		Summary: summary,
		Report:  written.Path,
	}
	if err := outputProbeRun(out); err != nil {
		return err
	}

	if summary.Failed() {
		return fmt.Errorf("%d of %d probe(s) failed", summary.Fail, len(results))
	}
	return nil
}

func outputProbeRun(out probeRunOutput) error {
	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(out)

	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "ID\tCATEGORY\tEXPECT\tOUTCOME\tVERDICT")
		for _, r := range out.Results {
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.Probe.ID, r.Probe.Category, r.Probe.Expectation, r.Outcome, r.Verdict)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if GetVerbose() {
			fmt.Println()
			for _, r := range out.Results {
				fmt.Printf("%s: %s (%s)\n", r.Probe.ID, r.Detail, r.Duration.Round(time.Millisecond))
			}
		}

		fmt.Printf("\n%d pass, %d fail, %d error\n", out.Summary.Pass, out.Summary.Fail, out.Summary.Errors)
		fmt.Printf("Report written to %s\n", out.Report)
		return nil
	}
}
