package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/config"
	"github.com/ethicslab/aigov/internal/linkcheck"
)

var (
	linksExternal  bool
	linksSkipHosts []string
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Check the library link graph",
	Long: `Verify the links that hold the library together.

Relative links and images must resolve to existing files with matching
case, and fragment links must land on a real heading. With --external,
absolute URLs are probed over HTTP with bounded concurrency and a rate
limit.

Examples:
  aigov links check
  aigov links check --external
  aigov links check --external --skip-host example.internal`,
}

var linksCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every link in the library",
	Args:  cobra.NoArgs,
	RunE:  runLinksCheck,
}

func init() {
	linksCheckCmd.Flags().BoolVar(&linksExternal, "external", false, "Also probe external URLs over HTTP")
	linksCheckCmd.Flags().StringArrayVar(&linksSkipHosts, "skip-host", nil, "Host to exclude from external probing (repeatable)")
	linksCmd.AddCommand(linksCheckCmd)
	rootCmd.AddCommand(linksCmd)
}

func runLinksCheck(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}

	documents, failures, err := lib.Scan()
	if err != nil {
		return err
	}
	for _, fe := range failures {
		fmt.Printf("warning: %s\n", fe.Error())
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would check links across %d document(s)\n", len(documents))
		return nil
	}

	opts := linkcheck.Options{
		External:    linksExternal,
		Timeout:     time.Duration(cfg.Linkcheck.TimeoutSeconds) * time.Second,
		QPS:         cfg.Linkcheck.QPS,
		Concurrency: cfg.Linkcheck.Concurrency,
		SkipHosts:   append(cfg.Linkcheck.SkipHosts, linksSkipHosts...),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	checker := linkcheck.New(lib.Root(), opts)
	report, err := checker.Run(ctx, documents)
	if err != nil {
		return err
	}

	if err := outputLinkReport(report); err != nil {
		return err
	}

	if report.Failed() {
		return fmt.Errorf("link check failed: broken internal links")
	}
	return nil
}

func outputLinkReport(report linkcheck.Report) error {
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
		if len(report.Findings) > 0 {
			fmt.Println()
		}
		fmt.Printf("Checked %d link(s) across %d document(s): %d finding(s)\n",
			report.Links, report.Documents, len(report.Findings))
		return nil
	}
}
