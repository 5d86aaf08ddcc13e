package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/bundle"
	"github.com/ethicslab/aigov/internal/catalog"
)

var bundleExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the library as a compliance bundle",
	Long: `Write every managed document into a tar.zst archive with a checksum
manifest.

Without an argument the bundle is named aigov-bundle-YYYY-MM-DD.tar.zst
in the working directory. Files that fail to parse are reported and left
out of the bundle.

Examples:
  aigov bundle export
  aigov bundle export audits/eu-handoff.tar.zst -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBundleExport,
}

func init() {
	bundleCmd.AddCommand(bundleExportCmd)
}

func runBundleExport(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	now := time.Now()
	out := bundle.DefaultName(now)
	if len(args) == 1 {
		out = args[0]
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would export the library to %s\n", out)
		return nil
	}

	manifest, failures, err := bundle.Export(lib, out, version, now)
	if err != nil {
		return err
	}
	for _, fe := range failures {
		fmt.Printf("warning: skipped %s\n", fe.Error())
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	details := fmt.Sprintf("%s (%d documents)", out, manifest.Documents)
	if err := cat.LogAction(cmd.Context(), catalog.ActionBundleExport, details); err != nil {
		return err
	}

	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(manifest)

	default:
		fmt.Printf("Exported %d document(s) to %s\n", manifest.Documents, out)
		return nil
	}
}
