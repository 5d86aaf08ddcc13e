package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethicslab/aigov/internal/bundle"
	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/search"
)

var bundleImportForce bool

var bundleImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore a compliance bundle into the library",
	Long: `Unpack a bundle into the library, verifying every file against the
manifest checksums, then rebuild the catalog and search index.

Import refuses to touch a library that already has documents unless
--force is given; --force overwrites colliding paths and keeps the
rest.

Examples:
  aigov bundle import handoff-2026-q3.tar.zst
  aigov bundle import handoff-2026-q3.tar.zst --force`,
	Args: cobra.ExactArgs(1),
	RunE: runBundleImport,
}

func init() {
	bundleImportCmd.Flags().BoolVar(&bundleImportForce, "force", false, "Import into a non-empty library")
	bundleCmd.AddCommand(bundleImportCmd)
}

func runBundleImport(cmd *cobra.Command, args []string) error {
	file := args[0]

	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would import %s into %s\n", file, lib.Root())
		return nil
	}

	manifest, err := bundle.Import(lib, file, bundleImportForce)
	if errors.Is(err, bundle.ErrNotEmpty) {
		return fmt.Errorf("%v (use --force to import anyway)", err)
	}
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

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	ctx := cmd.Context()
	if _, err := cat.Reindex(ctx, documents); err != nil {
		return err
	}

	idx, err := search.Build(lib.Root())
	if err != nil {
		return err
	}
	if err := idx.Save(lib.IndexPath()); err != nil {
		return err
	}

	details := fmt.Sprintf("%s (%d documents)", file, manifest.Documents)
	if err := cat.LogAction(ctx, catalog.ActionBundleImport, details); err != nil {
		return err
	}

	fmt.Printf("Imported %d document(s) from %s\n", manifest.Documents, file)
	VerbosePrintf("Bundle created %s by %s %s\n",
		manifest.CreatedAt.Format("2006-01-02"), manifest.Tool, manifest.Version)
	return nil
}
