package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/checklist"
	"github.com/ethicslab/aigov/internal/config"
	"github.com/ethicslab/aigov/internal/library"
	"github.com/ethicslab/aigov/internal/search"
	"github.com/ethicslab/aigov/internal/taxonomy"
)

var initNoSeed bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a governance library in the current directory",
	Long: `Set up the current directory as an aigov governance library.

This creates:
  cards/            - Model and data cards
  checklists/       - Framework checklists
  guides/           - Guides and generated reports
  .aigov/           - Catalog database, search index, config

Framework checklists (EU AI Act, NIST AI 600-1, HIPAA, agentic tool-use
safety) are seeded from the embedded templates unless --no-seed is given.

Safe to run multiple times (idempotent): existing files are never
overwritten.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initNoSeed, "no-seed", false, "Do not seed the framework checklists")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would initialize a governance library at %s\n", cwd)
		return nil
	}

	lib := library.New(cwd)
	if err := lib.Init(); err != nil {
		return err
	}

	if err := writeStarterConfig(lib); err != nil {
		return err
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}
	defer func() { _ = cat.Close() }()

	seeded, err := seedChecklists(cmd.Context(), lib, cat)
	if err != nil {
		return err
	}

	if err := writeEmptyIndex(lib); err != nil {
		return err
	}

	fmt.Printf("Initialized governance library at %s\n", lib.Root())
	fmt.Println()
	fmt.Println("  cards/       model and data cards")
	fmt.Println("  checklists/  framework checklists")
	fmt.Println("  guides/      guides and generated reports")
	fmt.Println("  .aigov/      catalog, search index, config")
	if len(seeded) > 0 {
		fmt.Println()
		fmt.Println("Seeded checklists:")
		for _, path := range seeded {
			fmt.Printf("  %s\n", path)
		}
	}
	fmt.Println()
	fmt.Println("Next: 'aigov card new' to write a model card, 'aigov checklist status' to track progress.")
	return nil
}

// writeStarterConfig writes the default config into .aigov/ unless one
// already exists.
func writeStarterConfig(lib *library.Library) error {
	path := lib.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		VerbosePrintf("Config already exists at %s\n", path)
		return nil
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("marshal starter config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write starter config: %w", err)
	}
	return nil
}

// seedChecklists materializes every framework checklist that is not
// already present, returning the paths it created.
func seedChecklists(ctx context.Context, lib *library.Library, cat *catalog.Catalog) ([]string, error) {
	if initNoSeed {
		return nil, nil
	}

	now := time.Now()
	var seeded []string
	for _, fw := range taxonomy.FrameworkOrder {
		existing, err := checklist.Find(lib, fw)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			VerbosePrintf("Checklist for %s already exists at %s\n", fw, existing.Path)
			continue
		}

		doc, err := checklist.Materialize(lib, fw, false, now)
		if err != nil {
			return nil, fmt.Errorf("seed %s checklist: %w", fw, err)
		}
		if err := cat.Upsert(ctx, doc); err != nil {
			return nil, err
		}
		if err := cat.LogAction(ctx, catalog.ActionChecklistInit, doc.Path); err != nil {
			return nil, err
		}
		seeded = append(seeded, doc.Path)
	}
	return seeded, nil
}

// writeEmptyIndex creates the search index file so doctor and search have
// something to load before the first reindex.
func writeEmptyIndex(lib *library.Library) error {
	if _, err := os.Stat(lib.IndexPath()); err == nil {
		return nil
	}
	idx, err := search.Build(lib.Root())
	if err != nil {
		return fmt.Errorf("build initial index: %w", err)
	}
	return idx.Save(lib.IndexPath())
}
