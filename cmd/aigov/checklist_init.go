package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/checklist"
	"github.com/ethicslab/aigov/internal/taxonomy"
)

var checklistInitForce bool

var checklistInitCmd = &cobra.Command{
	Use:   "init <framework>",
	Short: "Materialize a framework checklist into the library",
	Long: `Create a checklist for a compliance framework from its embedded
template.

Frameworks: eu-ai-act, nist-ai-600-1, hipaa, mcp-safety.

An existing checklist for the framework is never overwritten unless
--force is given; --force keeps the original document identity and
creation date so the audit trail stays coherent.

Examples:
  aigov checklist init hipaa
  aigov checklist init eu-ai-act --force`,
	Args: cobra.ExactArgs(1),
	RunE: runChecklistInit,
}

func init() {
	checklistInitCmd.Flags().BoolVar(&checklistInitForce, "force", false, "Overwrite an existing checklist for the framework")
	checklistCmd.AddCommand(checklistInitCmd)
}

func runChecklistInit(cmd *cobra.Command, args []string) error {
	fw, err := taxonomy.CanonicalFramework(args[0])
	if err != nil {
		names := make([]string, 0, len(taxonomy.FrameworkOrder))
		for _, f := range taxonomy.FrameworkOrder {
			names = append(names, string(f))
		}
		return fmt.Errorf("%w (valid: %s)", err, strings.Join(names, ", "))
	}

	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would materialize the %s checklist\n", fw)
		return nil
	}

	doc, err := checklist.Materialize(lib, fw, checklistInitForce, time.Now())
	if errors.Is(err, checklist.ErrExists) {
		return fmt.Errorf("%v (use --force to overwrite)", err)
	}
	if err != nil {
		return err
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	ctx := cmd.Context()
	if err := cat.Upsert(ctx, doc); err != nil {
		return err
	}
	if err := cat.LogAction(ctx, catalog.ActionChecklistInit, doc.Path); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", doc.Path)
	fmt.Println("Check off items in the file, then run 'aigov checklist status'.")
	return nil
}
