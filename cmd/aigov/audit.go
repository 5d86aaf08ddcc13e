package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/catalog"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit trail",
	Long: `Inspect the append-only audit trail.

Every mutating command (card new --managed, checklist init, index,
bundle export/import, probe run) records who did what and when. Entries
are never updated or deleted.

Examples:
  aigov audit list
  aigov audit list --limit 50 -o json`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runAuditList,
}

func init() {
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum entries to return")
	auditCmd.AddCommand(auditListCmd)
	rootCmd.AddCommand(auditCmd)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	entries, err := cat.AuditLog(cmd.Context(), auditLimit)
	if err != nil {
		return err
	}

	return outputAuditEntries(entries)
}

func outputAuditEntries(entries []catalog.AuditEntry) error {
	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(entries)

	default:
		if len(entries) == 0 {
			fmt.Println("No audit entries yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintln(w, "TIMESTAMP\tUSER\tACTION\tDETAILS")
		for _, e := range entries {
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Username, e.Action, e.Details)
		}
		return w.Flush()
	}
}
