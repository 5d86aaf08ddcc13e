package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethicslab/aigov/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the library in a terminal UI",
	Long: `Open a read-only terminal browser over the library.

The left pane lists documents (kind, tier, title); the right pane shows
a rendered preview. Press / to filter, enter to preview the selected
document, pgup/pgdn to scroll the preview, and q to quit.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would open the library browser at %s\n", lib.Root())
		return nil
	}

	return tui.Browse(lib)
}
