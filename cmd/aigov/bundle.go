package main

import (
	"github.com/spf13/cobra"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Export or import a compliance bundle",
	Long: `Move a whole library as a single verifiable archive.

A bundle is a zstd-compressed tarball of every managed document plus a
manifest carrying the tool version, creation time, and a SHA-256 per
file. Import verifies every checksum before accepting the archive, then
rebuilds the catalog and search index.

Examples:
  aigov bundle export
  aigov bundle export handoff-2026-q3.tar.zst
  aigov bundle import handoff-2026-q3.tar.zst`,
}

func init() {
	rootCmd.AddCommand(bundleCmd)
}
