package main

import (
	"github.com/spf13/cobra"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Materialize and track framework checklists",
	Long: `Work with compliance framework checklists.

Checklists are Markdown task lists materialized from embedded templates:
EU AI Act readiness, the NIST AI 600-1 generative AI profile, HIPAA
privacy and security, and agentic tool-use safety. Progress is read
straight from the checked boxes in the files.

Examples:
  aigov checklist init eu-ai-act
  aigov checklist status
  aigov checklist list`,
}

func init() {
	rootCmd.AddCommand(checklistCmd)
}
