package main

import (
	"github.com/spf13/cobra"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Author, inspect, and validate cards",
	Long: `Work with model and data cards.

Cards document an AI system for governance review: what it is, how it is
protected, and where its data comes from. 'card new' interpolates answers
verbatim; 'card validate' checks managed cards against the controlled
vocabularies.

Examples:
  aigov card new
  aigov card new --kind data --defaults
  aigov card list --tier High
  aigov card validate --all`,
}

func init() {
	rootCmd.AddCommand(cardCmd)
}
