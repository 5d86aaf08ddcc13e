package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ethicslab/aigov/internal/card"
	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/types"
	"github.com/ethicslab/aigov/internal/wizard"
)

var (
	cardNewKind     string
	cardNewSet      []string
	cardNewDefaults bool
	cardNewManaged  bool
	cardNewStrict   bool
)

var cardNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a model or data card",
	Long: `Generate a card by answering a fixed set of prompts.

Each prompt shows its default in brackets; an empty answer accepts the
default, anything else is used verbatim. Answers are interpolated into
the card template without validation unless --strict is given.

By default the card is written to MODEL_CARD.md (or DATA_CARD.md) in the
working directory, overwriting any previous card. With --managed the card
is stored in the governance library with frontmatter and recorded in the
catalog and audit trail.

Examples:
  aigov card new
  aigov card new --kind data
  aigov card new --defaults --set name=triage-assistant --set tier=High
  aigov card new --managed --strict`,
	Args: cobra.NoArgs,
	RunE: runCardNew,
}

func init() {
	cardNewCmd.Flags().StringVar(&cardNewKind, "kind", "model", "Card kind (model, data)")
	cardNewCmd.Flags().StringArrayVar(&cardNewSet, "set", nil, "Preset a field (field=value, repeatable)")
	cardNewCmd.Flags().BoolVar(&cardNewDefaults, "defaults", false, "Accept every default without prompting")
	cardNewCmd.Flags().BoolVar(&cardNewManaged, "managed", false, "Store the card in the library instead of the working directory")
	cardNewCmd.Flags().BoolVar(&cardNewStrict, "strict", false, "Validate tier, category, protection, and privacy against the vocabularies")
	cardCmd.AddCommand(cardNewCmd)
}

func runCardNew(cmd *cobra.Command, args []string) error {
	var prompts []card.Prompt
	switch cardNewKind {
	case "model":
		prompts = card.ModelPrompts()
	case "data":
		prompts = card.DataPrompts()
	default:
		return fmt.Errorf("unknown card kind %q (want model or data)", cardNewKind)
	}

	overrides, err := parseSetFlags(cardNewSet, prompts)
	if err != nil {
		return err
	}

	if GetDryRun() {
		target := card.OutputFilename
		if cardNewKind == "data" {
			target = card.DataOutputFilename
		}
		if cardNewManaged {
			fmt.Printf("[dry-run] Would generate a %s card into the library\n", cardNewKind)
		} else {
			fmt.Printf("[dry-run] Would generate a %s card at %s\n", cardNewKind, target)
		}
		return nil
	}

	// Keep output clean when answers are piped in.
	if term.IsTerminal(int(os.Stdin.Fd())) && !cardNewDefaults {
		fmt.Printf("aigov %s card generator\n", cardNewKind)
		fmt.Println("Press Enter to accept the default shown in brackets.")
		fmt.Println()
	}

	answers, err := wizard.Run(os.Stdin, os.Stdout, prompts, wizard.Options{
		Overrides:      overrides,
		AcceptDefaults: cardNewDefaults,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	if cardNewKind == "data" {
		return writeDataCard(cmd, answers, now)
	}
	return writeModelCard(cmd, answers, now)
}

func writeModelCard(cmd *cobra.Command, answers []string, now time.Time) error {
	f, err := card.FromAnswers(answers)
	if err != nil {
		return err
	}
	if cardNewStrict {
		if err := card.Canonicalize(&f); err != nil {
			return fmt.Errorf("strict validation failed:\n%w", err)
		}
	}

	content, err := card.Render(f, now)
	if err != nil {
		return err
	}

	if cardNewManaged {
		front := card.ManagedFrontmatter(f, uuid.NewString(), now)
		return storeManagedCard(cmd, types.Document{Front: front, Body: content})
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	if err := card.Write(cwd, card.OutputFilename, content); err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Model card written to %s\n", card.OutputFilename)
	return nil
}

func writeDataCard(cmd *cobra.Command, answers []string, now time.Time) error {
	f, err := card.DataFromAnswers(answers)
	if err != nil {
		return err
	}

	content, err := card.RenderData(f, now)
	if err != nil {
		return err
	}

	if cardNewManaged {
		front := card.ManagedDataFrontmatter(f, uuid.NewString(), now)
		return storeManagedCard(cmd, types.Document{Front: front, Body: content})
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	if err := card.Write(cwd, card.DataOutputFilename, content); err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Data card written to %s\n", card.DataOutputFilename)
	return nil
}

// storeManagedCard writes the card into the library and records it in the
// catalog and audit trail.
func storeManagedCard(cmd *cobra.Command, doc types.Document) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	written, err := lib.WriteDocument(doc)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	ctx := cmd.Context()
	if err := cat.Upsert(ctx, written); err != nil {
		return err
	}
	if err := cat.LogAction(ctx, catalog.ActionCardNew, written.Path); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Created %s\n", written.Path)
	return nil
}

// parseSetFlags turns repeated field=value flags into a wizard override
// map, rejecting fields no prompt defines.
func parseSetFlags(pairs []string, prompts []card.Prompt) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	valid := make(map[string]bool, len(prompts))
	names := make([]string, 0, len(prompts))
	for _, p := range prompts {
		valid[p.Field] = true
		names = append(names, p.Field)
	}

	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid --set %q (want field=value)", pair)
		}
		key = strings.TrimSpace(key)
		if !valid[key] {
			return nil, fmt.Errorf("unknown field %q (valid: %s)", key, strings.Join(names, ", "))
		}
		overrides[key] = value
	}
	return overrides, nil
}

