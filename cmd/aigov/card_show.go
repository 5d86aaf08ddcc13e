package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/library"
	"github.com/ethicslab/aigov/internal/types"
)

var cardShowCmd = &cobra.Command{
	Use:   "show <id or path>",
	Short: "Render a document from the library",
	Long: `Render a managed document to the terminal.

The argument is either a library-relative path (cards/2026-05-01-foo.md)
or a document ID from the catalog. Markdown is rendered for reading;
use -o json or -o yaml for the raw document.

Examples:
  aigov card show cards/2026-05-01-oncology-triage-ab12cd3.md
  aigov card show 7b0fded2-63a8-4d6f-9f6e-25a1f3c5cafe -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCardShow,
}

func init() {
	cardCmd.AddCommand(cardShowCmd)
}

func runCardShow(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	doc, err := resolveDocument(cmd.Context(), lib, args[0])
	if err != nil {
		return err
	}

	switch GetOutput() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(doc)

	default:
		renderMarkdown(doc)
		return nil
	}
}

// resolveDocument loads a document by library-relative path first, then
// by catalog ID, then by catalog path.
func resolveDocument(ctx context.Context, lib *library.Library, arg string) (types.Document, error) {
	rel := filepath.ToSlash(arg)
	if lib.Exists(rel) {
		return lib.LoadDocument(rel)
	}

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return types.Document{}, err
	}
	defer func() { _ = cat.Close() }()

	rec, err := cat.Get(ctx, arg)
	if errors.Is(err, catalog.ErrNotFound) {
		rec, err = cat.GetByPath(ctx, rel)
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return types.Document{}, fmt.Errorf("no document %q in the library (try 'aigov card list')", arg)
	}
	if err != nil {
		return types.Document{}, err
	}

	return lib.LoadDocument(rec.Path)
}

// renderMarkdown prints the document body through glamour, falling back
// to the raw Markdown when the terminal renderer cannot be built.
func renderMarkdown(doc types.Document) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if out, rerr := r.Render(doc.Body); rerr == nil {
			fmt.Print(out)
			fmt.Printf("\nid: %s  status: %s  path: %s\n", doc.Front.ID, doc.Front.Status, doc.Path)
			return
		}
	}

	fmt.Println(doc.Body)
	fmt.Printf("\nid: %s  status: %s  path: %s\n", doc.Front.ID, doc.Front.Status, doc.Path)
}
