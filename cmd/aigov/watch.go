package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethicslab/aigov/internal/catalog"
	"github.com/ethicslab/aigov/internal/config"
	"github.com/ethicslab/aigov/internal/lint"
	"github.com/ethicslab/aigov/internal/search"
	"github.com/ethicslab/aigov/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Revalidate the library as files change",
	Long: `Watch the library tree and keep the derived state fresh.

Saves are debounced, then each changed document is linted, reindexed for
search, and upserted into the catalog; removals prune both. Findings are
logged as they appear. Stop with Ctrl-C.

Examples:
  aigov watch
  aigov watch -v`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	lib, err := discoverLibrary()
	if err != nil {
		return err
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would watch %s for changes\n", lib.Root())
		return nil
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond

	cat, err := catalog.Open(lib.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	idx, err := search.Load(lib.IndexPath())
	if errors.Is(err, fs.ErrNotExist) {
		idx, err = search.Build(lib.Root())
	}
	if err != nil {
		return err
	}

	linter := lint.New(lib.Root(), 0)
	revalidator := watch.NewRevalidator(lib, linter, idx, cat)

	watcher, err := watch.New(lib, revalidator.HandleBatch, debounce)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watcher.Run(ctx)
}
