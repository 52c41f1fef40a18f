package main

import (
	"fmt"
	"os"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/config"
	"github.com/brainemulation/reftab/internal/reconcile"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from source data",
	Long: `Rebuild the SQLite query cache from bibliography.json and a usage
scan of the TSV files.

The bibliography and the tables stay the source of truth; the cache is
disposable. Use this after editing either by hand or pulling changes
from git.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status     string `json:"status"`
	References int    `json:"references"`
	Usage      int    `json:"usage"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	store := mustLoadBibliography(cfg, repoRoot)

	resolver := reconcile.NewResolver(bib.NewIndex(store.References))
	usage, err := reconcile.CollectUsage(cfg.DataPath(repoRoot), resolver, os.Stderr)
	if err != nil {
		exitWithError(ExitError, "scanning data directory: %v", err)
	}

	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	count, err := db.Rebuild(store.References, usage)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding cache: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query cache with %d references (%d usage rows)\n", count, len(usage))
	} else {
		outputJSON(RebuildResult{
			Status:     "rebuilt",
			References: count,
			Usage:      len(usage),
		})
	}
	return nil
}
