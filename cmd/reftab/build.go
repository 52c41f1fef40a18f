package main

import (
	"fmt"
	"sort"

	"github.com/brainemulation/reftab/internal/dist"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Publish the data files and their manifest to dist/",
	Long: `Copy every TSV file under the data directory into the distribution
directory, preserving layout and modification times, then write the
_metadata.json manifest: category blocks, per-dataset titles and
descriptions (from the _metadata sidecar files when present), bucketed
row counts, and column lists.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	result, err := dist.Build(cfg.DataPath(repoRoot), cfg.MetadataPath(repoRoot), cfg.DistPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "building dist: %v", err)
	}

	if humanOutput {
		fmt.Printf("Copied %d data files\n", result.FilesCopied)
		categories := make([]string, 0, len(result.Categories))
		for category := range result.Categories {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Printf("  %s: %d\n", category, result.Categories[category])
		}
		fmt.Printf("Wrote %s\n", result.MetadataPath)
	} else {
		outputJSON(result)
	}
	return nil
}
