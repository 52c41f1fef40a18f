package main

import (
	"fmt"
	"sort"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/match"
	"github.com/brainemulation/reftab/internal/reconcile"
	"github.com/spf13/cobra"
)

var unmappedOutput string

func init() {
	unmappedCmd.Flags().StringVar(&unmappedOutput, "output", "", "Report path (default references/unmapped_sources.json)")
	rootCmd.AddCommand(unmappedCmd)
}

var unmappedCmd = &cobra.Command{
	Use:   "unmapped",
	Short: "Find source values with no bibliography entry",
	Long: `Scan source-like columns (source, doi, link, references, ref, url)
across the TSV files and report every value that matches no bibliography
entry by DOI or URL.

Each finding is categorized to suggest the likely fix: multi_url,
doi_format_issue, url_not_in_bib, or text_reference. Findings are data
observations, not faults; the command exits 0 either way.`,
	RunE: runUnmapped,
}

func runUnmapped(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	store := mustLoadBibliography(cfg, repoRoot)

	resolver := reconcile.NewResolver(bib.NewIndex(store.References))
	items, err := reconcile.FindUnmapped(cfg.DataPath(repoRoot), resolver)
	if err != nil {
		exitWithError(ExitError, "scanning data directory: %v", err)
	}

	report := reconcile.NewUnmappedReport(items)

	outPath := unmappedOutput
	if outPath == "" {
		outPath = cfg.UnmappedPath(repoRoot)
	}
	if err := writeJSONFile(outPath, report); err != nil {
		exitWithError(ExitError, "saving report: %v", err)
	}

	if humanOutput {
		fmt.Printf("Unmapped sources: %d\n", report.Summary.Total)
		categories := make([]string, 0, len(report.Summary.ByCategory))
		for cat := range report.Summary.ByCategory {
			categories = append(categories, string(cat))
		}
		sort.Strings(categories)
		for _, cat := range categories {
			fmt.Printf("  %s: %d\n", cat, report.Summary.ByCategory[match.Category(cat)])
		}
		fmt.Printf("Saved to %s\n", outPath)
	} else {
		outputJSON(report)
	}
	return nil
}
