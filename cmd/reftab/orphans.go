package main

import (
	"fmt"
	"os"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/reconcile"
	"github.com/spf13/cobra"
)

var orphansOutput string

func init() {
	orphansCmd.Flags().StringVar(&orphansOutput, "output", "", "Report path (default references/orphaned_entries.json)")
	rootCmd.AddCommand(orphansCmd)
}

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Export bibliography entries nothing references",
	Long: `Export bibliography entries that no TSV file references.

An entry counts as referenced when its ID appears in a ref_id or
supporting_refs column, or when a source-like column value resolves to
it by DOI or URL. Entries reachable only through source columns are
listed separately; truly orphaned entries get their full records
exported for investigation.

Unreadable TSV files are reported on stderr and skipped, matching the
forgiving posture of a whole-tree scan.`,
	RunE: runOrphans,
}

func runOrphans(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	store := mustLoadBibliography(cfg, repoRoot)

	resolver := reconcile.NewResolver(bib.NewIndex(store.References))
	usage, err := reconcile.CollectUsage(cfg.DataPath(repoRoot), resolver, os.Stderr)
	if err != nil {
		exitWithError(ExitError, "scanning data directory: %v", err)
	}

	viaColumns, viaSource := reconcile.UsageSets(usage)
	report := reconcile.BuildOrphanReport(store, viaColumns, viaSource)

	outPath := orphansOutput
	if outPath == "" {
		outPath = cfg.OrphanedPath(repoRoot)
	}
	if err := writeJSONFile(outPath, report); err != nil {
		exitWithError(ExitError, "saving report: %v", err)
	}

	if humanOutput {
		fmt.Printf("Total bibliography entries: %d\n", report.Summary.TotalEntries)
		fmt.Printf("Used via ref_id columns: %d\n", report.Summary.UsedViaRefID)
		fmt.Printf("Used via source/DOI columns only: %d\n", report.Summary.SourceOnly)
		fmt.Printf("Truly orphaned: %d\n", report.Summary.TrulyOrphaned)
		for _, id := range report.TrulyOrphaned {
			fmt.Printf("  %s\n", id)
		}
		fmt.Printf("Saved to %s\n", outPath)
	} else {
		outputJSON(report)
	}
	return nil
}
