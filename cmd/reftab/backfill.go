package main

import (
	"fmt"
	"path/filepath"

	"github.com/brainemulation/reftab/internal/audit"
	"github.com/brainemulation/reftab/internal/backfill"
	"github.com/brainemulation/reftab/internal/tabular"
	"github.com/spf13/cobra"
)

var (
	backfillDryRun     bool
	backfillOnlyFile   string
	backfillSaveReport bool
)

func init() {
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "Preview changes without modifying files")
	backfillCmd.Flags().StringVar(&backfillOnlyFile, "file", "", "Process only this file (bare filename)")
	backfillCmd.Flags().BoolVar(&backfillSaveReport, "report", false, "Save the full report to references/backfill_report.json")
	rootCmd.AddCommand(backfillCmd)
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill ref_id columns from the extraction audit",
	Long: `Backfill ref_id columns in TSV files from extraction_audit.json.

The extraction audit records which bibliography entry each table row was
extracted against. Rows whose ref_id column is still empty (or "none")
get the audited ref_id written back; extra audited refs go to
supporting_refs. Rows that already carry a real ref_id are never
touched.

Audited refs with the text_ prefix are internal labels, not citations:
they are skipped, and when a row has nothing else its label text is
preserved in an empty ref_note cell.

Row numbers are cross-checked before writing: when the audit recorded
the source text an ID was minted from and the row no longer holds that
text, the row is reported as a mismatch and left alone.`,
	RunE: runBackfill,
}

// BackfillReport is the full outcome document, also written to disk
// with --report.
type BackfillReport struct {
	Generated string                `json:"_generated"`
	DryRun    bool                  `json:"_dry_run"`
	Stats     backfill.Stats        `json:"stats"`
	Results   []backfill.FileResult `json:"results"`
}

func runBackfill(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	log, err := audit.Load(cfg.AuditPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "loading extraction audit: %v", err)
	}

	byFile := log.ByFile()
	dataDir := cfg.DataPath(repoRoot)

	var stats backfill.Stats
	results := []backfill.FileResult{}

	for _, filename := range audit.SortedFiles(byFile) {
		path, ok, err := tabular.FindByName(dataDir, filename)
		if err != nil {
			exitWithError(ExitError, "scanning data directory: %v", err)
		}
		if !ok {
			results = append(results, backfill.FileResult{
				File:    filename,
				Status:  backfill.FileNotFound,
				Changes: []backfill.RowChange{},
			})
			continue
		}
		if backfillOnlyFile != "" && filepath.Base(path) != backfillOnlyFile {
			continue
		}

		t, err := tabular.Read(path)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", path, err)
		}

		result := backfill.File(t, byFile[filename], backfillDryRun)
		if !backfillDryRun && result.Backfilled() {
			if err := t.Write(); err != nil {
				exitWithError(ExitError, "writing %s: %v", path, err)
			}
		}

		stats.Add(result)
		results = append(results, result)
	}

	report := BackfillReport{
		Generated: timestamp(),
		DryRun:    backfillDryRun,
		Stats:     stats,
		Results:   results,
	}

	if backfillSaveReport {
		reportPath := cfg.BackfillReportPath(repoRoot)
		if err := writeJSONFile(reportPath, report); err != nil {
			exitWithError(ExitError, "saving report: %v", err)
		}
		if humanOutput {
			fmt.Printf("Report saved to %s\n\n", reportPath)
		}
	}

	if humanOutput {
		printBackfillSummary(report)
	} else {
		outputJSON(report)
	}
	return nil
}

func printBackfillSummary(report BackfillReport) {
	if report.DryRun {
		fmt.Println("Dry run: no files were modified")
	}
	fmt.Printf("Files processed: %d\n", report.Stats.FilesProcessed)
	fmt.Printf("Rows backfilled: %d\n", report.Stats.RowsBackfilled)
	fmt.Printf("Supporting refs added: %d\n", report.Stats.SupportingRefsAdded)
	fmt.Printf("Rows skipped (internal): %d\n", report.Stats.RowsSkippedInternal)
	fmt.Printf("Rows skipped (already has ref_id): %d\n", report.Stats.RowsAlreadyHave)
	fmt.Printf("Rows out of range: %d\n", report.Stats.RowsOutOfRange)
	fmt.Printf("Rows mismatched: %d\n", report.Stats.RowsMismatched)

	shown := 0
	for _, result := range report.Results {
		for _, change := range result.Changes {
			if change.Status != backfill.StatusBackfilled {
				continue
			}
			if shown == 0 {
				fmt.Println("\nSample changes:")
			}
			fmt.Printf("  %s:%d -> %s\n", result.File, change.Row, change.RefID)
			shown++
			if shown >= 10 {
				return
			}
		}
	}
}
