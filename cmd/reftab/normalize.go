package main

import (
	"fmt"

	"github.com/brainemulation/reftab/internal/normalize"
	"github.com/brainemulation/reftab/internal/tabular"
	"github.com/spf13/cobra"
)

var normalizeApply bool

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeApply, "apply", false, "Write changes (default is preview)")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Clean up ref_id conventions across the data files",
	Long: `Normalize ref_id usage in every TSV file under the data directory
(files under external/ are left alone):

  - "none" placeholders become empty cells
  - internal_* labels are cleared and moved into ref_note as prose
  - ref_ids that name no bibliography entry are flagged as warnings

A small curated set of known-missing bibliography entries is appended
first, so rows citing them stop warning. Preview by default; --apply
writes the modified tables and, when entries were added, the
bibliography.`,
	RunE: runNormalize,
}

// NormalizeReport is the JSON document for the normalize command.
type NormalizeReport struct {
	Generated       string             `json:"_generated"`
	Applied         bool               `json:"_applied"`
	AddedReferences []string           `json:"added_references"`
	Summary         normalize.Summary  `json:"summary"`
	Changes         []normalize.Change `json:"changes"`
}

func runNormalize(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	store := mustLoadBibliography(cfg, repoRoot)

	// Additions count toward the valid ID set even in preview, so a
	// preview and the apply that follows it report the same warnings.
	added := store.AddMissing(curatedReferences)
	bibIDs := store.IDSet()
	if len(added) > 0 && normalizeApply {
		if err := store.Save(cfg.BibliographyPath(repoRoot)); err != nil {
			exitWithError(ExitError, "saving bibliography: %v", err)
		}
	}

	paths, err := tabular.Walk(cfg.DataPath(repoRoot), "external")
	if err != nil {
		exitWithError(ExitError, "scanning data directory: %v", err)
	}

	var allChanges []normalize.Change
	for _, path := range paths {
		t, err := tabular.Read(path)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", path, err)
		}
		changes := normalize.File(t, bibIDs)
		if normalizeApply && len(changes) > 0 {
			if err := t.Write(); err != nil {
				exitWithError(ExitError, "writing %s: %v", path, err)
			}
		}
		allChanges = append(allChanges, changes...)
	}

	report := NormalizeReport{
		Generated:       timestamp(),
		Applied:         normalizeApply,
		AddedReferences: added,
		Summary:         normalize.Summarize(allChanges),
		Changes:         allChanges,
	}
	if report.AddedReferences == nil {
		report.AddedReferences = []string{}
	}
	if report.Changes == nil {
		report.Changes = []normalize.Change{}
	}

	if humanOutput {
		printNormalizeSummary(report)
	} else {
		outputJSON(report)
	}
	return nil
}

func printNormalizeSummary(report NormalizeReport) {
	if len(report.AddedReferences) > 0 {
		fmt.Printf("Added %d bibliography entries:\n", len(report.AddedReferences))
		for _, id := range report.AddedReferences {
			fmt.Printf("  %s\n", id)
		}
	}

	fmt.Printf("Total changes: %d\n", report.Summary.Total)
	fmt.Printf("  'none' -> empty: %d\n", report.Summary.NoneFixes)
	fmt.Printf("  internal_* -> ref_note: %d\n", report.Summary.NoteMoves)
	fmt.Printf("  warnings (need manual fix): %d\n", report.Summary.Warnings)

	if report.Summary.Warnings > 0 {
		fmt.Println("\nWarnings that need attention:")
		for _, c := range report.Changes {
			if c.Change == normalize.ChangeWarning {
				fmt.Printf("  %s:%d - %s\n", c.File, c.Row, c.Before)
			}
		}
	}

	if !report.Applied {
		fmt.Println("\nPreview only. Run with --apply to write changes.")
	}
}
