package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brainemulation/reftab/internal/verify"
	"github.com/spf13/cobra"
)

var (
	verifyRPS     float64
	verifyTimeout int
	verifyLimit   int
)

func init() {
	verifyCmd.Flags().Float64Var(&verifyRPS, "rps", 0, "Requests per second (default from reftab.yml, else 2)")
	verifyCmd.Flags().IntVar(&verifyTimeout, "timeout", 0, "Per-request timeout in seconds (default from reftab.yml, else 10)")
	verifyCmd.Flags().IntVar(&verifyLimit, "limit", 0, "Check at most this many entries (0 = all)")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that bibliography links still resolve",
	Long: `Request each bibliography entry's URL (or its DOI resolver link)
and report the ones that no longer resolve.

Requests run sequentially, throttled to stay polite to remote hosts.
Entries with neither URL nor DOI are recorded as skipped. Broken links
are findings, not faults; the command exits 0 either way.`,
	RunE: runVerify,
}

// VerifyReport is the JSON document for the verify command.
type VerifyReport struct {
	Generated string          `json:"_generated"`
	Summary   verify.Summary  `json:"summary"`
	Results   []verify.Result `json:"results"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	store := mustLoadBibliography(cfg, repoRoot)

	settings := cfg.EffectiveVerify()
	rps := verifyRPS
	if rps <= 0 {
		rps = settings.RequestsPerSecond
	}
	timeout := verifyTimeout
	if timeout <= 0 {
		timeout = settings.TimeoutSeconds
	}

	checker := verify.NewChecker(
		verify.WithRateLimit(rps),
		verify.WithTimeout(time.Duration(timeout)*time.Second),
	)

	results, summary, err := checker.Check(context.Background(), store.References, verifyLimit)
	if err != nil {
		exitWithError(ExitError, "checking links: %v", err)
	}

	if humanOutput {
		fmt.Printf("Checked %d entries: %d ok, %d broken, %d skipped\n",
			summary.Total, summary.OK, summary.Broken, summary.Skipped)
		for _, r := range results {
			if r.Status != verify.StatusBroken {
				continue
			}
			if r.Code != 0 {
				fmt.Printf("  %s: %s (HTTP %d)\n", r.RefID, r.URL, r.Code)
			} else {
				fmt.Printf("  %s: %s (%s)\n", r.RefID, r.URL, r.Detail)
			}
		}
	} else {
		outputJSON(VerifyReport{
			Generated: timestamp(),
			Summary:   summary,
			Results:   results,
		})
	}
	return nil
}
