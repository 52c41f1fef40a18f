// Package main provides the reftab CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/config"
	"github.com/brainemulation/reftab/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reftab",
	Short: "Agent-first citation reconciliation for tabular datasets",
	Long: `reftab keeps the TSV data files and the CSL bibliography of a
dataset repository consistent with each other.

Core operations:
  - Backfill ref_id columns from the extraction audit
  - Find source values with no bibliography entry
  - Export orphaned bibliography entries
  - Normalize ref_id conventions across all tables
  - Publish the data tree with a generated manifest

The TSV files and bibliography.json stay the source of truth; an
ephemeral SQLite cache serves fast queries. All commands output JSON by
default for AI agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for REFTAB_ROOT)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a
// repository. REFTAB_ROOT wins, then the global config default_root,
// then the current working directory. A default_root that points at a
// missing directory is an error, not a silent fallback.
func getStartingDirectory() (string, int) {
	if root := os.Getenv("REFTAB_ROOT"); root != "" {
		return root, 0
	}
	if config.GetDefaultRoot() != "" {
		root, err := config.ValidateDefaultRoot()
		if err != nil {
			return "", outputError(ExitConfigError, "global config: %v", err)
		}
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		// Show helpful message if no global config exists
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadBibliography loads and validates bibliography.json, exits on
// error.
func mustLoadBibliography(cfg *config.Config, repoRoot string) *bib.Store {
	store, err := bib.Load(cfg.BibliographyPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "loading bibliography: %v", err)
	}
	return store
}

// mustOpenDatabase opens the SQLite cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	dbPath := config.DBPath(repoRoot)
	db, err := storage.Open(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
