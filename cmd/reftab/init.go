package main

import (
	"fmt"
	"os"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new reftab repository",
	Long: `Initialize a reftab repository in the current directory.

Creates:
  reftab.yml              # Starter config (all keys optional)
  data/
  └── references/
      └── bibliography.json
  .reftab/
  └── cache/              # Query cache (gitignore this)`,
	RunE: runInit,
}

// starterConfig is the reftab.yml written on init. The commented values
// are the defaults.
const starterConfig = `# reftab repository configuration.
# All keys are optional; the values shown are the defaults.
#
# data_dir: data
# references_dir: data/references
# metadata_dir: data/_metadata
# dist_dir: dist/data
#
# verify:
#   requests_per_second: 2
#   timeout_seconds: 10
`

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a reftab repository")
	}

	cfg := config.Default()
	if err := os.MkdirAll(cfg.ReferencesPath(root), 0755); err != nil {
		exitWithError(ExitError, "creating references directory: %v", err)
	}
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	if err := os.WriteFile(config.ConfigPath(root), []byte(starterConfig), 0644); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	store := &bib.Store{
		Description: "Project bibliography in CSL-JSON",
		References:  []bib.Entry{},
	}
	if err := store.Save(cfg.BibliographyPath(root)); err != nil {
		exitWithError(ExitError, "creating bibliography: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized reftab repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
