package main

import (
	"fmt"

	"github.com/brainemulation/reftab/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the repository root and the resolved paths and settings, after
applying reftab.yml overrides and defaults.`,
	RunE: runConfig,
}

// ConfigResponse is the resolved configuration for the config command.
type ConfigResponse struct {
	Root          string  `json:"root"`
	DataDir       string  `json:"data_dir"`
	ReferencesDir string  `json:"references_dir"`
	MetadataDir   string  `json:"metadata_dir"`
	DistDir       string  `json:"dist_dir"`
	Bibliography  string  `json:"bibliography"`
	CacheDB       string  `json:"cache_db"`
	VerifyRPS     float64 `json:"verify_rps"`
	VerifyTimeout int     `json:"verify_timeout_seconds"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	settings := cfg.EffectiveVerify()
	resp := ConfigResponse{
		Root:          repoRoot,
		DataDir:       cfg.DataPath(repoRoot),
		ReferencesDir: cfg.ReferencesPath(repoRoot),
		MetadataDir:   cfg.MetadataPath(repoRoot),
		DistDir:       cfg.DistPath(repoRoot),
		Bibliography:  cfg.BibliographyPath(repoRoot),
		CacheDB:       config.DBPath(repoRoot),
		VerifyRPS:     settings.RequestsPerSecond,
		VerifyTimeout: settings.TimeoutSeconds,
	}

	if humanOutput {
		fmt.Printf("root:         %s\n", resp.Root)
		fmt.Printf("data:         %s\n", resp.DataDir)
		fmt.Printf("references:   %s\n", resp.ReferencesDir)
		fmt.Printf("metadata:     %s\n", resp.MetadataDir)
		fmt.Printf("dist:         %s\n", resp.DistDir)
		fmt.Printf("bibliography: %s\n", resp.Bibliography)
		fmt.Printf("cache db:     %s\n", resp.CacheDB)
		fmt.Printf("verify:       %.1f req/s, %ds timeout\n", resp.VerifyRPS, resp.VerifyTimeout)
	} else {
		outputJSON(resp)
	}
	return nil
}
