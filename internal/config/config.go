// Package config handles repository layout and configuration.
//
// A reftab repository is a data directory tree with a bibliography
// under it. Layout is conventional and overridable through reftab.yml
// at the repository root; a missing config file just means the
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile is the optional per-repository config, at the root.
	ConfigFile = "reftab.yml"
	// ReftabDir holds derived state (the query cache). Disposable.
	ReftabDir = ".reftab"
	CacheDir  = "cache"
	DBFile    = "refs.db"

	// Files under the references directory.
	BibliographyFile = "bibliography.json"
	AuditFile        = "extraction_audit.json"
	UnmappedFile     = "unmapped_sources.json"
	OrphanedFile     = "orphaned_entries.json"
	BackfillReport   = "backfill_report.json"

	// DistMetadataFile is the manifest written next to published data.
	DistMetadataFile = "_metadata.json"
)

// Config represents repository configuration stored in reftab.yml.
// Zero values mean the conventional layout.
type Config struct {
	DataDir       string       `yaml:"data_dir,omitempty"`       // TSV tree, default "data"
	ReferencesDir string       `yaml:"references_dir,omitempty"` // default "<data_dir>/references"
	MetadataDir   string       `yaml:"metadata_dir,omitempty"`   // default "<data_dir>/_metadata"
	DistDir       string       `yaml:"dist_dir,omitempty"`       // default "dist/data"
	Verify        VerifyConfig `yaml:"verify,omitempty"`
}

// VerifyConfig tunes the link checker. Zero values fall back to the
// global config, then the builtin defaults; see EffectiveVerify.
type VerifyConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"` // default 2
	TimeoutSeconds    int     `yaml:"timeout_seconds,omitempty"`    // default 10
}

// Default returns the conventional configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.ReferencesDir == "" {
		c.ReferencesDir = filepath.Join(c.DataDir, "references")
	}
	if c.MetadataDir == "" {
		c.MetadataDir = filepath.Join(c.DataDir, "_metadata")
	}
	if c.DistDir == "" {
		c.DistDir = filepath.Join("dist", "data")
	}
}

// EffectiveVerify resolves the link checker settings: the repository
// config wins, then the user's global config, then the builtin
// defaults (2 req/s, 10s timeout).
func (c *Config) EffectiveVerify() VerifyConfig {
	v := c.Verify
	if global, err := LoadGlobalConfig(); err == nil {
		if v.RequestsPerSecond <= 0 {
			v.RequestsPerSecond = global.Verify.RequestsPerSecond
		}
		if v.TimeoutSeconds <= 0 {
			v.TimeoutSeconds = global.Verify.TimeoutSeconds
		}
	}
	if v.RequestsPerSecond <= 0 {
		v.RequestsPerSecond = 2
	}
	if v.TimeoutSeconds <= 0 {
		v.TimeoutSeconds = 10
	}
	return v
}

// Load reads the repository configuration at the given root. A missing
// reftab.yml yields the defaults; a malformed one is an error.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// ConfigPath returns the path to reftab.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// ReftabPath returns the path to the .reftab directory from a root path.
func ReftabPath(root string) string {
	return filepath.Join(root, ReftabDir)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, ReftabDir, CacheDir)
}

// DBPath returns the path to refs.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, ReftabDir, CacheDir, DBFile)
}

// DataPath returns the TSV data directory.
func (c *Config) DataPath(root string) string {
	return filepath.Join(root, c.DataDir)
}

// ReferencesPath returns the references directory.
func (c *Config) ReferencesPath(root string) string {
	return filepath.Join(root, c.ReferencesDir)
}

// BibliographyPath returns the path to bibliography.json.
func (c *Config) BibliographyPath(root string) string {
	return filepath.Join(c.ReferencesPath(root), BibliographyFile)
}

// AuditPath returns the path to extraction_audit.json.
func (c *Config) AuditPath(root string) string {
	return filepath.Join(c.ReferencesPath(root), AuditFile)
}

// UnmappedPath returns the default output path for unmapped_sources.json.
func (c *Config) UnmappedPath(root string) string {
	return filepath.Join(c.ReferencesPath(root), UnmappedFile)
}

// OrphanedPath returns the default output path for orphaned_entries.json.
func (c *Config) OrphanedPath(root string) string {
	return filepath.Join(c.ReferencesPath(root), OrphanedFile)
}

// BackfillReportPath returns the default output path for backfill_report.json.
func (c *Config) BackfillReportPath(root string) string {
	return filepath.Join(c.ReferencesPath(root), BackfillReport)
}

// MetadataPath returns the dataset metadata override directory.
func (c *Config) MetadataPath(root string) string {
	return filepath.Join(root, c.MetadataDir)
}

// DistPath returns the published data directory.
func (c *Config) DistPath(root string) string {
	return filepath.Join(root, c.DistDir)
}

// IsRepository checks if the given path looks like a reftab repository:
// either a reftab.yml at the root, or a bibliography in the
// conventional place.
func IsRepository(root string) bool {
	if _, err := os.Stat(ConfigPath(root)); err == nil {
		return true
	}
	conventional := filepath.Join(root, "data", "references", BibliographyFile)
	_, err := os.Stat(conventional)
	return err == nil
}

// FindRepository walks up from the given path to find a reftab
// repository. Returns the repository root path or an error if not
// found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a reftab repository (no reftab.yml or data/references/%s found)", BibliographyFile)
		}
		abs = parent
	}
}
