// Package main provides the tl CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/textlab/textlab/internal/config"
	"github.com/textlab/textlab/internal/reference"
	"github.com/textlab/textlab/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	dbPath      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors such as missing flags are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tl",
	Short: "APA-7 citations, reference lists and coherence checks",
	Long: `tl formats and checks academic references in APA 7th edition style.

Core features:
  - Parse raw reference strings into structured records
  - Generate in-text citations and formatted reference lists (text, HTML, LaTeX)
  - Check that every citation has a reference and every reference is cited
  - Import from BibTeX, PDF reference sections or plain text; export to BibTeX
  - Serve documents, citations and references over a REST API

Reference files are JSONL, one record per line.
All commands output JSON by default; use --human for readable text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/textlab/config.yml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides database.path)")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if dbPath != "" {
		cfg.Database.Path = config.ExpandTilde(dbPath)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite database, creating its directory.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(path string) *storage.DB {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			exitWithError(ExitConfigError, "creating database directory: %v", err)
		}
	}
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustExist exits with ExitNotFound when path does not exist.
func mustExist(path string) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			exitWithError(ExitNotFound, "file not found: %s", path)
		}
		exitWithError(ExitError, "checking %s: %v", path, err)
	}
}

// mustReadParsed reads a JSONL file of parsed references.
func mustReadParsed(path string) []reference.Parsed {
	if path == "" {
		exitWithError(ExitError, "--file is required")
	}
	mustExist(path)
	refs, err := storage.ReadParsed(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}
	return refs
}
