package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/textlab/textlab/internal/export"
	"github.com/textlab/textlab/internal/reference"
)

var (
	exportBibtex bool
	exportFile   string
	exportOut    string
)

func init() {
	exportCmd.Flags().BoolVar(&exportBibtex, "bibtex", false, "Export to BibTeX format")
	exportCmd.Flags().StringVar(&exportFile, "file", "", "JSONL file of parsed references")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Append new entries to this .bib file instead of printing")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export references to BibTeX format",
	Long: `Export references to BibTeX format.

With --out, entries are appended to an existing .bib file; entries whose DOI
or key is already present are skipped.

Examples:
  tl export --bibtex --file refs.jsonl
  tl export --bibtex --file refs.jsonl > refs.bib
  tl export --bibtex --file refs.jsonl --out thesis.bib`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// ExportResult is the JSON output of tl export --out.
type ExportResult struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if !exportBibtex {
		exitWithError(ExitError, "--bibtex flag is required")
	}
	refs := mustReadParsed(exportFile)

	if exportOut == "" {
		// BibTeX is always text output, never JSON
		fmt.Print(export.ToBibTeXList(refs))
		return nil
	}

	idx, err := export.LoadIndex(exportOut)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", exportOut, err)
	}
	fresh, skipped := newEntries(idx, refs)
	if len(fresh) > 0 {
		if err := export.AppendToBibFile(exportOut, export.ToBibTeXList(fresh)); err != nil {
			exitWithError(ExitError, "writing %s: %v", exportOut, err)
		}
	}

	res := ExportResult{Path: exportOut, Added: len(fresh), Skipped: skipped}
	if humanOutput {
		outputHuman("Added %d entries to %s (%d already present)\n", res.Added, res.Path, res.Skipped)
		return nil
	}
	return outputJSON(res)
}

// newEntries drops references already in idx and assigns each kept one a
// key, recording it so duplicates within refs are dropped too.
func newEntries(idx *export.Index, refs []reference.Parsed) ([]reference.Parsed, int) {
	var (
		fresh   []reference.Parsed
		skipped int
	)
	for _, p := range refs {
		if p.RefKey == "" {
			p.RefKey = uniqueKey(idx, export.CiteKey(p))
		}
		if idx.HasEntry(p.RefKey, p.DOI) {
			skipped++
			continue
		}
		idx.Add(p.RefKey, p.DOI)
		fresh = append(fresh, p)
	}
	return fresh, skipped
}

// uniqueKey suffixes base with a letter until it is unused in idx. A record
// whose DOI is already present is still caught by HasEntry.
func uniqueKey(idx *export.Index, base string) string {
	key := base
	for c := 'a'; idx.Keys[key] && c <= 'z'; c++ {
		key = base + string(c)
	}
	return key
}
