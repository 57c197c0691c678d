package main

import (
	"github.com/spf13/cobra"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/reference"
)

var citeFile string

func init() {
	citeCmd.Flags().StringVar(&citeFile, "file", "", "JSONL file of parsed references")
	rootCmd.AddCommand(citeCmd)
}

var citeCmd = &cobra.Command{
	Use:   "cite",
	Short: "Generate in-text citations",
	Long: `Generate the APA in-text citation for each record of a JSONL file.

Examples:
  tl cite --file refs.jsonl`,
	Args: cobra.NoArgs,
	RunE: runCite,
}

// CitationResult pairs a record with its in-text citation.
type CitationResult struct {
	Index    int    `json:"index"`
	Title    string `json:"title,omitempty"`
	Citation string `json:"citation"`
}

func citations(refs []reference.Parsed) []CitationResult {
	out := make([]CitationResult, len(refs))
	for i, p := range refs {
		out[i] = CitationResult{Index: i, Title: p.Title, Citation: apa.Citation(p)}
	}
	return out
}

func runCite(cmd *cobra.Command, args []string) error {
	results := citations(mustReadParsed(citeFile))

	if humanOutput {
		for _, r := range results {
			outputHuman("%-40s %s\n", r.Citation, truncate(r.Title, ListTitleMaxLen))
		}
		return nil
	}
	return outputJSON(results)
}
