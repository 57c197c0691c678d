package main

import (
	"github.com/spf13/cobra"

	"github.com/textlab/textlab/internal/apa"
)

var (
	refsFile   string
	refsFormat string
)

func init() {
	refsCmd.Flags().StringVar(&refsFile, "file", "", "JSONL file of parsed references")
	refsCmd.Flags().StringVar(&refsFormat, "format", "text", "Output format: text, html or latex")
	rootCmd.AddCommand(refsCmd)
}

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Format a reference list",
	Long: `Format the records of a JSONL file as an APA reference list.

Examples:
  tl refs --file refs.jsonl
  tl refs --file refs.jsonl --format html > refs.html`,
	Args: cobra.NoArgs,
	RunE: runRefs,
}

// ReferenceListResult is the JSON output of tl refs.
type ReferenceListResult struct {
	ReferenceList string     `json:"reference_list"`
	Format        apa.Format `json:"format"`
	Count         int        `json:"count"`
}

func runRefs(cmd *cobra.Command, args []string) error {
	refs := mustReadParsed(refsFile)
	format := apa.ParseFormat(refsFormat)
	list := apa.ReferenceList(refs, format)

	if humanOutput {
		outputHuman("%s\n", list)
		return nil
	}
	return outputJSON(ReferenceListResult{ReferenceList: list, Format: format, Count: len(refs)})
}
