package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/storage"
)

var (
	validateCitations  string
	validateReferences string
)

func init() {
	validateCmd.Flags().StringVar(&validateCitations, "citations", "", "JSONL file of citations")
	validateCmd.Flags().StringVar(&validateReferences, "references", "", "JSONL file of references")
	validateCmd.MarkFlagRequired("citations")
	validateCmd.MarkFlagRequired("references")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check citations against references",
	Long: `Check that every citation has a reference, every reference is cited and
matching pairs agree on authors and year. Exits with code 3 when problems
are found.

Examples:
  tl validate --citations cites.jsonl --references refs.jsonl`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

// ValidateResult is the JSON output of tl validate.
type ValidateResult struct {
	apa.ValidationResult
	Summary apa.Summary `json:"summary"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	mustExist(validateCitations)
	mustExist(validateReferences)

	cits, err := storage.ReadCitations(validateCitations)
	if err != nil {
		exitWithError(ExitDataError, "reading citations: %v", err)
	}
	refs, err := storage.ReadReferences(validateReferences)
	if err != nil {
		exitWithError(ExitDataError, "reading references: %v", err)
	}

	res := apa.Validate(cits, refs)
	summary := res.Summary(len(cits), len(refs))

	if humanOutput {
		printValidation(res, summary)
	} else if err := outputJSON(ValidateResult{ValidationResult: res, Summary: summary}); err != nil {
		return err
	}

	if !summary.Coherent {
		os.Exit(ExitDataError)
	}
	return nil
}

func printValidation(res apa.ValidationResult, s apa.Summary) {
	outputHuman("%d citations, %d references\n", s.TotalCitations, s.TotalReferences)
	for _, m := range res.CitationsWithoutReference {
		outputHuman("  missing reference: %s %s\n", m.CitationKey, m.CitationText)
	}
	for _, u := range res.ReferencesWithoutCitations {
		outputHuman("  never cited:       %s %s\n", u.RefKey, truncate(u.RefText, ListTitleMaxLen))
	}
	for _, im := range res.ImperfectMatches {
		outputHuman("  mismatch:          %s: %s vs %s\n", im.CitationKey,
			strings.Join(im.CitationAuthors, "; "), strings.Join(im.ReferenceAuthors, "; "))
	}
	if s.Coherent {
		outputHuman("All citations and references match.\n")
	}
}
