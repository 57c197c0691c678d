package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/reference"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <raw reference>",
	Short: "Parse a raw reference string",
	Long: `Parse a raw reference string into a structured record.

Examples:
  tl parse "Smith, J. (2020). Introduction to Psychology. American Journal, 45(3), 123-145."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	p := apa.Parse(strings.Join(args, " "))

	if humanOutput {
		printParsed(p)
		return nil
	}
	return outputJSON(p)
}

func printParsed(p reference.Parsed) {
	year := "n.d."
	if p.Year != nil {
		year = fmt.Sprint(*p.Year)
	}
	outputHuman("Type:     %s\n", p.Type)
	outputHuman("Authors:  %s\n", strings.Join(p.Authors, "; "))
	outputHuman("Year:     %s\n", year)
	outputHuman("Title:    %s\n", p.Title)
	for _, f := range []struct{ label, value string }{
		{"Source", p.Source},
		{"Volume", p.Volume},
		{"Issue", p.Issue},
		{"Pages", p.Pages},
		{"DOI", p.DOI},
		{"URL", p.URL},
	} {
		if f.value != "" {
			outputHuman("%-9s %s\n", f.label+":", f.value)
		}
	}
}
