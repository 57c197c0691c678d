package main

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/export"
	"github.com/textlab/textlab/internal/pdf"
	"github.com/textlab/textlab/internal/reference"
	"github.com/textlab/textlab/internal/storage"
)

var (
	importBib  string
	importPDF  string
	importText string
	importOut  string
)

func init() {
	importCmd.Flags().StringVar(&importBib, "bib", "", "BibTeX file to import")
	importCmd.Flags().StringVar(&importPDF, "pdf", "", "PDF whose reference section to import")
	importCmd.Flags().StringVar(&importText, "text", "", "Text file with one raw reference per line")
	importCmd.Flags().StringVar(&importOut, "out", "", "Write JSONL to this file instead of stdout")
	importCmd.MarkFlagsMutuallyExclusive("bib", "pdf", "text")
	importCmd.MarkFlagsOneRequired("bib", "pdf", "text")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import references as parsed JSONL",
	Long: `Import references from a BibTeX file, the reference section of a PDF or a
text file with one raw reference per line, producing parsed JSONL.

Examples:
  tl import --bib library.bib --out refs.jsonl
  tl import --pdf paper.pdf --out refs.jsonl --human
  tl import --text raw.txt > refs.jsonl`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

// ImportResult is the JSON output of tl import --out.
type ImportResult struct {
	Source   string `json:"source"`
	Path     string `json:"path"`
	Imported int    `json:"imported"`
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		source string
		refs   []reference.Parsed
	)
	switch {
	case importBib != "":
		source = importBib
		mustExist(source)
		entries, err := export.ParseBibTeXFile(source)
		if err != nil {
			exitWithError(ExitDataError, "parsing %s: %v", source, err)
		}
		refs = make([]reference.Parsed, len(entries))
		for i, e := range entries {
			refs[i] = e.Parsed()
		}

	case importPDF != "":
		source = importPDF
		mustExist(source)
		raws, err := pdf.ExtractReferences(source)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", source, err)
		}
		refs = mustParseAll(cmd.Context(), raws)

	default:
		source = importText
		mustExist(source)
		raws, err := readLines(source)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", source, err)
		}
		refs = mustParseAll(cmd.Context(), raws)
	}

	if importOut == "" {
		if err := storage.EncodeParsed(os.Stdout, refs); err != nil {
			exitWithError(ExitError, "writing output: %v", err)
		}
		return nil
	}

	if err := storage.WriteParsed(importOut, refs); err != nil {
		exitWithError(ExitError, "writing %s: %v", importOut, err)
	}
	if humanOutput {
		size := ""
		if fi, err := os.Stat(importOut); err == nil {
			size = " (" + humanize.Bytes(uint64(fi.Size())) + ")"
		}
		outputHuman("Imported %s references from %s to %s%s\n",
			humanize.Comma(int64(len(refs))), source, importOut, size)
		return nil
	}
	return outputJSON(ImportResult{Source: source, Path: importOut, Imported: len(refs)})
}

func mustParseAll(ctx context.Context, raws []string) []reference.Parsed {
	if ctx == nil {
		ctx = context.Background()
	}
	var bar *pb.ProgressBar
	if humanOutput && len(raws) > 0 {
		bar = pb.Full.Start(len(raws))
		bar.SetWriter(os.Stderr)
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}
	onDone := func() {}
	if bar != nil {
		onDone = func() { bar.Increment() }
	}

	refs, err := parseAll(ctx, apa.New(), raws, runtime.NumCPU(), onDone)
	if err != nil {
		exitWithError(ExitError, "parsing references: %v", err)
	}
	return refs
}

// parseAll parses raws concurrently with at most workers goroutines,
// keeping input order. onDone is called once per parsed entry.
func parseAll(ctx context.Context, e *apa.Engine, raws []string, workers int, onDone func()) ([]reference.Parsed, error) {
	out := make([]reference.Parsed, len(raws))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = e.Parse(raw)
			onDone()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// readLines returns the non-blank lines of path, trimmed.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), storage.MaxJSONLLineCapacity)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
