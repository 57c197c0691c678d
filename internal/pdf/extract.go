// Package pdf pulls reference-list entries out of PDF documents.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the plain text of the first maxPages pages of the PDF
// at path. maxPages <= 0 reads every page. Pages that fail to decode are
// skipped.
func ExtractText(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readPages(r, maxPages), nil
}

// ExtractTextReader is ExtractText for an in-memory or remote PDF.
func ExtractTextReader(ra io.ReaderAt, size int64, maxPages int) (string, error) {
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}
	return readPages(r, maxPages), nil
}

func readPages(r *pdf.Reader, maxPages int) string {
	n := r.NumPage()
	if maxPages <= 0 || maxPages > n {
		maxPages = n
	}

	var b strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

// ExtractReferences reads the PDF at path and returns the raw entries of its
// reference section. A PDF without a recognizable section yields no entries
// and no error.
func ExtractReferences(path string) ([]string, error) {
	text, err := ExtractText(path, 0)
	if err != nil {
		return nil, err
	}
	section, ok := ReferenceSection(text)
	if !ok {
		return nil, nil
	}
	return SplitEntries(section), nil
}
