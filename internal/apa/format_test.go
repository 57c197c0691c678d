package apa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/textlab/textlab/internal/reference"
)

var sevenAuthors = []string{
	"Adams, A.", "Baker, B.", "Clark, C.", "Davis, D.", "Evans, E.", "Foster, F.", "Green, G.",
}

func TestCitation(t *testing.T) {
	y := reference.YearPtr(2020)

	tests := []struct {
		name string
		in   reference.Parsed
		want string
	}{
		{"one author", reference.Parsed{Authors: []string{"Smith, J."}, Year: y}, "(Smith, J., 2020)"},
		{"one author no year", reference.Parsed{Authors: []string{"Smith, J."}}, "(Smith, J., n.d.)"},
		{"given name first", reference.Parsed{Authors: []string{"John Smith"}, Year: y}, "(Smith, John, 2020)"},
		{"two authors", reference.Parsed{Authors: []string{"Smith, J.", "Jones, M."}, Year: y}, "(Smith, J. & Jones, M., 2020)"},
		{"three authors", reference.Parsed{Authors: sevenAuthors[:3], Year: y}, "(Adams, A., Baker, B., & Clark, C., 2020)"},
		{"five authors", reference.Parsed{Authors: sevenAuthors[:5], Year: y}, "(Adams, A., Baker, B., Clark, C., Davis, D., & Evans, E., 2020)"},
		{"six authors", reference.Parsed{Authors: sevenAuthors[:6], Year: y}, "(Adams, A. et al., 2020)"},
		{"six authors no year", reference.Parsed{Authors: sevenAuthors[:6]}, "(Adams, A. et al., n.d.)"},
		{"nothing", reference.Parsed{}, "(n.d.)"},
		{"key only", reference.Parsed{CitationKey: "[Smith, 2020]"}, "[Smith, 2020]"},
		{"key and year", reference.Parsed{CitationKey: "Anon", Year: reference.YearPtr(2019)}, "(Anon, 2019)"},
		{"year only", reference.Parsed{Year: reference.YearPtr(2019)}, "(n.d., 2019)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Citation(tt.in))
		})
	}
}

func TestAuthorList(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"none", nil, ""},
		{"one", []string{"John Smith"}, "Smith, John"},
		{"two", []string{"Smith, J.", "Jones, M."}, "Smith, J. & Jones, M."},
		{"seven", sevenAuthors, "Adams, A., Baker, B., Clark, C., Davis, D., Evans, E., Foster, F., & Green, G."},
		{"eight", append(append([]string{}, sevenAuthors...), "Hill, H."), "Adams, A., Baker, B., Clark, C., Davis, D., Evans, E., Foster, F. et al."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuthorList(tt.authors))
		})
	}
}

func TestReference(t *testing.T) {
	tests := []struct {
		name string
		in   reference.Parsed
		want string
	}{
		{
			name: "book with location",
			in: reference.Parsed{
				Authors: []string{"Smith, J."}, Year: reference.YearPtr(2020), Title: "A Book",
				Publisher: "Pub", Location: "New York", Type: reference.TypeBook,
			},
			want: "Smith, J. (2020). A Book. New York: Pub.",
		},
		{
			name: "unknown type formats as book",
			in: reference.Parsed{
				Authors: []string{"Smith, J."}, Year: reference.YearPtr(2020), Title: "Thesis Title",
				Publisher: "Uni", Type: "thesis",
			},
			want: "Smith, J. (2020). Thesis Title. Uni.",
		},
		{
			name: "article",
			in: reference.Parsed{
				Authors: []string{"Smith, J.", "Jones, M."}, Year: reference.YearPtr(2020), Title: "Intro",
				Source: "American Journal", Volume: "45", Issue: "3", Pages: "123-145",
				DOI: "10.1234/example", Type: reference.TypeArticle,
			},
			want: "Smith, J. & Jones, M. (2020). Intro. American Journal, 45(3), 123-145. https://doi.org/10.1234/example",
		},
		{
			name: "article without issue or doi",
			in: reference.Parsed{
				Authors: []string{"Smith, J."}, Title: "Notes", Source: "Review", Volume: "2",
				Type: reference.TypeArticle,
			},
			want: "Smith, J. (n.d.). Notes. Review, 2.",
		},
		{
			name: "article volume needs a source",
			in: reference.Parsed{
				Authors: []string{"Smith, J."}, Year: reference.YearPtr(2020), Title: "Loose Pages",
				Volume: "45", Issue: "3", Pages: "123-145", Type: reference.TypeArticle,
			},
			want: "Smith, J. (2020). Loose Pages. 123-145.",
		},
		{
			name: "web with author",
			in: reference.Parsed{
				Authors: []string{"Doe, J."}, Year: reference.YearPtr(2021), Title: "Page Title",
				SiteName: "Example Site", URL: "https://example.com", Type: reference.TypeWeb,
			},
			want: "Doe, J. (2021). Page Title. Example Site. https://example.com",
		},
		{
			name: "website with retrieval date",
			in: reference.Parsed{
				Title: "Page Title", Source: "Example Site", RetrievedDate: "May 1, 2022",
				URL: "https://example.com", Type: reference.TypeWebsite,
			},
			want: "Example Site (May 1, 2022). Page Title. https://example.com",
		},
		{
			name: "chapter",
			in: reference.Parsed{
				Authors: []string{"Smith, J."}, Year: reference.YearPtr(2019), Title: "Chapter One",
				Editors: []string{"Editor, E."}, BookTitle: "Big Book", Pages: "1-20",
				Publisher: "Pub", Type: reference.TypeChapter,
			},
			want: "Smith, J. (2019). Chapter One. In Editor, E. (Ed.), Big Book (pp. 1-20). Pub.",
		},
		{
			name: "chapter with several editors",
			in: reference.Parsed{
				Authors: []string{"Smith, J."}, Year: reference.YearPtr(2019), Title: "Chapter Two",
				Editors: []string{"Editor, E.", "Other, O."}, Source: "Big Book", Type: reference.TypeChapter,
			},
			want: "Smith, J. (2019). Chapter Two. In Editor, E. & Other, O. (Eds.), Big Book.",
		},
		{
			name: "other",
			in: reference.Parsed{
				Authors: []string{"Smith, J."}, Title: "Thing", Source: "Somewhere", Type: reference.TypeOther,
			},
			want: "Smith, J. (n.d.). Thing. Somewhere.",
		},
		{
			name: "title already punctuated",
			in: reference.Parsed{
				Authors: []string{"Smith, J."}, Year: reference.YearPtr(2020), Title: "Why read?",
			},
			want: "Smith, J. (2020). Why read?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reference(tt.in))
		})
	}
}

func TestReference_WebUsesClock(t *testing.T) {
	fixed := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	e := New(OptClock(func() time.Time { return fixed }))

	got := e.Reference(reference.Parsed{
		Title:    "Page Title",
		SiteName: "Example Site",
		URL:      "https://example.com",
		Type:     reference.TypeWeb,
	})
	assert.Equal(t, "Example Site (March 5, 2024). Page Title. https://example.com", got)
}

func TestReference_DoesNotModifyInput(t *testing.T) {
	in := reference.Parsed{Authors: []string{"John Smith"}, Type: "Article"}
	_ = Reference(in)
	assert.Equal(t, []string{"John Smith"}, in.Authors)
	assert.Equal(t, reference.Type("Article"), in.Type)
}

func TestReferenceList(t *testing.T) {
	refs := []reference.Parsed{
		{Authors: []string{"Smith, J."}, Year: reference.YearPtr(2020), Title: "First Book"},
		{Authors: []string{"Jones, M."}, Year: reference.YearPtr(2021), Title: "Second Book"},
	}
	a := "Smith, J. (2020). First Book."
	b := "Jones, M. (2021). Second Book."

	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "\t" + a + "\n\t" + b},
		{FormatHTML, `<p style="text-indent: -36px; padding-left: 36px;">` + a + "</p>\n" +
			`<p style="text-indent: -36px; padding-left: 36px;">` + b + "</p>"},
		{FormatLaTeX, `\hangindent=36pt ` + a + `\\` + "\n" + `\hangindent=36pt ` + b + `\\`},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, ReferenceList(refs, tt.format))
		})
	}

	assert.Equal(t, ReferenceList(refs, FormatText), ReferenceList(refs, "bogus"))
	assert.Empty(t, ReferenceList(nil, FormatHTML))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatHTML, ParseFormat("HTML"))
	assert.Equal(t, FormatLaTeX, ParseFormat(" latex "))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("docx"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestZeroEngine(t *testing.T) {
	var e Engine
	p := e.Parse(fullArticle)
	assert.Equal(t, Citation(p), e.Citation(p))
	assert.Equal(t, Reference(p), e.Reference(p))
}
