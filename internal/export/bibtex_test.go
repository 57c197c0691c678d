package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textlab/textlab/internal/reference"
)

func TestToBibTeXArticle(t *testing.T) {
	p := reference.Parsed{
		Authors: []string{"Smith, J.", "Jones, M."},
		Year:    reference.YearPtr(2020),
		Title:   "Memory & Learning",
		Source:  "American Journal of Science",
		Type:    reference.TypeArticle,
		Volume:  "45",
		Issue:   "3",
		Pages:   "123-145",
		DOI:     "10.1234/abcd",
	}

	got := ToBibTeX("smith2020", p)

	assert.True(t, strings.HasPrefix(got, "@article{smith2020,\n"), got)
	for _, want := range []string{
		"  author = {Smith, J. and Jones, M.},\n",
		"  title = {Memory \\& Learning},\n",
		"  journal = {American Journal of Science},\n",
		"  year = {2020},\n",
		"  volume = {45},\n",
		"  number = {3},\n",
		"  pages = {123--145},\n",
		"  doi = {10.1234/abcd},\n",
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "publisher")
	assert.True(t, strings.HasSuffix(got, "}\n"))
}

func TestToBibTeXEntryTypes(t *testing.T) {
	tests := []struct {
		typ  reference.Type
		want string
	}{
		{reference.TypeArticle, "@article{"},
		{reference.TypeBook, "@book{"},
		{reference.TypeChapter, "@incollection{"},
		{reference.TypeWeb, "@misc{"},
		{reference.TypeOther, "@misc{"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got := ToBibTeX("k", reference.Parsed{Title: "T", Type: tt.typ})
			assert.True(t, strings.HasPrefix(got, tt.want), got)
		})
	}
}

func TestToBibTeXListKeys(t *testing.T) {
	refs := []reference.Parsed{
		{Authors: []string{"Smith, J."}, Year: reference.YearPtr(2020), Title: "One"},
		{Authors: []string{"Smith, K."}, Year: reference.YearPtr(2020), Title: "Two"},
		{Title: "Three"},
		{RefKey: "custom", Title: "Four"},
	}
	got := ToBibTeXList(refs)
	assert.Contains(t, got, "{smith2020,")
	assert.Contains(t, got, "{smith2020a,")
	assert.Contains(t, got, "{anonnd,")
	assert.Contains(t, got, "{custom,")
	assert.Equal(t, 4, strings.Count(got, "@book{"))
}

func TestCiteKey(t *testing.T) {
	assert.Equal(t, "obrien2019", CiteKey(reference.Parsed{Authors: []string{"O'Brien, K."}, Year: reference.YearPtr(2019)}))
	assert.Equal(t, "smithnd", CiteKey(reference.Parsed{Authors: []string{"John Smith"}}))
	assert.Equal(t, "anon2001", CiteKey(reference.Parsed{Year: reference.YearPtr(2001)}))
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "a", suffix(1))
	assert.Equal(t, "z", suffix(26))
	assert.Equal(t, "aa", suffix(27))
}

func TestEscapeLatex(t *testing.T) {
	assert.Equal(t, `50\% of \$5 \& \#1 \_x \{y\} \textasciitilde{} \textasciicircum{}`,
		escapeLatex(`50% of $5 & #1 _x {y} ~ ^`))
}

const sampleBib = `
@string{jpsy = "Journal of Psychology"}

@comment{ ignored {nested} block }

@Article{smith2020,
  author  = {Smith, John and Mary Jones},
  title   = {{Introduction} to Psychology},
  journal = jpsy,
  year    = 2020,
  volume  = {45},
  number  = {3},
  pages   = {123--145},
  doi     = {https://doi.org/10.1234/ABC},
}

@incollection{lee2018,
  author    = "Lee, Kim",
  editor    = {Brown, A. and Green, B.},
  title     = "Memory " # "in adults",
  booktitle = {Handbook of Memory},
  publisher = {Academic Press},
  pages     = {1--20},
  year      = {2018}
}

@misc{site2021,
  title        = {Style Guide},
  howpublished = {APA Style},
  url          = {https://apastyle.apa.org},
  urldate      = {2021-05-01},
  year         = {2021},
}
`

func TestParseBibTeX(t *testing.T) {
	entries, err := ParseBibTeX(strings.NewReader(sampleBib))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	a := entries[0]
	assert.Equal(t, "article", a.Type)
	assert.Equal(t, "smith2020", a.Key)
	assert.Equal(t, "Journal of Psychology", a.Fields["journal"])
	assert.Equal(t, "{Introduction} to Psychology", a.Fields["title"])

	p := a.Parsed()
	assert.Equal(t, "smith2020", p.RefKey)
	assert.Equal(t, []string{"Smith, J.", "Jones, M."}, p.Authors)
	require.NotNil(t, p.Year)
	assert.Equal(t, 2020, *p.Year)
	assert.Equal(t, "Introduction to Psychology", p.Title)
	assert.Equal(t, "Journal of Psychology", p.Source)
	assert.Equal(t, reference.TypeArticle, p.Type)
	assert.Equal(t, "123-145", p.Pages)
	assert.Equal(t, "10.1234/ABC", p.DOI)

	c := entries[1].Parsed()
	assert.Equal(t, reference.TypeChapter, c.Type)
	assert.Equal(t, "Memory in adults", c.Title)
	assert.Equal(t, "Handbook of Memory", c.BookTitle)
	assert.Equal(t, []string{"Brown, A.", "Green, B."}, c.Editors)
	assert.Equal(t, "Academic Press", c.Publisher)

	w := entries[2].Parsed()
	assert.Equal(t, reference.TypeWeb, w.Type)
	assert.Equal(t, "APA Style", w.SiteName)
	assert.Equal(t, "https://apastyle.apa.org", w.URL)
	assert.Equal(t, "2021-05-01", w.RetrievedDate)
}

func TestParseBibTeXErrors(t *testing.T) {
	_, err := ParseBibTeX(strings.NewReader(`@article{broken, title = {never closed`))
	assert.Error(t, err)

	_, err = ParseBibTeX(strings.NewReader(`@article{broken, title {x}}`))
	assert.Error(t, err)

	entries, err := ParseBibTeX(strings.NewReader("no entries, just an email@example.com"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoundTrip(t *testing.T) {
	p := reference.Parsed{
		Authors:   []string{"Smith, J."},
		Year:      reference.YearPtr(2019),
		Title:     "Cats & Dogs",
		Type:      reference.TypeBook,
		Publisher: "Press",
		Location:  "New York",
	}
	entries, err := ParseBibTeX(strings.NewReader(ToBibTeX("smith2019", p)))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0].Parsed()
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Authors, got.Authors)
	assert.Equal(t, p.Location, got.Location)
	assert.Equal(t, reference.TypeBook, got.Type)
}

func TestIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")

	idx, err := LoadIndex(path)
	require.NoError(t, err)
	assert.False(t, idx.HasEntry("smith2020", ""))

	require.NoError(t, os.WriteFile(path, []byte(sampleBib), 0o644))
	idx, err = LoadIndex(path)
	require.NoError(t, err)

	assert.True(t, idx.HasEntry("smith2020", ""))
	assert.True(t, idx.HasEntry("other", "doi:10.1234/abc"))
	assert.False(t, idx.HasEntry("other", "10.9999/zzz"))

	idx.Add("new2024", "10.5555/new")
	assert.True(t, idx.HasEntry("x", "https://doi.org/10.5555/NEW"))

	require.NoError(t, AppendToBibFile(path, "@misc{new2024,\n}\n"))
	entries, err := ParseBibTeXFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}
