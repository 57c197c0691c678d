package reference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"book", TypeBook},
		{"Article", TypeArticle},
		{" web ", TypeWeb},
		{"website", TypeWebsite},
		{"chapter", TypeChapter},
		{"other", TypeOther},
		{"", TypeBook},
		{"thesis", TypeBook},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseType(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	p := Parsed{Type: "JOURNAL"}.Normalize()
	assert.Equal(t, TypeBook, p.Type)
	require.NotNil(t, p.Authors)
	assert.Empty(t, p.Authors)

	orig := Parsed{Authors: []string{"Smith, J."}, Type: "Article"}
	norm := orig.Normalize()
	assert.Equal(t, TypeArticle, norm.Type)
	assert.Equal(t, Type("Article"), orig.Type, "original must stay untouched")
}

func TestParsedJSONFieldSet(t *testing.T) {
	p := Parsed{Authors: []string{}, Type: TypeBook}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, k := range []string{
		"authors", "year", "title", "source", "type", "doi",
		"url", "publisher", "volume", "issue", "pages",
	} {
		assert.Contains(t, fields, k)
	}
	assert.Nil(t, fields["year"])
	assert.NotContains(t, fields, "citation_key")
}

func TestCitationAccessorsWithoutParsed(t *testing.T) {
	c := Citation{CitationKey: "[Smith, 2020]"}
	assert.Nil(t, c.Authors())
	assert.Nil(t, c.Year())

	r := Reference{RefKey: "[Smith, 2020]", Parsed: &Parsed{Year: YearPtr(2020)}}
	require.NotNil(t, r.Year())
	assert.Equal(t, 2020, *r.Year())
}

func TestFormatAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Smith, J.", "Smith, J."},
		{"Smith, J", "Smith, J."},
		{"Smith, John", "Smith, John"},
		{"Smith, John, Jr.", "Smith, John"},
		{"John Smith", "Smith, John"},
		{"J Smith", "Smith, J."},
		{"Mary Ann Smith", "Smith, Mary Ann"},
		{"Smith", "Smith"},
		{"Smith,", "Smith"},
		{"  Jones, M.  ", "Jones, M."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAuthorName(tt.in))
		})
	}
}

func TestNormalizeAuthor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Smith, J.", "smith j"},
		{"  SMITH,   J. ", "smith j"},
		{"O'Brien, K.", "obrien k"},
		{"Müller, Ä.", "müller ä"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAuthor(tt.in))
		})
	}

	assert.Equal(t, []string{"smith j", "jones m"}, NormalizeAuthors([]string{"Smith, J.", "Jones M"}))
}
