package pdf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceSection(t *testing.T) {
	text := `Contents
1 Introduction
References
1 Introduction
Body text about memory.
7. References
Smith, J. (2020). Title one.
Jones, M. (2019). Title two.
Appendix A
Extra material.`

	got, ok := ReferenceSection(text)
	require.True(t, ok)
	assert.Equal(t, "Smith, J. (2020). Title one.\nJones, M. (2019). Title two.", got)

	_, ok = ReferenceSection("No heading here.\nJust prose.")
	assert.False(t, ok)
}

func TestSplitEntries(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    []string
	}{
		{
			name:    "author lines",
			section: "Smith, J. (2020). Title one.\nJones, M. (2019). Title two.",
			want:    []string{"Smith, J. (2020). Title one.", "Jones, M. (2019). Title two."},
		},
		{
			name: "wrapped entry",
			section: "Smith, J., & Jones, M. (2020). A long title that wraps\n" +
				"onto a second line. Journal of Things, 4(2), 1-9.\n" +
				"Lee, K. (2018). Other.",
			want: []string{
				"Smith, J., & Jones, M. (2020). A long title that wraps onto a second line. Journal of Things, 4(2), 1-9.",
				"Lee, K. (2018). Other.",
			},
		},
		{
			name:    "author list across lines",
			section: "Smith, J., &\nJones, M. (2020). Shared work.",
			want:    []string{"Smith, J., & Jones, M. (2020). Shared work."},
		},
		{
			name:    "hyphenated break",
			section: "Smith, J. (2020). Neuro-\nscience of learn-\ning.",
			want:    []string{"Smith, J. (2020). Neuroscience of learning."},
		},
		{
			name:    "numbered",
			section: "[1] Smith J. Title one.\n[2] Jones M. Title two.\n3. Lee K. Title three.",
			want:    []string{"Smith J. Title one.", "Jones M. Title two.", "Lee K. Title three."},
		},
		{
			name:    "blank lines separate",
			section: "\nfirst entry\n\n\nsecond entry\n",
			want:    []string{"first entry", "second entry"},
		},
		{
			name:    "empty",
			section: "  \n\n",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitEntries(tt.section))
		})
	}
}

func TestExtractTextMissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.pdf"), 0)
	assert.Error(t, err)

	_, err = ExtractReferences(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
