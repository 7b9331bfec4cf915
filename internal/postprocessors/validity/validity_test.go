package validity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/core/domain"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{"prose", "Green tea contains antioxidants that may reduce inflammation.", true},
		{"empty", "", false},
		{"whitespace", "   \n\t", false},
		{"two citation markers", "As Smith et al. showed on pp. 4 the effect holds.", true},
		{"three citation markers", "Smith et al. reported it, see pp. 12 and vol. 3 for details.", false},
		{"citation markers ignore case", "DOI and ISBN and issn numbers are listed here for the books", false},
		{"in press", "In press at two journals, in press at a third, in press again", false},
		{"symbol heavy", "%%% ### @@@ !!! text", false},
		{"ordinary punctuation", "Yes, it works: tea (green) is good; really.", true},
		{"author list", "Smith, J. and Jones, K. with Brown, L. wrote the study", false},
		{"two authors", "Smith, J. and Jones, K. wrote the study on tea", true},
		{"year list", "Results from 1998 and 2004 were confirmed in 2019 trials", false},
		{"two years", "Results from 1998 were confirmed in 2019 trials", true},
		{"numbers outside year range", "Codes 1234 and 3000 and 9999 appear in the table", true},
		{"bibliography block", "Smith, J. (2001). Tea. Nature, 12, 1-9. doi:10.1/x. Jones, K. (2003). Leaves. Vol. 4. Brown, L. (2005).", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValid(tt.text))
		})
	}
}

func TestSymbolRatio(t *testing.T) {
	assert.Zero(t, symbolRatio(""))
	assert.Zero(t, symbolRatio("plain words only"))
	assert.InDelta(t, 0.5, symbolRatio("a!b?"), 1e-9)
}

func TestProcessor(t *testing.T) {
	p := New()
	assert.Equal(t, "validity", p.Name())

	doc := &domain.Document{ID: "doc1"}
	in := []domain.Passage{
		{DocumentID: "doc1", Text: "Green tea has antioxidants.", Position: 0},
		{DocumentID: "doc1", Text: "Smith, J. Jones, K. Brown, L.", Position: 1},
		{DocumentID: "doc1", Text: "Brewing takes three minutes.", Position: 2},
	}

	out, err := p.Process(context.Background(), doc, in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].Position)
	assert.Equal(t, 2, out[1].Position)
}

func TestProcessor_NoPassages(t *testing.T) {
	out, err := New().Process(context.Background(), &domain.Document{ID: "x"}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
