package segmenter

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// mockEncoder returns fixed vectors per sentence.
type mockEncoder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (m *mockEncoder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := m.vectors[t]
		if !ok {
			v = []float32{1, 0}
		}
		out[i] = v
	}
	return out, nil
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := New()
		require.NoError(t, err)
		assert.Equal(t, domain.SplitTokens, p.Method())
		assert.Equal(t, domain.DefaultPassageMaxLength, p.maxLength)
		assert.Equal(t, domain.DefaultPassageOverlap, p.overlap)
		assert.Equal(t, "segmenter", p.Name())
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := New(WithMethod("paragraphs"))
		require.Error(t, err)
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "split_method", cfgErr.Option)
	})

	t.Run("overlap not below max length", func(t *testing.T) {
		_, err := New(WithMaxLength(10), WithOverlap(10))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("semantic needs encoder", func(t *testing.T) {
		_, err := New(WithMethod(domain.SplitSemantic))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("invalid sizes ignored", func(t *testing.T) {
		p, err := New(WithMaxLength(0), WithOverlap(-1))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultPassageMaxLength, p.maxLength)
		assert.Equal(t, domain.DefaultPassageOverlap, p.overlap)
	})
}

func TestSplit_EmptyText(t *testing.T) {
	for _, method := range domain.AllSplitMethods() {
		t.Run(method.String(), func(t *testing.T) {
			enc := &mockEncoder{}
			got, err := Segment(context.Background(), "  \n\t ", 10, 2, method, enc)
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.Zero(t, enc.calls)
		})
	}
}

func TestSplit_ShortTextIsSinglePassage(t *testing.T) {
	text := "Green tea contains antioxidants."
	for _, method := range domain.AllSplitMethods() {
		t.Run(method.String(), func(t *testing.T) {
			got, err := Segment(context.Background(), text, 50, 5, method, &mockEncoder{})
			require.NoError(t, err)
			assert.Equal(t, []string{text}, got)

			again, err := Segment(context.Background(), got[0], 50, 5, method, &mockEncoder{})
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestSplitTokens_Windows(t *testing.T) {
	got, err := Segment(context.Background(), words(10), 4, 1, domain.SplitTokens, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"w0 w1 w2 w3",
		"w3 w4 w5 w6",
		"w6 w7 w8 w9",
	}, got)
}

func TestSplitTokens_FinalPartialWindow(t *testing.T) {
	got, err := Segment(context.Background(), words(6), 4, 0, domain.SplitTokens, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"w0 w1 w2 w3", "w4 w5"}, got)
}

func TestSplitTokens_LargeMaxLengthAllocatesByInput(t *testing.T) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	got, err := Segment(context.Background(), "green tea contains antioxidants.", 50_000_000, 0,
		domain.SplitTokens, nil)

	runtime.ReadMemStats(&after)
	require.NoError(t, err)
	assert.Equal(t, []string{"green tea contains antioxidants."}, got)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestSplitTokens_Properties(t *testing.T) {
	tests := []struct {
		n, maxLength, overlap int
	}{
		{1, 1, 0},
		{37, 5, 2},
		{100, 10, 9},
		{64, 8, 0},
		{513, 512, 50},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d/max=%d/overlap=%d", tt.n, tt.maxLength, tt.overlap), func(t *testing.T) {
			source := strings.Fields(words(tt.n))
			got, err := Segment(context.Background(), words(tt.n), tt.maxLength, tt.overlap, domain.SplitTokens, nil)
			require.NoError(t, err)
			require.NotEmpty(t, got)

			var rebuilt []string
			for i, passage := range got {
				toks := strings.Fields(passage)
				assert.LessOrEqual(t, len(toks), tt.maxLength)
				if i == 0 {
					rebuilt = append(rebuilt, toks...)
					continue
				}
				prev := strings.Fields(got[i-1])
				assert.Equal(t, prev[len(prev)-tt.overlap:], toks[:tt.overlap])
				rebuilt = append(rebuilt, toks[tt.overlap:]...)
			}
			assert.Equal(t, source, rebuilt)
		})
	}
}

func TestSplitSentences_Windows(t *testing.T) {
	text := "One two. Three four. Five six. Seven eight."
	got, err := Segment(context.Background(), text, 22, 1, domain.SplitSentences, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"One two. Three four.",
		"Three four. Five six.",
		"Five six. Seven eight.",
	}, got)

	for _, passage := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(passage), 22)
	}
}

func TestSplitSentences_Reconstructs(t *testing.T) {
	sentences := []string{"Alpha beta.", "Gamma delta!", "Epsilon?", "Zeta eta theta.", "Iota."}
	text := strings.Join(sentences, " ")

	got, err := Segment(context.Background(), text, 30, 1, domain.SplitSentences, nil)
	require.NoError(t, err)
	require.Greater(t, len(got), 1)

	var rebuilt []string
	var prevLast string
	for i, passage := range got {
		parts := splitUnits(passage)
		if i > 0 {
			require.Equal(t, prevLast, parts[0])
			parts = parts[1:]
		}
		rebuilt = append(rebuilt, parts...)
		all := splitUnits(passage)
		prevLast = all[len(all)-1]
	}
	assert.Equal(t, sentences, rebuilt)
}

func splitUnits(passage string) []string {
	var out []string
	start := 0
	for i, r := range passage {
		if r == '.' || r == '!' || r == '?' {
			out = append(out, strings.TrimSpace(passage[start:i+1]))
			start = i + 1
		}
	}
	return out
}

func TestSplitSentences_LongSentenceStandsAlone(t *testing.T) {
	long := "This sentence is definitely longer than the window allows."
	text := "Short one. " + long + " Tail."
	got, err := Segment(context.Background(), text, 20, 1, domain.SplitSentences, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Short one.", long, "Tail."}, got)
}

func TestSplitSemantic(t *testing.T) {
	enc := &mockEncoder{vectors: map[string][]float32{
		"Cats purr.":    {1, 0},
		"Cats meow.":    {0.9, 0.1},
		"Stocks fell.":  {0, 1},
		"Markets slid.": {0.1, 0.9},
	}}
	text := "Cats purr. Cats meow. Stocks fell. Markets slid."

	got, err := Segment(context.Background(), text, 100, 0, domain.SplitSemantic, enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cats purr. Cats meow.", "Stocks fell. Markets slid."}, got)
	assert.Equal(t, 1, enc.calls)
}

func TestSplitSemantic_WordLimit(t *testing.T) {
	enc := &mockEncoder{}
	text := "a b c. d e f. g h i."

	got, err := Segment(context.Background(), text, 6, 0, domain.SplitSemantic, enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b c. d e f.", "g h i."}, got)
}

func TestSplitSemantic_EncoderError(t *testing.T) {
	enc := &mockEncoder{err: errors.New("offline")}
	_, err := Segment(context.Background(), "One. Two.", 10, 0, domain.SplitSemantic, enc)
	assert.ErrorContains(t, err, "offline")
}

func TestProcess(t *testing.T) {
	p, err := New(WithMaxLength(2), WithOverlap(0))
	require.NoError(t, err)

	doc := &domain.Document{ID: "doc1", Content: "a b c d e"}
	passages, err := p.Process(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, passages, 3)

	for i, passage := range passages {
		assert.Equal(t, "doc1", passage.DocumentID)
		assert.Equal(t, i, passage.Position)
		assert.Empty(t, passage.Processed)
	}
	assert.Equal(t, "e", passages[2].Text)
}
