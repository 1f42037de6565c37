package text

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/tabgraph/core/frame"
)

func textFrame(t *testing.T) *frame.DataFrame {
	t.Helper()
	df := frame.New(3)
	require.NoError(t, df.AddSeries(frame.StringSeries("bio", []string{
		"enjoys long walks and quiet rivers",
		"writes compilers for fun and profit",
		"keeps a garden of rare mountain flowers",
	})))
	require.NoError(t, df.AddSeries(frame.StringSeries("tag", []string{"a", "b", "c"})))
	require.NoError(t, df.AddSeries(frame.FloatSeries("age", []float64{31, 45, 27})))
	return df
}

// =============================================================================
// Column classifier
// =============================================================================

func TestTextualColumns(t *testing.T) {
	df := textFrame(t)
	cols, err := TextualColumns(df, 0.35, 2.5, nil)
	require.NoError(t, err)
	// "tag" is string-typed but single-word, "age" is numeric
	assert.Equal(t, []string{"bio"}, cols)
}

func TestTextualColumnsThresholdValidation(t *testing.T) {
	df := textFrame(t)

	_, err := TextualColumns(df, 0.35, 1, nil)
	assert.Error(t, err, "min_words at or below 1 must be rejected")

	_, err = TextualColumns(df, 1.5, 2.5, nil)
	assert.Error(t, err, "confidence outside (0,1) must be rejected")
}

func TestIsTextualColumnMixedTypes(t *testing.T) {
	s := frame.NewSeries("mixed", []frame.Value{
		frame.String("three little words"),
		frame.Float(7),
		frame.String("four more little words"),
		frame.Float(9),
	})
	// half the cells are strings: passes confidence 0.35, fails 0.75
	assert.True(t, IsTextualColumn(s, 0.35, 1.5))
	assert.False(t, IsTextualColumn(s, 0.75, 1.5))
}

func TestConcatTextSeparator(t *testing.T) {
	df := frame.New(2)
	require.NoError(t, df.AddSeries(frame.StringSeries("a", []string{"hello", "left"})))
	require.NoError(t, df.AddSeries(frame.StringSeries("b", []string{"world", "right"})))

	docs, err := ConcatText(df, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello . world", "left . right"}, docs)
}

func TestConcatTextMissingCells(t *testing.T) {
	df := frame.New(2)
	require.NoError(t, df.AddSeries(frame.NewSeries("a", []frame.Value{
		frame.String("deep blue sea"), frame.Missing,
	})))
	require.NoError(t, df.AddSeries(frame.StringSeries("b", []string{"calm", "storm"})))

	docs, err := ConcatText(df, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"deep blue sea . calm", "nan . storm"}, docs)
}

func TestCharTrigramsMultibyte(t *testing.T) {
	assert.Equal(t, []string{"hél", "éll", "llo"}, charTrigrams("héllo"))
	assert.Nil(t, charTrigrams("éé"))
}

// =============================================================================
// N-gram pipeline
// =============================================================================

func TestNGramPipelineVocabulary(t *testing.T) {
	p, err := NewNGramPipeline(1, 2, 1.0, 1)
	require.NoError(t, err)

	docs := []string{"red fish blue fish", "one fish two fish"}
	m, err := p.FitTransform(docs)
	require.NoError(t, err)

	vocab := p.Vocabulary()
	assert.Contains(t, vocab, "fish")
	assert.Contains(t, vocab, "blue fish")
	assert.Equal(t, vocab, m.ColumnNames())
	assert.Equal(t, 2, m.Rows())
}

func TestNGramPipelineReplayUsesFittedVocabulary(t *testing.T) {
	p, err := NewNGramPipeline(1, 1, 1.0, 1)
	require.NoError(t, err)
	_, err = p.FitTransform([]string{"alpha beta", "beta gamma"})
	require.NoError(t, err)

	m, err := p.Transform([]string{"delta epsilon"})
	require.NoError(t, err)
	for j := 0; j < m.Cols(); j++ {
		assert.Equal(t, 0.0, m.At(0, j), "out-of-vocabulary terms must be dropped")
	}
}

func TestNGramPipelineValidation(t *testing.T) {
	_, err := NewNGramPipeline(2, 1, 1.0, 1)
	assert.Error(t, err)
	_, err = NewNGramPipeline(1, 1, 0, 1)
	assert.Error(t, err)
}

// =============================================================================
// Hashing embedder
// =============================================================================

func TestHashingEmbedderDeterministic(t *testing.T) {
	emb := NewHashingEmbedder()
	ctx := context.Background()

	a, err := emb.Embed(ctx, "graph features")
	require.NoError(t, err)
	b, err := emb.Embed(ctx, "graph features")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, emb.Dimension())

	c, err := emb.Embed(ctx, "completely different text")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestHashingEmbedderUnitNorm(t *testing.T) {
	emb := NewHashingEmbedder()
	vec, err := emb.Embed(context.Background(), "normalize me please")
	require.NoError(t, err)

	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, mag, 1e-5)
}

// =============================================================================
// EncodeTextual
// =============================================================================

func TestEncodeTextualEmbeddingMode(t *testing.T) {
	df := textFrame(t)
	block, cols, model, err := EncodeTextual(context.Background(), df, Options{
		Confidence: 0.35,
		MinWords:   2.5,
		Embedder:   NewHashingEmbedder(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bio"}, cols)
	require.NotNil(t, model)
	assert.Equal(t, 3, block.Rows())
	assert.Equal(t, HashingDimension, block.Cols())
	assert.True(t, strings.HasPrefix(block.ColumnNames()[0], "bio_"))

	replay, err := model.Transform(context.Background(), df)
	require.NoError(t, err)
	assert.Equal(t, block.ColumnNames(), replay.ColumnNames())
}

func TestEncodeTextualNGramMode(t *testing.T) {
	df := textFrame(t)
	block, cols, model, err := EncodeTextual(context.Background(), df, Options{
		Confidence: 0.35,
		MinWords:   2.5,
		UseNgrams:  true,
		NGramMin:   1,
		NGramMax:   2,
		MaxDF:      1.0,
		MinDF:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bio"}, cols)
	require.NotNil(t, model)
	require.NotNil(t, model.Pipeline)
	assert.Equal(t, 3, block.Rows())
	assert.Greater(t, block.Cols(), 0)
}

func TestEncodeTextualNoTextColumns(t *testing.T) {
	df := frame.New(2)
	require.NoError(t, df.AddSeries(frame.FloatSeries("a", []float64{1, 2})))

	block, cols, model, err := EncodeTextual(context.Background(), df, Options{
		Confidence: 0.35,
		MinWords:   2.5,
		Embedder:   NewHashingEmbedder(),
	})
	require.NoError(t, err)
	assert.Nil(t, model)
	assert.Empty(t, cols)
	assert.Equal(t, 0, block.Cols())
	assert.Equal(t, 2, block.Rows())
}
