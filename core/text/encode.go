package text

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adalundhe/tabgraph/core/frame"
)

// Options drives textual featurization.
type Options struct {
	Confidence float64
	MinWords   float64
	UseNgrams  bool
	NGramMin   int
	NGramMax   int
	MaxDF      float64
	MinDF      int
	Embedder   Embedder // embedding mode only
	Logger     *slog.Logger
}

// Model is the fitted text-encoding artifact stored for replay. Exactly one
// of Pipeline and Embedder is set, matching the selected mode.
type Model struct {
	TextCols []string
	Pipeline *NGramPipeline
	Embedder Embedder
}

// EncodeTextual finds the textual columns of df, concatenates them row-wise
// and encodes the result. Returns the feature block, the consumed column
// names and the fitted model for replay. No textual columns yields an empty
// block and a nil model.
func EncodeTextual(ctx context.Context, df *frame.DataFrame, opts Options) (*frame.Matrix, []string, *Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	textCols, err := TextualColumns(df, opts.Confidence, opts.MinWords, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(textCols) == 0 {
		return frame.EmptyMatrix(df.NumRows()), nil, nil, nil
	}

	docs, err := ConcatText(df, textCols)
	if err != nil {
		return nil, nil, nil, err
	}

	if opts.UseNgrams {
		pipeline, err := NewNGramPipeline(opts.NGramMin, opts.NGramMax, opts.MaxDF, opts.MinDF)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Debug("encoding textual columns with ngram tf-idf",
			"columns", textCols, "ngram_min", opts.NGramMin, "ngram_max", opts.NGramMax)
		block, err := pipeline.FitTransform(docs)
		if err != nil {
			return nil, nil, nil, err
		}
		return block, textCols, &Model{TextCols: textCols, Pipeline: pipeline}, nil
	}

	emb := opts.Embedder
	if emb == nil {
		return nil, nil, nil, fmt.Errorf("embedding mode requires an embedder")
	}
	logger.Debug("encoding textual columns with sentence embeddings", "columns", textCols)
	block, err := embedDocs(ctx, emb, docs, textCols)
	if err != nil {
		return nil, nil, nil, err
	}
	return block, textCols, &Model{TextCols: textCols, Embedder: emb}, nil
}

// Transform replays the fitted text model on new data, reusing the exact
// vocabulary or pretrained model from fit time.
func (m *Model) Transform(ctx context.Context, df *frame.DataFrame) (*frame.Matrix, error) {
	docs, err := ConcatText(df, m.TextCols)
	if err != nil {
		return nil, err
	}
	if m.Pipeline != nil {
		return m.Pipeline.Transform(docs)
	}
	if m.Embedder != nil {
		return embedDocs(ctx, m.Embedder, docs, m.TextCols)
	}
	return nil, fmt.Errorf("text model holds neither pipeline nor embedder")
}

func embedDocs(ctx context.Context, emb Embedder, docs []string, textCols []string) (*frame.Matrix, error) {
	vecs, err := emb.EmbedBatch(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("embed %d documents: %w", len(docs), err)
	}
	dim := 0
	if len(vecs) > 0 {
		dim = len(vecs[0])
	}
	m := frame.NewMatrix(embeddingHeaders(textCols, dim), len(docs))
	for i, vec := range vecs {
		if len(vec) != dim {
			return nil, fmt.Errorf("ragged embedding batch: row %d has %d dims, want %d", i, len(vec), dim)
		}
		for j, v := range vec {
			m.Set(i, j, float64(v))
		}
	}
	return m, nil
}

// embeddingHeaders names embedding columns {joined_text_cols}_{i}.
func embeddingHeaders(textCols []string, dim int) []string {
	prefix := strings.Join(textCols, "_")
	names := make([]string, dim)
	for k := range names {
		names[k] = fmt.Sprintf("%s_%d", prefix, k)
	}
	return names
}
