package encoder

import (
	"fmt"
	"log/slog"

	"github.com/adalundhe/tabgraph/core/frame"
)

// Identity passes a numeric column through unchanged, missing cells become
// NaN for downstream imputation.
type Identity struct {
	column string
	fitted bool
}

func NewIdentity(column string) *Identity { return &Identity{column: column} }

func (e *Identity) Fit(df *frame.DataFrame) error {
	if !df.HasColumn(e.column) {
		return fmt.Errorf("no column %q", e.column)
	}
	e.fitted = true
	return nil
}

func (e *Identity) Transform(df *frame.DataFrame) (*frame.Matrix, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	s, err := df.Column(e.column)
	if err != nil {
		return nil, err
	}
	m := frame.NewMatrix([]string{e.column}, s.Len())
	if s.Len() > 0 {
		m.SetCol(0, s.Floats())
	}
	return m, nil
}

func (e *Identity) FeatureNames() []string { return []string{e.column} }

// TableVectorizer is the cardinality-gated composite encoder for mixed-type
// record tables. Per column: numeric passes through, categorical below the
// cardinality threshold is one-hot encoded, and categorical at or above the
// threshold is routed to a topic decomposition with NTopics components.
type TableVectorizer struct {
	CardinalityThreshold int
	NTopics              int
	Logger               *slog.Logger

	encoders     []Encoder // ordered, one per input column
	featureNames []string
	fitted       bool
}

func NewTableVectorizer(cardinalityThreshold, nTopics int) *TableVectorizer {
	return &TableVectorizer{
		CardinalityThreshold: cardinalityThreshold,
		NTopics:              nTopics,
	}
}

func (tv *TableVectorizer) logger() *slog.Logger {
	if tv.Logger != nil {
		return tv.Logger
	}
	return slog.Default()
}

func (tv *TableVectorizer) Fit(df *frame.DataFrame) error {
	tv.encoders = tv.encoders[:0]
	tv.featureNames = tv.featureNames[:0]

	for _, name := range df.Columns() {
		s, err := df.Column(name)
		if err != nil {
			return err
		}
		var enc Encoder
		switch {
		case s.IsNumeric():
			enc = NewIdentity(name)
		case s.NUnique() < tv.CardinalityThreshold:
			enc = NewOneHot(name)
		default:
			tv.logger().Debug("high cardinality column routed to topic encoder",
				"column", name, "cardinality", s.NUnique(), "n_topics", tv.NTopics)
			enc = NewTopicDecomposition(name, tv.NTopics)
		}
		if err := enc.Fit(df); err != nil {
			return fmt.Errorf("fit column %q: %w", name, err)
		}
		tv.encoders = append(tv.encoders, enc)
		tv.featureNames = append(tv.featureNames, enc.FeatureNames()...)
	}
	tv.fitted = true
	return nil
}

func (tv *TableVectorizer) Transform(df *frame.DataFrame) (*frame.Matrix, error) {
	if !tv.fitted {
		return nil, ErrNotFitted
	}
	blocks := make([]*frame.Matrix, 0, len(tv.encoders))
	for _, enc := range tv.encoders {
		block, err := enc.Transform(df)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	out, err := frame.ConcatHorizontal(blocks...)
	if err != nil {
		return nil, err
	}
	if out.Cols() != len(tv.featureNames) {
		return nil, fmt.Errorf("%w: fitted %d features, transformed %d",
			ErrFeatureDrift, len(tv.featureNames), out.Cols())
	}
	// encoded categoricals can leave no NaNs; identity columns may, filled
	// to keep the matrix free of missing values
	out.FillMissing(0)
	return out, nil
}

func (tv *TableVectorizer) FeatureNames() []string {
	return append([]string(nil), tv.featureNames...)
}

func (tv *TableVectorizer) Fitted() bool { return tv.fitted }
