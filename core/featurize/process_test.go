package featurize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/tabgraph/core/config"
	"github.com/adalundhe/tabgraph/core/frame"
)

func testOptions(engine Engine) Options {
	cfg := config.Default()
	cfg.CardinalityThreshold = 10
	cfg.NTopics = 3
	return Options{Config: cfg, Engine: engine}
}

func nodeFrame(t *testing.T) *frame.DataFrame {
	t.Helper()
	df := frame.New(6)
	require.NoError(t, df.AddSeries(frame.FloatSeries("score", []float64{1, 2, 3, 4, 5, 100})))
	require.NoError(t, df.AddSeries(frame.StringSeries("kind", []string{"a", "b", "a", "c", "b", "a"})))
	return df
}

func edgeFrame(t *testing.T) *frame.DataFrame {
	t.Helper()
	df := frame.New(4)
	require.NoError(t, df.AddSeries(frame.StringSeries("src", []string{"a", "a", "b", "c"})))
	require.NoError(t, df.AddSeries(frame.StringSeries("dst", []string{"b", "c", "c", "a"})))
	require.NoError(t, df.AddSeries(frame.FloatSeries("weight", []float64{1, 2, 3, 4})))
	return df
}

// =============================================================================
// Node pipeline
// =============================================================================

func TestProcessNodesNumericFastPath(t *testing.T) {
	df := nodeFrame(t)
	res, err := ProcessNodesDataFrames(context.Background(), df, nil, testOptions(EngineNone))
	require.NoError(t, err)

	assert.True(t, res.FastPath)
	assert.True(t, res.DataEncoderSkipped)
	assert.Nil(t, res.DataEncoder)
	assert.Equal(t, []string{"score"}, res.X.ColumnNames())
	assert.Equal(t, df.NumRows(), res.X.Rows())
}

func TestProcessNodesDirtyEncoding(t *testing.T) {
	df := nodeFrame(t)
	res, err := ProcessNodesDataFrames(context.Background(), df, nil, testOptions(EngineDirtyCat))
	require.NoError(t, err)

	require.NotNil(t, res.DataEncoder)
	assert.False(t, res.DataEncoderSkipped)
	assert.Equal(t, df.NumRows(), res.X.Rows())
	// numeric passthrough plus one indicator per kind value
	assert.Equal(t, []string{"score", "kind_a", "kind_b", "kind_c"}, res.X.ColumnNames())
	assert.False(t, res.X.HasNaN())
	require.NotNil(t, res.FeaturePipeline, "robust scaling fits a pipeline")
}

func TestProcessNodesAllNumericSkipsEncoder(t *testing.T) {
	df := frame.New(3)
	require.NoError(t, df.AddSeries(frame.FloatSeries("a", []float64{1, 2, 3})))

	res, err := ProcessNodesDataFrames(context.Background(), df, nil, testOptions(EngineDirtyCat))
	require.NoError(t, err)
	assert.True(t, res.DataEncoderSkipped)
	assert.Nil(t, res.DataEncoder)
	assert.False(t, res.FastPath)
}

func TestProcessNodesEmptyTarget(t *testing.T) {
	df := nodeFrame(t)
	res, err := ProcessNodesDataFrames(context.Background(), df, nil, testOptions(EngineDirtyCat))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Y.Cols())
	assert.Equal(t, df.NumRows(), res.Y.Rows())
	assert.Nil(t, res.TargetPipeline, "empty target must not be scaled")
}

func TestProcessNodesCategoricalTarget(t *testing.T) {
	df := nodeFrame(t)
	y := frame.New(6)
	require.NoError(t, y.AddSeries(frame.StringSeries("risk", []string{"hi", "lo", "hi", "lo", "hi", "lo"})))

	res, err := ProcessNodesDataFrames(context.Background(), df, y, testOptions(EngineDirtyCat))
	require.NoError(t, err)
	require.NotNil(t, res.LabelEncoder)
	assert.Equal(t, []string{"risk_hi", "risk_lo"}, res.LabelEncoder.FeatureNames())
	assert.Equal(t, 6, res.Y.Rows())
}

// =============================================================================
// Edge pipeline
// =============================================================================

func TestProcessEdgesPairBlockPrepended(t *testing.T) {
	edf := edgeFrame(t)
	res, err := ProcessEdgeDataFrames(context.Background(), edf, nil, "src", "dst", testOptions(EngineDirtyCat))
	require.NoError(t, err)

	require.NotNil(t, res.EdgeEncoder)
	cols := res.X.ColumnNames()
	require.GreaterOrEqual(t, len(cols), 4)
	for i, pair := range res.EdgeEncoder.Classes() {
		assert.Equal(t, pair, cols[i], "pair block must come first")
		assert.True(t, strings.HasPrefix(cols[i], "("))
	}
	assert.Equal(t, edf.NumRows(), res.X.Rows())
}

func TestProcessEdgesMissingEndpointColumn(t *testing.T) {
	edf := edgeFrame(t)
	_, err := ProcessEdgeDataFrames(context.Background(), edf, nil, "src", "missing", testOptions(EngineDirtyCat))
	assert.Error(t, err)
}

func TestProcessEdgesFastPathKeepsOnlyPairBlock(t *testing.T) {
	edf := edgeFrame(t)
	res, err := ProcessEdgeDataFrames(context.Background(), edf, nil, "src", "dst", testOptions(EngineNone))
	require.NoError(t, err)

	assert.True(t, res.FastPath)
	require.NotNil(t, res.EdgeEncoder)
	assert.Equal(t, res.EdgeEncoder.Classes(), res.X.ColumnNames())
}

// =============================================================================
// FastEncoder replay
// =============================================================================

func TestFastEncoderReplayConsistency(t *testing.T) {
	df := nodeFrame(t)
	enc, err := NewFastEncoder(df, nil, KindNodes, nil)
	require.NoError(t, err)
	require.NoError(t, enc.Fit(context.Background(), "", "", testOptions(EngineDirtyCat)))

	x, y, err := enc.Transform(context.Background(), df, nil)
	require.NoError(t, err)
	assert.Equal(t, enc.X().ColumnNames(), x.ColumnNames())
	assert.Equal(t, 0, y.Cols())

	for i := 0; i < x.Rows(); i++ {
		for j := 0; j < x.Cols(); j++ {
			assert.InDelta(t, enc.X().At(i, j), x.At(i, j), 1e-9)
		}
	}
}

func TestFastEncoderEdgeReplay(t *testing.T) {
	edf := edgeFrame(t)
	enc, err := NewFastEncoder(edf, nil, KindEdges, nil)
	require.NoError(t, err)
	require.NoError(t, enc.Fit(context.Background(), "src", "dst", testOptions(EngineDirtyCat)))

	x, _, err := enc.Transform(context.Background(), edf, nil)
	require.NoError(t, err)
	assert.Equal(t, enc.X().ColumnNames(), x.ColumnNames())
}

func TestFastEncoderRefitIsIdempotent(t *testing.T) {
	df := nodeFrame(t)
	ctx := context.Background()

	first, err := NewFastEncoder(df, nil, KindNodes, nil)
	require.NoError(t, err)
	require.NoError(t, first.Fit(ctx, "", "", testOptions(EngineDirtyCat)))

	second, err := NewFastEncoder(df, nil, KindNodes, nil)
	require.NoError(t, err)
	require.NoError(t, second.Fit(ctx, "", "", testOptions(EngineDirtyCat)))

	assert.Equal(t, first.X().ColumnNames(), second.X().ColumnNames())
	for i := 0; i < first.X().Rows(); i++ {
		for j := 0; j < first.X().Cols(); j++ {
			assert.Equal(t, first.X().At(i, j), second.X().At(i, j))
		}
	}
}

func TestFastEncoderValidation(t *testing.T) {
	df := nodeFrame(t)

	_, err := NewFastEncoder(df, nil, Kind("tables"), nil)
	assert.Error(t, err)

	y := frame.New(2)
	require.NoError(t, y.AddSeries(frame.FloatSeries("t", []float64{1, 2})))
	_, err = NewFastEncoder(df, y, KindNodes, nil)
	assert.Error(t, err, "row-count mismatch between data and target")
}

func TestFastEncoderTransformBeforeFit(t *testing.T) {
	df := nodeFrame(t)
	enc, err := NewFastEncoder(df, nil, KindNodes, nil)
	require.NoError(t, err)

	x, y, err := enc.Transform(context.Background(), df, nil)
	assert.NoError(t, err)
	assert.Nil(t, x)
	assert.Nil(t, y)
}
