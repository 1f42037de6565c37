package graphdata

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/tabgraph/core/frame"
)

func edgeList(t *testing.T, pairs [][2]string) *frame.DataFrame {
	t.Helper()
	srcs := make([]string, len(pairs))
	dsts := make([]string, len(pairs))
	for i, p := range pairs {
		srcs[i], dsts[i] = p[0], p[1]
	}
	df := frame.New(len(pairs))
	require.NoError(t, df.AddSeries(frame.StringSeries("src", srcs)))
	require.NoError(t, df.AddSeries(frame.StringSeries("dst", dsts)))
	return df
}

// =============================================================================
// Reindexing
// =============================================================================

func TestReindexFrequencyOrder(t *testing.T) {
	edges := edgeList(t, [][2]string{{"A", "B"}, {"A", "C"}, {"A", "D"}})

	relabeled, ridx, err := ReindexEdgeList(edges, "src", "dst")
	require.NoError(t, err)

	// A appears three times and takes index 0; ties go by first occurrence
	assert.Equal(t, 0, ridx.Forward["A"])
	assert.Equal(t, 1, ridx.Forward["B"])
	assert.Equal(t, 2, ridx.Forward["C"])
	assert.Equal(t, 3, ridx.Forward["D"])
	assert.Equal(t, []string{"A", "B", "C", "D"}, ridx.Inverse)
	assert.Equal(t, 4, ridx.N())

	srcCol, err := relabeled.Column("src")
	require.NoError(t, err)
	for i := 0; i < srcCol.Len(); i++ {
		assert.Equal(t, 0.0, srcCol.At(i).Float())
	}
	dstCol, err := relabeled.Column("dst")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, dstCol.Floats())
}

func TestReindexKeepsOtherColumns(t *testing.T) {
	edges := edgeList(t, [][2]string{{"A", "B"}, {"B", "A"}})
	require.NoError(t, edges.AddSeries(frame.FloatSeries("w", []float64{0.5, 1.5})))

	relabeled, _, err := ReindexEdgeList(edges, "src", "dst")
	require.NoError(t, err)
	w, err := relabeled.Column("w")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, w.Floats())
}

func TestReindexMissingColumn(t *testing.T) {
	edges := edgeList(t, [][2]string{{"A", "B"}})
	_, _, err := ReindexEdgeList(edges, "nope", "dst")
	assert.Error(t, err)
}

// =============================================================================
// Adjacency
// =============================================================================

func TestToSparseAdjacencyDefaultWeights(t *testing.T) {
	edges := edgeList(t, [][2]string{{"A", "B"}, {"A", "C"}, {"B", "C"}})

	coo, ridx, err := ToSparseAdjacency(edges, "src", "dst", "")
	require.NoError(t, err)
	assert.Equal(t, 3, coo.N)
	assert.Equal(t, ridx.N(), coo.N)
	assert.Equal(t, 3, coo.NNZ())
	for _, w := range coo.Weights {
		assert.Equal(t, 1.0, w)
	}
	assert.Equal(t, ridx.Forward["A"], coo.Rows[0])
	assert.Equal(t, ridx.Forward["B"], coo.Cols[0])
}

func TestToSparseAdjacencyWeightColumn(t *testing.T) {
	edges := edgeList(t, [][2]string{{"A", "B"}, {"B", "A"}})
	require.NoError(t, edges.AddSeries(frame.FloatSeries("w", []float64{0.25, 4})))

	coo, _, err := ToSparseAdjacency(edges, "src", "dst", "w")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 4}, coo.Weights)

	_, _, err = ToSparseAdjacency(edges, "src", "dst", "missing")
	assert.Error(t, err)
}

// =============================================================================
// Pruning
// =============================================================================

func pruneFixture(t *testing.T) (*frame.DataFrame, *frame.DataFrame, *frame.DataFrame) {
	t.Helper()
	nodes := frame.New(3)
	require.NoError(t, nodes.AddSeries(frame.StringSeries("id", []string{"A", "B", "C"})))

	edges := edgeList(t, [][2]string{
		{"A", "B"}, {"A", "D"}, {"B", "C"}, {"D", "C"}, {"C", "A"},
	})
	targets := frame.New(5)
	require.NoError(t, targets.AddSeries(frame.FloatSeries("label", []float64{10, 20, 30, 40, 50})))
	return nodes, edges, targets
}

func TestPruneEdgesToNodes(t *testing.T) {
	nodes, edges, targets := pruneFixture(t)

	res, err := PruneEdgesToNodes(edges, targets, nodes, "id", "src", "dst", nil)
	require.NoError(t, err)

	// the two edges touching D are dropped
	assert.Equal(t, 3, res.Edges.NumRows())
	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, []bool{true, false, true, false, true}, res.Keep)

	// targets pruned by the same mask keep row alignment
	require.NotNil(t, res.EdgeTargets)
	assert.Equal(t, 3, res.EdgeTargets.NumRows())
	label, err := res.EdgeTargets.Column("label")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 30, 50}, label.Floats())
}

func TestPruneTooFewEdges(t *testing.T) {
	nodes := frame.New(2)
	require.NoError(t, nodes.AddSeries(frame.StringSeries("id", []string{"A", "B"})))
	edges := edgeList(t, [][2]string{{"A", "B"}, {"A", "X"}, {"X", "Y"}, {"Y", "B"}})

	_, err := PruneEdgesToNodes(edges, nil, nodes, "id", "src", "dst", nil)
	assert.True(t, errors.Is(err, ErrTooFewEdges))
}

func TestPruneTargetRowMismatch(t *testing.T) {
	nodes, edges, _ := pruneFixture(t)
	bad := frame.New(2)
	require.NoError(t, bad.AddSeries(frame.FloatSeries("label", []float64{1, 2})))

	_, err := PruneEdgesToNodes(edges, bad, nodes, "id", "src", "dst", nil)
	assert.Error(t, err)
}

// =============================================================================
// Masks and graph container
// =============================================================================

func TestMasksComplement(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	train, test := Masks(200, 0.8, rng)
	require.Len(t, train, 200)

	trues := 0
	for i := range train {
		assert.NotEqual(t, train[i], test[i])
		if train[i] {
			trues++
		}
	}
	assert.Greater(t, trues, 120)
	assert.Less(t, trues, 200)
}

func TestGraphContainer(t *testing.T) {
	g := NewGraph(&COO{N: 2}, &Reindexing{Inverse: []string{"A", "B"}})
	assert.Equal(t, 1, g.Len())

	got, err := g.At(0)
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = g.At(1)
	assert.Error(t, err)
}

func TestAttachNodeData(t *testing.T) {
	g := NewGraph(&COO{N: 3}, &Reindexing{})
	feats := frame.NewMatrix([]string{"f0", "f1"}, 3)
	targets := frame.NewMatrix([]string{"y"}, 3)

	rng := rand.New(rand.NewSource(1))
	require.NoError(t, g.AttachNodeData(feats, targets, 0.8, rng))

	assert.Same(t, feats, g.NodeData[KeyFeature])
	assert.Same(t, targets, g.NodeData[KeyTarget])
	require.Contains(t, g.NodeData, KeyTrainMask)
	require.Contains(t, g.NodeData, KeyTestMask)

	train := g.NodeData[KeyTrainMask]
	test := g.NodeData[KeyTestMask]
	assert.Equal(t, 3, train.Rows())
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1.0, train.At(i, 0)+test.At(i, 0))
	}
}

func TestAttachSkipsEmptyTarget(t *testing.T) {
	g := NewGraph(&COO{N: 2}, &Reindexing{})
	feats := frame.NewMatrix([]string{"f0"}, 2)

	rng := rand.New(rand.NewSource(1))
	require.NoError(t, g.AttachEdgeData(feats, frame.EmptyMatrix(2), 0.8, rng))
	assert.NotContains(t, g.EdgeData, KeyTarget)
	assert.Contains(t, g.EdgeData, KeyTrainMask)
}

func TestAttachRowMismatch(t *testing.T) {
	g := NewGraph(&COO{N: 2}, &Reindexing{})
	feats := frame.NewMatrix([]string{"f0"}, 2)
	targets := frame.NewMatrix([]string{"y"}, 3)

	rng := rand.New(rand.NewSource(1))
	assert.Error(t, g.AttachNodeData(feats, targets, 0.8, rng))
}
