package graphdata

import (
	"fmt"
	"math/rand"

	"github.com/adalundhe/tabgraph/core/frame"
)

// Tensor keys used in the node and edge data stores.
const (
	KeyFeature   = "feature"
	KeyTarget    = "target"
	KeyTrainMask = "train_mask"
	KeyTestMask  = "test_mask"
)

// Masks draws an independent bernoulli train mask with the given probability
// and its logical complement as the test mask.
func Masks(n int, trainRatio float64, rng *rand.Rand) (train, test []bool) {
	train = make([]bool, n)
	test = make([]bool, n)
	for i := 0; i < n; i++ {
		train[i] = rng.Float64() < trainRatio
		test[i] = !train[i]
	}
	return train, test
}

// MaskMatrix renders a boolean mask as a single 0/1 column so it can live in
// the same tensor store as features and targets.
func MaskMatrix(name string, mask []bool) *frame.Matrix {
	vals := make([]float64, len(mask))
	for i, b := range mask {
		if b {
			vals[i] = 1
		}
	}
	m := frame.NewMatrix([]string{name}, len(mask))
	m.SetCol(0, vals)
	return m
}

// Graph is a single materialized graph: the adjacency plus string-keyed node
// and edge tensor stores. It behaves as a container of length one, matching
// consumers that index graphs by position.
type Graph struct {
	Adjacency *COO
	Reindex   *Reindexing

	NodeData map[string]*frame.Matrix
	EdgeData map[string]*frame.Matrix
}

func NewGraph(adj *COO, ridx *Reindexing) *Graph {
	return &Graph{
		Adjacency: adj,
		Reindex:   ridx,
		NodeData:  make(map[string]*frame.Matrix),
		EdgeData:  make(map[string]*frame.Matrix),
	}
}

// Len is always 1: this is a single-graph container, not a batch.
func (g *Graph) Len() int { return 1 }

// At returns the graph itself for index 0 and errors otherwise.
func (g *Graph) At(i int) (*Graph, error) {
	if i != 0 {
		return nil, fmt.Errorf("graph container holds a single graph, index %d out of range", i)
	}
	return g, nil
}

// AttachNodeData stores node features and targets and draws fresh train/test
// masks over the nodes.
func (g *Graph) AttachNodeData(features, targets *frame.Matrix, trainRatio float64, rng *rand.Rand) error {
	return attach(g.NodeData, features, targets, trainRatio, rng)
}

// AttachEdgeData stores edge features and targets and draws fresh train/test
// masks over the edges.
func (g *Graph) AttachEdgeData(features, targets *frame.Matrix, trainRatio float64, rng *rand.Rand) error {
	return attach(g.EdgeData, features, targets, trainRatio, rng)
}

func attach(store map[string]*frame.Matrix, features, targets *frame.Matrix, trainRatio float64, rng *rand.Rand) error {
	if features == nil {
		return fmt.Errorf("feature tensor is required")
	}
	if targets != nil && targets.Cols() > 0 && targets.Rows() != features.Rows() {
		return fmt.Errorf("target tensor has %d rows, feature tensor has %d",
			targets.Rows(), features.Rows())
	}

	store[KeyFeature] = features
	if targets != nil && targets.Cols() > 0 {
		store[KeyTarget] = targets
	}

	train, test := Masks(features.Rows(), trainRatio, rng)
	store[KeyTrainMask] = MaskMatrix(KeyTrainMask, train)
	store[KeyTestMask] = MaskMatrix(KeyTestMask, test)
	return nil
}
