package graphdata

import (
	"fmt"

	"github.com/adalundhe/tabgraph/core/frame"
)

// COO is a square sparse adjacency matrix in coordinate form. Entry k is the
// edge Rows[k] -> Cols[k] with weight Weights[k]. N is the side length, equal
// to the number of distinct node identifiers.
type COO struct {
	Rows    []int
	Cols    []int
	Weights []float64
	N       int
}

// NNZ reports the number of stored entries.
func (c *COO) NNZ() int { return len(c.Rows) }

// ToSparseAdjacency reindexes the edge table and builds the (N, N) adjacency
// in COO form. When weightCol is empty every edge gets weight 1; otherwise the
// named numeric column supplies the weights.
func ToSparseAdjacency(edges *frame.DataFrame, src, dst, weightCol string) (*COO, *Reindexing, error) {
	relabeled, ridx, err := ReindexEdgeList(edges, src, dst)
	if err != nil {
		return nil, nil, err
	}

	nnz := relabeled.NumRows()
	coo := &COO{
		Rows:    make([]int, nnz),
		Cols:    make([]int, nnz),
		Weights: make([]float64, nnz),
		N:       ridx.N(),
	}

	srcCol, err := relabeled.Column(src)
	if err != nil {
		return nil, nil, err
	}
	dstCol, err := relabeled.Column(dst)
	if err != nil {
		return nil, nil, err
	}
	srcIdx := srcCol.Floats()
	dstIdx := dstCol.Floats()
	for i := 0; i < nnz; i++ {
		coo.Rows[i] = int(srcIdx[i])
		coo.Cols[i] = int(dstIdx[i])
		coo.Weights[i] = 1
	}

	if weightCol != "" {
		wc, err := edges.Column(weightCol)
		if err != nil {
			return nil, nil, fmt.Errorf("weight column %q not found in edge table", weightCol)
		}
		if !wc.IsNumeric() {
			return nil, nil, fmt.Errorf("weight column %q must be numeric", weightCol)
		}
		copy(coo.Weights, wc.Floats())
	}
	return coo, ridx, nil
}
