package graphdata

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/adalundhe/tabgraph/core/frame"
)

// ErrTooFewEdges means pruning left a graph too small to materialize.
var ErrTooFewEdges = errors.New("fewer than 3 edges remain after pruning to known nodes")

// PruneResult carries the pruned tables together with the keep-mask that
// produced them. Edges and edge targets are filtered by the same mask in the
// same operation, so their rows stay aligned by construction.
type PruneResult struct {
	Edges       *frame.DataFrame
	EdgeTargets *frame.DataFrame
	Keep        []bool
	Removed     int
}

// PruneEdgesToNodes drops every edge whose source or destination identifier
// does not appear in the node table's id column. Dropped edges are a
// data-quality warning; ending up with 2 or fewer edges is fatal.
func PruneEdgesToNodes(edges, edgeTargets, nodes *frame.DataFrame, nodeCol, src, dst string, logger *slog.Logger) (*PruneResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	idCol, err := nodes.Column(nodeCol)
	if err != nil {
		return nil, fmt.Errorf("node table is missing id column %q", nodeCol)
	}
	if !edges.HasColumn(src) || !edges.HasColumn(dst) {
		return nil, fmt.Errorf("edge table is missing source %q or destination %q", src, dst)
	}
	srcCol, err := edges.Column(src)
	if err != nil {
		return nil, err
	}
	dstCol, err := edges.Column(dst)
	if err != nil {
		return nil, err
	}
	if edgeTargets != nil && edgeTargets.NumCols() > 0 && edgeTargets.NumRows() != edges.NumRows() {
		return nil, fmt.Errorf("edge targets must have the same number of rows as the edge table, got %d and %d",
			edgeTargets.NumRows(), edges.NumRows())
	}

	known := make(map[string]struct{}, idCol.Len())
	dupes := 0
	for _, id := range idCol.Strings() {
		if _, seen := known[id]; seen {
			dupes++
		}
		known[id] = struct{}{}
	}
	if dupes > 0 {
		logger.Warn("node table contains duplicate identifiers", "column", nodeCol, "duplicates", dupes)
	}

	srcs := srcCol.Strings()
	dsts := dstCol.Strings()
	keep := make([]bool, edges.NumRows())
	kept := 0
	for i := range keep {
		_, srcKnown := known[srcs[i]]
		_, dstKnown := known[dsts[i]]
		keep[i] = srcKnown && dstKnown
		if keep[i] {
			kept++
		}
	}

	removed := edges.NumRows() - kept
	if removed > 0 {
		logger.Warn("dropping edges that reference unknown nodes",
			"removed", removed, "kept", kept)
	}
	if kept <= 2 {
		return nil, fmt.Errorf("%w: %d of %d edges kept", ErrTooFewEdges, kept, edges.NumRows())
	}

	prunedEdges, err := edges.FilterRows(keep)
	if err != nil {
		return nil, err
	}
	res := &PruneResult{
		Edges:   prunedEdges,
		Keep:    keep,
		Removed: removed,
	}
	if edgeTargets != nil && edgeTargets.NumCols() > 0 {
		if res.EdgeTargets, err = edgeTargets.FilterRows(keep); err != nil {
			return nil, err
		}
	} else if edgeTargets != nil {
		res.EdgeTargets = frame.New(kept)
	}
	return res, nil
}
