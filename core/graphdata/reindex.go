// Package graphdata materializes featurized tables into a graph: dense node
// reindexing, sparse adjacency, attached feature and target tensors and
// train/test masks.
package graphdata

import (
	"fmt"
	"sort"

	"github.com/adalundhe/tabgraph/core/frame"
)

// Reindexing maps arbitrary node identifiers to the dense range 0..N-1.
// Indices are assigned in descending occurrence frequency across both endpoint
// columns, ties broken by first-seen order, so hub nodes get the lowest
// indices.
type Reindexing struct {
	// Forward maps an original identifier to its dense index.
	Forward map[string]int
	// Inverse holds the original identifier at each dense index.
	Inverse []string
}

// N returns the number of distinct identifiers.
func (r *Reindexing) N() int { return len(r.Inverse) }

// ReindexEdgeList relabels the endpoint columns of an edge table to dense
// integer indices and returns the relabeled table with the mapping. Columns
// other than the endpoints pass through untouched.
func ReindexEdgeList(edges *frame.DataFrame, src, dst string) (*frame.DataFrame, *Reindexing, error) {
	if !edges.HasColumn(src) || !edges.HasColumn(dst) {
		return nil, nil, fmt.Errorf("edge table is missing source %q or destination %q", src, dst)
	}
	srcCol, err := edges.Column(src)
	if err != nil {
		return nil, nil, err
	}
	dstCol, err := edges.Column(dst)
	if err != nil {
		return nil, nil, err
	}

	type entry struct {
		id        string
		count     int
		firstSeen int
	}
	counts := make(map[string]*entry)
	order := 0
	tally := func(vals []string) {
		for _, id := range vals {
			e, ok := counts[id]
			if !ok {
				e = &entry{id: id, firstSeen: order}
				counts[id] = e
				order++
			}
			e.count++
		}
	}
	tally(srcCol.Strings())
	tally(dstCol.Strings())

	entries := make([]*entry, 0, len(counts))
	for _, e := range counts {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].firstSeen < entries[j].firstSeen
	})

	ridx := &Reindexing{
		Forward: make(map[string]int, len(entries)),
		Inverse: make([]string, len(entries)),
	}
	for i, e := range entries {
		ridx.Forward[e.id] = i
		ridx.Inverse[i] = e.id
	}

	relabel := func(vals []string) []frame.Value {
		out := make([]frame.Value, len(vals))
		for i, id := range vals {
			out[i] = frame.Int(ridx.Forward[id])
		}
		return out
	}

	relabeled := frame.New(edges.NumRows())
	for _, name := range edges.Columns() {
		switch name {
		case src:
			if err := relabeled.AddSeries(frame.NewSeries(name, relabel(srcCol.Strings()))); err != nil {
				return nil, nil, err
			}
		case dst:
			if err := relabeled.AddSeries(frame.NewSeries(name, relabel(dstCol.Strings()))); err != nil {
				return nil, nil, err
			}
		default:
			col, err := edges.Column(name)
			if err != nil {
				return nil, nil, err
			}
			if err := relabeled.AddSeries(col); err != nil {
				return nil, nil, err
			}
		}
	}
	return relabeled, ridx, nil
}
