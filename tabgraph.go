// Package tabgraph turns node and edge record tables into numeric feature
// matrices and materialized graphs for graph-learning runtimes. A Graph binds
// the raw tables to their id columns; Featurize fits the encoder stack,
// Transform replays it on unseen data, and BuildGNN materializes the
// adjacency with attached feature tensors.
package tabgraph

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adalundhe/tabgraph/core/featurize"
	"github.com/adalundhe/tabgraph/core/frame"
	"github.com/adalundhe/tabgraph/core/graphdata"
)

// Graph owns the raw node/edge tables, the column bindings, and whatever
// featurization artifacts have been produced so far. Methods follow
// copy-on-write: they return a derived Graph and leave the receiver untouched
// unless explicitly told otherwise.
type Graph struct {
	nodes *frame.DataFrame
	edges *frame.DataFrame

	node        string
	source      string
	destination string

	NodeFeatures *frame.Matrix
	NodeTarget   *frame.Matrix
	NodeEncoder  *featurize.FastEncoder

	EdgeFeatures *frame.Matrix
	EdgeTarget   *frame.Matrix
	EdgeEncoder  *featurize.FastEncoder

	// GNN is the materialized graph produced by BuildGNN, nil before.
	GNN *graphdata.Graph

	id     uuid.UUID
	memo   *featurize.Memoizer
	caps   featurize.Capabilities
	logger *slog.Logger
}

// New creates an empty graph object. Capabilities are probed once here and
// reused by every later engine resolution.
func New() (*Graph, error) {
	memo, err := featurize.NewMemoizer(0)
	if err != nil {
		return nil, err
	}
	return &Graph{
		id:     uuid.New(),
		memo:   memo,
		caps:   featurize.DetectCapabilities(),
		logger: slog.Default(),
	}, nil
}

// WithLogger returns a derived graph using the given logger.
func (g *Graph) WithLogger(logger *slog.Logger) *Graph {
	res := g.clone()
	res.logger = logger
	return res
}

// Nodes binds the node table and its identifier column.
func (g *Graph) Nodes(df *frame.DataFrame, nodeCol string) *Graph {
	res := g.clone()
	res.nodes = df
	res.node = nodeCol
	return res
}

// Edges binds the edge table and its endpoint columns.
func (g *Graph) Edges(df *frame.DataFrame, source, destination string) *Graph {
	res := g.clone()
	res.edges = df
	res.source = source
	res.destination = destination
	return res
}

// Bind rebinds column names without touching the tables. Empty arguments
// leave the existing binding in place.
func (g *Graph) Bind(node, source, destination string) *Graph {
	res := g.clone()
	if node != "" {
		res.node = node
	}
	if source != "" {
		res.source = source
	}
	if destination != "" {
		res.destination = destination
	}
	return res
}

func (g *Graph) NodeTable() *frame.DataFrame { return g.nodes }
func (g *Graph) EdgeTable() *frame.DataFrame { return g.edges }

func (g *Graph) NodeColumn() string        { return g.node }
func (g *Graph) SourceColumn() string      { return g.source }
func (g *Graph) DestinationColumn() string { return g.destination }

// Dispose releases the memoized featurizations owned by this graph lineage.
func (g *Graph) Dispose() {
	g.memo.Forget(g.id)
}

// clone shares the tables, memoizer and identity; derived graphs reuse the
// owner's cache entries.
func (g *Graph) clone() *Graph {
	out := *g
	return &out
}

// Selection is the symbolic form of an X or y argument: nil means the whole
// table (or no target), Columns picks a subset by name, Frame passes an
// explicit table through untouched.
type Selection struct {
	Columns []string
	Frame   *frame.DataFrame
}

// Cols selects the named columns of the bound table.
func Cols(names ...string) *Selection { return &Selection{Columns: names} }

// Table passes an explicit table through symbolic resolution.
func Table(df *frame.DataFrame) *Selection { return &Selection{Frame: df} }

// ResolveX resolves a symbolic feature selection against a table. Unknown
// column names are a configuration error.
func ResolveX(df *frame.DataFrame, sel *Selection) (*frame.DataFrame, error) {
	if sel != nil && sel.Frame != nil {
		return sel.Frame, nil
	}
	if df == nil {
		return nil, fmt.Errorf("missing data for featurization")
	}
	if sel == nil || len(sel.Columns) == 0 {
		return df, nil
	}
	out, err := df.Select(sel.Columns...)
	if err != nil {
		return nil, fmt.Errorf("resolve feature columns: %w", err)
	}
	return out, nil
}

// ResolveY resolves a symbolic target selection. A nil selection yields a
// zero-column frame carrying the table's row count, meaning no target.
func ResolveY(df *frame.DataFrame, sel *Selection) (*frame.DataFrame, error) {
	if sel != nil && sel.Frame != nil {
		return sel.Frame, nil
	}
	if df == nil {
		return nil, fmt.Errorf("missing data for featurization")
	}
	if sel == nil || len(sel.Columns) == 0 {
		return frame.New(df.NumRows()), nil
	}
	out, err := df.Select(sel.Columns...)
	if err != nil {
		return nil, fmt.Errorf("resolve target columns: %w", err)
	}
	return out, nil
}

// reservedNamespace lists columns written by layout and embedding steps that
// must never be featurized back in on a second pass.
var reservedNamespace = []string{
	"x",
	"y",
	"_src_implicit",
	"_dst_implicit",
	"_weight",
	"_n_implicit",
	"index",
}
