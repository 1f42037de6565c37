package tabgraph

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/adalundhe/tabgraph/core/config"
	"github.com/adalundhe/tabgraph/core/featurize"
	"github.com/adalundhe/tabgraph/core/graphdata"
	"github.com/adalundhe/tabgraph/core/text"
)

// GNNOptions drives graph materialization. Node and edge featurization share
// Config except for the scaler, which is commonly chosen per side.
type GNNOptions struct {
	WeightColumn string

	XNodes *Selection
	YNodes *Selection
	XEdges *Selection
	YEdges *Selection

	NodeScaler string // overrides Config.UseScaler for the node side
	EdgeScaler string // overrides Config.UseScaler for the edge side

	Config   config.Options
	Embedder text.Embedder

	// TrainSplit is the bernoulli probability of landing in the train mask.
	TrainSplit float64
	// Seed makes the train/test partition reproducible.
	Seed int64

	Inplace bool
}

// BuildGNN prunes the edge table to known nodes, featurizes both tables,
// builds the frequency-ranked sparse adjacency and attaches feature, target
// and train/test mask tensors. The edge prune mask is applied to the edge
// table and the edge targets in one step, before any reindexing, so their
// rows cannot drift apart.
func (g *Graph) BuildGNN(ctx context.Context, opts GNNOptions) (*Graph, error) {
	if g.nodes == nil || g.edges == nil {
		return nil, fmt.Errorf("both node and edge tables must be bound before building a graph")
	}
	if g.node == "" {
		return nil, fmt.Errorf(`node column not set, try g.Nodes(df, "my_col")`)
	}
	if g.source == "" {
		return nil, fmt.Errorf(`source column not set, try g.Edges(df, "src", "dst")`)
	}
	if g.destination == "" {
		return nil, fmt.Errorf(`destination column not set, try g.Edges(df, "src", "dst")`)
	}
	if opts.TrainSplit <= 0 || opts.TrainSplit >= 1 {
		opts.TrainSplit = 0.8
	}

	res := g
	if !opts.Inplace {
		res = g.clone()
	}

	yEdges, err := ResolveY(g.edges, opts.YEdges)
	if err != nil {
		return nil, err
	}

	pruned, err := graphdata.PruneEdgesToNodes(
		g.edges, yEdges, g.nodes, g.node, g.source, g.destination, g.logger)
	if err != nil {
		return nil, err
	}
	res.edges = pruned.Edges

	adj, ridx, err := graphdata.ToSparseAdjacency(
		pruned.Edges, g.source, g.destination, opts.WeightColumn)
	if err != nil {
		return nil, err
	}
	res.checkNodesLineUpWithEdges(ridx)

	nodeCfg := opts.Config
	if opts.NodeScaler != "" {
		nodeCfg.UseScaler = opts.NodeScaler
	}
	res, err = res.Featurize(ctx, FeaturizeOptions{
		Kind:     featurize.KindNodes,
		X:        opts.XNodes,
		Y:        opts.YNodes,
		Config:   nodeCfg,
		Embedder: opts.Embedder,
		Inplace:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("featurize nodes for graph: %w", err)
	}

	edgeCfg := opts.Config
	if opts.EdgeScaler != "" {
		edgeCfg.UseScaler = opts.EdgeScaler
	}
	res, err = res.Featurize(ctx, FeaturizeOptions{
		Kind:     featurize.KindEdges,
		X:        opts.XEdges,
		Y:        Table(pruned.EdgeTargets),
		Config:   edgeCfg,
		Embedder: opts.Embedder,
		Inplace:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("featurize edges for graph: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	gnn := graphdata.NewGraph(adj, ridx)
	if err := gnn.AttachNodeData(res.NodeFeatures, res.NodeTarget, opts.TrainSplit, rng); err != nil {
		return nil, fmt.Errorf("attach node tensors: %w", err)
	}
	if err := gnn.AttachEdgeData(res.EdgeFeatures, res.EdgeTarget, opts.TrainSplit, rng); err != nil {
		return nil, fmt.Errorf("attach edge tensors: %w", err)
	}
	res.GNN = gnn
	return res, nil
}

// checkNodesLineUpWithEdges logs data-quality warnings when the node table
// and the edge-derived entity index disagree.
func (g *Graph) checkNodesLineUpWithEdges(ridx *graphdata.Reindexing) {
	idCol, err := g.nodes.Column(g.node)
	if err != nil {
		return
	}
	ids := idCol.Strings()
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	g.logger.Info("node entity summary",
		"entities", len(ids), "unique", len(unique), "indexed", ridx.N())

	if len(unique) != len(ids) {
		g.logger.Warn("node table has duplicate entries", "column", g.node)
	}
	outside := 0
	for _, id := range ids {
		if _, ok := ridx.Forward[id]; !ok {
			outside++
		}
	}
	if outside > 0 {
		g.logger.Warn("some nodes never appear in the edge table", "count", outside)
	}
	if ridx.N() > len(ids) {
		g.logger.Warn("edge table references more entities than the node table lists")
	}
}
