package tabgraph

import (
	"context"
	"fmt"

	"github.com/adalundhe/tabgraph/core/config"
	"github.com/adalundhe/tabgraph/core/featurize"
	"github.com/adalundhe/tabgraph/core/frame"
	"github.com/adalundhe/tabgraph/core/text"
)

// FeaturizeOptions selects what to featurize and how. The zero value
// featurizes the whole node table with default configuration.
type FeaturizeOptions struct {
	Kind featurize.Kind
	X    *Selection
	Y    *Selection

	Config config.Options

	// Embedder overrides the sentence-embedding backend; setting it also
	// satisfies the torch engine's text capability.
	Embedder text.Embedder

	// Inplace mutates the receiver instead of returning a derived graph.
	Inplace bool

	// SkipMemoization forces a fresh fit even when a cached one matches.
	SkipMemoization bool
}

// Featurize fits the encoder stack on the bound node or edge table and
// stores the fused matrices and the fitted encoder on the result. Identical
// repeat calls on the same graph lineage reuse the memoized fit.
func (g *Graph) Featurize(ctx context.Context, opts FeaturizeOptions) (*Graph, error) {
	if opts.Kind == "" {
		opts.Kind = featurize.KindNodes
	}
	cfg := opts.Config
	cfg.ApplyDefaults()

	res := g
	if !opts.Inplace {
		res = g.clone()
	}

	var (
		table    *frame.DataFrame
		src, dst string
	)
	switch opts.Kind {
	case featurize.KindNodes:
		if g.nodes == nil {
			return nil, fmt.Errorf("no node table bound, call Nodes first")
		}
		table = g.nodes
		if *cfg.RemoveNodeColumn && g.node != "" {
			g.logger.Debug("removing node id column before featurization", "column", g.node)
			table = table.Drop(g.node)
		}
	case featurize.KindEdges:
		if g.edges == nil {
			return nil, fmt.Errorf("no edge table bound, call Edges first")
		}
		if g.source == "" || g.destination == "" {
			return nil, fmt.Errorf("source and destination columns must be bound before featurizing edges")
		}
		table = g.edges
		src, dst = g.source, g.destination
	default:
		return nil, fmt.Errorf(`kind must be "nodes" or "edges", got %q`, opts.Kind)
	}

	xdf, err := ResolveX(table, opts.X)
	if err != nil {
		return nil, err
	}
	ydf, err := ResolveY(table, opts.Y)
	if err != nil {
		return nil, err
	}

	// Target columns never double as features, and layout leftovers from
	// earlier passes are stripped so featurization stays idempotent.
	xdf = xdf.Drop(ydf.Columns()...)
	xdf = xdf.Drop(reservedNamespace...)

	// The pair encoder always consumes the endpoint columns, so an explicit
	// X selection that leaves them out gets them assigned back in.
	if opts.Kind == featurize.KindEdges && (!xdf.HasColumn(src) || !xdf.HasColumn(dst)) {
		withEndpoints := xdf.Drop()
		for _, name := range []string{src, dst} {
			if withEndpoints.HasColumn(name) {
				continue
			}
			col, err := g.edges.Column(name)
			if err != nil {
				return nil, err
			}
			if err := withEndpoints.AddSeries(col); err != nil {
				return nil, fmt.Errorf("assign endpoint column %q: %w", name, err)
			}
		}
		xdf = withEndpoints
	}

	fopts, err := g.engineOptions(cfg, opts.Embedder)
	if err != nil {
		return nil, err
	}

	fingerprint := featurize.Fingerprint(opts.Kind, src, dst, fopts, xdf, ydf)
	if !opts.SkipMemoization {
		if enc, ok := g.memo.Lookup(g.id, fingerprint); ok {
			g.logger.Info("reusing memoized featurization", "kind", string(opts.Kind))
			res.adopt(opts.Kind, enc)
			return res, nil
		}
	}

	enc, err := featurize.NewFastEncoder(xdf, ydf, opts.Kind, g.logger)
	if err != nil {
		return nil, err
	}
	if err := enc.Fit(ctx, src, dst, fopts); err != nil {
		return nil, err
	}

	g.memo.Store(g.id, fingerprint, enc)
	res.adopt(opts.Kind, enc)
	return res, nil
}

// Transform replays a prior fit of the given kind on a new table. Calling it
// before the matching Featurize logs a diagnostic and returns nothing.
func (g *Graph) Transform(ctx context.Context, df, y *frame.DataFrame, kind featurize.Kind) (*frame.Matrix, *frame.Matrix, error) {
	var enc *featurize.FastEncoder
	switch kind {
	case featurize.KindNodes, "":
		enc = g.NodeEncoder
	case featurize.KindEdges:
		enc = g.EdgeEncoder
	default:
		return nil, nil, fmt.Errorf(`kind must be "nodes" or "edges", got %q`, kind)
	}
	if enc == nil {
		g.logger.Warn("transform called before featurize, nothing to replay", "kind", string(kind))
		return nil, nil, nil
	}
	return enc.Transform(ctx, df, y)
}

// engineOptions resolves the requested feature engine against the probed
// capabilities and builds the runtime collaborators for that engine. An
// injected embedder satisfies the text capability on its own.
func (g *Graph) engineOptions(cfg config.Options, embedder text.Embedder) (featurize.Options, error) {
	caps := g.caps
	if embedder != nil {
		caps.TextEmbedding = true
	}
	engine, err := featurize.ResolveEngine(featurize.Engine(cfg.FeatureEngine), caps)
	if err != nil {
		return featurize.Options{}, err
	}

	fopts := featurize.Options{
		Config:   cfg,
		Engine:   engine,
		Embedder: embedder,
		Logger:   g.logger,
	}
	if engine == featurize.EngineTorch && fopts.Embedder == nil && !cfg.UseNgrams {
		onnx, err := text.NewONNXEmbedder(text.ONNXConfig{
			ModelName:      cfg.ModelName,
			OrtLibraryPath: caps.OrtLibraryPath,
		})
		if err != nil {
			return featurize.Options{}, fmt.Errorf("build sentence embedder: %w", err)
		}
		cached, err := text.NewCachedEmbedder(onnx)
		if err != nil {
			return featurize.Options{}, fmt.Errorf("wrap embedder cache: %w", err)
		}
		fopts.Embedder = cached
	}
	return fopts, nil
}

func (g *Graph) adopt(kind featurize.Kind, enc *featurize.FastEncoder) {
	switch kind {
	case featurize.KindNodes:
		g.NodeFeatures = enc.X()
		g.NodeTarget = enc.Y()
		g.NodeEncoder = enc
	case featurize.KindEdges:
		g.EdgeFeatures = enc.X()
		g.EdgeTarget = enc.Y()
		g.EdgeEncoder = enc
	}
}
