package featurize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adalundhe/tabgraph/core/frame"
)

// Kind selects node or edge featurization.
type Kind string

const (
	KindNodes Kind = "nodes"
	KindEdges Kind = "edges"
)

// FastEncoder bundles the fitted artifacts of one featurization call and
// replays the identical transform on new tables of the same schema. It is
// immutable after Fit; concurrent transforms must treat it as read-only.
type FastEncoder struct {
	kind Kind
	src  string
	dst  string

	df *frame.DataFrame
	y  *frame.DataFrame

	res    *FitResult
	logger *slog.Logger
}

// NewFastEncoder validates row alignment between data and target before any
// fitting happens. A row-count mismatch is a configuration error.
func NewFastEncoder(df, y *frame.DataFrame, kind Kind, logger *slog.Logger) (*FastEncoder, error) {
	if kind != KindNodes && kind != KindEdges {
		return nil, fmt.Errorf(`kind must be "nodes" or "edges", got %q`, kind)
	}
	if y == nil {
		y = frame.New(df.NumRows())
	}
	if y.NumCols() > 0 && y.NumRows() != df.NumRows() {
		return nil, fmt.Errorf("data and target must have the same number of rows, got %d and %d",
			df.NumRows(), y.NumRows())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FastEncoder{kind: kind, df: df, y: y, logger: logger}, nil
}

func (f *FastEncoder) Kind() Kind { return f.kind }

// Result exposes the full fit state, nil before Fit.
func (f *FastEncoder) Result() *FitResult { return f.res }

// X returns the fused feature matrix produced by Fit.
func (f *FastEncoder) X() *frame.Matrix {
	if f.res == nil {
		return nil
	}
	return f.res.X
}

// Y returns the fused target matrix produced by Fit.
func (f *FastEncoder) Y() *frame.Matrix {
	if f.res == nil {
		return nil
	}
	return f.res.Y
}

// Fit runs the featurization pipeline and stores the resulting artifacts.
// src and dst are only consulted for edge featurization.
func (f *FastEncoder) Fit(ctx context.Context, src, dst string, opts Options) error {
	opts.Logger = f.logger
	var (
		res *FitResult
		err error
	)
	switch f.kind {
	case KindNodes:
		res, err = ProcessNodesDataFrames(ctx, f.df, f.y, opts)
	case KindEdges:
		res, err = ProcessEdgeDataFrames(ctx, f.df, f.y, src, dst, opts)
	}
	if err != nil {
		return err
	}
	f.src, f.dst = src, dst
	f.res = res
	return nil
}

// Transform replays the fitted pipeline on a new table. Column identity of
// the output matches the fit output; set drift against the fitted columns is
// reported as a diagnostic, not an error, since downstream consumers may
// tolerate superset or subset columns.
func (f *FastEncoder) Transform(ctx context.Context, df, ydf *frame.DataFrame) (*frame.Matrix, *frame.Matrix, error) {
	if f.res == nil {
		f.logger.Debug("transform called before fit, nothing to replay")
		return nil, nil, nil
	}

	x, err := f.transformFeatures(ctx, df)
	if err != nil {
		return nil, nil, err
	}
	y, err := f.transformTarget(ydf)
	if err != nil {
		return nil, nil, err
	}

	f.reportDrift(x.ColumnNames(), f.res.FeatureColumns(), "features")
	f.reportDrift(y.ColumnNames(), f.res.TargetColumns(), "target")

	if f.res.FeaturePipeline != nil && !x.Empty() {
		if x, err = f.res.FeaturePipeline.Transform(x); err != nil {
			return nil, nil, fmt.Errorf("replay feature scaling: %w", err)
		}
	}
	if f.res.TargetPipeline != nil && !y.Empty() {
		if y, err = f.res.TargetPipeline.Transform(y); err != nil {
			return nil, nil, fmt.Errorf("replay target scaling: %w", err)
		}
	}
	return x, y, nil
}

func (f *FastEncoder) transformFeatures(ctx context.Context, df *frame.DataFrame) (*frame.Matrix, error) {
	var blocks []*frame.Matrix

	if f.kind == KindEdges && f.res.EdgeEncoder != nil {
		pairBlock, err := f.res.EdgeEncoder.Transform(df)
		if err != nil {
			return nil, fmt.Errorf("replay edge pair encoding: %w", err)
		}
		blocks = append(blocks, pairBlock)
	}

	if len(f.res.TextCols) > 0 && f.res.TextModel != nil {
		textBlock, err := f.res.TextModel.Transform(ctx, df)
		if err != nil {
			return nil, fmt.Errorf("replay text encoding: %w", err)
		}
		blocks = append(blocks, textBlock)
	}

	switch {
	case f.res.FastPath:
		// numeric-only engine: edges carry just the pair block, nodes just
		// their numeric columns
		if f.kind == KindNodes {
			block, err := df.SelectNumeric().CastFloat()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
		}
	case f.res.DataEncoder != nil:
		dirty := df.Drop(f.res.TextCols...)
		if f.kind == KindEdges {
			dirty = dirty.Drop(f.src, f.dst)
		}
		block, err := f.res.DataEncoder.Transform(dirty)
		if err != nil {
			return nil, fmt.Errorf("replay dirty encoding: %w", err)
		}
		blocks = append(blocks, block)
	case f.res.DataEncoderSkipped:
		block, err := df.Drop(f.src, f.dst).Drop(f.res.TextCols...).SelectNumeric().CastFloat()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	x, err := frame.ConcatHorizontal(blocks...)
	if err != nil {
		return nil, fmt.Errorf("fuse transformed blocks: %w", err)
	}
	if x.Empty() {
		f.logger.Warn("transform produced an empty feature matrix")
	}
	return x, nil
}

func (f *FastEncoder) transformTarget(ydf *frame.DataFrame) (*frame.Matrix, error) {
	if ydf == nil || ydf.NumCols() == 0 {
		rows := 0
		if ydf != nil {
			rows = ydf.NumRows()
		}
		return frame.EmptyMatrix(rows), nil
	}
	if f.res.LabelEncoder != nil {
		y, err := f.res.LabelEncoder.Transform(ydf)
		if err != nil {
			return nil, fmt.Errorf("replay label encoding: %w", err)
		}
		return y, nil
	}
	return ydf.SelectNumeric().CastFloat()
}

// reportDrift logs the symmetric difference between fitted and freshly
// transformed column sets.
func (f *FastEncoder) reportDrift(got, want []string, which string) {
	gotSet := make(map[string]struct{}, len(got))
	for _, c := range got {
		gotSet[c] = struct{}{}
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, c := range want {
		wantSet[c] = struct{}{}
	}
	var missing, extra []string
	for _, c := range want {
		if _, ok := gotSet[c]; !ok {
			missing = append(missing, c)
		}
	}
	for _, c := range got {
		if _, ok := wantSet[c]; !ok {
			extra = append(extra, c)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		f.logger.Warn("column set drift between fit and transform",
			"which", which, "missing", missing, "extra", extra)
	}
}
