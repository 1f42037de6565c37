package featurize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adalundhe/tabgraph/core/config"
	"github.com/adalundhe/tabgraph/core/encoder"
	"github.com/adalundhe/tabgraph/core/frame"
	"github.com/adalundhe/tabgraph/core/scaler"
	"github.com/adalundhe/tabgraph/core/text"
)

// Options bundles the resolved configuration with the runtime collaborators
// the orchestrator needs.
type Options struct {
	Config   config.Options
	Engine   Engine // concrete engine, already resolved
	Embedder text.Embedder
	Logger   *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// FitResult is the complete fit state of one featurization: the fused
// matrices plus every fitted artifact needed to replay the transform.
type FitResult struct {
	X *frame.Matrix
	Y *frame.Matrix

	DataEncoder        *encoder.TableVectorizer
	DataEncoderSkipped bool // table was already fully numeric, encoding skipped
	FastPath           bool // numeric-only engine, heavy encoders never ran
	EdgeEncoder        *encoder.MultiLabelBinarizer
	LabelEncoder       *encoder.TableVectorizer

	FeaturePipeline *scaler.Pipeline
	TargetPipeline  *scaler.Pipeline

	TextModel *text.Model
	TextCols  []string
}

// FeatureColumns returns the fused feature column names in output order.
func (r *FitResult) FeatureColumns() []string { return r.X.ColumnNames() }

// TargetColumns returns the fused target column names in output order.
func (r *FitResult) TargetColumns() []string { return r.Y.ColumnNames() }

// ProcessNodesDataFrames runs the full node featurization pipeline:
// classifier, text encoder, dirty encoder, fusion and scaling.
func ProcessNodesDataFrames(ctx context.Context, df, y *frame.DataFrame, opts Options) (*FitResult, error) {
	logger := opts.logger()
	logger.Info("processing node table", "engine", string(opts.Engine),
		"rows", df.NumRows(), "columns", df.NumCols())

	if y == nil {
		y = frame.New(df.NumRows())
	}

	if opts.Engine == EngineNone || opts.Engine == EnginePandas {
		return numericOnly(df, y, opts)
	}

	if df.Empty() {
		logger.Warn("node table appears to be empty")
	}

	res, err := encodeTable(ctx, df, y, opts)
	if err != nil {
		return nil, err
	}
	if err := applyScaling(res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// ProcessEdgeDataFrames runs edge featurization: the (src, dst) pair block is
// computed first and prepended to whatever the node pipeline produces for the
// remaining columns.
func ProcessEdgeDataFrames(ctx context.Context, edf, y *frame.DataFrame, src, dst string, opts Options) (*FitResult, error) {
	logger := opts.logger()
	logger.Info("processing edge table", "engine", string(opts.Engine),
		"rows", edf.NumRows(), "columns", edf.NumCols())

	if !edf.HasColumn(src) || !edf.HasColumn(dst) {
		return nil, fmt.Errorf("edge table is missing source %q or destination %q", src, dst)
	}
	if y == nil {
		y = frame.New(edf.NumRows())
	}

	mlb := encoder.NewMultiLabelBinarizer(src, dst)
	pairBlock, err := encoder.FitTransform(mlb, edf)
	if err != nil {
		return nil, fmt.Errorf("encode edge pairs: %w", err)
	}

	if opts.Engine == EngineNone || opts.Engine == EnginePandas {
		res, err := numericOnly(pairBlock.ToDataFrame(), y, opts)
		if err != nil {
			return nil, err
		}
		res.EdgeEncoder = mlb
		return res, nil
	}

	res, err := encodeTable(ctx, edf.Drop(src, dst), y, opts)
	if err != nil {
		return nil, err
	}
	res.EdgeEncoder = mlb
	res.X, err = frame.ConcatHorizontal(pairBlock, res.X)
	if err != nil {
		return nil, fmt.Errorf("prepend edge pair block: %w", err)
	}
	if err := applyScaling(res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// encodeTable is the shared text+dirty featurization without scaling. Text
// block comes first in the fused matrix, categorical/numeric block second.
func encodeTable(ctx context.Context, df, y *frame.DataFrame, opts Options) (*FitResult, error) {
	logger := opts.logger()

	var (
		textBlock *frame.Matrix
		textModel *text.Model
		textCols  []string
		err       error
	)
	if opts.Engine == EngineTorch || opts.Config.UseNgrams {
		textBlock, textCols, textModel, err = text.EncodeTextual(ctx, df, text.Options{
			Confidence: opts.Config.Confidence,
			MinWords:   opts.Config.MinWords,
			UseNgrams:  opts.Config.UseNgrams,
			NGramMin:   opts.Config.NGramMin,
			NGramMax:   opts.Config.NGramMax,
			MaxDF:      opts.Config.MaxDF,
			MinDF:      opts.Config.MinDF,
			Embedder:   opts.Embedder,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("encode textual columns: %w", err)
		}
	} else {
		logger.Debug("skipping textual encoding", "engine", string(opts.Engine))
		textBlock = frame.EmptyMatrix(df.NumRows())
	}

	res, err := processDirty(df.Drop(textCols...), y, opts)
	if err != nil {
		return nil, err
	}
	res.TextModel = textModel
	res.TextCols = textCols

	res.X, err = frame.ConcatHorizontal(textBlock, res.X)
	if err != nil {
		return nil, fmt.Errorf("fuse text and categorical blocks: %w", err)
	}
	return res, nil
}

// processDirty encodes the non-textual remainder of a table plus its target.
// A fully numeric table skips the vectorizer entirely: running it there is a
// documented failure mode, so values are cast to float directly and the
// encoder is recorded as a skipped sentinel.
func processDirty(df, y *frame.DataFrame, opts Options) (*FitResult, error) {
	logger := opts.logger()
	res := &FitResult{}

	switch {
	case df.Empty():
		logger.Debug("table is empty, nothing to encode")
		res.X = frame.EmptyMatrix(df.NumRows())
	case df.IsAllNumeric():
		logger.Debug("table is already fully numeric, skipping dirty encoding")
		x, err := df.CastFloat()
		if err != nil {
			return nil, err
		}
		res.X = x
		res.DataEncoderSkipped = true
	default:
		tv := encoder.NewTableVectorizer(opts.Config.CardinalityThreshold, opts.Config.NTopics)
		tv.Logger = logger
		x, err := encoder.FitTransform(tv, df)
		if err != nil {
			return nil, fmt.Errorf("fit dirty encoder: %w", err)
		}
		res.X = x
		res.DataEncoder = tv
	}

	yEnc, labelEncoder, err := encodeTarget(y, opts)
	if err != nil {
		return nil, err
	}
	res.Y = yEnc
	res.LabelEncoder = labelEncoder
	return res, nil
}

// encodeTarget mirrors processDirty for the target side, with its own
// (typically higher) cardinality threshold so targets lean toward one-hot.
func encodeTarget(y *frame.DataFrame, opts Options) (*frame.Matrix, *encoder.TableVectorizer, error) {
	if y.NumCols() == 0 {
		return frame.EmptyMatrix(y.NumRows()), nil, nil
	}
	if y.IsAllNumeric() {
		enc, err := y.CastFloat()
		return enc, nil, err
	}
	le := encoder.NewTableVectorizer(opts.Config.CardinalityThresholdTarget, opts.Config.NTopicsTarget)
	le.Logger = opts.logger()
	enc, err := encoder.FitTransform(le, y)
	if err != nil {
		return nil, nil, fmt.Errorf("fit label encoder: %w", err)
	}
	return enc, le, nil
}

// numericOnly is the fast path for the none/pandas engines: numeric columns
// only, still scaled, no heavy encoders.
func numericOnly(df, y *frame.DataFrame, opts Options) (*FitResult, error) {
	opts.logger().Debug("numeric-only feature engine, no real featurization takes place",
		"engine", string(opts.Engine))
	x, err := df.SelectNumeric().CastFloat()
	if err != nil {
		return nil, err
	}
	yEnc, err := y.SelectNumeric().CastFloat()
	if err != nil {
		return nil, err
	}
	res := &FitResult{X: x, Y: yEnc, DataEncoderSkipped: true, FastPath: true}
	if err := applyScaling(res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// applyScaling fits the feature-side and target-side pipelines on the fused
// matrices. The two sides may use different strategies, so each gets its own
// fitted pipeline.
func applyScaling(res *FitResult, opts Options) error {
	sopts := scalerOptions(opts)

	if strategy := opts.Config.UseScaler; strategy != "" && strategy != scaler.StrategyNone && !res.X.Empty() {
		pipeline, err := scaler.NewPipeline(strategy, sopts)
		if err != nil {
			return err
		}
		scaled, err := pipeline.FitTransform(res.X)
		if err != nil {
			return fmt.Errorf("scale features with %q: %w", strategy, err)
		}
		res.X = scaled
		res.FeaturePipeline = pipeline
	}

	if strategy := opts.Config.UseScalerTarget; strategy != "" && strategy != scaler.StrategyNone && !res.Y.Empty() {
		pipeline, err := scaler.NewPipeline(strategy, sopts)
		if err != nil {
			return err
		}
		scaled, err := pipeline.FitTransform(res.Y)
		if err != nil {
			return fmt.Errorf("scale target with %q: %w", strategy, err)
		}
		res.Y = scaled
		res.TargetPipeline = pipeline
	}
	return nil
}

func scalerOptions(opts Options) scaler.Options {
	sopts := scaler.DefaultOptions()
	if opts.Config.Impute != nil {
		sopts.Impute = *opts.Config.Impute
	}
	sopts.KeepNDecimals = opts.Config.KeepNDecimals
	sopts.Logger = opts.logger()
	return sopts
}
