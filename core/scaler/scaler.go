// Package scaler builds impute-then-scale pipelines over named feature
// matrices. Strategy names follow the common preprocessing vocabulary:
// minmax, quantile, zscale, robust, kbins.
package scaler

import (
	"fmt"
	"log/slog"

	"github.com/adalundhe/tabgraph/core/frame"
)

// Step is one fitted stage of a pipeline. Transform never mutates its input.
type Step interface {
	Fit(m *frame.Matrix) error
	Transform(m *frame.Matrix) (*frame.Matrix, error)
}

// Strategies accepted by NewPipeline. Anything else falls back to identity
// scaling with an error log, which keeps a bad scaler name non-fatal.
var availableStrategies = []string{StrategyMinMax, StrategyQuantile, StrategyZScale, StrategyRobust, StrategyKBins}

const (
	StrategyMinMax   = "minmax"
	StrategyQuantile = "quantile"
	StrategyZScale   = "zscale"
	StrategyRobust   = "robust"
	StrategyKBins    = "kbins"
	StrategyNone     = "none"
)

// Options tune the individual scaling steps.
type Options struct {
	Impute             bool
	NQuantiles         int
	OutputDistribution string // "normal" or "uniform", quantile strategy only
	QuantileLow        float64
	QuantileHigh       float64
	NBins              int
	KBinsStrategy      string // "uniform" or "quantile"
	KeepNDecimals      int
	Logger             *slog.Logger
}

// DefaultOptions mirrors the preprocessing defaults used throughout the
// featurization pipeline.
func DefaultOptions() Options {
	return Options{
		Impute:             true,
		NQuantiles:         10,
		OutputDistribution: "normal",
		QuantileLow:        25,
		QuantileHigh:       75,
		NBins:              10,
		KBinsStrategy:      "uniform",
		KeepNDecimals:      5,
	}
}

func (o *Options) normalize() {
	if o.NQuantiles <= 0 {
		o.NQuantiles = 10
	}
	if o.OutputDistribution == "" {
		o.OutputDistribution = "normal"
	}
	if o.QuantileHigh <= o.QuantileLow {
		o.QuantileLow, o.QuantileHigh = 25, 75
	}
	if o.NBins <= 1 {
		o.NBins = 10
	}
	if o.KBinsStrategy == "" {
		o.KBinsStrategy = "uniform"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Pipeline chains a median imputer with one scaling step.
type Pipeline struct {
	strategy string
	steps    []Step
	opts     Options
	fitted   bool
}

// NewPipeline builds an impute+scale pipeline for the named strategy.
func NewPipeline(strategy string, opts Options) (*Pipeline, error) {
	opts.normalize()
	if opts.OutputDistribution != "normal" && opts.OutputDistribution != "uniform" {
		return nil, fmt.Errorf("output distribution must be normal or uniform, got %q", opts.OutputDistribution)
	}

	p := &Pipeline{strategy: strategy, opts: opts}
	if opts.Impute {
		p.steps = append(p.steps, newMedianImputer())
	}

	switch strategy {
	case StrategyMinMax:
		p.steps = append(p.steps, newMinMaxScaler())
	case StrategyQuantile:
		p.steps = append(p.steps, newQuantileTransformer(opts.NQuantiles, opts.OutputDistribution))
	case StrategyZScale:
		p.steps = append(p.steps, newStandardScaler())
	case StrategyRobust:
		p.steps = append(p.steps, newRobustScaler(opts.QuantileLow, opts.QuantileHigh))
	case StrategyKBins:
		p.steps = append(p.steps, newKBinsDiscretizer(opts.NBins, opts.KBinsStrategy))
	case StrategyNone, "":
	default:
		opts.Logger.Error("unknown scaling strategy, data will not be scaled",
			"strategy", strategy, "available", availableStrategies)
	}
	return p, nil
}

func (p *Pipeline) Strategy() string { return p.strategy }
func (p *Pipeline) Fitted() bool     { return p.fitted }

// FitTransform fits every step on m and returns the transformed matrix,
// rounded to KeepNDecimals.
func (p *Pipeline) FitTransform(m *frame.Matrix) (*frame.Matrix, error) {
	cur := m
	for _, step := range p.steps {
		if err := step.Fit(cur); err != nil {
			return nil, err
		}
		next, err := step.Transform(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	p.fitted = true
	if cur == m {
		cur = m.Clone()
	}
	cur.Round(p.opts.KeepNDecimals)
	return cur, nil
}

// Transform replays the fitted pipeline on new data.
func (p *Pipeline) Transform(m *frame.Matrix) (*frame.Matrix, error) {
	if !p.fitted {
		return nil, fmt.Errorf("pipeline with strategy %q is not fitted", p.strategy)
	}
	cur := m
	for _, step := range p.steps {
		next, err := step.Transform(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	if cur == m {
		cur = m.Clone()
	}
	cur.Round(p.opts.KeepNDecimals)
	return cur, nil
}
