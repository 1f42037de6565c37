package scaler

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/adalundhe/tabgraph/core/frame"
)

// quantileTransformer maps each column through its empirical CDF, optionally
// followed by the standard normal inverse CDF.
type quantileTransformer struct {
	nQuantiles int
	normal     bool
	references [][]float64 // per column, sorted quantile values
	cols       int
	fitted     bool
}

func newQuantileTransformer(nQuantiles int, distribution string) *quantileTransformer {
	return &quantileTransformer{
		nQuantiles: nQuantiles,
		normal:     distribution == "normal",
	}
}

func (s *quantileTransformer) Fit(m *frame.Matrix) error {
	s.cols = m.Cols()
	s.references = make([][]float64, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		col := dropNaN(m.Col(j))
		if len(col) == 0 {
			continue
		}
		sort.Float64s(col)
		n := s.nQuantiles
		if n > len(col) {
			n = len(col)
		}
		refs := make([]float64, n)
		for k := 0; k < n; k++ {
			p := 0.0
			if n > 1 {
				p = float64(k) / float64(n-1)
			}
			refs[k] = stat.Quantile(p, stat.Empirical, col, nil)
		}
		s.references[j] = refs
	}
	s.fitted = true
	return nil
}

func (s *quantileTransformer) Transform(m *frame.Matrix) (*frame.Matrix, error) {
	if err := checkFit(s.fitted, s.cols, m); err != nil {
		return nil, err
	}
	out := m.Clone()
	for j := 0; j < out.Cols(); j++ {
		refs := s.references[j]
		col := out.Col(j)
		for i, v := range col {
			col[i] = s.mapValue(v, refs)
		}
		out.SetCol(j, col)
	}
	return out, nil
}

func (s *quantileTransformer) mapValue(v float64, refs []float64) float64 {
	if len(refs) == 0 || math.IsNaN(v) {
		return v
	}
	p := cdfInterpolate(v, refs)
	if !s.normal {
		return p
	}
	// clip so the probit stays finite at the extremes
	const eps = 1e-7
	p = math.Min(math.Max(p, eps), 1-eps)
	return distuv.UnitNormal.Quantile(p)
}

// cdfInterpolate returns the interpolated empirical CDF position of v within
// the sorted reference quantiles.
func cdfInterpolate(v float64, refs []float64) float64 {
	n := len(refs)
	if v <= refs[0] {
		return 0
	}
	if v >= refs[n-1] {
		return 1
	}
	idx := sort.SearchFloat64s(refs, v)
	lo, hi := refs[idx-1], refs[idx]
	frac := 0.0
	if hi != lo {
		frac = (v - lo) / (hi - lo)
	}
	return (float64(idx-1) + frac) / float64(n-1)
}
