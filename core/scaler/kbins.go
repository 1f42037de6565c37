package scaler

import (
	"math"
	"sort"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/stat"

	"github.com/adalundhe/tabgraph/core/frame"
)

// kbinsDiscretizer buckets each column into nBins ordinal bins. Edges come
// from equal-width spans ("uniform") or empirical quantiles ("quantile").
type kbinsDiscretizer struct {
	nBins    int
	strategy string
	edges    [][]float64 // per column, nBins-1 interior cut points
	cols     int
	fitted   bool
}

func newKBinsDiscretizer(nBins int, strategy string) *kbinsDiscretizer {
	return &kbinsDiscretizer{nBins: nBins, strategy: strategy}
}

func (s *kbinsDiscretizer) Fit(m *frame.Matrix) error {
	s.cols = m.Cols()
	s.edges = make([][]float64, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		col := dropNaN(m.Col(j))
		if len(col) == 0 {
			continue
		}
		s.edges[j] = s.fitColumn(col)
	}
	s.fitted = true
	return nil
}

func (s *kbinsDiscretizer) fitColumn(col []float64) []float64 {
	cuts := make([]float64, 0, s.nBins-1)
	if s.strategy == "quantile" {
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		for k := 1; k < s.nBins; k++ {
			p := float64(k) / float64(s.nBins)
			cuts = append(cuts, stat.Quantile(p, stat.Empirical, sorted, nil))
		}
		return cuts
	}
	lo, hi := vek.Min(col), vek.Max(col)
	width := (hi - lo) / float64(s.nBins)
	for k := 1; k < s.nBins; k++ {
		cuts = append(cuts, lo+width*float64(k))
	}
	return cuts
}

func (s *kbinsDiscretizer) Transform(m *frame.Matrix) (*frame.Matrix, error) {
	if err := checkFit(s.fitted, s.cols, m); err != nil {
		return nil, err
	}
	out := m.Clone()
	for j := 0; j < out.Cols(); j++ {
		cuts := s.edges[j]
		col := out.Col(j)
		for i, v := range col {
			if math.IsNaN(v) {
				continue
			}
			col[i] = float64(digitize(v, cuts))
		}
		out.SetCol(j, col)
	}
	return out, nil
}

func digitize(v float64, cuts []float64) int {
	return sort.SearchFloat64s(cuts, v+1e-12)
}
