package scaler

import (
	"fmt"
	"math"
	"sort"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/stat"

	"github.com/adalundhe/tabgraph/core/frame"
)

// medianImputer replaces NaN cells with the per-column median seen at fit.
type medianImputer struct {
	medians []float64
	cols    int
	fitted  bool
}

func newMedianImputer() *medianImputer { return &medianImputer{} }

func (s *medianImputer) Fit(m *frame.Matrix) error {
	s.cols = m.Cols()
	s.medians = make([]float64, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		s.medians[j] = nanMedian(m.Col(j))
	}
	s.fitted = true
	return nil
}

func (s *medianImputer) Transform(m *frame.Matrix) (*frame.Matrix, error) {
	if err := checkFit(s.fitted, s.cols, m); err != nil {
		return nil, err
	}
	out := m.Clone()
	for j := 0; j < out.Cols(); j++ {
		col := out.Col(j)
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = s.medians[j]
			}
		}
		out.SetCol(j, col)
	}
	return out, nil
}

// minMaxScaler rescales each column into [0, 1].
type minMaxScaler struct {
	mins, maxs []float64
	cols       int
	fitted     bool
}

func newMinMaxScaler() *minMaxScaler { return &minMaxScaler{} }

func (s *minMaxScaler) Fit(m *frame.Matrix) error {
	s.cols = m.Cols()
	s.mins = make([]float64, m.Cols())
	s.maxs = make([]float64, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		col := m.Col(j)
		if len(col) == 0 {
			continue
		}
		s.mins[j] = vek.Min(col)
		s.maxs[j] = vek.Max(col)
	}
	s.fitted = true
	return nil
}

func (s *minMaxScaler) Transform(m *frame.Matrix) (*frame.Matrix, error) {
	if err := checkFit(s.fitted, s.cols, m); err != nil {
		return nil, err
	}
	out := m.Clone()
	for j := 0; j < out.Cols(); j++ {
		span := s.maxs[j] - s.mins[j]
		col := out.Col(j)
		vek.SubNumber_Inplace(col, s.mins[j])
		if span != 0 {
			vek.DivNumber_Inplace(col, span)
		}
		out.SetCol(j, col)
	}
	return out, nil
}

// standardScaler centers each column to zero mean, unit variance.
type standardScaler struct {
	means, stds []float64
	cols        int
	fitted      bool
}

func newStandardScaler() *standardScaler { return &standardScaler{} }

func (s *standardScaler) Fit(m *frame.Matrix) error {
	s.cols = m.Cols()
	s.means = make([]float64, m.Cols())
	s.stds = make([]float64, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		col := m.Col(j)
		if len(col) == 0 {
			continue
		}
		s.means[j] = vek.Mean(col)
		s.stds[j] = stat.StdDev(col, nil)
	}
	s.fitted = true
	return nil
}

func (s *standardScaler) Transform(m *frame.Matrix) (*frame.Matrix, error) {
	if err := checkFit(s.fitted, s.cols, m); err != nil {
		return nil, err
	}
	out := m.Clone()
	for j := 0; j < out.Cols(); j++ {
		col := out.Col(j)
		vek.SubNumber_Inplace(col, s.means[j])
		if sd := s.stds[j]; sd != 0 && !math.IsNaN(sd) {
			vek.DivNumber_Inplace(col, sd)
		}
		out.SetCol(j, col)
	}
	return out, nil
}

// robustScaler centers on the median and scales by the interquartile range,
// which keeps outliers like [1,2,3,4,100] from dominating.
type robustScaler struct {
	low, high float64 // percentile bounds, e.g. 25 and 75
	medians   []float64
	iqrs      []float64
	cols      int
	fitted    bool
}

func newRobustScaler(low, high float64) *robustScaler {
	return &robustScaler{low: low, high: high}
}

func (s *robustScaler) Fit(m *frame.Matrix) error {
	s.cols = m.Cols()
	s.medians = make([]float64, m.Cols())
	s.iqrs = make([]float64, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		col := dropNaN(m.Col(j))
		if len(col) == 0 {
			continue
		}
		sort.Float64s(col)
		s.medians[j] = stat.Quantile(0.5, stat.Empirical, col, nil)
		q1 := stat.Quantile(s.low/100, stat.Empirical, col, nil)
		q3 := stat.Quantile(s.high/100, stat.Empirical, col, nil)
		s.iqrs[j] = q3 - q1
	}
	s.fitted = true
	return nil
}

func (s *robustScaler) Transform(m *frame.Matrix) (*frame.Matrix, error) {
	if err := checkFit(s.fitted, s.cols, m); err != nil {
		return nil, err
	}
	out := m.Clone()
	for j := 0; j < out.Cols(); j++ {
		col := out.Col(j)
		vek.SubNumber_Inplace(col, s.medians[j])
		if iqr := s.iqrs[j]; iqr != 0 {
			vek.DivNumber_Inplace(col, iqr)
		}
		out.SetCol(j, col)
	}
	return out, nil
}

func checkFit(fitted bool, cols int, m *frame.Matrix) error {
	if !fitted {
		return fmt.Errorf("scaling step is not fitted")
	}
	if m.Cols() != cols {
		return fmt.Errorf("fitted on %d columns, got %d", cols, m.Cols())
	}
	return nil
}

func nanMedian(values []float64) float64 {
	clean := dropNaN(values)
	if len(clean) == 0 {
		return 0
	}
	sort.Float64s(clean)
	return stat.Quantile(0.5, stat.Empirical, clean, nil)
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
