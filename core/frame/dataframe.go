package frame

import (
	"fmt"
)

// DataFrame is an ordered collection of equal-length named columns.
type DataFrame struct {
	order []string
	cols  map[string]*Series
	nrows int
}

// New returns a frame with zero columns and a fixed row count. Row count must
// be carried even without columns so empty targets stay row-aligned.
func New(nrows int) *DataFrame {
	return &DataFrame{cols: make(map[string]*Series), nrows: nrows}
}

// FromSeries builds a frame from columns, which must share one length.
func FromSeries(series ...*Series) (*DataFrame, error) {
	if len(series) == 0 {
		return New(0), nil
	}
	df := New(series[0].Len())
	for _, s := range series {
		if err := df.AddSeries(s); err != nil {
			return nil, err
		}
	}
	return df, nil
}

func (df *DataFrame) AddSeries(s *Series) error {
	if df.NumCols() == 0 && df.nrows == 0 {
		df.nrows = s.Len()
	} else if s.Len() != df.nrows {
		return fmt.Errorf("column %q has %d rows, frame has %d", s.Name(), s.Len(), df.nrows)
	}
	if _, dup := df.cols[s.Name()]; dup {
		return fmt.Errorf("duplicate column %q", s.Name())
	}
	df.order = append(df.order, s.Name())
	df.cols[s.Name()] = s
	return nil
}

func (df *DataFrame) NumRows() int { return df.nrows }
func (df *DataFrame) NumCols() int { return len(df.order) }

// Empty mirrors pandas df.empty: no rows or no columns.
func (df *DataFrame) Empty() bool { return df.nrows == 0 || len(df.order) == 0 }

func (df *DataFrame) Columns() []string {
	out := make([]string, len(df.order))
	copy(out, df.order)
	return out
}

func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.cols[name]
	return ok
}

func (df *DataFrame) Column(name string) (*Series, error) {
	s, ok := df.cols[name]
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	return s, nil
}

// Select returns a new frame with only the named columns, in the given order.
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	out := New(df.nrows)
	for _, name := range names {
		s, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		if err := out.AddSeries(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Drop returns a new frame without the named columns. Unknown names are
// ignored, matching errors="ignore" drops in the original pipeline.
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropped := make(map[string]struct{}, len(names))
	for _, n := range names {
		dropped[n] = struct{}{}
	}
	out := New(df.nrows)
	for _, name := range df.order {
		if _, skip := dropped[name]; skip {
			continue
		}
		out.order = append(out.order, name)
		out.cols[name] = df.cols[name]
	}
	return out
}

// IsAllNumeric reports whether every column is numeric-or-missing.
func (df *DataFrame) IsAllNumeric() bool {
	for _, name := range df.order {
		if !df.cols[name].IsNumeric() {
			return false
		}
	}
	return true
}

// SelectNumeric keeps only the numeric columns, preserving order.
func (df *DataFrame) SelectNumeric() *DataFrame {
	out := New(df.nrows)
	for _, name := range df.order {
		if df.cols[name].IsNumeric() {
			out.order = append(out.order, name)
			out.cols[name] = df.cols[name]
		}
	}
	return out
}

// FilterRows keeps rows where mask is true. Mask length must equal row count.
func (df *DataFrame) FilterRows(mask []bool) (*DataFrame, error) {
	if len(mask) != df.nrows {
		return nil, fmt.Errorf("mask length %d does not match %d rows", len(mask), df.nrows)
	}
	kept := 0
	for _, keep := range mask {
		if keep {
			kept++
		}
	}
	out := New(kept)
	for _, name := range df.order {
		out.order = append(out.order, name)
		out.cols[name] = df.cols[name].filter(mask)
	}
	return out, nil
}

// CastFloat converts an all-numeric frame into a matrix, missing cells become
// NaN for the imputer to fill.
func (df *DataFrame) CastFloat() (*Matrix, error) {
	if !df.IsAllNumeric() {
		return nil, fmt.Errorf("frame has non-numeric columns, cannot cast to float")
	}
	m := NewMatrix(df.Columns(), df.nrows)
	for j, name := range df.order {
		col := df.cols[name]
		for i := 0; i < df.nrows; i++ {
			m.Set(i, j, col.At(i).Float())
		}
	}
	return m, nil
}
