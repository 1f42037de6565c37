package frame

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense float64 matrix with named columns. A matrix may have zero
// columns but a nonzero row count, which is how empty targets stay aligned
// with their feature matrix.
type Matrix struct {
	columns []string
	rows    int
	data    *mat.Dense // nil when there are no columns
}

func NewMatrix(columns []string, rows int) *Matrix {
	m := &Matrix{columns: append([]string(nil), columns...), rows: rows}
	if len(columns) > 0 && rows > 0 {
		m.data = mat.NewDense(rows, len(columns), nil)
	}
	return m
}

// MatrixFromDense adopts an existing dense matrix. Column count must match.
func MatrixFromDense(columns []string, data *mat.Dense) (*Matrix, error) {
	r, c := data.Dims()
	if c != len(columns) {
		return nil, fmt.Errorf("dense matrix has %d columns, %d names given", c, len(columns))
	}
	return &Matrix{columns: append([]string(nil), columns...), rows: r, data: data}, nil
}

// EmptyMatrix is a zero-column matrix carrying only a row count.
func EmptyMatrix(rows int) *Matrix {
	return &Matrix{rows: rows}
}

func (m *Matrix) Rows() int   { return m.rows }
func (m *Matrix) Cols() int   { return len(m.columns) }
func (m *Matrix) Empty() bool { return len(m.columns) == 0 || m.rows == 0 }

func (m *Matrix) ColumnNames() []string {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out
}

func (m *Matrix) At(i, j int) float64 { return m.data.At(i, j) }
func (m *Matrix) Set(i, j int, v float64) {
	m.data.Set(i, j, v)
}

// Dense exposes the backing matrix, nil when the matrix has no columns.
func (m *Matrix) Dense() *mat.Dense { return m.data }

// Col copies column j out of the matrix.
func (m *Matrix) Col(j int) []float64 {
	out := make([]float64, m.rows)
	if m.data != nil {
		mat.Col(out, j, m.data)
	}
	return out
}

// SetCol writes a full column. A zero-row matrix has no backing storage, so
// the write is a no-op.
func (m *Matrix) SetCol(j int, values []float64) {
	if m.data == nil {
		return
	}
	m.data.SetCol(j, values)
}

// Row copies row i out of the matrix.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, len(m.columns))
	mat.Row(out, i, m.data)
	return out
}

// Clone deep-copies the matrix.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{columns: m.ColumnNames(), rows: m.rows}
	if m.data != nil {
		out.data = mat.DenseCopyOf(m.data)
	}
	return out
}

// Round truncates every entry to the given number of decimals. Scalers leave
// tiny negative residuals (-1e-17) that break non-negative distance metrics
// downstream, so fused matrices are rounded after fitting.
func (m *Matrix) Round(decimals int) {
	if m.data == nil || decimals <= 0 {
		return
	}
	scale := math.Pow(10, float64(decimals))
	raw := m.data.RawMatrix()
	for i := range raw.Data {
		raw.Data[i] = math.Round(raw.Data[i]*scale) / scale
	}
}

// FillMissing replaces NaN entries with the given value.
func (m *Matrix) FillMissing(v float64) {
	if m.data == nil {
		return
	}
	raw := m.data.RawMatrix()
	for i := range raw.Data {
		if math.IsNaN(raw.Data[i]) {
			raw.Data[i] = v
		}
	}
}

// HasNaN reports whether any entry is NaN.
func (m *Matrix) HasNaN() bool {
	if m.data == nil {
		return false
	}
	raw := m.data.RawMatrix()
	for _, v := range raw.Data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// ConcatHorizontal joins matrices left to right. Zero-column operands are
// skipped; row counts of the remaining operands must agree.
func ConcatHorizontal(parts ...*Matrix) (*Matrix, error) {
	var kept []*Matrix
	rows := -1
	for _, p := range parts {
		if p == nil || p.Cols() == 0 {
			continue
		}
		if rows >= 0 && p.rows != rows {
			return nil, fmt.Errorf("row mismatch in concat: %d vs %d", rows, p.rows)
		}
		rows = p.rows
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		r := 0
		for _, p := range parts {
			if p != nil && p.rows > r {
				r = p.rows
			}
		}
		return EmptyMatrix(r), nil
	}

	var columns []string
	for _, p := range kept {
		columns = append(columns, p.columns...)
	}
	out := NewMatrix(columns, rows)
	j := 0
	for _, p := range kept {
		for c := 0; c < p.Cols(); c++ {
			out.SetCol(j, p.Col(c))
			j++
		}
	}
	return out, nil
}

// ToDataFrame converts the matrix back into a record table.
func (m *Matrix) ToDataFrame() *DataFrame {
	df := New(m.rows)
	for j, name := range m.columns {
		df.order = append(df.order, name)
		df.cols[name] = FloatSeries(name, m.Col(j))
	}
	return df
}
