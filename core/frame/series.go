package frame

// Series is one named column of a record table.
type Series struct {
	name   string
	values []Value
}

func NewSeries(name string, values []Value) *Series {
	return &Series{name: name, values: values}
}

// FloatSeries builds a fully numeric column.
func FloatSeries(name string, values []float64) *Series {
	vs := make([]Value, len(values))
	for i, v := range values {
		vs[i] = Float(v)
	}
	return &Series{name: name, values: vs}
}

// StringSeries builds a fully string-typed column.
func StringSeries(name string, values []string) *Series {
	vs := make([]Value, len(values))
	for i, v := range values {
		vs[i] = String(v)
	}
	return &Series{name: name, values: vs}
}

func (s *Series) Name() string  { return s.name }
func (s *Series) Len() int      { return len(s.values) }
func (s *Series) At(i int) Value { return s.values[i] }

// IsNumeric reports whether every present cell is numeric. A column of only
// missing values counts as numeric, matching the median-impute path.
func (s *Series) IsNumeric() bool {
	for _, v := range s.values {
		if v.IsString() {
			return false
		}
	}
	return true
}

// Floats coerces the column to float64, missing and string cells become NaN.
func (s *Series) Floats() []float64 {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = v.Float()
	}
	return out
}

// Strings coerces every cell to its string form.
func (s *Series) Strings() []string {
	out := make([]string, len(s.values))
	for i, v := range s.values {
		out[i] = v.String()
	}
	return out
}

// NUnique counts distinct present values by their string form.
func (s *Series) NUnique() int {
	seen := make(map[string]struct{}, len(s.values))
	for _, v := range s.values {
		if v.IsMissing() {
			continue
		}
		seen[v.String()] = struct{}{}
	}
	return len(seen)
}

func (s *Series) filter(mask []bool) *Series {
	kept := make([]Value, 0, len(s.values))
	for i, keep := range mask {
		if keep {
			kept = append(kept, s.values[i])
		}
	}
	return &Series{name: s.name, values: kept}
}
