package encoder

import (
	"fmt"
	"sort"

	"github.com/adalundhe/tabgraph/core/frame"
)

// OneHot encodes a single categorical column as one binary indicator column
// per distinct value seen at fit time. Unseen values at transform time light
// no indicator.
type OneHot struct {
	column     string
	categories []string
	index      map[string]int
	fitted     bool
}

func NewOneHot(column string) *OneHot {
	return &OneHot{column: column}
}

func (e *OneHot) Fit(df *frame.DataFrame) error {
	s, err := df.Column(e.column)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{})
	for i := 0; i < s.Len(); i++ {
		v := s.At(i)
		if v.IsMissing() {
			continue
		}
		seen[v.String()] = struct{}{}
	}
	e.categories = make([]string, 0, len(seen))
	for cat := range seen {
		e.categories = append(e.categories, cat)
	}
	sort.Strings(e.categories)
	e.index = make(map[string]int, len(e.categories))
	for i, cat := range e.categories {
		e.index[cat] = i
	}
	e.fitted = true
	return nil
}

func (e *OneHot) Transform(df *frame.DataFrame) (*frame.Matrix, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	s, err := df.Column(e.column)
	if err != nil {
		return nil, err
	}
	m := frame.NewMatrix(e.FeatureNames(), s.Len())
	for i := 0; i < s.Len(); i++ {
		v := s.At(i)
		if v.IsMissing() {
			continue
		}
		if j, ok := e.index[v.String()]; ok {
			m.Set(i, j, 1)
		}
	}
	return m, nil
}

func (e *OneHot) FeatureNames() []string {
	names := make([]string, len(e.categories))
	for i, cat := range e.categories {
		names[i] = fmt.Sprintf("%s_%s", e.column, cat)
	}
	return names
}
