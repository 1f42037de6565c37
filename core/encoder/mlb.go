package encoder

import (
	"fmt"
	"sort"

	"github.com/adalundhe/tabgraph/core/frame"
)

// MultiLabelBinarizer represents each edge's (source, destination) pair as a
// binary indicator vector: one float column per distinct pair observed at fit
// time. Pairs never seen during fit produce an all-zero row at transform.
type MultiLabelBinarizer struct {
	src, dst string
	classes  []string
	index    map[string]int
	fitted   bool
}

func NewMultiLabelBinarizer(src, dst string) *MultiLabelBinarizer {
	return &MultiLabelBinarizer{src: src, dst: dst}
}

func pairLabel(src, dst string) string {
	return fmt.Sprintf("(%s, %s)", src, dst)
}

func (e *MultiLabelBinarizer) pairs(df *frame.DataFrame) ([]string, error) {
	srcCol, err := df.Column(e.src)
	if err != nil {
		return nil, err
	}
	dstCol, err := df.Column(e.dst)
	if err != nil {
		return nil, err
	}
	labels := make([]string, srcCol.Len())
	for i := range labels {
		labels[i] = pairLabel(srcCol.At(i).String(), dstCol.At(i).String())
	}
	return labels, nil
}

func (e *MultiLabelBinarizer) Fit(df *frame.DataFrame) error {
	labels, err := e.pairs(df)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	e.classes = make([]string, 0, len(seen))
	for l := range seen {
		e.classes = append(e.classes, l)
	}
	sort.Strings(e.classes)
	e.index = make(map[string]int, len(e.classes))
	for i, l := range e.classes {
		e.index[l] = i
	}
	e.fitted = true
	return nil
}

func (e *MultiLabelBinarizer) Transform(df *frame.DataFrame) (*frame.Matrix, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	labels, err := e.pairs(df)
	if err != nil {
		return nil, err
	}
	m := frame.NewMatrix(e.FeatureNames(), len(labels))
	for i, l := range labels {
		if j, ok := e.index[l]; ok {
			m.Set(i, j, 1)
		}
	}
	return m, nil
}

func (e *MultiLabelBinarizer) FeatureNames() []string {
	return append([]string(nil), e.classes...)
}

// Classes exposes the learned pair labels in column order.
func (e *MultiLabelBinarizer) Classes() []string {
	return e.FeatureNames()
}
