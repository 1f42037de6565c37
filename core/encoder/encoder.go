// Package encoder turns mixed-type record columns into numeric feature
// blocks. Every concrete encoder implements the same two-operation contract
// so orchestrators can hold ordered lists of them instead of branching on
// type at each call site.
package encoder

import (
	"errors"

	"github.com/adalundhe/tabgraph/core/frame"
)

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("encoder is not fitted")

// ErrFeatureDrift is returned when a transform produces a feature count that
// diverges from what was fitted.
var ErrFeatureDrift = errors.New("feature count diverges between fit and transform")

// Encoder is the uniform fit/transform capability pair shared by every
// concrete variant: Identity, OneHot, TopicDecomposition, MultiLabelBinarizer
// and the composite TableVectorizer.
type Encoder interface {
	Fit(df *frame.DataFrame) error
	Transform(df *frame.DataFrame) (*frame.Matrix, error)
	FeatureNames() []string
}

// FitTransform is the common fit-then-transform convenience.
func FitTransform(e Encoder, df *frame.DataFrame) (*frame.Matrix, error) {
	if err := e.Fit(df); err != nil {
		return nil, err
	}
	return e.Transform(df)
}
