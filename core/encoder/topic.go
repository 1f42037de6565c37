package encoder

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/adalundhe/tabgraph/core/frame"
)

const topicNGramSize = 3

// TopicDecomposition maps a high-cardinality categorical column to a fixed
// number of latent topic weights. Values are counted as character trigram
// vectors and factorized with a truncated SVD; the right singular vectors
// become the topic components reused at transform time.
type TopicDecomposition struct {
	column     string
	nTopics    int
	vocab      []string
	vocabIndex map[string]int
	components *mat.Dense // vocab x nTopics
	fitted     bool
}

func NewTopicDecomposition(column string, nTopics int) *TopicDecomposition {
	return &TopicDecomposition{column: column, nTopics: nTopics}
}

func (e *TopicDecomposition) Fit(df *frame.DataFrame) error {
	s, err := df.Column(e.column)
	if err != nil {
		return err
	}
	if e.nTopics <= 0 {
		return fmt.Errorf("topic count must be positive, got %d", e.nTopics)
	}

	values := s.Strings()
	vocabSet := make(map[string]struct{})
	for _, v := range values {
		for _, g := range charNGrams(v, topicNGramSize) {
			vocabSet[g] = struct{}{}
		}
	}
	e.vocab = make([]string, 0, len(vocabSet))
	for g := range vocabSet {
		e.vocab = append(e.vocab, g)
	}
	sort.Strings(e.vocab)
	e.vocabIndex = make(map[string]int, len(e.vocab))
	for i, g := range e.vocab {
		e.vocabIndex[g] = i
	}

	if len(e.vocab) == 0 {
		// column of empty strings, topics are all zero
		e.components = nil
		e.fitted = true
		return nil
	}

	counts := e.countMatrix(values)

	var svd mat.SVD
	if ok := svd.Factorize(counts, mat.SVDThin); !ok {
		return fmt.Errorf("svd factorization failed for column %q", e.column)
	}
	var v mat.Dense
	svd.VTo(&v)
	_, rank := v.Dims()

	e.components = mat.NewDense(len(e.vocab), e.nTopics, nil)
	for k := 0; k < e.nTopics && k < rank; k++ {
		for i := 0; i < len(e.vocab); i++ {
			e.components.Set(i, k, v.At(i, k))
		}
	}
	e.fitted = true
	return nil
}

func (e *TopicDecomposition) Transform(df *frame.DataFrame) (*frame.Matrix, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	s, err := df.Column(e.column)
	if err != nil {
		return nil, err
	}
	out := frame.NewMatrix(e.FeatureNames(), s.Len())
	if e.components == nil || s.Len() == 0 {
		return out, nil
	}
	counts := e.countMatrix(s.Strings())
	var proj mat.Dense
	proj.Mul(counts, e.components)
	for i := 0; i < s.Len(); i++ {
		for k := 0; k < e.nTopics; k++ {
			out.Set(i, k, proj.At(i, k))
		}
	}
	return out, nil
}

func (e *TopicDecomposition) FeatureNames() []string {
	names := make([]string, e.nTopics)
	for k := range names {
		names[k] = fmt.Sprintf("%s_topic_%d", e.column, k)
	}
	return names
}

// countMatrix builds the l2-normalized trigram count matrix for values using
// the fitted vocabulary. Out-of-vocabulary trigrams are dropped.
func (e *TopicDecomposition) countMatrix(values []string) *mat.Dense {
	counts := mat.NewDense(len(values), len(e.vocab), nil)
	for i, v := range values {
		var norm float64
		row := make(map[int]float64)
		for _, g := range charNGrams(v, topicNGramSize) {
			if j, ok := e.vocabIndex[g]; ok {
				row[j]++
			}
		}
		for _, c := range row {
			norm += c * c
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for j, c := range row {
			counts.Set(i, j, c/norm)
		}
	}
	return counts
}

func charNGrams(s string, n int) []string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) < n {
		return []string{string(runes)}
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}
