package text

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/adalundhe/tabgraph/core/frame"
)

// NGramPipeline is the count-vectorize + tf-idf weighting pipeline for the
// n-gram text mode. The vocabulary and document frequencies are fixed at fit
// time; Transform reuses them on unseen documents.
type NGramPipeline struct {
	NGramMin int
	NGramMax int
	MaxDF    float64 // drop terms present in more than this fraction of docs
	MinDF    int     // drop terms present in fewer than this many docs

	vocab      []string
	vocabIndex map[string]int
	idf        []float64
	fitted     bool
}

func NewNGramPipeline(ngramMin, ngramMax int, maxDF float64, minDF int) (*NGramPipeline, error) {
	if ngramMin < 1 || ngramMax < ngramMin {
		return nil, fmt.Errorf("invalid ngram range (%d, %d)", ngramMin, ngramMax)
	}
	if maxDF <= 0 || maxDF > 1 {
		return nil, fmt.Errorf("max_df must be in (0, 1], got %g", maxDF)
	}
	if minDF < 1 {
		minDF = 1
	}
	return &NGramPipeline{NGramMin: ngramMin, NGramMax: ngramMax, MaxDF: maxDF, MinDF: minDF}, nil
}

// Fit learns the vocabulary and inverse document frequencies from docs.
func (p *NGramPipeline) Fit(docs []string) error {
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range p.terms(doc) {
			seen[term] = struct{}{}
		}
		for term := range seen {
			docFreq[term]++
		}
	}

	nDocs := len(docs)
	p.vocab = p.vocab[:0]
	for term, df := range docFreq {
		if df < p.MinDF {
			continue
		}
		if nDocs > 0 && float64(df)/float64(nDocs) > p.MaxDF {
			continue
		}
		p.vocab = append(p.vocab, term)
	}
	sort.Strings(p.vocab)

	p.vocabIndex = make(map[string]int, len(p.vocab))
	p.idf = make([]float64, len(p.vocab))
	for i, term := range p.vocab {
		p.vocabIndex[term] = i
		// smoothed idf, matching the standard tf-idf transformer
		p.idf[i] = math.Log(float64(1+nDocs)/float64(1+docFreq[term])) + 1
	}
	p.fitted = true
	return nil
}

// Transform maps docs onto the fitted vocabulary as l2-normalized tf-idf
// rows. Out-of-vocabulary terms are dropped.
func (p *NGramPipeline) Transform(docs []string) (*frame.Matrix, error) {
	if !p.fitted {
		return nil, fmt.Errorf("ngram pipeline is not fitted")
	}
	m := frame.NewMatrix(p.Vocabulary(), len(docs))
	for i, doc := range docs {
		row := make(map[int]float64)
		for _, term := range p.terms(doc) {
			if j, ok := p.vocabIndex[term]; ok {
				row[j]++
			}
		}
		var norm float64
		for j, tf := range row {
			w := tf * p.idf[j]
			row[j] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for j, w := range row {
			m.Set(i, j, w/norm)
		}
	}
	return m, nil
}

func (p *NGramPipeline) FitTransform(docs []string) (*frame.Matrix, error) {
	if err := p.Fit(docs); err != nil {
		return nil, err
	}
	return p.Transform(docs)
}

// Vocabulary returns the learned terms in column order.
func (p *NGramPipeline) Vocabulary() []string {
	return append([]string(nil), p.vocab...)
}

func (p *NGramPipeline) Fitted() bool { return p.fitted }

// terms produces word n-grams for every n in the configured range.
func (p *NGramPipeline) terms(doc string) []string {
	words := wordTokens(doc)
	var out []string
	for n := p.NGramMin; n <= p.NGramMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}
	return out
}
