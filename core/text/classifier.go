// Package text decides which record columns are free text and encodes them
// into dense embedding or n-gram vectors.
package text

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/adalundhe/tabgraph/core/frame"
)

// IsTextualColumn applies the two-stage heuristic: at least confidence of the
// cells are strings, and the mean word count across the column is at least
// minWords. Non-string cells count zero words.
func IsTextualColumn(s *frame.Series, confidence, minWords float64) bool {
	n := s.Len()
	if n == 0 {
		return false
	}
	stringCells := 0
	words := 0
	for i := 0; i < n; i++ {
		v := s.At(i)
		if !v.IsString() {
			continue
		}
		stringCells++
		words += len(strings.Fields(v.String()))
	}
	if float64(stringCells)/float64(n) < confidence {
		return false
	}
	return float64(words)/float64(n) >= minWords
}

// TextualColumns collects the columns deemed textual. minWords below 1 makes
// no sense for text and is rejected as a configuration error.
func TextualColumns(df *frame.DataFrame, confidence, minWords float64, logger *slog.Logger) ([]string, error) {
	if minWords <= 1 {
		return nil, fmt.Errorf("min_words must be greater than 1, got %g", minWords)
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("confidence must be in (0, 1), got %g", confidence)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var cols []string
	for _, name := range df.Columns() {
		s, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		if IsTextualColumn(s, confidence, minWords) {
			cols = append(cols, name)
		}
	}
	if len(cols) == 0 {
		logger.Debug("no textual columns found")
	}
	return cols, nil
}

// ConcatText joins the textual columns of each row into one string, columns
// separated by " . " so sentence boundaries survive the merge. Missing cells
// render as "nan", keeping concatenated documents stable for encoder replay.
func ConcatText(df *frame.DataFrame, textCols []string) ([]string, error) {
	out := make([]string, df.NumRows())
	for k, name := range textCols {
		s, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < s.Len(); i++ {
			cell := s.At(i).String()
			if s.At(i).IsMissing() {
				cell = "nan"
			}
			if k == 0 {
				out[i] = cell
			} else {
				out[i] += " . " + cell
			}
		}
	}
	return out, nil
}
