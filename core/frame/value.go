package frame

import (
	"math"
	"strconv"
)

// Kind discriminates the scalar types a record table cell can hold.
type Kind uint8

const (
	KindMissing Kind = iota
	KindFloat
	KindString
)

// Value is a single record table cell: numeric, string, or missing.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Missing is the absent-value sentinel.
var Missing = Value{}

func Float(v float64) Value {
	if math.IsNaN(v) {
		return Missing
	}
	return Value{kind: KindFloat, num: v}
}

func Int(v int) Value {
	return Value{kind: KindFloat, num: float64(v)}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Bool(b bool) Value {
	if b {
		return Value{kind: KindFloat, num: 1}
	}
	return Value{kind: KindFloat, num: 0}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsNumeric() bool { return v.kind == KindFloat }

// Float returns the numeric value, or NaN for strings and missing cells.
func (v Value) Float() float64 {
	if v.kind != KindFloat {
		return math.NaN()
	}
	return v.num
}

// String renders the cell the way the text concatenators expect: numbers via
// strconv, missing cells as empty strings.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindFloat:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	default:
		return ""
	}
}
