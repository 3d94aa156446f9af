package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a cell.
type Kind uint8

const (
	// KindEmpty is a cell the source did not report.
	KindEmpty Kind = iota
	KindString
	KindNumber
	// KindUndefined is a cell whose value cannot be defined, e.g. a ratio
	// with a zero denominator.
	KindUndefined
)

// UndefinedMarker is how undefined cells are rendered when published.
const UndefinedMarker = "N/A"

// Value is a single cell of a Table.
type Value struct {
	kind Kind
	str  string
	num  float64
}

func Empty() Value {
	return Value{kind: KindEmpty}
}

func Undefined() Value {
	return Value{kind: KindUndefined}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number creates a numeric cell, NaN and infinities are not numbers anyone
// can publish so they become Undefined.
func Number(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Undefined()
	}
	return Value{kind: KindNumber, num: n}
}

// Parse interprets raw text from a source file: blank text is Empty, text
// that parses as a float is a Number, anything else is kept as a String.
func Parse(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Empty()
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
	if err != nil {
		return String(raw)
	}
	return Number(n)
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty
}

func (v Value) IsUndefined() bool {
	return v.kind == KindUndefined
}

// Float returns the numeric value of a cell, strings holding a number are
// converted as well.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Text returns the string form of a cell without rendering markers, it is
// what a key or a date column is compared by.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return ""
}

// Format renders a cell for publishing.
func (v Value) Format() string {
	if v.kind == KindUndefined {
		return UndefinedMarker
	}
	return v.Text()
}

func (v Value) String() string {
	return v.Format()
}

// Equal compares kind and contents.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && v.num == o.num
}
