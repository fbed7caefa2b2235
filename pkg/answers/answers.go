// Package answers models the per-inspection answer map: one tagged value per
// answered field, keyed by field id. Keeping the variants explicit (text,
// number, multi, file) lets the evaluation engine handle each comparison
// exhaustively instead of switching on untyped data.
package answers

import (
	"strconv"
	"strings"
)

// Kind tags the concrete variant behind a Value.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindMulti  Kind = "multi"
	KindFile   Kind = "file"
)

// Value is a single answer. Implementations are immutable value types; a nil
// Value counts as empty everywhere.
type Value interface {
	Kind() Kind
	// Empty reports whether the answer counts as unanswered: blank string,
	// empty list, or blank file reference. Numbers are never empty.
	Empty() bool
	// String returns the display form of the answer.
	String() string
	// Number returns the numeric form when the answer can carry one.
	Number() (float64, bool)
	// Contains reports whether the answer contains the operand: substring
	// match for text, exact membership for multi values.
	Contains(operand string) bool
}

// Text is a free-text, select, radio, or date answer.
type Text string

func (v Text) Kind() Kind { return KindText }

func (v Text) Empty() bool { return strings.TrimSpace(string(v)) == "" }

func (v Text) String() string { return string(v) }

func (v Text) Number() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	return f, err == nil
}

func (v Text) Contains(operand string) bool {
	return strings.Contains(string(v), operand)
}

// Number is a numeric answer.
type Number float64

func (v Number) Kind() Kind { return KindNumber }

func (v Number) Empty() bool { return false }

func (v Number) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

func (v Number) Number() (float64, bool) { return float64(v), true }

func (v Number) Contains(string) bool { return false }

// Multi is a checkbox-style answer holding zero or more selected options.
type Multi []string

func (v Multi) Kind() Kind { return KindMulti }

func (v Multi) Empty() bool { return len(v) == 0 }

func (v Multi) String() string { return strings.Join(v, ", ") }

func (v Multi) Number() (float64, bool) { return 0, false }

func (v Multi) Contains(operand string) bool {
	for _, item := range v {
		if item == operand {
			return true
		}
	}
	return false
}

// File is an opaque attachment reference (data URI or blob key). Only its
// emptiness is ever inspected.
type File string

func (v File) Kind() Kind { return KindFile }

func (v File) Empty() bool { return strings.TrimSpace(string(v)) == "" }

func (v File) String() string { return string(v) }

func (v File) Number() (float64, bool) { return 0, false }

func (v File) Contains(string) bool { return false }

// Map holds the current answers of one inspection instance, keyed by field
// id. Unanswered fields are simply absent.
type Map map[string]Value

// Empty reports whether the field has no usable answer: key absent, nil
// value, or an empty variant.
func (m Map) Empty(fieldID string) bool {
	value, ok := m[fieldID]
	return !ok || value == nil || value.Empty()
}

// Clone returns a shallow copy. Values are immutable, so a key-level copy is
// a full snapshot.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for id, value := range m {
		out[id] = value
	}
	return out
}
