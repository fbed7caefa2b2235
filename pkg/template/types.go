package template

import (
	"sort"
	"time"
)

// FieldType enumerates the input kinds an inspection field can declare.
type FieldType string

const (
	FieldTypeShortText     FieldType = "short-text"
	FieldTypeLongText      FieldType = "long-text"
	FieldTypeNumber        FieldType = "number"
	FieldTypeSelect        FieldType = "single-select"
	FieldTypeRadio         FieldType = "radio"
	FieldTypeCheckbox      FieldType = "checkbox"
	FieldTypeDate          FieldType = "date"
	FieldTypeFile          FieldType = "file"
	FieldTypeSectionHeader FieldType = "section-header"
)

// Operator identifies how a condition compares a referenced answer against its
// operand. Unknown operators evaluate to false rather than erroring so a
// template authored against a newer operator set degrades instead of breaking
// a live form.
type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "not-equals"
	OperatorIsEmpty     Operator = "is-empty"
	OperatorIsNotEmpty  Operator = "is-not-empty"
	OperatorContains    Operator = "contains"
	OperatorGreaterThan Operator = "greater-than"
	OperatorLessThan    Operator = "less-than"
)

// Combinator joins the clause results of a conditional rule.
type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

// Condition is one clause of a conditional rule. FieldID may reference any
// field in the same template, including fields declared later; resolution
// happens against the answer map, never declaration order. Value is ignored
// for is-empty / is-not-empty.
type Condition struct {
	FieldID  string   `json:"fieldId" yaml:"fieldId"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionalRule gates a field's visibility on other fields' answers. An
// empty Combinator means AND.
type ConditionalRule struct {
	Combinator Combinator  `json:"combinator,omitempty" yaml:"combinator,omitempty"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// Constraints holds the optional validation block of a field. Min and Max
// apply to numeric answers, Pattern to string answers. Message overrides the
// default error text when set.
type Constraints struct {
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Field models one entry in a template's ordered field list.
type Field struct {
	ID          string           `json:"id" yaml:"id"`
	Type        FieldType        `json:"type" yaml:"type"`
	Label       string           `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []string         `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  *Constraints     `json:"validation,omitempty" yaml:"validation,omitempty"`
	Rule        *ConditionalRule `json:"conditionalRule,omitempty" yaml:"conditionalRule,omitempty"`
	Order       int              `json:"order,omitempty" yaml:"order,omitempty"`
	Section     string           `json:"section,omitempty" yaml:"section,omitempty"`
}

// IsInput reports whether the field collects an answer. Section headers are
// organisational markers only.
func (f Field) IsInput() bool {
	return f.Type != FieldTypeSectionHeader
}

// NeedsOptions reports whether the field type requires a non-empty option
// list.
func (f Field) NeedsOptions() bool {
	switch f.Type {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// MultiValued reports whether the field collects more than one value.
func (f Field) MultiValued() bool {
	return f.Type == FieldTypeCheckbox
}

// Template is a reusable, versioned definition of an inspection form.
type Template struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Version     int       `json:"version" yaml:"version"`
	Active      bool      `json:"active" yaml:"active"`
	Fields      []Field   `json:"fields" yaml:"fields"`
	CreatedBy   string    `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Field looks up a field by id.
func (t Template) Field(id string) (Field, bool) {
	for _, field := range t.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// SortedFields returns the fields in render sequence: Order ascending, ties
// broken by declaration position.
func (t Template) SortedFields() []Field {
	out := append([]Field(nil), t.Fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
