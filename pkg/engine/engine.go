// Package engine evaluates a form template against a live answer map: which
// fields are currently visible, and which visible answers violate their
// constraints. Both operations are pure functions of (template, answers) and
// never panic on malformed input; a form-filling session runs them on every
// keystroke and must not crash mid-entry.
package engine

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/template"
)

// ErrorCode classifies an answer-time validation failure.
type ErrorCode string

const (
	ErrorMissingRequired ErrorCode = "missing-required"
	ErrorPatternMismatch ErrorCode = "pattern-mismatch"
	ErrorOutOfRange      ErrorCode = "out-of-range"
	ErrorTypeMismatch    ErrorCode = "type-mismatch"
)

// FieldError is one per-field validation failure. Errors are always collected
// into a complete list; they block submission, never continued editing.
type FieldError struct {
	FieldID string    `json:"fieldId"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("engine: field %q: %s: %s", e.FieldID, e.Code, e.Message)
}

// Result bundles one evaluation pass.
type Result struct {
	// Visibility maps every field id to whether it is currently shown.
	Visibility map[string]bool
	// Errors holds the complete validation failure set for visible fields.
	Errors []FieldError
	// Complete is true when no visible field is in error.
	Complete bool
}

// Visible reports the visibility of a single field id.
func (r Result) Visible(fieldID string) bool {
	return r.Visibility[fieldID]
}

// ErrorsFor returns the failures recorded against one field.
func (r Result) ErrorsFor(fieldID string) []FieldError {
	var out []FieldError
	for _, err := range r.Errors {
		if err.FieldID == fieldID {
			out = append(out, err)
		}
	}
	return out
}

// Visibility computes the per-field visibility map. Fields without a rule are
// always visible, section headers included. A rule referencing a currently
// hidden field still reads whatever the answer map holds for it, stale or
// absent, so the result stays a pure function of (template, answers) with no
// fixpoint iteration.
func Visibility(tpl template.Template, ans answers.Map) map[string]bool {
	out := make(map[string]bool, len(tpl.Fields))
	for _, field := range tpl.Fields {
		out[field.ID] = fieldVisible(field, ans)
	}
	return out
}

func fieldVisible(field template.Field, ans answers.Map) bool {
	if field.Rule == nil || len(field.Rule.Conditions) == 0 {
		return true
	}
	if field.Rule.Combinator == template.CombinatorOr {
		for _, cond := range field.Rule.Conditions {
			if evalCondition(cond, ans) {
				return true
			}
		}
		return false
	}
	// AND is the default combinator
	for _, cond := range field.Rule.Conditions {
		if !evalCondition(cond, ans) {
			return false
		}
	}
	return true
}

// ValidateAnswers checks every currently visible input field against its
// required flag and validation constraints. Hidden fields impose no
// constraint even when required. The complete error set is returned so a
// caller can surface every problem at once.
func ValidateAnswers(tpl template.Template, ans answers.Map) []FieldError {
	visibility := Visibility(tpl, ans)

	var errs []FieldError
	for _, field := range tpl.Fields {
		if !visibility[field.ID] || !field.IsInput() {
			continue
		}
		errs = append(errs, validateField(field, ans)...)
	}
	return errs
}

// Evaluate runs both passes and reports completeness.
func Evaluate(tpl template.Template, ans answers.Map) Result {
	errs := ValidateAnswers(tpl, ans)
	return Result{
		Visibility: Visibility(tpl, ans),
		Errors:     errs,
		Complete:   len(errs) == 0,
	}
}

func validateField(field template.Field, ans answers.Map) []FieldError {
	if ans.Empty(field.ID) {
		if field.Required {
			return []FieldError{{
				FieldID: field.ID,
				Code:    ErrorMissingRequired,
				Message: requiredMessage(field),
			}}
		}
		return nil
	}

	value := ans[field.ID]
	var errs []FieldError

	if field.Type == template.FieldTypeNumber {
		if _, ok := value.Number(); !ok {
			errs = append(errs, FieldError{
				FieldID: field.ID,
				Code:    ErrorTypeMismatch,
				Message: "answer is not numeric",
			})
			// range checks are meaningless without a number
			return append(errs, patternErrors(field, value)...)
		}
	}

	// Min/max apply to any field carrying them, as long as the answer reads
	// as a number; rangeErrors no-ops otherwise.
	errs = append(errs, rangeErrors(field, value)...)
	errs = append(errs, patternErrors(field, value)...)
	return errs
}

func rangeErrors(field template.Field, value answers.Value) []FieldError {
	if field.Validation == nil {
		return nil
	}
	n, ok := value.Number()
	if !ok {
		return nil
	}

	v := field.Validation
	if (v.Min != nil && n < *v.Min) || (v.Max != nil && n > *v.Max) {
		return []FieldError{{
			FieldID: field.ID,
			Code:    ErrorOutOfRange,
			Message: rangeMessage(field, v),
		}}
	}
	return nil
}

func patternErrors(field template.Field, value answers.Value) []FieldError {
	if field.Validation == nil || field.Validation.Pattern == "" {
		return nil
	}
	if value.Kind() != answers.KindText {
		return nil
	}

	re, err := regexp.Compile(field.Validation.Pattern)
	if err != nil {
		// an unparseable pattern must not break data entry
		return nil
	}
	if re.MatchString(value.String()) {
		return nil
	}

	message := field.Validation.Message
	if message == "" {
		message = fmt.Sprintf("value does not match pattern %q", field.Validation.Pattern)
	}
	return []FieldError{{
		FieldID: field.ID,
		Code:    ErrorPatternMismatch,
		Message: message,
	}}
}

func requiredMessage(field template.Field) string {
	label := field.Label
	if label == "" {
		label = field.ID
	}
	return fmt.Sprintf("%s is required", label)
}

func rangeMessage(field template.Field, v *template.Constraints) string {
	if v.Message != "" {
		return v.Message
	}
	switch {
	case v.Min != nil && v.Max != nil:
		return fmt.Sprintf("value must be between %v and %v", *v.Min, *v.Max)
	case v.Min != nil:
		return fmt.Sprintf("value must be at least %v", *v.Min)
	default:
		return fmt.Sprintf("value must be at most %v", *v.Max)
	}
}
