package template

import (
	"errors"
	"fmt"
)

// ErrNotActivatable signals that a template with structural errors was asked
// to become (or stay) active.
var ErrNotActivatable = errors.New("template: structural errors block activation")

// StructuralErrorCode classifies a template-authoring violation.
type StructuralErrorCode string

const (
	StructuralEmptyID          StructuralErrorCode = "empty-id"
	StructuralDuplicateID      StructuralErrorCode = "duplicate-id"
	StructuralMissingOptions   StructuralErrorCode = "missing-options"
	StructuralUnknownReference StructuralErrorCode = "unknown-reference"
	StructuralSelfReference    StructuralErrorCode = "self-reference"
	StructuralRuleCycle        StructuralErrorCode = "rule-cycle"
)

// StructuralError describes one authoring-time violation. Validate collects
// every violation instead of stopping at the first so template authors see
// the full picture in one pass.
type StructuralError struct {
	FieldID string              `json:"fieldId,omitempty"`
	Code    StructuralErrorCode `json:"code"`
	Message string              `json:"message"`
}

func (e StructuralError) Error() string {
	if e.FieldID == "" {
		return fmt.Sprintf("template: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("template: field %q: %s: %s", e.FieldID, e.Code, e.Message)
}

// Validate checks the structural invariants of a template: unique non-empty
// field ids, options present on choice fields, every rule reference resolving
// to a field in the same template, and no field gating itself, directly or
// through a chain of rules. The returned slice is nil when the template is
// structurally sound.
func Validate(tpl Template) []StructuralError {
	var errs []StructuralError

	seen := make(map[string]struct{}, len(tpl.Fields))
	for _, field := range tpl.Fields {
		if field.ID == "" {
			errs = append(errs, StructuralError{
				Code:    StructuralEmptyID,
				Message: "field id is required",
			})
			continue
		}
		if _, dup := seen[field.ID]; dup {
			errs = append(errs, StructuralError{
				FieldID: field.ID,
				Code:    StructuralDuplicateID,
				Message: fmt.Sprintf("field id %q is declared more than once", field.ID),
			})
			continue
		}
		seen[field.ID] = struct{}{}
	}

	for _, field := range tpl.Fields {
		if field.NeedsOptions() && len(field.Options) == 0 {
			errs = append(errs, StructuralError{
				FieldID: field.ID,
				Code:    StructuralMissingOptions,
				Message: fmt.Sprintf("%s field requires at least one option", field.Type),
			})
		}
		if field.Rule == nil {
			continue
		}
		for _, cond := range field.Rule.Conditions {
			if cond.FieldID == field.ID {
				errs = append(errs, StructuralError{
					FieldID: field.ID,
					Code:    StructuralSelfReference,
					Message: "conditional rule references its own field",
				})
				continue
			}
			if _, ok := seen[cond.FieldID]; !ok {
				errs = append(errs, StructuralError{
					FieldID: field.ID,
					Code:    StructuralUnknownReference,
					Message: fmt.Sprintf("conditional rule references unknown field %q", cond.FieldID),
				})
			}
		}
	}

	errs = append(errs, detectRuleCycles(tpl, seen)...)
	return errs
}

// Activatable reports whether the template may carry Active=true. It wraps
// ErrNotActivatable with the first violation for context; callers needing the
// full set should use Validate directly.
func Activatable(tpl Template) error {
	errs := Validate(tpl)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d violation(s), first: %s", ErrNotActivatable, len(errs), errs[0].Message)
}

// detectRuleCycles walks the rule-reference graph looking for loops longer
// than the direct self-reference already reported above. Each field on a
// cycle is reported once, in declaration order.
func detectRuleCycles(tpl Template, known map[string]struct{}) []StructuralError {
	refs := make(map[string][]string, len(tpl.Fields))
	for _, field := range tpl.Fields {
		if field.Rule == nil || field.ID == "" {
			continue
		}
		for _, cond := range field.Rule.Conditions {
			if cond.FieldID == field.ID {
				continue // already reported as self-reference
			}
			if _, ok := known[cond.FieldID]; !ok {
				continue
			}
			refs[field.ID] = append(refs[field.ID], cond.FieldID)
		}
	}

	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(refs))
	onCycle := make(map[string]struct{})

	var visit func(id string, stack []string)
	visit = func(id string, stack []string) {
		color[id] = grey
		stack = append(stack, id)
		for _, next := range refs[id] {
			switch color[next] {
			case white:
				visit(next, stack)
			case grey:
				// everything from the previous occurrence of next is on the loop
				for i := len(stack) - 1; i >= 0; i-- {
					onCycle[stack[i]] = struct{}{}
					if stack[i] == next {
						break
					}
				}
			}
		}
		color[id] = black
	}

	for _, field := range tpl.Fields {
		if color[field.ID] == white {
			if _, hasRefs := refs[field.ID]; hasRefs {
				visit(field.ID, nil)
			}
		}
	}

	var errs []StructuralError
	for _, field := range tpl.Fields {
		if _, ok := onCycle[field.ID]; ok {
			errs = append(errs, StructuralError{
				FieldID: field.ID,
				Code:    StructuralRuleCycle,
				Message: "conditional rule participates in a reference cycle",
			})
		}
	}
	return errs
}
