package template

import (
	"time"

	"github.com/google/uuid"
)

// Clone produces a deep copy of the template under a fresh id, deactivated
// and with reset timestamps. Field ids are preserved on purpose: conditional
// rules refer to them, so rewriting ids would sever every rule in the copy.
func Clone(tpl Template) Template {
	out := tpl
	out.ID = uuid.NewString()
	out.Active = false
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now

	out.Fields = make([]Field, len(tpl.Fields))
	for i, field := range tpl.Fields {
		out.Fields[i] = cloneField(field)
	}
	return out
}

func cloneField(field Field) Field {
	out := field
	if len(field.Options) > 0 {
		out.Options = append([]string(nil), field.Options...)
	}
	if field.Validation != nil {
		validation := *field.Validation
		if field.Validation.Min != nil {
			min := *field.Validation.Min
			validation.Min = &min
		}
		if field.Validation.Max != nil {
			max := *field.Validation.Max
			validation.Max = &max
		}
		out.Validation = &validation
	}
	if field.Rule != nil {
		rule := ConditionalRule{
			Combinator: field.Rule.Combinator,
			Conditions: append([]Condition(nil), field.Rule.Conditions...),
		}
		out.Rule = &rule
	}
	return out
}
