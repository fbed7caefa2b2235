package engine

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/template"
)

// evalCondition resolves one rule clause against the current answer map.
// Every anomaly (absent answer, non-numeric comparison, unknown operator)
// degrades to a deterministic boolean instead of an error.
func evalCondition(cond template.Condition, ans answers.Map) bool {
	value, ok := ans[cond.FieldID]
	if value != nil && value.Empty() {
		// a blank answer behaves like no answer at all
		ok = false
	}

	switch cond.Operator {
	case template.OperatorIsEmpty:
		return !ok || value == nil
	case template.OperatorIsNotEmpty:
		return ok && value != nil
	case template.OperatorEquals:
		return ok && value != nil && equals(value, cond.Value)
	case template.OperatorNotEquals:
		return !(ok && value != nil && equals(value, cond.Value))
	case template.OperatorContains:
		return ok && value != nil && value.Contains(cond.Value)
	case template.OperatorGreaterThan:
		return compareNumeric(value, cond.Value, func(a, b float64) bool { return a > b })
	case template.OperatorLessThan:
		return compareNumeric(value, cond.Value, func(a, b float64) bool { return a < b })
	default:
		return false
	}
}

// equals matches by value. Multi answers treat equals as membership; numeric
// answers compare numerically when the operand parses, so "5" and "5.0"
// agree; everything else falls back to exact string comparison.
func equals(value answers.Value, operand string) bool {
	if value.Kind() == answers.KindMulti {
		return value.Contains(operand)
	}
	if got, ok := value.Number(); ok {
		if want, err := strconv.ParseFloat(strings.TrimSpace(operand), 64); err == nil {
			return got == want
		}
	}
	return value.String() == operand
}

func compareNumeric(value answers.Value, operand string, cmp func(a, b float64) bool) bool {
	if value == nil {
		return false
	}
	got, ok := value.Number()
	if !ok {
		return false
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(operand), 64)
	if err != nil {
		return false
	}
	return cmp(got, want)
}
