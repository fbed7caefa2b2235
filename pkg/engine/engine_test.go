package engine_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/template"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func TestVisibility_NoRuleAlwaysVisible(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()
	for _, ans := range []answers.Map{nil, {}, testsupport.PassingAnswers()} {
		visibility := engine.Visibility(tpl, ans)
		for _, id := range []string{"sec_general", "campo_1", "campo_5", "presion", "campo_9", "defectos"} {
			if !visibility[id] {
				t.Fatalf("field %s has no rule and must always be visible (answers=%v)", id, ans)
			}
		}
	}
}

func TestVisibility_ConditionalField(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()

	hidden := engine.Visibility(tpl, answers.Map{"campo_9": answers.Text("Sí")})
	if hidden["campo_10"] {
		t.Fatal("campo_10 must be hidden while campo_9 is Sí")
	}

	shown := engine.Visibility(tpl, answers.Map{"campo_9": answers.Text("No")})
	if !shown["campo_10"] {
		t.Fatal("campo_10 must be visible once campo_9 is No")
	}
}

func TestVisibility_OrCombinator(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()

	cases := []struct {
		name    string
		ans     answers.Map
		visible bool
	}{
		{"neither clause", answers.Map{"campo_9": answers.Text("Sí")}, false},
		{"first clause", answers.Map{"campo_9": answers.Text("No")}, true},
		{"second clause", answers.Map{"campo_9": answers.Text("Sí"), "defectos": answers.Multi{"fuga"}}, true},
		{"both clauses", answers.Map{"campo_9": answers.Text("No"), "defectos": answers.Multi{"fuga"}}, true},
	}
	for _, tc := range cases {
		if got := engine.Visibility(tpl, tc.ans)["evidencia"]; got != tc.visible {
			t.Fatalf("%s: evidencia visible = %v, want %v", tc.name, got, tc.visible)
		}
	}
}

func TestVisibility_AndCombinatorDefault(t *testing.T) {
	t.Parallel()

	tpl := template.Template{
		Fields: []template.Field{
			{ID: "a", Type: template.FieldTypeShortText},
			{ID: "b", Type: template.FieldTypeShortText},
			{
				ID:   "gated",
				Type: template.FieldTypeShortText,
				Rule: &template.ConditionalRule{
					Conditions: []template.Condition{
						{FieldID: "a", Operator: template.OperatorEquals, Value: "1"},
						{FieldID: "b", Operator: template.OperatorEquals, Value: "2"},
					},
				},
			},
		},
	}

	both := answers.Map{"a": answers.Text("1"), "b": answers.Text("2")}
	one := answers.Map{"a": answers.Text("1")}

	if !engine.Visibility(tpl, both)["gated"] {
		t.Fatal("AND rule with both clauses passing must show the field")
	}
	if engine.Visibility(tpl, one)["gated"] {
		t.Fatal("AND rule with one failing clause must hide the field")
	}
}

func TestVisibility_EmptinessOperators(t *testing.T) {
	t.Parallel()

	rule := func(op template.Operator) *template.ConditionalRule {
		return &template.ConditionalRule{
			Conditions: []template.Condition{{FieldID: "source", Operator: op}},
		}
	}
	tpl := template.Template{
		Fields: []template.Field{
			{ID: "source", Type: template.FieldTypeShortText},
			{ID: "when_empty", Type: template.FieldTypeShortText, Rule: rule(template.OperatorIsEmpty)},
			{ID: "when_filled", Type: template.FieldTypeShortText, Rule: rule(template.OperatorIsNotEmpty)},
		},
	}

	// key absent from the answer map counts as empty
	vis := engine.Visibility(tpl, answers.Map{})
	if !vis["when_empty"] || vis["when_filled"] {
		t.Fatalf("absent answer: got %v", vis)
	}

	// a blank string behaves like no answer
	vis = engine.Visibility(tpl, answers.Map{"source": answers.Text("  ")})
	if !vis["when_empty"] || vis["when_filled"] {
		t.Fatalf("blank answer: got %v", vis)
	}

	vis = engine.Visibility(tpl, answers.Map{"source": answers.Text("x")})
	if vis["when_empty"] || !vis["when_filled"] {
		t.Fatalf("present answer: got %v", vis)
	}
}

func TestVisibility_NumericOperatorsNeverThrow(t *testing.T) {
	t.Parallel()

	tpl := template.Template{
		Fields: []template.Field{
			{ID: "n", Type: template.FieldTypeNumber},
			{
				ID:   "high",
				Type: template.FieldTypeShortText,
				Rule: &template.ConditionalRule{
					Conditions: []template.Condition{{FieldID: "n", Operator: template.OperatorGreaterThan, Value: "100"}},
				},
			},
			{
				ID:   "low",
				Type: template.FieldTypeShortText,
				Rule: &template.ConditionalRule{
					Conditions: []template.Condition{{FieldID: "n", Operator: template.OperatorLessThan, Value: "100"}},
				},
			},
		},
	}

	vis := engine.Visibility(tpl, answers.Map{"n": answers.Number(250)})
	if !vis["high"] || vis["low"] {
		t.Fatalf("numeric comparison: got %v", vis)
	}

	// non-numeric answers fail the comparison instead of erroring
	vis = engine.Visibility(tpl, answers.Map{"n": answers.Text("abc")})
	if vis["high"] || vis["low"] {
		t.Fatalf("non-numeric answer must fail both comparisons: got %v", vis)
	}

	// numeric text still compares numerically
	vis = engine.Visibility(tpl, answers.Map{"n": answers.Text("42")})
	if vis["high"] || !vis["low"] {
		t.Fatalf("numeric text answer: got %v", vis)
	}
}

func TestVisibility_EqualsOnMultiMeansMembership(t *testing.T) {
	t.Parallel()

	tpl := template.Template{
		Fields: []template.Field{
			{ID: "defects", Type: template.FieldTypeCheckbox, Options: []string{"rust", "dent"}},
			{
				ID:   "rust_detail",
				Type: template.FieldTypeLongText,
				Rule: &template.ConditionalRule{
					Conditions: []template.Condition{{FieldID: "defects", Operator: template.OperatorEquals, Value: "rust"}},
				},
			},
		},
	}

	if !engine.Visibility(tpl, answers.Map{"defects": answers.Multi{"dent", "rust"}})["rust_detail"] {
		t.Fatal("equals on a multi answer must match membership")
	}
	if engine.Visibility(tpl, answers.Map{"defects": answers.Multi{"dent"}})["rust_detail"] {
		t.Fatal("equals on a multi answer without the value must fail")
	}
}

func TestVisibility_UnresolvedReferenceDegrades(t *testing.T) {
	t.Parallel()

	tpl := template.Template{
		Fields: []template.Field{
			{
				ID:   "broken",
				Type: template.FieldTypeShortText,
				Rule: &template.ConditionalRule{
					Conditions: []template.Condition{{FieldID: "ghost", Operator: template.OperatorEquals, Value: "x"}},
				},
			},
		},
	}

	// a rule pointing at a field that does not exist simply fails its clause
	if engine.Visibility(tpl, answers.Map{})["broken"] {
		t.Fatal("unresolved reference must evaluate to hidden, not panic")
	}
}

func TestVisibility_Idempotent(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()
	ans := answers.Map{"campo_9": answers.Text("No"), "defectos": answers.Multi{"fuga"}}

	first := engine.Visibility(tpl, ans)
	second := engine.Visibility(tpl, ans)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("same inputs must yield the same visibility (-first +second):\n%s", diff)
	}
}

func TestValidateAnswers_HiddenRequiredImposesNothing(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()

	ans := testsupport.PassingAnswers() // campo_9 = Sí, campo_10 unanswered
	for _, err := range engine.ValidateAnswers(tpl, ans) {
		if err.FieldID == "campo_10" {
			t.Fatalf("hidden required field must not error: %v", err)
		}
	}
}

func TestValidateAnswers_RevealedRequiredField(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()
	ans := testsupport.PassingAnswers()
	ans["campo_9"] = answers.Text("No")

	errs := engine.ValidateAnswers(tpl, ans)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if errs[0].FieldID != "campo_10" || errs[0].Code != engine.ErrorMissingRequired {
		t.Fatalf("expected missing-required for campo_10, got %v", errs[0])
	}

	ans["campo_10"] = answers.Text("corrosión en la base")
	if errs := engine.ValidateAnswers(tpl, ans); len(errs) != 0 {
		t.Fatalf("answered required field must clear the error, got %v", errs)
	}
}

func TestValidateAnswers_Range(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()

	ans := testsupport.PassingAnswers()
	ans["presion"] = answers.Number(6000)
	errs := engine.ValidateAnswers(tpl, ans)
	if len(errs) != 1 || errs[0].Code != engine.ErrorOutOfRange || errs[0].FieldID != "presion" {
		t.Fatalf("expected one out-of-range error for presion, got %v", errs)
	}

	ans["presion"] = answers.Number(3000)
	if errs := engine.ValidateAnswers(tpl, ans); len(errs) != 0 {
		t.Fatalf("in-range value must pass, got %v", errs)
	}

	// a mistyped non-numeric answer yields a type error, never a range error
	ans["presion"] = answers.Text("abc")
	errs = engine.ValidateAnswers(tpl, ans)
	if len(errs) != 1 || errs[0].Code != engine.ErrorTypeMismatch {
		t.Fatalf("expected one type-mismatch error, got %v", errs)
	}
}

func TestValidateAnswers_RangeOnNonNumberFields(t *testing.T) {
	t.Parallel()

	// Min/max bind to the constraints, not the field type: a short-text field
	// carrying them is range-checked whenever its answer reads as a number.
	year := 1990.0
	tpl := template.Template{
		ID: "tpl-range",
		Fields: []template.Field{
			{
				ID:         "anio",
				Type:       template.FieldTypeShortText,
				Validation: &template.Constraints{Min: &year},
			},
		},
	}

	errs := engine.ValidateAnswers(tpl, answers.Map{"anio": answers.Text("1985")})
	if len(errs) != 1 || errs[0].Code != engine.ErrorOutOfRange {
		t.Fatalf("expected one out-of-range error, got %v", errs)
	}

	if errs := engine.ValidateAnswers(tpl, answers.Map{"anio": answers.Text("2001")}); len(errs) != 0 {
		t.Fatalf("in-range value must pass, got %v", errs)
	}

	// non-numeric answers on non-number fields are simply not range-checked
	if errs := engine.ValidateAnswers(tpl, answers.Map{"anio": answers.Text("desconocido")}); len(errs) != 0 {
		t.Fatalf("non-numeric answer must not trip the range check, got %v", errs)
	}
}

func TestValidateAnswers_Pattern(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()

	ans := testsupport.PassingAnswers()
	ans["campo_1"] = answers.Text("not-a-serial")
	errs := engine.ValidateAnswers(tpl, ans)
	if len(errs) != 1 || errs[0].Code != engine.ErrorPatternMismatch {
		t.Fatalf("expected one pattern error, got %v", errs)
	}
	if errs[0].Message != "el número de serie debe tener el formato XX-0000" {
		t.Fatalf("configured message must be surfaced, got %q", errs[0].Message)
	}
}

func TestValidateAnswers_MalformedPatternDegrades(t *testing.T) {
	t.Parallel()

	tpl := template.Template{
		Fields: []template.Field{
			{
				ID:         "f",
				Type:       template.FieldTypeShortText,
				Validation: &template.Constraints{Pattern: "([unclosed"},
			},
		},
	}

	if errs := engine.ValidateAnswers(tpl, answers.Map{"f": answers.Text("anything")}); len(errs) != 0 {
		t.Fatalf("an unparseable pattern must not produce errors, got %v", errs)
	}
}

func TestValidateAnswers_CollectsEverything(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()
	ans := answers.Map{
		"campo_1": answers.Text("bad"),
		"presion": answers.Number(-5),
		"campo_9": answers.Text("No"),
	}

	errs := engine.ValidateAnswers(tpl, ans)
	byField := map[string]engine.ErrorCode{}
	for _, err := range errs {
		byField[err.FieldID] = err.Code
	}
	want := map[string]engine.ErrorCode{
		"campo_1":  engine.ErrorPatternMismatch,
		"campo_5":  engine.ErrorMissingRequired,
		"presion":  engine.ErrorOutOfRange,
		"campo_10": engine.ErrorMissingRequired,
	}
	if diff := cmp.Diff(want, byField); diff != "" {
		t.Fatalf("expected the complete failure set (-want +got):\n%s", diff)
	}
}

func TestEvaluate_Complete(t *testing.T) {
	t.Parallel()

	tpl := testsupport.CylinderTemplate()

	result := engine.Evaluate(tpl, testsupport.PassingAnswers())
	if !result.Complete {
		t.Fatalf("passing answers must evaluate complete, got %v", result.Errors)
	}

	result = engine.Evaluate(tpl, answers.Map{})
	if result.Complete {
		t.Fatal("an empty answer map with required fields cannot be complete")
	}
	if len(result.ErrorsFor("campo_9")) != 1 {
		t.Fatalf("expected a missing-required for campo_9, got %v", result.Errors)
	}
}
