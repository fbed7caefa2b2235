package template

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestClone_FreshIDAndDeactivated(t *testing.T) {
	t.Parallel()

	min := 0.0
	max := 5000.0
	src := Template{
		ID:      "original",
		Name:    "Pressure check",
		Version: 3,
		Active:  true,
		Fields: []Field{
			{ID: "campo_9", Type: FieldTypeRadio, Options: []string{"Sí", "No"}},
			{
				ID:         "presion",
				Type:       FieldTypeNumber,
				Validation: &Constraints{Min: &min, Max: &max},
				Rule: &ConditionalRule{
					Combinator: CombinatorOr,
					Conditions: []Condition{{FieldID: "campo_9", Operator: OperatorEquals, Value: "No"}},
				},
			},
		},
	}

	clone := Clone(src)

	if clone.ID == src.ID || clone.ID == "" {
		t.Fatalf("clone must carry a fresh id, got %q", clone.ID)
	}
	if clone.Active {
		t.Fatal("clone must start deactivated")
	}
	if diff := cmp.Diff(src.Fields, clone.Fields); diff != "" {
		t.Fatalf("field content must be preserved (-want +got):\n%s", diff)
	}
}

func TestClone_DeepCopy(t *testing.T) {
	t.Parallel()

	min := 1.0
	src := Template{
		ID: "original",
		Fields: []Field{
			{
				ID:         "f",
				Type:       FieldTypeNumber,
				Options:    []string{"keep"},
				Validation: &Constraints{Min: &min},
				Rule: &ConditionalRule{
					Conditions: []Condition{{FieldID: "g", Operator: OperatorIsEmpty}},
				},
			},
			{ID: "g", Type: FieldTypeShortText},
		},
	}

	clone := Clone(src)
	*clone.Fields[0].Validation.Min = 99
	clone.Fields[0].Options[0] = "mutated"
	clone.Fields[0].Rule.Conditions[0].FieldID = "elsewhere"

	if *src.Fields[0].Validation.Min != 1.0 {
		t.Fatal("mutating the clone leaked into the source constraints")
	}
	if src.Fields[0].Options[0] != "keep" {
		t.Fatal("mutating the clone leaked into the source options")
	}
	if src.Fields[0].Rule.Conditions[0].FieldID != "g" {
		t.Fatal("mutating the clone leaked into the source rule")
	}
}

func TestClone_PreservesStructuralErrorSet(t *testing.T) {
	t.Parallel()

	broken := Template{
		ID: "broken",
		Fields: []Field{
			{ID: "sel", Type: FieldTypeSelect},
			{
				ID:   "dep",
				Type: FieldTypeShortText,
				Rule: &ConditionalRule{
					Conditions: []Condition{{FieldID: "nope", Operator: OperatorIsEmpty}},
				},
			},
		},
	}

	want := Validate(broken)
	got := Validate(Clone(broken))
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cloning changed the structural error set (-want +got):\n%s", diff)
	}
}
