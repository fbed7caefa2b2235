package answers

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmptiness(t *testing.T) {
	t.Parallel()

	m := Map{
		"blank":    Text("   "),
		"text":     Text("ok"),
		"zero":     Number(0),
		"none":     Multi{},
		"some":     Multi{"a"},
		"nofile":   File(""),
		"attached": File("data:application/pdf;base64,xyz"),
		"nilled":   nil,
	}

	cases := map[string]bool{
		"blank":    true,
		"text":     false,
		"zero":     false, // a numeric zero is an answer
		"none":     true,
		"some":     false,
		"nofile":   true,
		"attached": false,
		"nilled":   true,
		"absent":   true,
	}
	for id, want := range cases {
		if got := m.Empty(id); got != want {
			t.Fatalf("Empty(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestCoercions(t *testing.T) {
	t.Parallel()

	if n, ok := Text("42.5").Number(); !ok || n != 42.5 {
		t.Fatalf("Text number coercion: got %v, %v", n, ok)
	}
	if _, ok := Text("abc").Number(); ok {
		t.Fatal("non-numeric text must not coerce")
	}
	if Number(3000).String() != "3000" {
		t.Fatalf("number display form: got %q", Number(3000).String())
	}
	if !(Multi{"Sí", "No"}).Contains("No") {
		t.Fatal("multi membership failed")
	}
	if (Multi{"Sí No"}).Contains("No") {
		t.Fatal("multi membership must be exact, not substring")
	}
	if !Text("corrosión visible").Contains("corrosión") {
		t.Fatal("text contains failed")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	src := Map{
		"campo_9":  Text("No"),
		"presion":  Number(3000),
		"defectos": Multi{"óxido", "abolladura"},
	}

	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Map
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(src, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalSkipsNilKeepsEmpty(t *testing.T) {
	t.Parallel()

	src := Map{
		"vacio":     Text(""),
		"sin_valor": nil,
		"lista":     Multi{},
	}

	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var plain map[string]any
	if err := json.Unmarshal(data, &plain); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := plain["sin_valor"]; ok {
		t.Fatalf("nil value must be skipped, got %v", plain)
	}
	if v, ok := plain["vacio"]; !ok || v != "" {
		t.Fatalf("empty string answer must survive, got %v", plain)
	}
	if _, ok := plain["lista"]; !ok {
		t.Fatalf("empty array answer must survive, got %v", plain)
	}
}

func TestUnmarshalDropsNullsAndRejectsMixedArrays(t *testing.T) {
	t.Parallel()

	var m Map
	if err := json.Unmarshal([]byte(`{"a": null, "b": "x"}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["a"]; ok {
		t.Fatal("null answers must be dropped")
	}
	if m["b"] != Text("x") {
		t.Fatalf("expected Text(x), got %#v", m["b"])
	}

	if err := json.Unmarshal([]byte(`{"bad": ["x", 3]}`), &m); err == nil {
		t.Fatal("mixed arrays must fail to decode")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	src := Map{"a": Text("1")}
	cp := src.Clone()
	cp["a"] = Text("2")
	cp["b"] = Text("3")

	if src["a"] != Text("1") || len(src) != 1 {
		t.Fatalf("clone mutated the source: %#v", src)
	}
}
