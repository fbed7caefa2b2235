package render

import (
	"context"
	"testing"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/template"
)

type stubRenderer struct {
	name string
}

func (s stubRenderer) Name() string { return s.name }

func (s stubRenderer) ContentType() string { return "text/plain" }

func (s stubRenderer) Render(context.Context, template.Template, answers.Map, RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if err := registry.Register(stubRenderer{name: "report"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(stubRenderer{name: "report"}); err == nil {
		t.Fatal("duplicate registration must fail")
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatal("unnamed renderer must fail")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatal("nil renderer must fail")
	}

	if !registry.Has("report") {
		t.Fatal("registered renderer not found")
	}
	if _, err := registry.Get("missing"); err == nil {
		t.Fatal("unknown renderer must error")
	}

	registry.MustRegister(stubRenderer{name: "tui"})
	names := registry.List()
	if len(names) != 2 || names[0] != "report" || names[1] != "tui" {
		t.Fatalf("unexpected list: %v", names)
	}
}

func TestRenderOptions_ErrorsByField(t *testing.T) {
	t.Parallel()

	opts := RenderOptions{
		Errors: []engine.FieldError{
			{FieldID: "a", Code: engine.ErrorMissingRequired, Message: "a is required"},
			{FieldID: "a", Code: engine.ErrorPatternMismatch, Message: "bad format"},
			{FieldID: "b", Code: engine.ErrorOutOfRange, Message: "too big"},
		},
	}

	grouped := opts.ErrorsByField()
	if len(grouped["a"]) != 2 || len(grouped["b"]) != 1 {
		t.Fatalf("unexpected grouping: %v", grouped)
	}

	if got := (RenderOptions{}).ErrorsByField(); got != nil {
		t.Fatalf("no errors must group to nil, got %v", got)
	}
}
