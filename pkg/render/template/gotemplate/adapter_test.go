package gotemplate

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestRenderStringConvertsStructs(t *testing.T) {
	t.Parallel()

	engine, err := New(WithFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	data := struct {
		Name string `json:"name"`
	}{Name: "tanque 4"}

	out, err := engine.RenderString("hola {{ name }}", data)
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if out != "hola tanque 4" {
		t.Fatalf("RenderString() = %q", out)
	}
}

func TestRenderTemplateAppendsExtension(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"greet.tpl": {Data: []byte("hola {{ name }}")},
	}
	engine, err := New(WithFS(files))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := engine.RenderTemplate("greet", map[string]any{"name": "equipo"})
	if err != nil {
		t.Fatalf("RenderTemplate() error = %v", err)
	}
	if out != "hola equipo" {
		t.Fatalf("RenderTemplate() = %q", out)
	}

	// Cached parse serves repeat renders.
	if _, err := engine.RenderTemplate("greet", map[string]any{"name": "equipo"}); err != nil {
		t.Fatalf("RenderTemplate() cached error = %v", err)
	}
}

func TestNewRequiresTemplateSource(t *testing.T) {
	t.Parallel()

	if _, err := New(); err == nil || !strings.Contains(err.Error(), "base dir or fs.FS") {
		t.Fatalf("New() error = %v, want missing source error", err)
	}
}

func TestGlobalContext(t *testing.T) {
	t.Parallel()

	engine, err := New(WithFS(fstest.MapFS{}), WithGlobalData(map[string]any{"planta": "norte"}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := engine.RenderString("planta {{ planta }}", nil)
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if out != "planta norte" {
		t.Fatalf("RenderString() = %q", out)
	}
}
