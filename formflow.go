// Package formflow builds dynamic inspection forms: versioned templates with
// conditional visibility rules, an evaluation engine that derives which
// fields apply and which answers are invalid, and renderers that turn a
// filled form into a terminal session or a report document.
package formflow

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/report"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/template"
)

// Template is a reusable, versioned form definition.
type Template = template.Template

// Field is one entry in a template.
type Field = template.Field

// Answers maps field ids to their captured values.
type Answers = answers.Map

// Result is a full evaluation outcome: visibility plus validation errors.
type Result = engine.Result

// RenderOptions carries per-request data into renderers.
type RenderOptions = render.RenderOptions

// ValidateTemplate reports every structural violation in the template, or nil
// when it is sound.
func ValidateTemplate(tpl Template) []template.StructuralError {
	return template.Validate(tpl)
}

// CloneTemplate duplicates a template as an editable draft with a fresh id.
func CloneTemplate(tpl Template) Template {
	return template.Clone(tpl)
}

// Evaluate computes visibility and validates the visible answers in one pass.
func Evaluate(tpl Template, ans Answers) Result {
	return engine.Evaluate(tpl, ans)
}

// NewSession starts a stateful evaluation session over the template.
func NewSession(tpl Template, options ...engine.SessionOption) *engine.Session {
	return engine.NewSession(tpl, options...)
}

// Fill runs an interactive terminal session that collects answers for the
// template, seeded with any prefilled values.
func Fill(ctx context.Context, tpl Template, seed Answers, options ...tui.Option) (Answers, error) {
	renderer, err := tui.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Fill(ctx, tpl, seed)
}

// Renderers returns a registry preloaded with the built-in renderers: the
// HTML and text report surfaces plus the interactive terminal filler.
func Renderers(options ...report.Option) (*render.Registry, error) {
	registry := render.NewRegistry()

	html, err := report.New(options...)
	if err != nil {
		return nil, err
	}
	text, err := report.New(append(append([]report.Option{}, options...), report.WithFormat(report.FormatText))...)
	if err != nil {
		return nil, err
	}
	terminal, err := tui.New()
	if err != nil {
		return nil, err
	}

	for _, renderer := range []render.Renderer{html, text, terminal} {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Report renders the template and its answers as a document. Validation
// errors from a prior evaluation can be passed through the options for inline
// annotation.
func Report(ctx context.Context, tpl Template, ans Answers, opts RenderOptions, options ...report.Option) ([]byte, error) {
	renderer, err := report.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, tpl, ans, opts)
}
