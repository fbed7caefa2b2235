package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow/pkg/engine"
)

// RenderOptions describes per-request data renderers can use to customise
// their output without touching the evaluation pipeline.
type RenderOptions struct {
	// Title overrides the document title; defaults to the template name.
	Title string
	// Errors surfaces a previously computed validation result so renderers
	// can annotate fields inline. Renderers re-evaluate visibility themselves
	// and never trust a stale visibility map.
	Errors []engine.FieldError
	// Theme carries resolved go-theme tokens and CSS variables for renderers
	// that emit markup. Nil means unthemed output.
	Theme *theme.RendererConfig
	// TemplateName selects a non-default layout on template-driven renderers.
	TemplateName string
}

// ErrorsByField groups the option's errors by field id for inline display.
func (o RenderOptions) ErrorsByField() map[string][]string {
	if len(o.Errors) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, err := range o.Errors {
		out[err.FieldID] = append(out[err.FieldID], err.Message)
	}
	return out
}
