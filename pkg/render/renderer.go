// Package render defines the contract shared by output surfaces: a Renderer
// converts a template plus its current answers into bytes, and a Registry
// stores renderers by name for discovery.
package render

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/template"
)

// Renderer turns a template plus its current answers into a byte
// representation: an HTML report, a plain-text summary, or an interactive
// terminal session that collects the answers before serialising them.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, tpl template.Template, ans answers.Map, options RenderOptions) ([]byte, error)
}
