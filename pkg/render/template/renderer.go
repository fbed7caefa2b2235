// Package template exposes the templating seam markup renderers rely on,
// mirroring the github.com/goliatone/go-template engine contract so engines
// can be swapped without touching renderer code.
package template

import (
	"io"
)

// TemplateRenderer renders named or inline templates against arbitrary data.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
