package report

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded report layout so callers can reuse it as a
// starting point for custom bundles.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
