// Package report renders a filled-in inspection form as a read-only document,
// either as themed HTML or a plain-text summary. Hidden fields are excluded:
// the renderer recomputes visibility from the answers it is given rather than
// trusting any previously cached map.
package report

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/render"
	rendertemplate "github.com/goliatone/go-formflow/pkg/render/template"
	gotemplate "github.com/goliatone/go-formflow/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formflow/pkg/template"
)

// Format selects the output flavour of the renderer.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
)

const emptyValuePlaceholder = "—"

// Option configures the report renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	format           Format
	now              func() time.Time
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithFormat selects HTML or plain-text output. Default is HTML.
func WithFormat(format Format) Option {
	return func(cfg *config) {
		switch format {
		case FormatHTML, FormatText:
			cfg.format = format
		}
	}
}

// WithClock overrides the timestamp source, used by tests for stable output.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// Renderer produces inspection reports from a template and its answers.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	format    Format
	now       func() time.Time
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the report renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		format:     FormatHTML,
		now:        time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		tplEngine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("report renderer: configure template renderer: %w", err)
		}
		renderer = tplEngine
	}

	return &Renderer{templates: renderer, format: cfg.format, now: cfg.now}, nil
}

func (r *Renderer) Name() string {
	if r.format == FormatText {
		return "report-text"
	}
	return "report"
}

func (r *Renderer) ContentType() string {
	if r.format == FormatText {
		return "text/plain; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// Render produces the report document. Validation errors supplied through the
// options are annotated inline on their fields.
func (r *Renderer) Render(_ context.Context, tpl template.Template, ans answers.Map, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("report renderer: template renderer is nil")
	}

	view := buildView(tpl, ans, options, r.now())

	if r.format == FormatText {
		return []byte(renderText(view)), nil
	}

	name := options.TemplateName
	if name == "" {
		name = "templates/report"
	}
	result, err := r.templates.RenderTemplate(name, map[string]any{
		"report": view,
	})
	if err != nil {
		return nil, fmt.Errorf("report renderer: render template: %w", err)
	}
	return []byte(result), nil
}

type reportView struct {
	Title        string        `json:"title"`
	TemplateName string        `json:"template_name"`
	Generated    string        `json:"generated"`
	Complete     bool          `json:"complete"`
	Theme        themeView     `json:"theme"`
	Sections     []sectionView `json:"sections"`
}

type themeView struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	CSSVarsStyle string `json:"css_vars_style,omitempty"`
}

type sectionView struct {
	Title  string      `json:"title"`
	Fields []fieldView `json:"fields"`
}

type fieldView struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Value  string   `json:"value"`
	Errors []string `json:"errors,omitempty"`
}

func buildView(tpl template.Template, ans answers.Map, options render.RenderOptions, now time.Time) reportView {
	title := strings.TrimSpace(options.Title)
	if title == "" {
		title = tpl.Name
	}

	visibility := engine.Visibility(tpl, ans)
	fieldErrors := options.ErrorsByField()

	view := reportView{
		Title:        sanitize(title),
		TemplateName: sanitize(tpl.Name),
		Generated:    now.UTC().Format(time.RFC3339),
		Complete:     len(options.Errors) == 0,
		Theme:        buildThemeView(options),
	}

	current := sectionView{}
	flush := func() {
		if current.Title != "" || len(current.Fields) > 0 {
			view.Sections = append(view.Sections, current)
		}
		current = sectionView{}
	}

	for _, field := range tpl.SortedFields() {
		if !visibility[field.ID] {
			continue
		}
		if field.Type == template.FieldTypeSectionHeader {
			flush()
			current.Title = sanitize(labelOrID(field))
			continue
		}
		current.Fields = append(current.Fields, fieldView{
			ID:     field.ID,
			Label:  sanitize(labelOrID(field)),
			Value:  sanitize(displayValue(field, ans)),
			Errors: sanitizeAll(fieldErrors[field.ID]),
		})
	}
	flush()

	return view
}

func buildThemeView(options render.RenderOptions) themeView {
	cfg := options.Theme
	if cfg == nil {
		return themeView{}
	}
	return themeView{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root { ")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}

func labelOrID(field template.Field) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.ID
}

func displayValue(field template.Field, ans answers.Map) string {
	value, ok := ans[field.ID]
	if !ok || value == nil || value.Empty() {
		return emptyValuePlaceholder
	}
	switch field.Type {
	case template.FieldTypeFile:
		return fmt.Sprintf("[adjunto: %s]", value.String())
	case template.FieldTypeNumber:
		if n, ok := value.Number(); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return value.String()
	default:
		return value.String()
	}
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// sanitize strips any markup an answer value may carry before it reaches the
// HTML document.
func sanitize(raw string) string {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(policy.Sanitize(raw))
}

func sanitizeAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, sanitize(v))
	}
	return out
}

func renderText(view reportView) string {
	var b strings.Builder
	b.WriteString(view.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len([]rune(view.Title))))
	b.WriteString("\n")

	for _, section := range view.Sections {
		if section.Title != "" {
			b.WriteString("\n## ")
			b.WriteString(section.Title)
			b.WriteString("\n")
		}
		for _, field := range section.Fields {
			b.WriteString(fmt.Sprintf("%s: %s\n", field.Label, field.Value))
			for _, msg := range field.Errors {
				b.WriteString(fmt.Sprintf("  ! %s\n", msg))
			}
		}
	}

	if view.Complete {
		b.WriteString("\nInspection complete.\n")
	} else {
		b.WriteString("\nInspection incomplete.\n")
	}
	b.WriteString(fmt.Sprintf("Generated %s\n", view.Generated))
	return b.String()
}
