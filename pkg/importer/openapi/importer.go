// Package openapi derives inspection-form templates from OpenAPI 3
// documents: each mutating operation with a JSON request body becomes one
// template, with schema properties mapped onto form fields and vendor
// extensions carrying the pieces OpenAPI has no vocabulary for (conditional
// rules, section grouping, explicit ordering).
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/template"
)

// Vendor extensions understood on property schemas.
const (
	ExtensionRule    = "x-formflow-rule"
	ExtensionSection = "x-formflow-section"
	ExtensionOrder   = "x-formflow-order"
)

// Option customises the importer.
type Option func(*Importer)

// WithCreatedBy stamps imported templates with an author.
func WithCreatedBy(author string) Option {
	return func(i *Importer) {
		i.createdBy = author
	}
}

// WithMethods restricts which HTTP methods are considered. Defaults to POST
// and PUT.
func WithMethods(methods ...string) Option {
	return func(i *Importer) {
		if len(methods) == 0 {
			return
		}
		i.methods = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			i.methods[strings.ToUpper(strings.TrimSpace(m))] = struct{}{}
		}
	}
}

// Importer converts OpenAPI documents into templates.
type Importer struct {
	createdBy string
	methods   map[string]struct{}
}

// New constructs an Importer.
func New(options ...Option) *Importer {
	i := &Importer{
		methods: map[string]struct{}{"POST": {}, "PUT": {}},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(i)
	}
	return i
}

// Import parses the raw document and returns one template per eligible
// operation, sorted by template id.
func (i *Importer) Import(ctx context.Context, raw []byte) ([]template.Template, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi importer: document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi importer: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi importer: document does not contain any paths")
	}

	var templates []template.Template
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range map[string]*openapi3.Operation{
			"POST": item.Post,
			"PUT":  item.Put,
		} {
			if op == nil {
				continue
			}
			if _, ok := i.methods[method]; !ok {
				continue
			}
			tpl, ok := i.convertOperation(path, method, op)
			if !ok {
				continue
			}
			templates = append(templates, tpl)
		}
	}

	if len(templates) == 0 {
		return nil, errors.New("openapi importer: no operations produced a template")
	}
	sort.Slice(templates, func(a, b int) bool { return templates[a].ID < templates[b].ID })
	return templates, nil
}

func (i *Importer) convertOperation(path, method string, op *openapi3.Operation) (template.Template, bool) {
	schema := requestSchema(op)
	if schema == nil || len(schema.Properties) == 0 {
		return template.Template{}, false
	}

	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}

	tpl := template.Template{
		ID:          id,
		Name:        firstNonEmpty(op.Summary, id),
		Description: op.Description,
		Version:     1,
		CreatedBy:   i.createdBy,
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	// Sections can interleave in sorted property order, so a header id is
	// emitted at most once per section name.
	seenSections := make(map[string]struct{})
	for idx, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field := convertProperty(name, ref.Value)
		if _, ok := required[name]; ok {
			field.Required = true
		}
		if field.Order == 0 {
			field.Order = idx + 1
		}
		if section := field.Section; section != "" {
			if _, emitted := seenSections[section]; !emitted {
				seenSections[section] = struct{}{}
				tpl.Fields = append(tpl.Fields, template.Field{
					ID:      "sec_" + section,
					Type:    template.FieldTypeSectionHeader,
					Label:   section,
					Order:   field.Order,
					Section: section,
				})
			}
		}
		tpl.Fields = append(tpl.Fields, field)
	}

	if len(tpl.Fields) == 0 {
		return template.Template{}, false
	}
	return tpl, true
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt, ok := op.RequestBody.Value.Content["application/json"]
	if !ok || mt.Schema == nil || mt.Schema.Value == nil {
		return nil
	}
	return mt.Schema.Value
}

func convertProperty(name string, src *openapi3.Schema) template.Field {
	field := template.Field{
		ID:          name,
		Type:        fieldType(src),
		Label:       firstNonEmpty(src.Title, name),
		Description: src.Description,
	}

	for _, raw := range src.Enum {
		field.Options = append(field.Options, fmt.Sprint(raw))
	}
	if field.Type == template.FieldTypeCheckbox && src.Items != nil && src.Items.Value != nil {
		for _, raw := range src.Items.Value.Enum {
			field.Options = append(field.Options, fmt.Sprint(raw))
		}
	}

	field.Validation = constraints(src)
	applyExtensions(&field, src.Extensions)
	return field
}

func fieldType(src *openapi3.Schema) template.FieldType {
	switch {
	case typeIs(src, "number"), typeIs(src, "integer"):
		return template.FieldTypeNumber
	case typeIs(src, "array"):
		return template.FieldTypeCheckbox
	case typeIs(src, "string"):
		switch src.Format {
		case "date", "date-time":
			return template.FieldTypeDate
		case "binary", "byte":
			return template.FieldTypeFile
		case "textarea":
			return template.FieldTypeLongText
		}
		if len(src.Enum) > 0 {
			return template.FieldTypeSelect
		}
		return template.FieldTypeShortText
	default:
		return template.FieldTypeShortText
	}
}

func typeIs(src *openapi3.Schema, name string) bool {
	return src.Type != nil && src.Type.Is(name)
}

func constraints(src *openapi3.Schema) *template.Constraints {
	if src.Min == nil && src.Max == nil && src.Pattern == "" {
		return nil
	}
	out := &template.Constraints{Pattern: src.Pattern}
	if src.Min != nil {
		min := *src.Min
		out.Min = &min
	}
	if src.Max != nil {
		max := *src.Max
		out.Max = &max
	}
	return out
}

// applyExtensions decodes the x-formflow-* vendor extensions. Anything that
// fails to decode is skipped; template.Validate catches broken rule
// references afterwards.
func applyExtensions(field *template.Field, extensions map[string]any) {
	if len(extensions) == 0 {
		return
	}

	if raw, ok := extensions[ExtensionSection]; ok {
		if section, ok := raw.(string); ok {
			field.Section = section
		}
	}
	if raw, ok := extensions[ExtensionOrder]; ok {
		switch v := raw.(type) {
		case float64:
			field.Order = int(v)
		case json.Number:
			if n, err := v.Int64(); err == nil {
				field.Order = int(n)
			}
		}
	}
	if raw, ok := extensions[ExtensionRule]; ok {
		data, err := json.Marshal(raw)
		if err != nil {
			return
		}
		var rule template.ConditionalRule
		if err := json.Unmarshal(data, &rule); err != nil {
			return
		}
		if len(rule.Conditions) > 0 {
			field.Rule = &rule
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
