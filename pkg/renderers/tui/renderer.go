// Package tui drives an interactive terminal session that collects answers
// for an inspection form. Visibility is recomputed after every answer, so
// fields revealed by a conditional rule are prompted in the same session and
// fields that stay hidden are never asked.
package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/template"
)

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		driver:       driver,
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver, err = newSurveyDriver()
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render runs an interactive fill session seeded with the given answers and
// serializes the collected map.
func (r *Renderer) Render(ctx context.Context, tpl template.Template, ans answers.Map, _ render.RenderOptions) ([]byte, error) {
	collected, err := r.Fill(ctx, tpl, ans)
	if err != nil {
		return nil, err
	}
	return r.serialize(tpl, collected)
}

// Fill prompts for every visible, unanswered input field in render order and
// returns the completed answer map. Seed answers are kept and not re-asked.
func (r *Renderer) Fill(ctx context.Context, tpl template.Template, seed answers.Map) (answers.Map, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	collected := seed.Clone()
	if collected == nil {
		collected = answers.Map{}
	}

	asked := make(map[string]struct{})
	fields := tpl.SortedFields()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		visibility := engine.Visibility(tpl, collected)
		prompted := false

		for _, field := range fields {
			if !visibility[field.ID] {
				continue
			}
			if _, done := asked[field.ID]; done {
				continue
			}
			if !field.IsInput() {
				asked[field.ID] = struct{}{}
				if err := r.driver.Info(ctx, sectionBanner(field)); err != nil {
					return nil, err
				}
				continue
			}
			if _, answered := collected[field.ID]; answered && !collected.Empty(field.ID) {
				asked[field.ID] = struct{}{}
				continue
			}

			asked[field.ID] = struct{}{}
			value, err := r.promptField(ctx, field)
			if err != nil {
				return nil, err
			}
			if value != nil {
				collected[field.ID] = value
			}
			prompted = true
			// Answers can flip visibility; restart the pass so newly revealed
			// fields are asked in render order.
			break
		}

		if !prompted {
			allSeen := true
			for _, field := range fields {
				if !visibility[field.ID] {
					continue
				}
				if _, done := asked[field.ID]; !done {
					allSeen = false
					break
				}
			}
			if allSeen {
				return collected, nil
			}
		}
	}
}

func (r *Renderer) promptField(ctx context.Context, field template.Field) (answers.Value, error) {
	switch field.Type {
	case template.FieldTypeLongText:
		return r.promptTextArea(ctx, field)
	case template.FieldTypeNumber:
		return r.promptNumber(ctx, field)
	case template.FieldTypeSelect, template.FieldTypeRadio:
		return r.promptSelect(ctx, field)
	case template.FieldTypeCheckbox:
		return r.promptMultiSelect(ctx, field)
	case template.FieldTypeFile:
		return r.promptInput(ctx, field, "ruta del archivo")
	default:
		return r.promptInput(ctx, field, "")
	}
}

func (r *Renderer) promptInput(ctx context.Context, field template.Field, help string) (answers.Value, error) {
	if help == "" {
		help = field.Description
	}
	out, err := r.driver.Input(ctx, InputConfig{
		Message:     displayLabel(field),
		Help:        help,
		Placeholder: field.Placeholder,
		Validator:   textValidator(field),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}
	if field.Type == template.FieldTypeFile {
		return answers.File(out), nil
	}
	return answers.Text(out), nil
}

func (r *Renderer) promptTextArea(ctx context.Context, field template.Field) (answers.Value, error) {
	for {
		out, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: displayLabel(field),
			Help:    field.Description,
		})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(out) == "" {
			if field.Required {
				if err := r.driver.Info(ctx, requiredNotice(field)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, nil
		}
		return answers.Text(out), nil
	}
}

func (r *Renderer) promptNumber(ctx context.Context, field template.Field) (answers.Value, error) {
	out, err := r.driver.Input(ctx, InputConfig{
		Message:   displayLabel(field),
		Help:      field.Description,
		Validator: numberValidator(field),
	})
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return answers.Text(out), nil
	}
	return answers.Number(n), nil
}

func (r *Renderer) promptSelect(ctx context.Context, field template.Field) (answers.Value, error) {
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message: displayLabel(field),
		Options: field.Options,
		Help:    field.Description,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(field.Options) {
		return nil, nil
	}
	return answers.Text(field.Options[idx]), nil
}

func (r *Renderer) promptMultiSelect(ctx context.Context, field template.Field) (answers.Value, error) {
	for {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message: displayLabel(field),
			Options: field.Options,
			Help:    field.Description,
		})
		if err != nil {
			return nil, err
		}
		if len(indices) == 0 {
			if field.Required {
				if err := r.driver.Info(ctx, requiredNotice(field)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, nil
		}
		selected := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				selected = append(selected, field.Options[idx])
			}
		}
		return answers.Multi(selected), nil
	}
}

func (r *Renderer) serialize(tpl template.Template, collected answers.Map) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		return []byte(prettyText(tpl, collected)), nil
	}
	data, err := collected.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("tui: serialize answers: %w", err)
	}
	return data, nil
}

func prettyText(tpl template.Template, collected answers.Map) string {
	var b strings.Builder
	visibility := engine.Visibility(tpl, collected)
	for _, field := range tpl.SortedFields() {
		if !visibility[field.ID] || !field.IsInput() {
			continue
		}
		value, ok := collected[field.ID]
		if !ok || value == nil || value.Empty() {
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", displayLabel(field), value.String()))
	}
	return b.String()
}

func displayLabel(field template.Field) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.ID
}

func sectionBanner(field template.Field) string {
	return "== " + displayLabel(field) + " =="
}

func requiredNotice(field template.Field) string {
	return fmt.Sprintf("%s es obligatorio", displayLabel(field))
}

func textValidator(field template.Field) func(string) error {
	return func(value string) error {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			if field.Required {
				return fmt.Errorf("%s es obligatorio", displayLabel(field))
			}
			return nil
		}
		if field.Validation == nil || field.Validation.Pattern == "" {
			return nil
		}
		re, err := regexp.Compile(field.Validation.Pattern)
		if err != nil {
			// Broken patterns never block data entry.
			return nil
		}
		if !re.MatchString(trimmed) {
			if field.Validation.Message != "" {
				return errors.New(field.Validation.Message)
			}
			return fmt.Errorf("value does not match pattern %q", field.Validation.Pattern)
		}
		return nil
	}
}

func numberValidator(field template.Field) func(string) error {
	return func(value string) error {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			if field.Required {
				return fmt.Errorf("%s es obligatorio", displayLabel(field))
			}
			return nil
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("%s debe ser un número", displayLabel(field))
		}
		if field.Validation == nil {
			return nil
		}
		if field.Validation.Min != nil && n < *field.Validation.Min {
			return fmt.Errorf("el valor debe ser mayor o igual a %v", *field.Validation.Min)
		}
		if field.Validation.Max != nil && n > *field.Validation.Max {
			return fmt.Errorf("el valor debe ser menor o igual a %v", *field.Validation.Max)
		}
		return nil
	}
}
