// Package store defines the persistence seams the form engine collaborates
// with: template storage with a deactivate-not-delete lifecycle, and
// inspection records carrying an answer map. Implementations here cover
// in-memory use (tests, previews) and a JSON-file directory layout; anything
// heavier plugs in behind the same interfaces.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/template"
)

// ErrNotFound is returned when the requested id has no stored entry.
var ErrNotFound = errors.New("store: not found")

// RecordStatus tracks an inspection record's lifecycle. Drafts persist
// without any validation; completion is gated on a clean evaluation by the
// caller.
type RecordStatus string

const (
	RecordStatusDraft    RecordStatus = "draft"
	RecordStatusComplete RecordStatus = "complete"
)

// Record is one inspection instance: a template reference plus the answers
// captured so far.
type Record struct {
	ID         string       `json:"id"`
	TemplateID string       `json:"templateId"`
	Status     RecordStatus `json:"status"`
	Answers    answers.Map  `json:"answers"`
	CreatedBy  string       `json:"createdBy,omitempty"`
	CreatedAt  time.Time    `json:"createdAt,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt,omitempty"`
}

// TemplateStore persists form templates.
type TemplateStore interface {
	LoadTemplate(ctx context.Context, id string) (template.Template, error)
	// SaveTemplate upserts. Saving an active template with structural errors
	// fails with template.ErrNotActivatable; drafts (Active=false) always
	// save so authors can persist work in progress.
	SaveTemplate(ctx context.Context, tpl template.Template) error
	ListTemplates(ctx context.Context) ([]template.Template, error)
	// DeactivateTemplate retires a template without deleting it, keeping
	// historical records resolvable.
	DeactivateTemplate(ctx context.Context, id string) error
}

// RecordStore persists inspection records.
type RecordStore interface {
	LoadRecord(ctx context.Context, id string) (Record, error)
	SaveRecord(ctx context.Context, rec Record) error
	ListRecords(ctx context.Context, templateID string) ([]Record, error)
}
