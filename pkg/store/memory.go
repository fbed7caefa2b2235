package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/template"
)

// Memory is an in-process implementation of TemplateStore and RecordStore.
// Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	templates map[string]template.Template
	records   map[string]Record
}

var (
	_ TemplateStore = (*Memory)(nil)
	_ RecordStore   = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		templates: make(map[string]template.Template),
		records:   make(map[string]Record),
	}
}

// LoadTemplate retrieves a template by id.
func (m *Memory) LoadTemplate(_ context.Context, id string) (template.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tpl, ok := m.templates[id]
	if !ok {
		return template.Template{}, fmt.Errorf("template %q: %w", id, ErrNotFound)
	}
	return tpl, nil
}

// SaveTemplate upserts a template, refusing active templates with structural
// errors.
func (m *Memory) SaveTemplate(_ context.Context, tpl template.Template) error {
	if tpl.ID == "" {
		return errors.New("store: template id is required")
	}
	if tpl.Active {
		if err := template.Activatable(tpl); err != nil {
			return err
		}
	}
	tpl.UpdatedAt = time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[tpl.ID] = tpl
	return nil
}

// ListTemplates returns all templates sorted by id.
func (m *Memory) ListTemplates(_ context.Context) ([]template.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]template.Template, 0, len(m.templates))
	for _, tpl := range m.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeactivateTemplate clears the active flag in place.
func (m *Memory) DeactivateTemplate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tpl, ok := m.templates[id]
	if !ok {
		return fmt.Errorf("template %q: %w", id, ErrNotFound)
	}
	tpl.Active = false
	tpl.UpdatedAt = time.Now().UTC()
	m.templates[id] = tpl
	return nil
}

// LoadRecord retrieves a record by id.
func (m *Memory) LoadRecord(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return Record{}, fmt.Errorf("record %q: %w", id, ErrNotFound)
	}
	rec.Answers = rec.Answers.Clone()
	return rec, nil
}

// SaveRecord upserts a record. Answers are snapshotted so later session
// writes do not mutate stored state.
func (m *Memory) SaveRecord(_ context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New("store: record id is required")
	}
	if rec.Status == "" {
		rec.Status = RecordStatusDraft
	}
	rec.Answers = rec.Answers.Clone()
	rec.UpdatedAt = time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[rec.ID]; ok && !existing.CreatedAt.IsZero() {
		rec.CreatedAt = existing.CreatedAt
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	m.records[rec.ID] = rec
	return nil
}

// ListRecords returns the records for one template, sorted by id. An empty
// templateID lists everything.
func (m *Memory) ListRecords(_ context.Context, templateID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		if templateID != "" && rec.TemplateID != templateID {
			continue
		}
		rec.Answers = rec.Answers.Clone()
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
