package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/template"
)

const (
	templatesDir = "templates"
	recordsDir   = "records"
)

// Dir stores templates and records as pretty-printed JSON files under a root
// directory: <root>/templates/<id>.json and <root>/records/<id>.json. Ids
// must be usable as file names; path separators are rejected.
type Dir struct {
	root string
}

var (
	_ TemplateStore = (*Dir)(nil)
	_ RecordStore   = (*Dir)(nil)
)

// NewDir prepares the directory layout under root.
func NewDir(root string) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("store: root directory is required")
	}
	for _, sub := range []string{templatesDir, recordsDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("store: prepare %s: %w", sub, err)
		}
	}
	return &Dir{root: root}, nil
}

// LoadTemplate reads <root>/templates/<id>.json.
func (d *Dir) LoadTemplate(ctx context.Context, id string) (template.Template, error) {
	var tpl template.Template
	if err := d.readJSON(ctx, templatesDir, id, &tpl); err != nil {
		return template.Template{}, err
	}
	return tpl, nil
}

// SaveTemplate writes the template document, refusing active templates with
// structural errors.
func (d *Dir) SaveTemplate(ctx context.Context, tpl template.Template) error {
	if tpl.ID == "" {
		return errors.New("store: template id is required")
	}
	if tpl.Active {
		if err := template.Activatable(tpl); err != nil {
			return err
		}
	}
	tpl.UpdatedAt = time.Now().UTC()
	return d.writeJSON(ctx, templatesDir, tpl.ID, tpl)
}

// ListTemplates reads every template document, sorted by id.
func (d *Dir) ListTemplates(ctx context.Context) ([]template.Template, error) {
	ids, err := d.ids(templatesDir)
	if err != nil {
		return nil, err
	}
	out := make([]template.Template, 0, len(ids))
	for _, id := range ids {
		tpl, err := d.LoadTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, nil
}

// DeactivateTemplate rewrites the document with Active=false.
func (d *Dir) DeactivateTemplate(ctx context.Context, id string) error {
	tpl, err := d.LoadTemplate(ctx, id)
	if err != nil {
		return err
	}
	tpl.Active = false
	tpl.UpdatedAt = time.Now().UTC()
	return d.writeJSON(ctx, templatesDir, id, tpl)
}

// LoadRecord reads <root>/records/<id>.json.
func (d *Dir) LoadRecord(ctx context.Context, id string) (Record, error) {
	var rec Record
	if err := d.readJSON(ctx, recordsDir, id, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// SaveRecord writes the record document. An existing record's CreatedAt wins
// over the incoming one, matching the in-memory store.
func (d *Dir) SaveRecord(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New("store: record id is required")
	}
	if rec.Status == "" {
		rec.Status = RecordStatusDraft
	}
	rec.UpdatedAt = time.Now().UTC()

	var existing Record
	if err := d.readJSON(ctx, recordsDir, rec.ID, &existing); err == nil && !existing.CreatedAt.IsZero() {
		rec.CreatedAt = existing.CreatedAt
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	return d.writeJSON(ctx, recordsDir, rec.ID, rec)
}

// ListRecords reads every record for one template, sorted by id. An empty
// templateID lists everything.
func (d *Dir) ListRecords(ctx context.Context, templateID string) ([]Record, error) {
	ids, err := d.ids(recordsDir)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := d.LoadRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		if templateID != "" && rec.TemplateID != templateID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (d *Dir) path(sub, id string) (string, error) {
	if id == "" {
		return "", errors.New("store: id is required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("store: id %q is not a valid file name", id)
	}
	return filepath.Join(d.root, sub, id+".json"), nil
}

func (d *Dir) readJSON(ctx context.Context, sub, id string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.path(sub, id)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %q: %w", strings.TrimSuffix(sub, "s"), id, ErrNotFound)
		}
		return fmt.Errorf("store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("store: decode %s: %w", path, err)
	}
	return nil
}

func (d *Dir) writeJSON(ctx context.Context, sub, id string, in any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.path(sub, id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

func (d *Dir) ids(sub string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, sub))
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", sub, err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
