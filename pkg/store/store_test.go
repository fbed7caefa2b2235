package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/store"
	"github.com/goliatone/go-formflow/pkg/template"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

// both implementations must satisfy the same behaviour
func stores(t *testing.T) map[string]interface {
	store.TemplateStore
	store.RecordStore
} {
	t.Helper()

	dir, err := store.NewDir(t.TempDir())
	require.NoError(t, err)

	return map[string]interface {
		store.TemplateStore
		store.RecordStore
	}{
		"memory": store.NewMemory(),
		"dir":    dir,
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tpl := testsupport.CylinderTemplate()

			require.NoError(t, s.SaveTemplate(ctx, tpl))

			loaded, err := s.LoadTemplate(ctx, tpl.ID)
			require.NoError(t, err)
			assert.Equal(t, tpl.Name, loaded.Name)
			assert.Len(t, loaded.Fields, len(tpl.Fields))
			assert.True(t, loaded.Active)

			_, err = s.LoadTemplate(ctx, "missing")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestSaveActiveTemplateWithStructuralErrors(t *testing.T) {
	t.Parallel()

	broken := template.Template{
		ID:     "broken",
		Active: true,
		Fields: []template.Field{{ID: "sel", Type: template.FieldTypeSelect}},
	}

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := s.SaveTemplate(ctx, broken)
			assert.ErrorIs(t, err, template.ErrNotActivatable)

			// the same template saves fine as an inactive draft
			draft := broken
			draft.Active = false
			assert.NoError(t, s.SaveTemplate(ctx, draft))
		})
	}
}

func TestDeactivateTemplate(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tpl := testsupport.CylinderTemplate()
			require.NoError(t, s.SaveTemplate(ctx, tpl))

			require.NoError(t, s.DeactivateTemplate(ctx, tpl.ID))

			loaded, err := s.LoadTemplate(ctx, tpl.ID)
			require.NoError(t, err)
			assert.False(t, loaded.Active, "deactivation must retire, not delete")

			assert.ErrorIs(t, s.DeactivateTemplate(ctx, "missing"), store.ErrNotFound)
		})
	}
}

func TestListTemplates(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := testsupport.CylinderTemplate()
			second := template.Clone(first)
			require.NoError(t, s.SaveTemplate(ctx, first))
			require.NoError(t, s.SaveTemplate(ctx, second))

			all, err := s.ListTemplates(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			rec := store.Record{
				ID:         "rec-1",
				TemplateID: "tpl-cylinder",
				Answers:    testsupport.PassingAnswers(),
			}
			require.NoError(t, s.SaveRecord(ctx, rec))

			loaded, err := s.LoadRecord(ctx, "rec-1")
			require.NoError(t, err)
			assert.Equal(t, store.RecordStatusDraft, loaded.Status, "status defaults to draft")
			assert.Equal(t, answers.Text("Sí"), loaded.Answers["campo_9"])
			assert.False(t, loaded.CreatedAt.IsZero())

			_, err = s.LoadRecord(ctx, "missing")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestSaveRecordPreservesCreatedAt(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			rec := store.Record{ID: "rec-1", TemplateID: "tpl-cylinder"}
			require.NoError(t, s.SaveRecord(ctx, rec))

			first, err := s.LoadRecord(ctx, "rec-1")
			require.NoError(t, err)
			require.False(t, first.CreatedAt.IsZero())

			// upserts carry a zero CreatedAt; the stored one must survive
			rec.Answers = testsupport.PassingAnswers()
			require.NoError(t, s.SaveRecord(ctx, rec))

			second, err := s.LoadRecord(ctx, "rec-1")
			require.NoError(t, err)
			assert.Equal(t, first.CreatedAt, second.CreatedAt)
			assert.Equal(t, answers.Text("Sí"), second.Answers["campo_9"])
		})
	}
}

func TestListRecordsFiltersByTemplate(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.SaveRecord(ctx, store.Record{ID: "a", TemplateID: "tpl-1"}))
			require.NoError(t, s.SaveRecord(ctx, store.Record{ID: "b", TemplateID: "tpl-2"}))
			require.NoError(t, s.SaveRecord(ctx, store.Record{ID: "c", TemplateID: "tpl-1"}))

			matched, err := s.ListRecords(ctx, "tpl-1")
			require.NoError(t, err)
			require.Len(t, matched, 2)
			assert.Equal(t, "a", matched[0].ID)
			assert.Equal(t, "c", matched[1].ID)

			all, err := s.ListRecords(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestMemoryRecordAnswersSnapshotted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemory()

	ans := answers.Map{"campo_9": answers.Text("Sí")}
	require.NoError(t, s.SaveRecord(ctx, store.Record{ID: "rec", Answers: ans}))

	// mutating the caller's map after save must not affect the stored copy
	ans["campo_9"] = answers.Text("No")

	loaded, err := s.LoadRecord(ctx, "rec")
	require.NoError(t, err)
	assert.Equal(t, answers.Text("Sí"), loaded.Answers["campo_9"])
}

func TestDirRejectsPathishIDs(t *testing.T) {
	t.Parallel()

	dir, err := store.NewDir(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	assert.Error(t, dir.SaveRecord(ctx, store.Record{ID: "../escape"}))
	_, err = dir.LoadTemplate(ctx, `..\windows`)
	assert.Error(t, err)
}
