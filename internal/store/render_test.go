package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/reportforge/internal/model"
	"github.com/verustcode/reportforge/internal/report"
	"github.com/verustcode/reportforge/pkg/errors"
)

// TestRenderStore_CreateAndGet tests archiving and reading back a render
func TestRenderStore_CreateAndGet(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	rec := CreateTestRender(t, s, "bug_report", time.Time{})

	got, err := s.Render().GetByID(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "bug_report", got.FlavorID)
	assert.Equal(t, model.RenderSourceCLI, got.Source)
	assert.Equal(t, model.StringMap{"summary": "1."}, got.Numbers)
	assert.Equal(t, model.StringArray{"summary"}, got.SectionKeys)
	assert.Equal(t, `{"summary":"All good."}`, got.Payload)
	assert.False(t, got.CreatedAt.IsZero())
}

// TestRenderStore_GetByID_NotFound tests the not-found mapping
func TestRenderStore_GetByID_NotFound(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	_, err := s.Render().GetByID("missing")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRenderNotFound))
}

// TestRenderStore_List tests pagination, flavor filtering and ordering
func TestRenderStore_List(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	oldest := CreateTestRender(t, s, "bug_report", now.Add(-3*time.Hour))
	CreateTestRender(t, s, "review_report", now.Add(-2*time.Hour))
	newest := CreateTestRender(t, s, "bug_report", now.Add(-1*time.Hour))

	records, total, err := s.Render().List("", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, records, 2)
	assert.Equal(t, newest.ID, records[0].ID)
	assert.Empty(t, records[0].Payload, "list omits payloads")
	assert.Empty(t, records[0].Markdown, "list omits markdown")
	assert.Equal(t, 1, records[0].SectionCount)

	records, total, err = s.Render().List("", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, records, 1)
	assert.Equal(t, oldest.ID, records[0].ID)

	records, total, err = s.Render().List("bug_report", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)
}

// TestRenderStore_Delete tests deletion and deleting twice
func TestRenderStore_Delete(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	rec := CreateTestRender(t, s, "bug_report", time.Time{})

	require.NoError(t, s.Render().Delete(rec.ID))

	_, err := s.Render().GetByID(rec.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRenderNotFound))

	err = s.Render().Delete(rec.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRenderNotFound))
}

// TestRenderStore_DeleteOlderThan tests retention purging
func TestRenderStore_DeleteOlderThan(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	CreateTestRender(t, s, "bug_report", now.AddDate(0, 0, -40))
	CreateTestRender(t, s, "bug_report", now.AddDate(0, 0, -31))
	kept := CreateTestRender(t, s, "bug_report", now.AddDate(0, 0, -2))

	deleted, err := s.Render().DeleteOlderThan(30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := s.Render().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = s.Render().GetByID(kept.ID)
	assert.NoError(t, err)
}

// TestRenderStore_CountByFlavor tests per-flavor counts
func TestRenderStore_CountByFlavor(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	CreateTestRender(t, s, "bug_report", time.Time{})
	CreateTestRender(t, s, "bug_report", time.Time{})
	CreateTestRender(t, s, "review_report", time.Time{})

	counts, err := s.Render().CountByFlavor()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"bug_report": 2, "review_report": 1}, counts)
}

// TestStore_Transaction tests commit and rollback through the Store interface
func TestStore_Transaction(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	err := s.Transaction(func(tx Store) error {
		CreateTestRender(t, tx, "bug_report", time.Time{})
		return errors.ErrValidation("abort")
	})
	require.Error(t, err)

	count, err := s.Render().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	err = s.Transaction(func(tx Store) error {
		CreateTestRender(t, tx, "bug_report", time.Time{})
		return nil
	})
	require.NoError(t, err)

	count, err = s.Render().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// TestRecordConversion tests converting a document to a record and back
func TestRecordConversion(t *testing.T) {
	doc := &report.Document{
		ID:       "cq1test0000000000000",
		FlavorID: "bug_report",
		Title:    "Bug Report",
		Numbers:  report.SectionNumbers{"summary": "1.", "env": "1.1"},
		Sections: []report.RenderedSection{
			{
				Key:      "summary",
				Number:   "1.",
				Title:    "1. Summary",
				Markdown: "Crash on start.",
				Subsections: []report.RenderedSection{
					{Key: "env", Number: "1.1", Title: "1.1 Env", Markdown: "linux"},
				},
			},
		},
		GeneratedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}
	payload := []byte(`{"summary":"Crash on start.","env":"linux"}`)

	rec, err := NewRenderRecord(doc, payload, model.RenderSourceAPI)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, rec.ID)
	assert.Equal(t, model.StringArray{"summary", "env"}, rec.SectionKeys)
	assert.Equal(t, 2, rec.SectionCount)
	assert.Equal(t, len(payload), rec.PayloadBytes)
	assert.Equal(t, doc.Markdown(), rec.Markdown)

	back, err := DocumentFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}

// TestDocumentFromRecord_BadSections tests corrupt archived sections
func TestDocumentFromRecord_BadSections(t *testing.T) {
	_, err := DocumentFromRecord(&model.RenderRecord{ID: "x", Sections: "{not json"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
}
