package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/verustcode/reportforge/internal/database"
	"github.com/verustcode/reportforge/internal/model"
	"github.com/verustcode/reportforge/pkg/idgen"
)

// SetupTestDB creates a file-backed SQLite database in a temporary directory.
// It returns a Store instance and a cleanup function.
// The cleanup function should be called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	t.Helper()

	// Reset database state to allow re-initialization
	database.ResetForTesting()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := database.InitWithPath(dbPath); err != nil {
		database.ResetForTesting()
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	store := NewStore(database.Get())

	cleanup := func() {
		database.Close()
		database.ResetForTesting()
	}

	return store, cleanup
}

// CreateTestRender archives a minimal record for flavorID created at createdAt.
// A zero createdAt lets GORM stamp the current time.
func CreateTestRender(t *testing.T, s Store, flavorID string, createdAt time.Time) *model.RenderRecord {
	t.Helper()

	rec := &model.RenderRecord{
		ID:           idgen.NewRenderID(),
		CreatedAt:    createdAt,
		FlavorID:     flavorID,
		Title:        "Test " + flavorID,
		Source:       model.RenderSourceCLI,
		Numbers:      model.StringMap{"summary": "1."},
		SectionKeys:  model.StringArray{"summary"},
		SectionCount: 1,
		Sections:     `[{"key":"summary","number":"1.","title":"1. Summary","markdown":"All good."}]`,
		Markdown:     "# Test\n",
		Payload:      `{"summary":"All good."}`,
		PayloadBytes: 23,
		GeneratedAt:  time.Now(),
	}
	if err := s.Render().Create(rec); err != nil {
		t.Fatalf("Failed to create test render: %v", err)
	}
	return rec
}
