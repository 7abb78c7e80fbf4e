package lexicon

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cognicore/facet/pkg/facet/internalerr"
)

// TestSchemaCreationIdempotent tests that running initSchema multiple times is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "lexicon.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 tables, got %d", count)
	}
}

func TestSQLiteSourceRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "lexicon.db")

	src, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	if _, err := src.Load(ctx, "en"); !errors.Is(err, internalerr.ErrMissingLexicalResource) {
		t.Fatalf("Empty db should report ErrMissingLexicalResource, got %v", err)
	}

	data, err := NewData("en", []string{"the", "of", "acme"}, []string{`(?i)^acme corp$`})
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}
	if err := src.Replace(ctx, data); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	// Replacing again must not duplicate or keep stale rows
	smaller, _ := NewData("en", []string{"the", "acme"}, nil)
	if err := src.Replace(ctx, smaller); err != nil {
		t.Fatalf("second Replace: %v", err)
	}
	src.Close()

	// Reopen (simulates a later process)
	src2, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer src2.Close()

	got, err := src2.Load(ctx, "EN")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.IsStopWord("acme") || got.IsStopWord("of") {
		t.Errorf("Unexpected stop words after replace: %v", got.StopWords())
	}
	if len(got.StopLabels()) != 0 {
		t.Errorf("Stop labels should have been replaced, got %v", got.StopLabels())
	}

	langs, err := src2.Languages(ctx)
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	if len(langs) != 1 || langs[0] != "en" {
		t.Errorf("Languages() = %v, want [en]", langs)
	}
}

func TestSQLiteSourceReplaceNeedsLanguage(t *testing.T) {
	ctx := context.Background()
	src, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "lexicon.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer src.Close()

	data, _ := NewData("", []string{"x"}, nil)
	if err := src.Replace(ctx, data); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
