package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/CTAG07/sponsorsync/pkg/sponsors"
	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

// setupTestStore opens a fresh SQLite database in a temp dir and returns a
// Store on it. Resources are released with t.Cleanup.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "sponsors.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}
	// Running it twice must be harmless.
	if err := SetupSchema(db); err != nil {
		t.Fatalf("second SetupSchema() failed: %v", err)
	}

	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func record(name string, weight float64) sponsors.Record {
	return sponsors.Record{
		Name:       name,
		ProfileURL: "https://github.com/" + name,
		AvatarURL:  "https://avatars.example.com/" + name,
		Weight:     weight,
	}
}

func TestStoreUpsertAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, rec := range []sponsors.Record{record("zed", 1), record("amy", 99.5)} {
		if err := s.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	updated := record("zed", 42)
	updated.Name = "Zed Industries"
	if err := s.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []sponsors.Record{record("amy", 99.5), updated}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestStoreReplaceAll(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, record("old", 1)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	fresh := []sponsors.Record{record("b", 2), record("a", 3)}
	if err := s.ReplaceAll(ctx, fresh); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []sponsors.Record{record("a", 3), record("b", 2)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() after ReplaceAll mismatch (-want +got):\n%s", diff)
	}

	// An invalid list is rejected and the previous contents survive.
	err = s.ReplaceAll(ctx, []sponsors.Record{record("c", 1), record("c", 2)})
	var vErr *sponsors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *sponsors.ValidationError, got %v", err)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count() after rejected ReplaceAll = %d, want 2", n)
	}
}

func TestStoreDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec := record("gone", 7)
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Delete(ctx, rec.ProfileURL); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, rec.ProfileURL); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List() after Delete returned %d records", len(got))
	}
}
