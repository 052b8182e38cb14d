package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/embedkit/embedkit/collection"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "embeddings.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCollection(t *testing.T) *collection.Collection {
	t.Helper()
	c, err := collection.New("all-MiniLM-L6-v2", "v2", 3,
		[][]float32{{1, 2, 3}, {4, 5, 6}},
		[]string{"first", "second"})
	if err != nil {
		t.Fatalf("failed to build collection: %v", err)
	}
	return c
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	orig := testCollection(t)
	if err := s.Save(ctx, "docs", orig); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := s.Load(ctx, "docs")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.ModelName != orig.ModelName || loaded.ModelVersion != orig.ModelVersion {
		t.Errorf("model metadata lost: %+v", loaded)
	}
	if loaded.Dimension != orig.Dimension {
		t.Errorf("expected dimension %d, got %d", orig.Dimension, loaded.Dimension)
	}
	if len(loaded.Records) != len(orig.Records) {
		t.Fatalf("expected %d records, got %d", len(orig.Records), len(loaded.Records))
	}
	for i, rec := range loaded.Records {
		want := orig.Records[i]
		if rec.Text != want.Text || rec.Timestamp != want.Timestamp {
			t.Errorf("record %d metadata differs: %+v vs %+v", i, rec, want)
		}
		for j := range want.Values {
			if rec.Values[j] != want.Values[j] {
				t.Errorf("record %d value %d: expected %v, got %v", i, j, want.Values[j], rec.Values[j])
			}
		}
	}
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Save(ctx, "docs", testCollection(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	smaller, err := collection.New("other-model", "v1", 2, [][]float32{{7, 8}}, nil)
	if err != nil {
		t.Fatalf("failed to build collection: %v", err)
	}
	if err := s.Save(ctx, "docs", smaller); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := s.Load(ctx, "docs")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Records) != 1 {
		t.Errorf("expected the save to replace previous records, got %d", len(loaded.Records))
	}
	if loaded.ModelName != "other-model" {
		t.Errorf("expected updated metadata, got %q", loaded.ModelName)
	}
}

func TestLoadNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load(context.Background(), "never-saved")
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty store, got %v", names)
	}

	s.Save(ctx, "beta", testCollection(t))
	s.Save(ctx, "alpha", testCollection(t))

	names, err = s.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected sorted names [alpha beta], got %v", names)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	s.Save(ctx, "docs", testCollection(t))
	if err := s.Delete(ctx, "docs"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := s.Load(ctx, "docs"); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound after delete, got %v", err)
	}

	// Deleting a missing collection is not an error.
	if err := s.Delete(ctx, "docs"); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bad := testCollection(t)
	bad.Dimension = 9

	if err := s.Save(ctx, "docs", bad); !errors.Is(err, collection.ErrDimensionInconsistency) {
		t.Errorf("expected ErrDimensionInconsistency, got %v", err)
	}
	if err := s.Save(ctx, "", testCollection(t)); err == nil {
		t.Error("expected error for empty collection name")
	}
}
