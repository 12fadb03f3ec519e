package store

import (
	"context"
	"testing"
	"time"
)

func TestInsertParseFailure_Dedupe(t *testing.T) {
	store := openTestStore(t)
	defer store.Close()
	ctx := context.Background()

	raw := `{"id": 0, "title": "broken"}`

	inserted, err := store.InsertParseFailure(ctx, raw, "event has no id")
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !inserted {
		t.Error("first insert should succeed")
	}

	inserted, err = store.InsertParseFailure(ctx, raw, "event has no id")
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Error("duplicate row content should not insert")
	}

	n, err := store.CountParseFailures(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestInsertParseFailure_EmptyRow(t *testing.T) {
	store := openTestStore(t)
	defer store.Close()

	if _, err := store.InsertParseFailure(context.Background(), "", "oops"); err == nil {
		t.Error("expected error for empty raw row")
	}
}

func TestPruneParseFailures(t *testing.T) {
	store := openTestStore(t)
	defer store.Close()
	ctx := context.Background()

	if _, err := store.InsertParseFailure(ctx, "row-a", "bad"); err != nil {
		t.Fatal(err)
	}

	// Nothing is old enough yet
	pruned, err := store.PruneParseFailures(ctx, time.Now())
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 0 {
		t.Errorf("pruned %d rows, want 0", pruned)
	}

	// Far enough in the future everything ages out
	pruned, err = store.PruneParseFailures(ctx, time.Now().Add(ParseFailureRetention+time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned %d rows, want 1", pruned)
	}
}
