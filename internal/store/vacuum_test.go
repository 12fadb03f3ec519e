package store

import (
	"context"
	"testing"
	"time"
)

func TestVacuumIfNeeded_FirstRun(t *testing.T) {
	store := openTestStore(t)
	defer store.Close()
	ctx := context.Background()

	// Never vacuumed, so the first call runs
	ran, err := store.VacuumIfNeeded(ctx)
	if err != nil {
		t.Fatalf("vacuum: %v", err)
	}
	if !ran {
		t.Error("expected first vacuum to run")
	}

	// Immediately after, it is skipped
	ran, err = store.VacuumIfNeeded(ctx)
	if err != nil {
		t.Fatalf("vacuum: %v", err)
	}
	if ran {
		t.Error("expected second vacuum to be skipped")
	}
}

func TestVacuumIfNeeded_AfterInterval(t *testing.T) {
	store := openTestStore(t)
	defer store.Close()
	ctx := context.Background()

	old := time.Now().Add(-VacuumInterval - time.Hour)
	if err := store.setLastVacuumTime(ctx, old); err != nil {
		t.Fatalf("set last vacuum: %v", err)
	}

	ran, err := store.VacuumIfNeeded(ctx)
	if err != nil {
		t.Fatalf("vacuum: %v", err)
	}
	if !ran {
		t.Error("expected vacuum to run after interval")
	}
}
