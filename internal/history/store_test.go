package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := Run{
		RunID:      "run-1",
		Episode:    6,
		Status:     StatusSucceeded,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Stages: []StageRecord{
			{Stage: "script", Status: StatusSkipped},
			{Stage: "audio", Status: StatusSucceeded, Duration: 12 * time.Second},
			{Stage: "video", Status: StatusSucceeded, Duration: 78 * time.Second},
		},
	}
	second := Run{
		RunID:        "run-1",
		Episode:      7,
		Status:       StatusFailed,
		FailedStage:  "video",
		ErrorKind:    "no_assets",
		ErrorMessage: "no assets available: video: list assets: no files found in bg_music",
		StartedAt:    started.Add(2 * time.Minute),
		FinishedAt:   started.Add(2*time.Minute + 1500*time.Millisecond),
		Stages: []StageRecord{
			{Stage: "script", Status: StatusSucceeded, Duration: time.Second},
			{Stage: "audio", Status: StatusSucceeded, Duration: 400 * time.Millisecond},
			{Stage: "video", Status: StatusFailed, Duration: 100 * time.Millisecond, Error: "no assets available"},
		},
	}
	for _, run := range []Run{first, second} {
		if _, err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Episode != 7 || runs[1].Episode != 6 {
		t.Fatalf("expected newest first, got episodes %d, %d", runs[0].Episode, runs[1].Episode)
	}
	got := runs[0]
	if got.Status != StatusFailed || got.FailedStage != "video" || got.ErrorKind != "no_assets" {
		t.Fatalf("unexpected failed run: %+v", got)
	}
	if got.Elapsed() != 1500*time.Millisecond {
		t.Fatalf("unexpected elapsed: %v", got.Elapsed())
	}
	if len(got.Stages) != 3 || got.Stages[2].Error != "no assets available" {
		t.Fatalf("unexpected stages: %+v", got.Stages)
	}
	if runs[1].Stages[0].Status != StatusSkipped || runs[1].Stages[2].Duration != 78*time.Second {
		t.Fatalf("unexpected stages: %+v", runs[1].Stages)
	}
	if !runs[1].StartedAt.Equal(started) {
		t.Fatalf("timestamp round trip: %v", runs[1].StartedAt)
	}
}

func TestListFilters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		if _, err := store.Record(ctx, Run{RunID: "r", Episode: i%2 + 1, Status: StatusSucceeded}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	runs, err := store.List(ctx, Filter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(runs))
	}
	runs, err = store.List(ctx, Filter{Episode: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs for episode 2, got %d", len(runs))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
