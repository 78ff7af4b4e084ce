package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"storyreel/internal/logs"
)

func TestLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storyreel.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines, offset, err := logs.Last(path, 2)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("offset = %d, want 6", offset)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storyreel.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	_, offset, err := logs.Last(path, 1)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("next\npart"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "next" {
		t.Fatalf("expected only the complete line, got %#v", got)
	}
}

func TestParseAndFormat(t *testing.T) {
	line := `{"ts":"2026-10-19T10:00:00Z","level":"error","msg":"episode failed","component":"pipeline","episode":7,"stage":"video","run_id":"r1","error_kind":"not_found","error":"audio.mp3 missing"}`
	rec, ok := logs.Parse(line)
	if !ok {
		t.Fatal("expected JSON record")
	}
	want := "2026-10-19T10:00:00Z ERROR [ep 7/video] episode failed kind=not_found error=audio.mp3 missing"
	if got := rec.Format(); got != want {
		t.Fatalf("Format() = %q\nwant      %q", got, want)
	}
	if _, ok := logs.Parse("plain text"); ok {
		t.Fatal("plain text should not parse")
	}
}

func TestFilterMatch(t *testing.T) {
	rec := logs.Record{Level: "warn", Episode: 3, RunID: "abc"}
	cases := []struct {
		filter logs.Filter
		want   bool
	}{
		{logs.Filter{}, true},
		{logs.Filter{Episode: 3}, true},
		{logs.Filter{Episode: 4}, false},
		{logs.Filter{RunID: "abc"}, true},
		{logs.Filter{RunID: "xyz"}, false},
		{logs.Filter{MinLevel: "info"}, true},
		{logs.Filter{MinLevel: "error"}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Match(rec); got != tc.want {
			t.Fatalf("%+v.Match = %v, want %v", tc.filter, got, tc.want)
		}
	}
}
