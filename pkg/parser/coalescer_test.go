package parser

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func collectEntries(t *testing.T, src EntrySource) []*LogEntry {
	t.Helper()
	ctx := context.Background()
	var entries []*LogEntry
	for {
		entry, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func newTestCoalescer(t *testing.T, input string) *Coalescer {
	t.Helper()
	src := NewReaderSource(strings.NewReader(input), "test")
	return NewCoalescer(src, NewExtractor(testPatterns(t), nil))
}

func TestCoalescer_MergesContinuationLines(t *testing.T) {
	input := "2024-01-01 10:00:00 ERROR disk full\n" +
		"retrying...\n" +
		"2024-01-01 10:00:05 INFO recovered\n"

	entries := collectEntries(t, newTestCoalescer(t, input))

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]
	if !first.Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("entry 1 Timestamp = %v", first.Timestamp)
	}
	if first.Level != LevelError {
		t.Errorf("entry 1 Level = %s, want ERROR", first.Level)
	}
	if first.Body() != "disk full\nretrying..." {
		t.Errorf("entry 1 Body = %q, want %q", first.Body(), "disk full\nretrying...")
	}

	second := entries[1]
	if !second.Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)) {
		t.Errorf("entry 2 Timestamp = %v", second.Timestamp)
	}
	if second.Level != LevelInfo {
		t.Errorf("entry 2 Level = %s, want INFO", second.Level)
	}
	if second.Body() != "recovered" {
		t.Errorf("entry 2 Body = %q, want %q", second.Body(), "recovered")
	}
}

func TestCoalescer_StackTrace(t *testing.T) {
	input := "2024-01-01 10:00:00 ERROR unhandled exception\n" +
		"java.lang.NullPointerException\n" +
		"  at com.example.Foo.bar(Foo.java:42)\n" +
		"  at com.example.Main.main(Main.java:10)\n" +
		"2024-01-01 10:00:01 INFO restarted\n"

	entries := collectEntries(t, newTestCoalescer(t, input))

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if len(entries[0].Lines) != 4 {
		t.Errorf("entry 1 has %d lines, want 4", len(entries[0].Lines))
	}
	if len(entries[1].Lines) != 1 {
		t.Errorf("entry 2 has %d lines, want 1", len(entries[1].Lines))
	}
}

func TestCoalescer_FirstLineWithoutTimestamp(t *testing.T) {
	// A leading untimestamped line still opens an entry rather than
	// being dropped.
	input := "no timestamp here\n2024-01-01 10:00:00 INFO next\n"

	entries := collectEntries(t, newTestCoalescer(t, input))

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].HasTimestamp {
		t.Error("entry 1 should have no timestamp")
	}
	if !entries[0].Timestamp.IsZero() {
		t.Errorf("entry 1 Timestamp = %v, want zero", entries[0].Timestamp)
	}
}

func TestCoalescer_SingleUntimestampedLine(t *testing.T) {
	entries := collectEntries(t, newTestCoalescer(t, "just one odd line\n"))

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].HasTimestamp {
		t.Error("entry should have no timestamp")
	}
	if entries[0].Level != LevelUnknown {
		t.Errorf("Level = %s, want UNKNOWN", entries[0].Level)
	}
}

func TestCoalescer_EmptyInput(t *testing.T) {
	entries := collectEntries(t, newTestCoalescer(t, ""))
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestCoalescer_LosslessReconstruction(t *testing.T) {
	input := "2024-01-01 10:00:00 ERROR disk full\n" +
		"retrying...\n" +
		"still retrying\n" +
		"leading junk without timestamp follows next entry\n" +
		"2024-01-01 10:00:05 INFO recovered\n" +
		"trailing detail\n"

	entries := collectEntries(t, newTestCoalescer(t, input))

	var raws []string
	for _, e := range entries {
		raws = append(raws, e.Raw())
	}
	got := strings.Join(raws, "\n") + "\n"

	if got != input {
		t.Errorf("reconstructed input differs:\ngot:  %q\nwant: %q", got, input)
	}
}

func TestCoalescer_EOFAfterExhaustion(t *testing.T) {
	c := newTestCoalescer(t, "2024-01-01 10:00:00 INFO only\n")
	collectEntries(t, c)

	if _, err := c.Next(context.Background()); err != io.EOF {
		t.Errorf("Next() after exhaustion = %v, want io.EOF", err)
	}
}
