package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

func TestPrintSummaryCoversEveryMode(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	store.SaveScore("blockfall_classic", storage.Record{Score: 700, RowsCleared: 7, PiecesLocked: 80})
	store.SaveScore("blockfall_classic", storage.Record{Score: 100, RowsCleared: 1, PiecesLocked: 20})

	var buf bytes.Buffer
	if err := printSummary(&buf, store, registry.List()); err != nil {
		t.Fatalf("printSummary() failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected a header and 2 mode lines, got:\n%s", buf.String())
	}

	var standard, classic string
	for _, l := range lines[1:] {
		if strings.Contains(l, "Classic") {
			classic = l
		} else {
			standard = l
		}
	}
	if !strings.Contains(standard, "never") {
		t.Errorf("Unplayed mode should say never: %q", standard)
	}
	for _, want := range []string{" 2 ", "700", "400", " 7 "} {
		if !strings.Contains(classic, want) {
			t.Errorf("Classic line %q missing %q", classic, want)
		}
	}
}

func TestPrintEntriesShowsRowsAndPieces(t *testing.T) {
	entries := []storage.ScoreEntry{
		{Record: storage.Record{Score: 500, RowsCleared: 5, PiecesLocked: 61}, CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	printEntries(&buf, entries)

	out := buf.String()
	for _, want := range []string{"Rows", "Pieces", "500", " 5 ", "61", "2026-03-01 12:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestTitleOf(t *testing.T) {
	if got := titleOf("blockfall_classic"); got != "Blockfall (Classic)" {
		t.Errorf("titleOf(blockfall_classic) = %q", got)
	}
	if got := titleOf("nope"); got != "nope" {
		t.Errorf("titleOf(nope) = %q, want the ID back", got)
	}
}
