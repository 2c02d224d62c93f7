package balance

import (
	"math/rand"
	"testing"
	"time"

	"github.com/cedi/meetingroom-display-epd/internal/calendar"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// entries builds past entries ending before now followed by future ones.
func entries(past, future int) []calendar.Entry {
	var out []calendar.Entry
	for i := 0; i < past; i++ {
		start := now.Add(-time.Duration(past-i+1) * time.Hour)
		out = append(out, calendar.Entry{Title: "past", Start: start, End: start.Add(30 * time.Minute)})
	}
	for i := 0; i < future; i++ {
		start := now.Add(time.Duration(i+1) * time.Hour)
		out = append(out, calendar.Entry{Title: "future", Start: start, End: start.Add(30 * time.Minute)})
	}
	return out
}

// fiveRows fits exactly five 48px rows.
var fiveRows = Budget{Width: 400, Height: 5 * 48, EntryHeight: 48}

func TestMaxEntries(t *testing.T) {
	if got := (Budget{Height: 455, EntryHeight: 48}).MaxEntries(); got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
	if got := (Budget{Height: 455}).MaxEntries(); got != 0 {
		t.Errorf("zero entry height should give 0, got %d", got)
	}
	if got := (Budget{Height: -5, EntryHeight: 48}).MaxEntries(); got != 0 {
		t.Errorf("negative height should give 0, got %d", got)
	}
}

func TestBalance_NoTruncation(t *testing.T) {
	res := Balance(fiveRows, entries(2, 2), now)
	if res.SkippedPast != 0 || res.OverflowFuture != 0 {
		t.Errorf("expected no truncation, got skipped=%d overflow=%d", res.SkippedPast, res.OverflowFuture)
	}
	if len(res.Displayable) != 4 {
		t.Errorf("expected all 4 shown, got %d", len(res.Displayable))
	}
	if res.Displayable[0].Title != "past" {
		t.Error("past entries stay visible when everything fits")
	}
}

func TestBalance_PastOnly(t *testing.T) {
	res := Balance(fiveRows, entries(3, 5), now)
	if res.SkippedPast != 3 {
		t.Errorf("expected 3 skipped, got %d", res.SkippedPast)
	}
	if res.OverflowFuture != 0 {
		t.Errorf("expected no overflow, got %d", res.OverflowFuture)
	}
	if len(res.Displayable) != 5 {
		t.Errorf("expected 5 shown, got %d", len(res.Displayable))
	}
	if !res.PastMarker() || res.FutureMarker() {
		t.Error("expected only the past marker")
	}
	if res.Rebalanced {
		t.Error("single marker must not rebalance")
	}
}

func TestBalance_FutureOnly(t *testing.T) {
	res := Balance(fiveRows, entries(0, 8), now)
	if res.SkippedPast != 0 || res.OverflowFuture != 3 {
		t.Errorf("expected skipped=0 overflow=3, got skipped=%d overflow=%d", res.SkippedPast, res.OverflowFuture)
	}
	if res.PastMarker() || !res.FutureMarker() {
		t.Error("expected only the future marker")
	}
}

func TestBalance_BothMarkersRebalance(t *testing.T) {
	res := Balance(fiveRows, entries(3, 6), now)
	if !res.Rebalanced {
		t.Fatal("expected a rebalance")
	}
	if res.Capacity != 5 || res.MaxEntries != 4 {
		t.Errorf("expected capacity 5 reduced to 4, got %d/%d", res.Capacity, res.MaxEntries)
	}
	if res.SkippedPast != 3 || res.OverflowFuture != 2 || len(res.Displayable) != 4 {
		t.Errorf("expected 3/2/4, got skipped=%d overflow=%d shown=%d",
			res.SkippedPast, res.OverflowFuture, len(res.Displayable))
	}
}

func TestBalance_PartialPastEviction(t *testing.T) {
	// 7 entries, 5 rows: two of the three past entries are enough.
	res := Balance(fiveRows, entries(3, 4), now)
	if res.SkippedPast != 2 || res.OverflowFuture != 0 {
		t.Errorf("expected skipped=2 overflow=0, got %d/%d", res.SkippedPast, res.OverflowFuture)
	}
	if res.Displayable[0].Title != "past" {
		t.Error("the latest past entry should stay visible")
	}
}

func TestBalance_InterleavedPastEntry(t *testing.T) {
	list := entries(0, 6)
	// a short past entry sorted after a long running one
	running := calendar.Entry{Title: "running", Start: now.Add(-3 * time.Hour), End: now.Add(time.Hour)}
	short := calendar.Entry{Title: "short", Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour)}
	list = append([]calendar.Entry{running, short}, list...)

	res := Balance(fiveRows, list, now)
	if res.SkippedPast != 1 {
		t.Errorf("expected the short past entry skipped, got %d", res.SkippedPast)
	}
	if res.Displayable[0].Title != "running" {
		t.Errorf("running entry should stay first, got %q", res.Displayable[0].Title)
	}
	if res.Total() != len(list) {
		t.Errorf("conservation broken: %d != %d", res.Total(), len(list))
	}
}

func TestBalance_ZeroCapacity(t *testing.T) {
	res := Balance(Budget{Height: 20, EntryHeight: 48}, entries(2, 2), now)
	if len(res.Displayable) != 0 {
		t.Errorf("expected nothing shown, got %d", len(res.Displayable))
	}
	if res.MaxEntries < 0 {
		t.Errorf("capacity must not go negative, got %d", res.MaxEntries)
	}
	if res.Total() != 4 {
		t.Errorf("conservation broken: %d", res.Total())
	}
	if res.Rebalanced {
		t.Error("nothing to rebalance at zero capacity")
	}
}

func TestBalance_Empty(t *testing.T) {
	res := Balance(fiveRows, nil, now)
	if res.Total() != 0 || res.PastMarker() || res.FutureMarker() {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestBalance_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		past, future := rng.Intn(12), rng.Intn(12)
		b := Budget{Height: rng.Intn(12 * 48), EntryHeight: 48}
		list := entries(past, future)

		res := Balance(b, list, now)
		if res.Total() != len(list) {
			t.Fatalf("past=%d future=%d rows=%d: conservation %d != %d",
				past, future, b.MaxEntries(), res.Total(), len(list))
		}
		if len(res.Displayable) > res.MaxEntries {
			t.Fatalf("shown %d exceeds capacity %d", len(res.Displayable), res.MaxEntries)
		}
		if res.MaxEntries < res.Capacity-1 || res.MaxEntries > res.Capacity {
			t.Fatalf("capacity reduced more than once: %d -> %d", res.Capacity, res.MaxEntries)
		}
		if res.Rebalanced && (!res.PastMarker() || !res.FutureMarker()) {
			t.Fatalf("rebalance must leave both markers, got %+v", res)
		}
	}
}

func TestBands(t *testing.T) {
	b := Budget{OriginX: 400, OriginY: 25, Width: 400, Height: 455, EntryHeight: 48}

	res := Balance(b, entries(3, 10), now)
	if !res.Rebalanced {
		t.Fatal("expected both markers")
	}
	past, rows, future := res.Bands(b)
	if rows.Height != 8*48 {
		t.Errorf("expected 8 rows, got height %d", rows.Height)
	}
	free := 455 - 8*48
	if past.Height+future.Height != free {
		t.Errorf("bands should share %dpx, got %d+%d", free, past.Height, future.Height)
	}
	if past.Y != 25 || rows.Y != past.Bottom() || future.Y != rows.Bottom() {
		t.Errorf("bands not stacked: %+v %+v %+v", past, rows, future)
	}
	if future.Bottom() != 25+455 {
		t.Errorf("future band should end at the budget bottom, got %d", future.Bottom())
	}

	res = Balance(b, entries(0, 12), now)
	past, rows, future = res.Bands(b)
	if past.Height != 0 {
		t.Errorf("no past marker, expected empty band, got %d", past.Height)
	}
	if rows.Y != 25 || future.Height != 455-9*48 {
		t.Errorf("unexpected bands %+v %+v", rows, future)
	}
}
