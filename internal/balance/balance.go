// Package balance decides which calendar entries fit a fixed vertical budget
// and how many are hidden before and after them.
package balance

import (
	"time"

	"github.com/cedi/meetingroom-display-epd/internal/calendar"
	"github.com/cedi/meetingroom-display-epd/internal/layout"
)

// Budget is the rectangle a list must fit in and the fixed height of one row.
type Budget struct {
	OriginX, OriginY int
	Width, Height    int
	EntryHeight      int
}

// MaxEntries is the number of whole rows that fit the budget.
func (b Budget) MaxEntries() int {
	if b.EntryHeight <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Height / b.EntryHeight
}

// Result describes one balanced list.
type Result struct {
	// Capacity is MaxEntries of the budget, MaxEntries the row count left
	// after making room for two markers.
	Capacity   int
	MaxEntries int

	SkippedPast    int
	OverflowFuture int
	Displayable    []calendar.Entry

	// Rebalanced is set when the capacity was reduced for two markers.
	Rebalanced bool
}

// Total is the number of entries the result accounts for.
func (r Result) Total() int {
	return len(r.Displayable) + r.SkippedPast + r.OverflowFuture
}

func (r Result) PastMarker() bool   { return r.SkippedPast > 0 }
func (r Result) FutureMarker() bool { return r.OverflowFuture > 0 }

// Balance fits the sorted entries into the budget. Past entries are evicted
// first while there are more entries than rows, what still does not fit
// overflows at the end. When both sides need a marker the markers take one
// row between them and the entries are balanced once more against the
// reduced capacity. A smaller capacity can only grow both counts, so a
// second pass always settles.
func Balance(b Budget, entries []calendar.Entry, now time.Time) Result {
	capacity := b.MaxEntries()
	res := balance(entries, now, capacity)
	if res.SkippedPast > 0 && res.OverflowFuture > 0 && capacity > 0 {
		res = balance(entries, now, capacity-1)
		res.Rebalanced = true
	}
	res.Capacity = capacity
	return res
}

func balance(entries []calendar.Entry, now time.Time, capacity int) Result {
	res := Result{
		MaxEntries:  capacity,
		Displayable: make([]calendar.Entry, 0, min(capacity, len(entries))),
	}

	remaining := len(entries)
	for _, e := range entries {
		if remaining > capacity && e.IsPast(now) {
			res.SkippedPast++
			remaining--
			continue
		}
		if len(res.Displayable) >= capacity {
			res.OverflowFuture++
			continue
		}
		res.Displayable = append(res.Displayable, e)
	}
	return res
}

// Bands splits the budget into the past marker band, the rows and the future
// marker band, top to bottom. Space not taken by rows goes to the markers:
// halved when both are shown, all of it when one is. Absent markers get an
// empty band.
func (r Result) Bands(b Budget) (past, rows, future layout.Rect) {
	rowsHeight := len(r.Displayable) * b.EntryHeight
	free := max(b.Height-rowsHeight, 0)

	pastHeight, futureHeight := 0, 0
	switch {
	case r.PastMarker() && r.FutureMarker():
		pastHeight = free / 2
		futureHeight = free - pastHeight
	case r.PastMarker():
		pastHeight = free
	case r.FutureMarker():
		futureHeight = free
	}

	past = layout.Rect{X: b.OriginX, Y: b.OriginY, Width: b.Width, Height: pastHeight}
	rows = layout.Rect{X: b.OriginX, Y: past.Bottom(), Width: b.Width, Height: rowsHeight}
	future = layout.Rect{X: b.OriginX, Y: rows.Bottom(), Width: b.Width, Height: futureHeight}
	return past, rows, future
}
