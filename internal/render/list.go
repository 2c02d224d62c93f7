package render

import (
	"fmt"
	"time"

	"github.com/cedi/meetingroom-display-epd/internal/balance"
	"github.com/cedi/meetingroom-display-epd/internal/calendar"
	"github.com/cedi/meetingroom-display-epd/internal/canvas"
	"github.com/cedi/meetingroom-display-epd/internal/layout"
	"github.com/cedi/meetingroom-display-epd/internal/wrap"
)

const (
	titleFont   = 12
	captionFont = 9
	markerFont  = 9

	smallIcon = 32
	largeIcon = 48

	rowPadding = 6
)

// ListPane draws the balanced calendar entries, one fixed height row each,
// with markers for hidden entries above and below.
type ListPane struct {
	Rect        layout.Rect
	EntryHeight int
	Env         *Env
}

func (l *ListPane) Budget() balance.Budget {
	return balance.Budget{
		OriginX:     l.Rect.X,
		OriginY:     l.Rect.Y,
		Width:       l.Rect.Width,
		Height:      l.Rect.Height,
		EntryHeight: l.EntryHeight,
	}
}

func (l *ListPane) Balance(entries []calendar.Entry, now time.Time) balance.Result {
	return balance.Balance(l.Budget(), entries, now)
}

func (l *ListPane) Render(c canvas.Canvas, now time.Time, f *Frame) {
	b := l.Budget()
	res := l.Balance(f.Calendar.Entries, now)
	f.List = res

	l.Env.debugf(f, "list", "calendar entries: %d (max: %d)", len(f.Calendar.Entries), res.Capacity)
	if res.SkippedPast > 0 {
		l.Env.debugf(f, "list", "truncating %d past events", res.SkippedPast)
	}
	if res.OverflowFuture > 0 {
		l.Env.debugf(f, "list", "truncating %d future events due to no more available space", res.OverflowFuture)
	}
	if res.Rebalanced {
		l.Env.debugf(f, "list", "rebalanced capacity %d -> %d for two markers", res.Capacity, res.MaxEntries)
	}

	past, rows, future := res.Bands(b)
	if res.PastMarker() {
		l.renderMarker(c, past, layout.Top, fmt.Sprintf("+%d %s%s", res.SkippedPast, l.Env.Text.Past, wrap.Ellipsis))
	}

	y := rows.Y
	for _, e := range res.Displayable {
		l.renderEntry(c, layout.Rect{X: rows.X, Y: y, Width: rows.Width, Height: l.EntryHeight}, e, now, f)
		y += l.EntryHeight
	}

	if res.FutureMarker() {
		l.renderMarker(c, future, layout.Bottom, fmt.Sprintf("+%d %s%s", res.OverflowFuture, l.Env.Text.Events, wrap.Ellipsis))
	}
}

// renderMarker centers text in its band. A band shorter than one line, as
// when the rows fill the pane exactly, is replaced by a line at the given
// pane edge so the marker never leaves the pane.
func (l *ListPane) renderMarker(c canvas.Canvas, band layout.Rect, edge layout.Alignment, text string) {
	c.SetFontSize(markerFont)
	if lh := min(c.LineHeight(), l.Rect.Height); band.Height < lh {
		band.Height = lh
		band.Y = l.Rect.Y
		if edge == layout.Bottom {
			band.Y = l.Rect.Bottom() - lh
		}
	}
	wrap.Draw(c, band.X+band.Width/2, band.Y+band.Height/2, text, layout.Center, band.Width, 1, canvas.DefaultStyle)
}

// Caption is the time range line under an entry title.
func (l *ListPane) Caption(e calendar.Entry) string {
	if e.AllDay {
		return l.Env.Text.AllDay
	}
	return l.Env.TimeString(e.Start) + " " + l.Env.Text.Until + " " + l.Env.TimeString(e.End)
}

func (l *ListPane) renderEntry(c canvas.Canvas, row layout.Rect, e calendar.Entry, now time.Time, f *Frame) {
	past := e.IsPast(now)
	current := e.IsCurrent(now)
	l.Env.debugf(f, "list", "entry %q important=%t current=%t past=%t", e.Title, e.Important, current, past)

	st := canvas.DefaultStyle
	icon, iconSize := canvas.IconCalendar, smallIcon
	switch {
	case current:
		icon, iconSize = canvas.IconTime, largeIcon
		accent, fill := l.Env.Palette.AccentStyle()
		if fill {
			c.FillRect(row, accent.Background)
		}
		st = accent
	case e.Important && !past:
		icon, iconSize = canvas.IconWarning, largeIcon
	}

	iconX := row.X + l.EntryHeight/2
	iconY := row.Y + row.Height/2
	c.DrawIcon(iconX, iconY, icon, iconSize, layout.Center, st)
	if past {
		c.DrawIcon(iconX, iconY, canvas.IconXSymbol, iconSize, layout.Center, st)
	}

	textX := row.X + l.EntryHeight
	textWidth := row.Width - l.EntryHeight - rowPadding

	c.SetFontSize(titleFont)
	r := wrap.Draw(c, textX, row.Y+rowPadding, e.Title, layout.Left|layout.Top, textWidth, 1, st)
	if past {
		strike(c, r, st)
	}

	c.SetFontSize(captionFont)
	r = wrap.Draw(c, textX, row.Bottom()-rowPadding, l.Caption(e), layout.Left|layout.Bottom, textWidth, 1, st)
	if past {
		strike(c, r, st)
	}

	c.DrawLine(row.X, row.Bottom()-1, row.Right()-1, row.Bottom()-1, canvas.DefaultStyle)
}

func strike(c canvas.Canvas, r layout.Rect, st canvas.Style) {
	if r.Width == 0 {
		return
	}
	y := r.Y + r.Height/2
	c.DrawLine(r.X, y, r.Right()-1, y, st)
}
