package render

import (
	"time"

	"github.com/cedi/meetingroom-display-epd/internal/calendar"
	"github.com/cedi/meetingroom-display-epd/internal/canvas"
	"github.com/cedi/meetingroom-display-epd/internal/layout"
	"github.com/cedi/meetingroom-display-epd/internal/wrap"
)

const (
	statusFont      = 24
	statusLines     = 3
	busyIcon        = 128
	importantIcon   = 196
	frameInset      = 20
	frameThickness  = 10
	iconGap         = 10
	descriptionFont = 18
	titleLines      = 4
	defaultIconSize = 128
)

// StatusPane shows whether the room is free, or the running event with an
// icon for busy and important events.
type StatusPane struct {
	Rect layout.Rect
	Env  *Env
}

func (s *StatusPane) Render(c canvas.Canvas, now time.Time, f *Frame) {
	r := s.Rect
	st := canvas.DefaultStyle
	maxWidth := r.Width - 2*iconGap

	msg := s.Env.Text.Free
	icon, iconSize := "", 0
	important := false

	if cur := f.Calendar.CurrentEvent(now); cur != nil {
		s.Env.debugf(f, "status", "current event: %s, busy: %s", cur.Title, cur.Busy)
		if cur.Busy == calendar.Busy {
			icon, iconSize = canvas.IconTime, busyIcon
		}
		if cur.Important {
			icon, iconSize = canvas.IconWarning, importantIcon
			important = true
		}
		msg = cur.StatusText()
	}

	if important {
		accent, fill := s.Env.Palette.AccentStyle()
		if fill {
			c.FillRect(r, accent.Background)
		}
		st = accent
		frame := layout.Rect{
			X:      r.X + frameInset,
			Y:      r.Y + frameInset,
			Width:  r.Width - 2*frameInset,
			Height: r.Height - 2*frameInset,
		}.Clamp()
		canvas.StrokeRect(c, frame, frameThickness, st)
		maxWidth = frame.Width - 2*frameThickness - 2*iconGap
	}

	// right edge divides the status pane from the list
	c.DrawLine(r.Right()-1, r.Y, r.Right()-1, r.Bottom()-1, canvas.DefaultStyle)

	drawStack(c, r, icon, iconSize, []textBlock{{msg, statusFont, statusLines}}, maxWidth, st)
}

type textBlock struct {
	text  string
	size  int
	lines int
}

// drawStack centers an optional icon and the non-empty text blocks as one
// column in r.
func drawStack(c canvas.Canvas, r layout.Rect, icon string, iconSize int, blocks []textBlock, maxWidth int, st canvas.Style) {
	total := 0
	if icon != "" {
		total += iconSize
	}
	heights := make([]int, len(blocks))
	for i, b := range blocks {
		if b.text == "" {
			continue
		}
		c.SetFontSize(b.size)
		heights[i] = wrap.Bounds(c, b.text, maxWidth, b.lines).Height
		if total > 0 {
			total += iconGap
		}
		total += heights[i]
	}

	cx := r.X + r.Width/2
	y := r.Y + r.Height/2 - total/2
	placed := false
	if icon != "" {
		c.DrawIcon(cx, y, icon, iconSize, layout.HorizontalCenter|layout.Top, st)
		y += iconSize
		placed = true
	}
	for i, b := range blocks {
		if b.text == "" {
			continue
		}
		if placed {
			y += iconGap
		}
		c.SetFontSize(b.size)
		wrap.Draw(c, cx, y, b.text, layout.HorizontalCenter|layout.Top, maxWidth, b.lines, st)
		y += heights[i]
		placed = true
	}
}

// FullPageStatus fills r with a centered icon, title and description. Custom
// statuses and errors are both shown this way.
func FullPageStatus(c canvas.Canvas, r layout.Rect, s *calendar.CustomStatus, st canvas.Style) {
	iconSize := s.IconSize
	if iconSize <= 0 {
		iconSize = defaultIconSize
	}
	blocks := []textBlock{
		{s.Title, statusFont, titleLines},
		{s.Description, descriptionFont, titleLines},
	}
	drawStack(c, r, s.Icon, iconSize, blocks, r.Width-2*frameInset, st)
}
