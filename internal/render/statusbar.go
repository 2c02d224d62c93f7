package render

import (
	"fmt"
	"math"
	"time"

	"github.com/cedi/meetingroom-display-epd/internal/canvas"
	"github.com/cedi/meetingroom-display-epd/internal/layout"
)

const (
	segmentPadding = 4
	segmentIcon    = 24
	segmentGap     = 10
	statusBarFont  = 9
)

// Segment is one cell of the status bar. Width must be measured at the font
// size Render draws with.
type Segment interface {
	Width(c canvas.Canvas, now time.Time, f *Frame) int
	Render(c canvas.Canvas, x int, bar layout.Rect, now time.Time, f *Frame)
}

// StatusBar lays out left-bound segments from the left edge and right-bound
// segments from the right edge, separated by vertical lines. The render time
// goes in the middle.
type StatusBar struct {
	Rect  layout.Rect
	Env   *Env
	Left  []Segment
	Right []Segment
}

func NewStatusBar(r layout.Rect, env *Env, left, right []Segment) *StatusBar {
	return &StatusBar{Rect: r, Env: env, Left: left, Right: right}
}

func (s *StatusBar) Render(c canvas.Canvas, now time.Time, f *Frame) {
	r := s.Rect
	st := canvas.DefaultStyle
	c.DrawLine(r.X, r.Bottom()-1, r.Right()-1, r.Bottom()-1, st)

	x := r.X
	leftDrawn := false
	for _, seg := range s.Left {
		w := seg.Width(c, now, f)
		if w == 0 {
			continue
		}
		seg.Render(c, x, r, now, f)
		x += w + segmentGap
		c.DrawLine(x, r.Y, x, r.Bottom()-1, st)
		leftDrawn = true
	}

	x = r.Right()
	for _, seg := range s.Right {
		x -= seg.Width(c, now, f)
		c.DrawLine(x, r.Y, x, r.Bottom()-1, st)
		seg.Render(c, x, r, now, f)
	}

	c.SetFontSize(statusBarFont)
	text := s.Env.RefreshString(now)
	cy := r.Y + r.Height/2
	if leftDrawn {
		c.DrawText(r.X+r.Width/2, cy, text, layout.Center, st)
	} else {
		c.DrawText(r.X+segmentPadding, cy, text, layout.Left|layout.VerticalCenter, st)
	}
}

// LastUpdated shows when the calendar data was last refreshed upstream. It
// takes no space while that time is unknown.
type LastUpdated struct {
	Env *Env
}

func (l *LastUpdated) Width(c canvas.Canvas, now time.Time, f *Frame) int {
	if f.Calendar == nil || f.Calendar.LastUpdated.IsZero() {
		return 0
	}
	c.SetFontSize(statusBarFont)
	return segmentIcon + c.MeasureText(l.Env.RefreshString(f.Calendar.LastUpdated)).Width + segmentPadding
}

func (l *LastUpdated) Render(c canvas.Canvas, x int, bar layout.Rect, now time.Time, f *Frame) {
	if f.Calendar == nil || f.Calendar.LastUpdated.IsZero() {
		return
	}
	cy := bar.Y + bar.Height/2
	st := canvas.DefaultStyle
	c.DrawIcon(x, cy, canvas.IconRefresh, segmentIcon, layout.Left|layout.VerticalCenter, st)
	c.SetFontSize(statusBarFont)
	c.DrawText(x+segmentIcon, cy, l.Env.RefreshString(f.Calendar.LastUpdated), layout.Left|layout.VerticalCenter, st)
}

// BatteryPercent maps a LiPo cell voltage to a charge estimate along a
// sigmoid discharge curve.
func BatteryPercent(mv, minMV, maxMV int) int {
	if mv <= minMV || maxMV <= minMV {
		return 0
	}
	ratio := 1.724 * float64(mv-minMV) / float64(maxMV-minMV)
	p := int(105 - 105/(1+math.Pow(ratio, 5.5)))
	return min(p, 100)
}

// BatteryIcon picks the bar icon for a charge percentage.
func BatteryIcon(percent int) string {
	switch {
	case percent >= 93:
		return canvas.IconBattery
	case percent >= 79:
		return canvas.IconBattery6
	case percent >= 65:
		return canvas.IconBattery5
	case percent >= 50:
		return canvas.IconBattery4
	case percent >= 36:
		return canvas.IconBattery3
	case percent >= 22:
		return canvas.IconBattery2
	case percent >= 8:
		return canvas.IconBattery1
	}
	return canvas.IconBattery0
}

const lowBattery = 10

// Battery shows the charge as text and icon. A zero voltage means the battery
// was not sampled.
type Battery struct {
	Env           *Env
	MinMilliVolts int
	MaxMilliVolts int
}

func (b *Battery) label(f *Frame) (string, string, int) {
	if f.Device.BatteryMilliVolts <= 0 {
		return "?", canvas.IconBatteryX, 0
	}
	p := BatteryPercent(f.Device.BatteryMilliVolts, b.MinMilliVolts, b.MaxMilliVolts)
	return fmt.Sprintf("%d%%", p), BatteryIcon(p), p
}

func (b *Battery) Width(c canvas.Canvas, now time.Time, f *Frame) int {
	text, _, _ := b.label(f)
	c.SetFontSize(statusBarFont)
	return segmentPadding + c.MeasureText(text).Width + segmentPadding + segmentIcon
}

func (b *Battery) Render(c canvas.Canvas, x int, bar layout.Rect, now time.Time, f *Frame) {
	text, icon, p := b.label(f)
	st := canvas.DefaultStyle
	if f.Device.BatteryMilliVolts > 0 && p <= lowBattery {
		st = accentInk(b.Env.Palette)
		b.Env.debugf(f, "battery", "low battery: %s (%d mV)", text, f.Device.BatteryMilliVolts)
	}
	cy := bar.Y + bar.Height/2
	c.SetFontSize(statusBarFont)
	r := c.DrawText(x+segmentPadding, cy, text, layout.Left|layout.VerticalCenter, st)
	c.DrawIcon(r.Right()+segmentPadding, cy, icon, segmentIcon, layout.Left|layout.VerticalCenter, st)
}

// WiFiIcon picks the signal icon for an RSSI in dBm. Zero means no
// connection.
func WiFiIcon(rssi int) string {
	switch {
	case rssi == 0:
		return canvas.IconWiFiX
	case rssi >= -50:
		return canvas.IconWiFi
	case rssi >= -60:
		return canvas.IconWiFi3
	case rssi >= -70:
		return canvas.IconWiFi2
	}
	return canvas.IconWiFi1
}

const weakSignal = -70

type WiFi struct {
	Env *Env
}

func (w *WiFi) Width(c canvas.Canvas, now time.Time, f *Frame) int {
	return segmentPadding + segmentIcon + segmentPadding
}

func (w *WiFi) Render(c canvas.Canvas, x int, bar layout.Rect, now time.Time, f *Frame) {
	st := canvas.DefaultStyle
	if f.Device.RSSI < weakSignal {
		st = accentInk(w.Env.Palette)
	}
	c.DrawIcon(x+segmentPadding, bar.Y+bar.Height/2, WiFiIcon(f.Device.RSSI), segmentIcon, layout.Left|layout.VerticalCenter, st)
}

// accentInk is the accent for small status marks. Inverting palettes have no
// band to invert here, so they keep plain ink.
func accentInk(p canvas.Palette) canvas.Style {
	if p.InvertAccent {
		return canvas.DefaultStyle
	}
	st, _ := p.AccentStyle()
	return st
}
