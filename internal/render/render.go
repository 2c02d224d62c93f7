// Package render composes the widgets of one display frame.
package render

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cedi/meetingroom-display-epd/internal/balance"
	"github.com/cedi/meetingroom-display-epd/internal/calendar"
	"github.com/cedi/meetingroom-display-epd/internal/canvas"
	"github.com/cedi/meetingroom-display-epd/internal/config"
	"github.com/cedi/meetingroom-display-epd/internal/layout"
	"github.com/cedi/meetingroom-display-epd/internal/logs"
)

// Env is the static configuration every widget renders with.
type Env struct {
	Palette  canvas.Palette
	Text     config.TextConfig
	Location *time.Location
	Log      *logs.RingBuffer
}

// NewEnv builds an Env from a validated config.
func NewEnv(cfg config.Config, log *logs.RingBuffer) (*Env, error) {
	pal, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Env{Palette: pal, Text: cfg.Text, Location: loc, Log: log}, nil
}

func (e *Env) format(t time.Time, layout string) string {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}
	// padded layouts like "_2" leave a double space behind
	return strings.ReplaceAll(t.In(loc).Format(layout), "  ", " ")
}

// TimeString formats a time of day for list captions.
func (e *Env) TimeString(t time.Time) string {
	return e.format(t, e.Text.TimeFormat)
}

// RefreshString formats the date and time shown in the status bar.
func (e *Env) RefreshString(t time.Time) string {
	return e.format(t, e.Text.RefreshTimeFormat)
}

func (e *Env) debugf(f *Frame, widget, format string, args ...any) {
	e.Log.Debugf(f.Pass, widget, format, args...)
}

// DeviceStatus is the hardware state sampled before a pass.
type DeviceStatus struct {
	BatteryMilliVolts int
	RSSI              int
}

// Frame is the data one render pass draws.
type Frame struct {
	Calendar *calendar.Calendar
	Device   DeviceStatus
	Pass     string

	// List is filled in by the list pane while rendering.
	List balance.Result
}

// Widget draws into the rectangle it was constructed with.
type Widget interface {
	Render(c canvas.Canvas, now time.Time, f *Frame)
}

// Pass summarizes a finished render pass.
type Pass struct {
	ID       string
	FullPage bool
	List     balance.Result
	Duration time.Duration
}

// Screen splits the canvas into the status bar across the top, the status
// pane on the left and the list pane on the right.
type Screen struct {
	env    *Env
	width  int
	height int

	StatusBar  *StatusBar
	StatusPane *StatusPane
	List       *ListPane
}

func NewScreen(c canvas.Canvas, cfg config.Config, env *Env) *Screen {
	w, h := c.Width(), c.Height()
	barHeight := min(cfg.Display.StatusBarHeight, h)
	half := w / 2

	bar := layout.Rect{X: 0, Y: 0, Width: w, Height: barHeight}
	status := layout.Rect{X: 0, Y: barHeight, Width: half, Height: h - barHeight}
	list := layout.Rect{X: half, Y: barHeight, Width: w - half, Height: h - barHeight}

	return &Screen{
		env:    env,
		width:  w,
		height: h,
		StatusBar: NewStatusBar(bar, env,
			[]Segment{&LastUpdated{Env: env}},
			[]Segment{
				&Battery{Env: env, MinMilliVolts: cfg.Device.MinBatteryMilliVolts, MaxMilliVolts: cfg.Device.MaxBatteryMilliVolts},
				&WiFi{Env: env},
			}),
		StatusPane: &StatusPane{Rect: status, Env: env},
		List:       &ListPane{Rect: list, EntryHeight: cfg.Display.EntryHeight, Env: env},
	}
}

// Widgets returns the widgets of the regular layout in draw order.
func (s *Screen) Widgets() []Widget {
	return []Widget{s.StatusBar, s.StatusPane, s.List}
}

// Render draws one complete frame. A calendar carrying an active custom
// status replaces the regular layout with a full page status.
func (s *Screen) Render(c canvas.Canvas, f *Frame, now time.Time) Pass {
	start := time.Now()
	if f.Calendar == nil {
		f.Calendar = &calendar.Calendar{}
	}
	if f.Pass == "" {
		f.Pass = uuid.NewString()
	}
	pass := Pass{ID: f.Pass}

	c.FillRect(layout.Rect{Width: s.width, Height: s.height}, canvas.White)

	if st := f.Calendar.Status; st.Active() {
		s.env.debugf(f, "screen", "custom status %q", st.Title)
		FullPageStatus(c, layout.Rect{Width: s.width, Height: s.height}, st, canvas.DefaultStyle)
		pass.FullPage = true
	} else {
		for _, w := range s.Widgets() {
			w.Render(c, now, f)
		}
		pass.List = f.List
	}

	pass.Duration = time.Since(start)
	s.env.Log.Add(logs.LogEntry{
		Pass:    f.Pass,
		Widget:  "screen",
		Level:   logs.LevelSuccess,
		Message: "frame rendered in " + pass.Duration.Round(time.Microsecond).String(),
	})
	return pass
}

// Draw renders f onto a fresh raster of the configured display size.
func Draw(cfg config.Config, env *Env, f *Frame, now time.Time) (*canvas.Raster, Pass, error) {
	r, err := canvas.NewRaster(cfg.Display.Width, cfg.Display.Height, env.Palette)
	if err != nil {
		return nil, Pass{}, err
	}
	pass := NewScreen(r, cfg, env).Render(r, f, now)
	return r, pass, nil
}
