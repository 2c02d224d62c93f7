// Package preview shows the rendered frame live in the terminal.
package preview

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cedi/meetingroom-display-epd/internal/calendar"
	"github.com/cedi/meetingroom-display-epd/internal/canvas"
	"github.com/cedi/meetingroom-display-epd/internal/config"
	"github.com/cedi/meetingroom-display-epd/internal/logs"
	"github.com/cedi/meetingroom-display-epd/internal/render"
)

// LoadFunc fetches the calendar for one refresh.
type LoadFunc func(ctx context.Context) (*calendar.Calendar, error)

type Options struct {
	Config config.Config
	Env    *render.Env
	Load   LoadFunc
	Device render.DeviceStatus
	// WatchPath reloads the preview whenever this file changes.
	WatchPath string
	Log       *logs.RingBuffer
	Now       func() time.Time
}

type tickMsg time.Time

type refreshMsg struct{}

type frameMsg struct {
	frame *canvas.Raster
	pass  render.Pass
	err   error
}

type Model struct {
	opts Options

	frame     *canvas.Raster
	frameView string
	pass      render.Pass
	rendered  time.Time
	err       error

	width    int
	height   int
	ready    bool
	showLogs bool

	logEntries []logs.LogEntry
	watcher    *fileWatcher
}

func NewModel(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return Model{opts: opts, showLogs: true}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{refreshData, tickEvery(time.Minute)}
	if m.watcher != nil {
		cmds = append(cmds, waitForChange(m.watcher.sub), waitForWatcherErr(m.watcher.errc))
	}
	return tea.Batch(cmds...)
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func refreshData() tea.Msg {
	return refreshMsg{}
}

// renderFrame loads the calendar and renders it. Load failures are drawn as
// a full page status like on the device.
func renderFrame(opts Options) tea.Cmd {
	return func() tea.Msg {
		now := opts.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 2*opts.Config.FetchTimeout()+time.Second)
		defer cancel()

		cal, err := opts.Load(ctx)
		if err != nil {
			opts.Log.Warnf("", "preview", "load: %v", err)
			cal = &calendar.Calendar{Status: calendar.StatusForError(err)}
		}
		frame, pass, err := render.Draw(opts.Config, opts.Env, &render.Frame{Calendar: cal, Device: opts.Device}, now)
		return frameMsg{frame: frame, pass: pass, err: err}
	}
}

// Run starts the preview and blocks until the user quits.
func Run(opts Options) error {
	m := NewModel(opts)
	if opts.WatchPath != "" {
		m.watcher = newFileWatcher(opts.WatchPath)
		go m.watcher.run()
		defer m.watcher.stop()
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
