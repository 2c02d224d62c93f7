package preview

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.frameView = m.renderFrameView()

	case refreshMsg:
		return m, renderFrame(m.opts)

	case tickMsg:
		return m, tea.Batch(renderFrame(m.opts), tickEvery(time.Minute))

	case fileChangedMsg:
		m.opts.Log.Infof("", "preview", "%s changed, reloading", m.opts.WatchPath)
		return m, tea.Batch(renderFrame(m.opts), waitForChange(m.watcher.sub))

	case watcherErrMsg:
		m.opts.Log.Warnf("", "preview", "watcher: %v", msg.err)
		m.logEntries = m.opts.Log.Snapshot()
		return m, waitForWatcherErr(m.watcher.errc)

	case frameMsg:
		m.err = msg.err
		if msg.err == nil {
			m.frame = msg.frame
			m.pass = msg.pass
			m.rendered = m.opts.Now()
			m.frameView = m.renderFrameView()
		}
		m.logEntries = m.opts.Log.Snapshot()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, renderFrame(m.opts)
	case "l":
		m.showLogs = !m.showLogs
		m.frameView = m.renderFrameView()
	case "d":
		on := !m.opts.Log.Debug()
		m.opts.Log.SetDebug(on)
		return m, renderFrame(m.opts)
	}
	return m, nil
}
