package preview

import (
	"fmt"
	"strings"

	"github.com/cedi/meetingroom-display-epd/internal/logs"
)

const (
	logLines = 6
	// header, frame border and help line
	chromeLines = 5
)

func (m Model) View() string {
	if !m.ready {
		return "Loading preview..."
	}

	w := max(m.width, 40)
	var b strings.Builder

	header := titleStyle.Render(" epd-display preview ")
	b.WriteString(header + "  " + subtitleStyle.Render(m.statusLine()) + "\n")

	frame := m.frameView
	if m.err != nil {
		frame = errorStyle.Render(fmt.Sprintf("render failed: %v", m.err))
	} else if frame == "" {
		frame = subtitleStyle.Render("rendering...")
	}
	b.WriteString(borderStyle.Render(frame))
	b.WriteString("\n")

	if m.showLogs {
		b.WriteString(logBorderStyle.Width(w - 4).Render(m.renderLogs(w-4, logLines)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(" q: quit  r: render  l: logs  d: debug"))
	return b.String()
}

func (m Model) statusLine() string {
	if m.frame == nil {
		return m.opts.Config.Display.Palette
	}
	id := m.pass.ID
	if len(id) > 8 {
		id = id[:8]
	}
	s := fmt.Sprintf("%dx%d %s  pass %s  %s", m.frame.Width(), m.frame.Height(), m.frame.Palette().Name, id, m.rendered.Format("15:04:05"))
	if m.pass.FullPage {
		return s + "  full page status"
	}
	l := m.pass.List
	return s + fmt.Sprintf("  shown %d  +%d past  +%d future", len(l.Displayable), l.SkippedPast, l.OverflowFuture)
}

// frameArea is the cell grid left for the frame after the surrounding
// panels.
func (m Model) frameArea() (int, int) {
	cols := max(m.width, 40) - 4
	rows := m.height - chromeLines
	if m.showLogs {
		rows -= logLines + 2
	}
	return cols, max(rows, 4)
}

func (m Model) renderFrameView() string {
	if m.frame == nil || !m.ready {
		return ""
	}
	cols, rows := m.frameArea()
	return HalfBlocks(m.frame.Image(), cols, rows)
}

func (m Model) renderLogs(width int, maxLines int) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("RENDER LOG") + "\n")

	if len(m.logEntries) == 0 {
		b.WriteString(subtitleStyle.Render("  No render activity") + "\n")
		for i := 0; i < maxLines-2; i++ {
			b.WriteString("\n")
		}
		return b.String()
	}

	start := 0
	if len(m.logEntries) > maxLines-1 {
		start = len(m.logEntries) - (maxLines - 1)
	}
	entries := m.logEntries[start:]

	for _, e := range entries {
		b.WriteString(formatLogLine(e, width) + "\n")
	}
	for i := len(entries) + 1; i < maxLines; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func formatLogLine(e logs.LogEntry, width int) string {
	pass := e.Pass
	if len(pass) > 8 {
		pass = pass[:8]
	}
	widget := e.Widget
	if len(widget) > 10 {
		widget = widget[:10]
	}

	msg := e.Message
	maxMsg := max(width-34, 20)
	if len(msg) > maxMsg {
		msg = msg[:maxMsg-3] + "..."
	}

	line := fmt.Sprintf("  [%s] %-8s %-10s %s", e.Time.Format("15:04:05"), pass, widget, msg)
	switch e.Level {
	case logs.LevelSuccess:
		return successStyle.Render(line)
	case logs.LevelWarn:
		return warnStyle.Render(line)
	case logs.LevelError:
		return errorStyle.Render(line)
	case logs.LevelDebug:
		return debugStyle.Render(line)
	}
	return line
}
