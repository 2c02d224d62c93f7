// Package wrap breaks text into lines that fit a pixel width, truncating the
// last permitted line with an ellipsis.
package wrap

import (
	"strings"

	"github.com/cedi/meetingroom-display-epd/internal/canvas"
	"github.com/cedi/meetingroom-display-epd/internal/layout"
)

// Ellipsis terminates a truncated last line.
const Ellipsis = "..."

// Measurer measures single unbroken runs at the currently selected font size.
type Measurer interface {
	MeasureText(text string) layout.TextSize
	LineHeight() int
}

var whitespace = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// Wrap greedily breaks text into at most maxLines lines no wider than
// maxWidth. Lines break after spaces, hyphens and colons; the last permitted
// line only breaks at spaces so an ellipsis can follow a whole word. A token
// wider than maxWidth is emitted at its natural width.
//
// The returned size is the widest line by the number of lines times the
// font's line height.
func Wrap(m Measurer, text string, maxWidth, maxLines int) ([]string, layout.TextSize) {
	if maxLines < 1 {
		maxLines = 1
	}
	remaining := strings.TrimSpace(whitespace.Replace(text))

	var lines []string
	var size layout.TextSize
	for len(lines) < maxLines && remaining != "" {
		last := len(lines) == maxLines-1
		var line string
		line, remaining = nextLine(m, remaining, maxWidth, last)
		lines = append(lines, line)
		if w := m.MeasureText(line).Width; w > size.Width {
			size.Width = w
		}
	}
	size.Height = len(lines) * m.LineHeight()
	return lines, size
}

// Bounds is the size Wrap would occupy, without the lines.
func Bounds(m Measurer, text string, maxWidth, maxLines int) layout.TextSize {
	_, size := Wrap(m, text, maxWidth, maxLines)
	return size
}

func nextLine(m Measurer, text string, maxWidth int, last bool) (string, string) {
	fits := func(s string) bool { return m.MeasureText(s).Width <= maxWidth }
	if fits(text) {
		return text, ""
	}

	breaks := breakPoints(text, last)
	for i := len(breaks) - 1; i >= 0; i-- {
		head, tail := split(text, breaks[i])
		if head == "" {
			continue
		}
		if last {
			if fits(head + Ellipsis) {
				return head + Ellipsis, tail
			}
			continue
		}
		if fits(head) {
			return head, tail
		}
	}

	if last {
		// no room for the ellipsis, keep the widest prefix that fits
		for i := len(breaks) - 1; i >= 0; i-- {
			if head, tail := split(text, breaks[i]); head != "" && fits(head) {
				return head, tail
			}
		}
	}

	// nothing fits: emit the first token at its natural width
	for _, b := range breaks {
		if head, tail := split(text, b); head != "" {
			return head, tail
		}
	}
	return text, ""
}

// breakPoints returns the byte offsets of characters a line may end at.
func breakPoints(text string, last bool) []int {
	var out []int
	for i, r := range text {
		switch r {
		case ' ':
			out = append(out, i)
		case '-', ':':
			if !last {
				out = append(out, i)
			}
		}
	}
	return out
}

// split breaks text at offset i. A space is consumed, hyphens and colons stay
// at the end of the head.
func split(text string, i int) (string, string) {
	tail := strings.TrimLeft(text[i+1:], " ")
	if text[i] == ' ' {
		return strings.TrimRight(text[:i], " "), tail
	}
	return text[:i+1], tail
}

// Draw wraps text and draws it as one block anchored at (x, y). The vertical
// alignment applies to the whole block, the horizontal alignment to every
// line. It returns the box covering all drawn lines.
func Draw(c canvas.Canvas, x, y int, text string, align layout.Alignment, maxWidth, maxLines int, st canvas.Style) layout.Rect {
	lines, size := Wrap(c, text, maxWidth, maxLines)
	_, top := layout.Resolve(x, y, size, align)

	lineAlign := align &^ layout.VerticalCenter
	lineAlign |= layout.Top

	var box layout.Rect
	for i, line := range lines {
		r := c.DrawText(x, top+i*c.LineHeight(), line, lineAlign, st)
		box = box.Union(r)
	}
	if len(lines) == 0 {
		box = layout.Rect{X: x, Y: top}.Clamp()
	}
	return box
}
