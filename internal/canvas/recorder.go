package canvas

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cedi/meetingroom-display-epd/internal/layout"
)

// OpKind names a recorded draw call.
type OpKind string

const (
	OpText OpKind = "text"
	OpIcon OpKind = "icon"
	OpLine OpKind = "line"
	OpFill OpKind = "fill"
)

// Op is one recorded draw call. Rect is the box it occupied.
type Op struct {
	Kind     OpKind
	Rect     layout.Rect
	X1, Y1   int
	Text     string
	Align    layout.Alignment
	FontSize int
	Style    Style
}

func (o Op) String() string {
	r := o.Rect
	switch o.Kind {
	case OpText:
		return fmt.Sprintf("text  %3d,%3d %3dx%-3d %2dpt %-15s %s/%s %q",
			r.X, r.Y, r.Width, r.Height, o.FontSize, o.Align, o.Style.Foreground, o.Style.Background, o.Text)
	case OpIcon:
		return fmt.Sprintf("icon  %3d,%3d %3dx%-3d %-15s %s %s",
			r.X, r.Y, r.Width, r.Height, o.Align, o.Style.Foreground, o.Text)
	case OpLine:
		return fmt.Sprintf("line  %3d,%3d -> %3d,%3d %s", r.X, r.Y, o.X1, o.Y1, o.Style.Foreground)
	default:
		return fmt.Sprintf("fill  %3d,%3d %3dx%-3d %s", r.X, r.Y, r.Width, r.Height, o.Style.Background)
	}
}

// Recorder is a canvas with monospace metrics that keeps every draw call.
// A glyph is 2/3 of the point size wide and a line is 4/3 of it high.
type Recorder struct {
	width, height int
	size          int
	Ops           []Op
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height, size: DefaultFontSize}
}

func (r *Recorder) Width() int  { return r.width }
func (r *Recorder) Height() int { return r.height }

func (r *Recorder) SetFontSize(pt int) {
	if !supportedFontSize(pt) {
		pt = DefaultFontSize
	}
	r.size = pt
}

func (r *Recorder) FontSize() int { return r.size }

// CharWidth is the advance of one glyph at the current font size.
func (r *Recorder) CharWidth() int { return r.size * 2 / 3 }

func (r *Recorder) LineHeight() int { return r.size * 4 / 3 }

func (r *Recorder) MeasureText(text string) layout.TextSize {
	if text == "" {
		return layout.TextSize{}
	}
	return layout.TextSize{Width: utf8.RuneCountInString(text) * r.CharWidth(), Height: r.LineHeight()}
}

func (r *Recorder) DrawText(x, y int, text string, align layout.Alignment, st Style) layout.Rect {
	size := r.MeasureText(text)
	x, y = layout.Resolve(x, y, size, align)
	rect := layout.Rect{X: x, Y: y, Width: size.Width, Height: size.Height}.Clamp()
	r.Ops = append(r.Ops, Op{Kind: OpText, Rect: rect, Text: text, Align: align, FontSize: r.size, Style: st})
	return rect
}

func (r *Recorder) DrawIcon(x, y int, name string, size int, align layout.Alignment, st Style) layout.Rect {
	x, y = layout.Resolve(x, y, layout.TextSize{Width: size, Height: size}, align)
	rect := layout.Rect{X: x, Y: y, Width: size, Height: size}.Clamp()
	r.Ops = append(r.Ops, Op{Kind: OpIcon, Rect: rect, Text: name, Align: align, Style: st})
	return rect
}

func (r *Recorder) DrawLine(x0, y0, x1, y1 int, st Style) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Rect: layout.Rect{X: x0, Y: y0}, X1: x1, Y1: y1, Style: st})
}

func (r *Recorder) FillRect(rect layout.Rect, c Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Rect: rect, Style: Style{Foreground: c, Background: c}})
}

// Texts returns the recorded text ops in draw order.
func (r *Recorder) Texts() []Op {
	return r.filter(OpText)
}

// Icons returns the recorded icon ops in draw order.
func (r *Recorder) Icons() []Op {
	return r.filter(OpIcon)
}

func (r *Recorder) filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// FindText returns the first text op whose text contains s.
func (r *Recorder) FindText(s string) (Op, bool) {
	for _, op := range r.Ops {
		if op.Kind == OpText && strings.Contains(op.Text, s) {
			return op, true
		}
	}
	return Op{}, false
}

// String dumps one op per line.
func (r *Recorder) String() string {
	var b strings.Builder
	for _, op := range r.Ops {
		b.WriteString(op.String())
		b.WriteByte('\n')
	}
	return b.String()
}
