// Package canvas defines the drawing sink the renderer writes into and its
// implementations: a paletted raster backed by real fonts and a recorder that
// keeps every draw call.
package canvas

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/cedi/meetingroom-display-epd/internal/layout"
)

// Color is a semantic panel color. Which ones exist depends on the palette.
type Color uint8

const (
	White Color = iota
	Black
	Red
	Green
	Blue
	Yellow
	Orange
	DarkGrey
	LightGrey
)

var colorNames = map[Color]string{
	White:     "white",
	Black:     "black",
	Red:       "red",
	Green:     "green",
	Blue:      "blue",
	Yellow:    "yellow",
	Orange:    "orange",
	DarkGrey:  "darkgrey",
	LightGrey: "lightgrey",
}

var colorValues = map[Color]color.RGBA{
	White:     {0xff, 0xff, 0xff, 0xff},
	Black:     {0x00, 0x00, 0x00, 0xff},
	Red:       {0xd0, 0x10, 0x10, 0xff},
	Green:     {0x10, 0xa0, 0x30, 0xff},
	Blue:      {0x10, 0x30, 0xd0, 0xff},
	Yellow:    {0xf0, 0xd0, 0x10, 0xff},
	Orange:    {0xf0, 0x80, 0x10, 0xff},
	DarkGrey:  {0x50, 0x50, 0x50, 0xff},
	LightGrey: {0xb0, 0xb0, 0xb0, 0xff},
}

func (c Color) String() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return fmt.Sprintf("color(%d)", c)
}

// RGBA returns the color used when the frame is exported.
func (c Color) RGBA() color.RGBA {
	return colorValues[c]
}

// ParseColor maps a config name to a Color.
func ParseColor(name string) (Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range colorNames {
		if n == name {
			return c, nil
		}
	}
	return Black, fmt.Errorf("unknown color %q", name)
}

// Style is the explicit color state of one draw call.
type Style struct {
	Foreground Color
	Background Color
}

// DefaultStyle is black ink on white paper.
var DefaultStyle = Style{Foreground: Black, Background: White}

func (s Style) Inverted() Style {
	return Style{Foreground: s.Background, Background: s.Foreground}
}

// Palette lists the colors a panel can show and how it emphasises content.
type Palette struct {
	Name   string
	Colors []Color
	Accent Color
	// InvertAccent draws emphasis as a filled black band with white ink
	// instead of accent colored ink.
	InvertAccent bool
}

// AccentStyle returns the style for emphasised content and whether the
// content's band has to be filled with the style background first.
func (p Palette) AccentStyle() (Style, bool) {
	if p.InvertAccent {
		return DefaultStyle.Inverted(), true
	}
	return Style{Foreground: p.Accent, Background: White}, false
}

func (p Palette) Has(c Color) bool {
	for _, pc := range p.Colors {
		if pc == c {
			return true
		}
	}
	return false
}

// PaletteByName builds one of the supported panel palettes: bw, 3c or 7c.
// accent is a color name or "invert"; empty picks the panel default.
func PaletteByName(name, accent string) (Palette, error) {
	var p Palette
	switch strings.ToLower(name) {
	case "bw", "":
		p = Palette{Name: "bw", Colors: []Color{White, Black}, Accent: Black, InvertAccent: true}
	case "3c":
		p = Palette{Name: "3c", Colors: []Color{White, Black, Red}, Accent: Red}
	case "7c":
		p = Palette{Name: "7c", Colors: []Color{White, Black, Red, Green, Blue, Yellow, Orange}, Accent: Red}
	default:
		return Palette{}, fmt.Errorf("unknown palette %q", name)
	}

	switch strings.ToLower(accent) {
	case "":
		return p, nil
	case "invert":
		p.InvertAccent = true
		return p, nil
	}
	c, err := ParseColor(accent)
	if err != nil {
		return Palette{}, err
	}
	if !p.Has(c) {
		return Palette{}, fmt.Errorf("accent %s not available on palette %s", c, p.Name)
	}
	if p.Name == "bw" {
		// a bw panel has no second ink, emphasis stays inverted
		return p, nil
	}
	p.Accent = c
	p.InvertAccent = false
	return p, nil
}

// Canvas is the drawing surface. Font selection is stateful: SetFontSize must
// precede the measurement and the paired draw.
type Canvas interface {
	Width() int
	Height() int

	SetFontSize(pt int)
	FontSize() int
	MeasureText(text string) layout.TextSize
	// LineHeight is the fixed advance between wrapped lines at the current font size.
	LineHeight() int

	DrawText(x, y int, text string, align layout.Alignment, st Style) layout.Rect
	DrawIcon(x, y int, name string, size int, align layout.Alignment, st Style) layout.Rect
	DrawLine(x0, y0, x1, y1 int, st Style)
	FillRect(r layout.Rect, c Color)
}

// Font sizes with a rasterized face. Other sizes fall back to DefaultFontSize.
var FontSizes = []int{9, 12, 18, 24}

const DefaultFontSize = 12

func supportedFontSize(pt int) bool {
	for _, s := range FontSizes {
		if s == pt {
			return true
		}
	}
	return false
}

// StrokeRect draws the outline of r with the given thickness.
func StrokeRect(c Canvas, r layout.Rect, thickness int, st Style) {
	c.FillRect(layout.Rect{X: r.X, Y: r.Y, Width: thickness, Height: r.Height}, st.Foreground)
	c.FillRect(layout.Rect{X: r.Right() - thickness, Y: r.Y, Width: thickness, Height: r.Height}, st.Foreground)
	c.FillRect(layout.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: thickness}, st.Foreground)
	c.FillRect(layout.Rect{X: r.X, Y: r.Bottom() - thickness, Width: r.Width, Height: thickness}, st.Foreground)
}
