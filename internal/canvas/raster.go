package canvas

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/cedi/meetingroom-display-epd/internal/layout"
)

// fontDPI maps point sizes to roughly the pixel heights of the panel fonts.
const fontDPI = 96

var (
	parseOnce  sync.Once
	parsedFont *opentype.Font
	parseErr   error
)

func regularFont() (*opentype.Font, error) {
	parseOnce.Do(func() {
		parsedFont, parseErr = opentype.Parse(goregular.TTF)
	})
	return parsedFont, parseErr
}

// Raster is an in-memory paletted frame. Text is rendered without
// anti-aliasing: glyph coverage is thresholded to the ink color, the way an
// e-paper panel shows it.
type Raster struct {
	img     *image.Paletted
	palette Palette
	index   map[Color]uint8
	faces   map[int]font.Face
	size    int
}

// NewRaster allocates a width x height frame cleared to white.
func NewRaster(width, height int, p Palette) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	f, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	faces := make(map[int]font.Face, len(FontSizes))
	for _, pt := range FontSizes {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    float64(pt),
			DPI:     fontDPI,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("face %dpt: %w", pt, err)
		}
		faces[pt] = face
	}

	pal := make(color.Palette, 0, len(p.Colors))
	index := make(map[Color]uint8, len(p.Colors))
	for i, c := range p.Colors {
		pal = append(pal, c.RGBA())
		index[c] = uint8(i)
	}

	r := &Raster{
		img:     image.NewPaletted(image.Rect(0, 0, width, height), pal),
		palette: p,
		index:   index,
		faces:   faces,
		size:    DefaultFontSize,
	}
	r.Clear(White)
	return r, nil
}

func (r *Raster) Width() int  { return r.img.Bounds().Dx() }
func (r *Raster) Height() int { return r.img.Bounds().Dy() }

// Image exposes the frame for encoding or previewing.
func (r *Raster) Image() *image.Paletted { return r.img }

func (r *Raster) Palette() Palette { return r.palette }

func (r *Raster) SetFontSize(pt int) {
	if !supportedFontSize(pt) {
		log.Printf("[canvas] font size %d is not available, using %d", pt, DefaultFontSize)
		pt = DefaultFontSize
	}
	r.size = pt
}

func (r *Raster) FontSize() int { return r.size }

func (r *Raster) face() font.Face { return r.faces[r.size] }

func (r *Raster) LineHeight() int {
	m := r.face().Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

func (r *Raster) MeasureText(text string) layout.TextSize {
	if text == "" {
		return layout.TextSize{}
	}
	return layout.TextSize{
		Width:  font.MeasureString(r.face(), text).Ceil(),
		Height: r.LineHeight(),
	}
}

func (r *Raster) DrawText(x, y int, text string, align layout.Alignment, st Style) layout.Rect {
	size := r.MeasureText(text)
	x, top := layout.Resolve(x, y, size, align)
	if size.Width == 0 {
		return layout.Rect{X: x, Y: top}.Clamp()
	}

	mask := image.NewAlpha(image.Rect(0, 0, size.Width, size.Height))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: r.face(),
		Dot:  fixed.P(0, r.face().Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	ink := r.colorIndex(st.Foreground)
	for py := 0; py < size.Height; py++ {
		for px := 0; px < size.Width; px++ {
			if mask.AlphaAt(px, py).A >= 0x80 {
				r.set(x+px, top+py, ink)
			}
		}
	}
	return layout.Rect{X: x, Y: top, Width: size.Width, Height: size.Height}.Clamp()
}

func (r *Raster) DrawIcon(x, y int, name string, size int, align layout.Alignment, st Style) layout.Rect {
	x, y = layout.Resolve(x, y, layout.TextSize{Width: size, Height: size}, align)
	box := image.Rect(x, y, x+size, y+size)
	drawIcon(pen{r: r, box: box, ink: r.colorIndex(st.Foreground), w: max(1, size/16)}, name)
	return layout.Rect{X: x, Y: y, Width: size, Height: size}.Clamp()
}

func (r *Raster) DrawLine(x0, y0, x1, y1 int, st Style) {
	r.line(x0, y0, x1, y1, 1, r.colorIndex(st.Foreground))
}

func (r *Raster) FillRect(rect layout.Rect, c Color) {
	r.fill(image.Rect(rect.X, rect.Y, rect.Right(), rect.Bottom()), r.colorIndex(c))
}

// Clear paints the whole frame.
func (r *Raster) Clear(c Color) {
	idx := r.colorIndex(c)
	for i := range r.img.Pix {
		r.img.Pix[i] = idx
	}
}

// EncodePNG writes the frame as an indexed PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// Digest fingerprints the frame contents, used to skip refreshing a panel
// with an identical image.
func (r *Raster) Digest() string {
	h, _ := blake2b.New256(nil)
	b := r.img.Bounds()
	fmt.Fprintf(h, "%dx%d:%s:", b.Dx(), b.Dy(), r.palette.Name)
	h.Write(r.img.Pix)
	return hex.EncodeToString(h.Sum(nil))
}

// colorIndex maps colors missing from the palette to black ink.
func (r *Raster) colorIndex(c Color) uint8 {
	if idx, ok := r.index[c]; ok {
		return idx
	}
	return r.index[Black]
}

func (r *Raster) set(x, y int, idx uint8) {
	if !image.Pt(x, y).In(r.img.Rect) {
		return
	}
	r.img.Pix[r.img.PixOffset(x, y)] = idx
}

func (r *Raster) fill(rect image.Rectangle, idx uint8) {
	rect = rect.Intersect(r.img.Rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := r.img.PixOffset(rect.Min.X, y)
		for x := 0; x < rect.Dx(); x++ {
			r.img.Pix[off+x] = idx
		}
	}
}

// line draws a Bresenham line with a square brush of width w.
func (r *Raster) line(x0, y0, x1, y1, w int, idx uint8) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	off := w / 2
	e := dx + dy
	for {
		if w <= 1 {
			r.set(x0, y0, idx)
		} else {
			r.fill(image.Rect(x0-off, y0-off, x0-off+w, y0-off+w), idx)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
