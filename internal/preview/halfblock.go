package preview

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

// Downsample shrinks img by a whole factor until it fits cols x 2*rows
// pixels. Each output pixel takes the most frequent non-white color of the
// block it covers, so one pixel wide lines survive.
func Downsample(img *image.Paletted, cols, rows int) [][]color.Color {
	b := img.Bounds()
	if cols < 1 || rows < 1 || b.Empty() {
		return nil
	}
	step := max(ceilDiv(b.Dx(), cols), ceilDiv(b.Dy(), 2*rows), 1)
	outW, outH := ceilDiv(b.Dx(), step), ceilDiv(b.Dy(), step)

	out := make([][]color.Color, outH)
	counts := make([]int, len(img.Palette))
	for oy := 0; oy < outH; oy++ {
		out[oy] = make([]color.Color, outW)
		for ox := 0; ox < outW; ox++ {
			clear(counts)
			x0, y0 := b.Min.X+ox*step, b.Min.Y+oy*step
			x1, y1 := min(x0+step, b.Max.X), min(y0+step, b.Max.Y)
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					counts[img.ColorIndexAt(x, y)]++
				}
			}
			out[oy][ox] = dominant(img.Palette, counts)
		}
	}
	return out
}

func dominant(p color.Palette, counts []int) color.Color {
	best, bestCount := -1, 0
	for i, n := range counts {
		if n > bestCount && !isWhite(p[i]) {
			best, bestCount = i, n
		}
	}
	if best < 0 {
		return color.White
	}
	return p[best]
}

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

// HalfBlocks draws img as terminal text, two pixel rows per line: the upper
// half block takes the top pixel as foreground and the bottom pixel as
// background.
func HalfBlocks(img *image.Paletted, cols, rows int) string {
	px := Downsample(img, cols, rows)
	var b strings.Builder
	for y := 0; y < len(px); y += 2 {
		top := px[y]
		var bottom []color.Color
		if y+1 < len(px) {
			bottom = px[y+1]
		}
		for x := 0; x < len(top); {
			n := 1
			for x+n < len(top) && sameCell(top, bottom, x, x+n) {
				n++
			}
			style := lipgloss.NewStyle().Foreground(hex(top[x]))
			if bottom != nil {
				style = style.Background(hex(bottom[x]))
			}
			b.WriteString(style.Render(strings.Repeat(halfBlock, n)))
			x += n
		}
		if y+2 < len(px) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sameCell(top, bottom []color.Color, a, b int) bool {
	if hex(top[a]) != hex(top[b]) {
		return false
	}
	return bottom == nil || hex(bottom[a]) == hex(bottom[b])
}
