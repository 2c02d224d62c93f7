// Package layout holds the geometry shared by every widget: alignment flags,
// measured text sizes and the boxes returned by draw calls.
package layout

// Alignment is a bitset over the four axis flags. The center values set both
// flags of their axis, so they must be tested before the discrete flags.
type Alignment uint8

const (
	Left   Alignment = 1 << 0
	Right  Alignment = 1 << 1
	Top    Alignment = 1 << 2
	Bottom Alignment = 1 << 3

	HorizontalCenter = Left | Right
	VerticalCenter   = Top | Bottom
	Center           = HorizontalCenter | VerticalCenter
)

// Has reports whether every bit of flag is set.
func (a Alignment) Has(flag Alignment) bool {
	return a&flag == flag
}

func (a Alignment) String() string {
	h, v := "", ""
	switch {
	case a.Has(HorizontalCenter):
		h = "hcenter"
	case a.Has(Right):
		h = "right"
	case a.Has(Left):
		h = "left"
	}
	switch {
	case a.Has(VerticalCenter):
		v = "vcenter"
	case a.Has(Bottom):
		v = "bottom"
	case a.Has(Top):
		v = "top"
	}
	switch {
	case h == "":
		return v
	case v == "":
		return h
	}
	return h + "|" + v
}

// TextSize is the bounding box of a measured run in device pixels.
type TextSize struct {
	Width  int
	Height int
}

// Rect is a box on the canvas. After a draw call X/Y is the final top-left
// corner that was occupied.
type Rect struct {
	X, Y          int
	Width, Height int
}

func (r Rect) Size() TextSize {
	return TextSize{Width: r.Width, Height: r.Height}
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Union returns the smallest rect containing r and o. An empty r is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 {
		return o
	}
	out := r
	if o.X < out.X {
		out.X = o.X
	}
	if o.Y < out.Y {
		out.Y = o.Y
	}
	out.Width = max(r.Right(), o.Right()) - out.X
	out.Height = max(r.Bottom(), o.Bottom()) - out.Y
	return out
}

// Clamp pins a transiently negative origin to the canvas edge.
func (r Rect) Clamp() Rect {
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

// Resolve moves the anchor (x, y) to the top-left corner of a box of the given
// size so that the box satisfies align. The anchor describes the box itself:
// Top keeps y, Bottom moves the box up by its height.
func Resolve(x, y int, size TextSize, align Alignment) (int, int) {
	return resolveX(x, size.Width, align), resolveY(y, size.Height, align)
}

// ResolveBaseline returns the pen position for drawing text whose glyphs grow
// upward from the baseline. The anchor has the same meaning as in Resolve,
// the result is the bottom-left corner of the box instead of the top-left.
func ResolveBaseline(x, y int, size TextSize, align Alignment) (int, int) {
	x, top := Resolve(x, y, size, align)
	return x, top + size.Height
}

func resolveX(x, width int, align Alignment) int {
	switch {
	case align.Has(HorizontalCenter):
		return x - width/2
	case align.Has(Right):
		return x - width
	}
	return x
}

func resolveY(y, height int, align Alignment) int {
	switch {
	case align.Has(VerticalCenter):
		return y - height/2
	case align.Has(Bottom):
		return y - height
	}
	return y
}
