package canvas

import (
	"image"
	"math"
	"sort"
)

// Icon names understood by DrawIcon. Icons are drawn from simple strokes
// scaled to the requested size, so every size is available.
const (
	IconCalendar  = "calendar"
	IconTime      = "time"
	IconWarning   = "warning"
	IconXSymbol   = "x_symbol"
	IconRefresh   = "refresh"
	IconCloudDown = "cloud_down"
	IconWiFi      = "wifi"
	IconWiFi3     = "wifi_3_bar"
	IconWiFi2     = "wifi_2_bar"
	IconWiFi1     = "wifi_1_bar"
	IconWiFiX     = "wifi_x"
	IconBattery   = "battery_full"
	IconBattery6  = "battery_6_bar"
	IconBattery5  = "battery_5_bar"
	IconBattery4  = "battery_4_bar"
	IconBattery3  = "battery_3_bar"
	IconBattery2  = "battery_2_bar"
	IconBattery1  = "battery_1_bar"
	IconBattery0  = "battery_0_bar"
	IconBatteryX  = "battery_alert"
)

// pen draws in unit coordinates relative to an icon box.
type pen struct {
	r   *Raster
	box image.Rectangle
	ink uint8
	w   int
}

func (p pen) pt(fx, fy float64) (int, int) {
	return p.box.Min.X + int(math.Round(fx*float64(p.box.Dx()-1))),
		p.box.Min.Y + int(math.Round(fy*float64(p.box.Dy()-1)))
}

func (p pen) line(x0, y0, x1, y1 float64) {
	ax, ay := p.pt(x0, y0)
	bx, by := p.pt(x1, y1)
	p.r.line(ax, ay, bx, by, p.w, p.ink)
}

func (p pen) poly(pts ...float64) {
	for i := 0; i+3 < len(pts); i += 2 {
		p.line(pts[i], pts[i+1], pts[i+2], pts[i+3])
	}
}

func (p pen) rect(x0, y0, x1, y1 float64) {
	p.poly(x0, y0, x1, y0, x1, y1, x0, y1, x0, y0)
}

func (p pen) fill(x0, y0, x1, y1 float64) {
	ax, ay := p.pt(x0, y0)
	bx, by := p.pt(x1, y1)
	p.r.fill(image.Rect(ax, ay, bx+1, by+1), p.ink)
}

func (p pen) arc(cx, cy, rad, from, to float64) {
	steps := 32
	prevX, prevY := cx+rad*math.Cos(from), cy+rad*math.Sin(from)
	for i := 1; i <= steps; i++ {
		a := from + (to-from)*float64(i)/float64(steps)
		x, y := cx+rad*math.Cos(a), cy+rad*math.Sin(a)
		p.line(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
}

func (p pen) circle(cx, cy, rad float64) {
	p.arc(cx, cy, rad, 0, 2*math.Pi)
}

func (p pen) wifiBars(n int) {
	for i := 0; i < 4; i++ {
		x0 := 0.1 + float64(i)*0.22
		y0 := 0.8 - float64(i+1)*0.17
		if i < n {
			p.fill(x0, y0, x0+0.14, 0.85)
		} else {
			p.rect(x0, y0, x0+0.14, 0.85)
		}
	}
}

func (p pen) batteryBars(n int) {
	p.rect(0.05, 0.3, 0.85, 0.7)
	p.fill(0.86, 0.42, 0.95, 0.58)
	for i := 0; i < n; i++ {
		x0 := 0.12 + float64(i)*0.115
		p.fill(x0, 0.38, x0+0.08, 0.62)
	}
}

var icons = map[string]func(p pen){
	IconCalendar: func(p pen) {
		p.rect(0.1, 0.15, 0.9, 0.9)
		p.fill(0.1, 0.15, 0.9, 0.32)
		p.line(0.3, 0.05, 0.3, 0.22)
		p.line(0.7, 0.05, 0.7, 0.22)
	},
	IconTime: func(p pen) {
		p.circle(0.5, 0.5, 0.42)
		p.line(0.5, 0.5, 0.5, 0.2)
		p.line(0.5, 0.5, 0.72, 0.62)
	},
	IconWarning: func(p pen) {
		p.poly(0.5, 0.06, 0.94, 0.9, 0.06, 0.9, 0.5, 0.06)
		p.line(0.5, 0.35, 0.5, 0.64)
		p.fill(0.46, 0.72, 0.54, 0.8)
	},
	IconXSymbol: func(p pen) {
		p.line(0.15, 0.15, 0.85, 0.85)
		p.line(0.85, 0.15, 0.15, 0.85)
	},
	IconRefresh: func(p pen) {
		p.arc(0.5, 0.5, 0.32, 0.3, 2*math.Pi-0.3)
		p.poly(0.72, 0.32, 0.82, 0.5, 0.95, 0.36)
	},
	IconCloudDown: func(p pen) {
		p.arc(0.35, 0.5, 0.18, math.Pi/2, 3*math.Pi/2)
		p.arc(0.55, 0.38, 0.22, math.Pi, 2*math.Pi)
		p.arc(0.72, 0.52, 0.16, -math.Pi/2, math.Pi/2)
		p.line(0.35, 0.68, 0.72, 0.68)
		p.line(0.52, 0.5, 0.52, 0.95)
		p.poly(0.4, 0.82, 0.52, 0.95, 0.64, 0.82)
	},
	IconWiFi:  func(p pen) { p.wifiBars(4) },
	IconWiFi3: func(p pen) { p.wifiBars(3) },
	IconWiFi2: func(p pen) { p.wifiBars(2) },
	IconWiFi1: func(p pen) { p.wifiBars(1) },
	IconWiFiX: func(p pen) {
		p.wifiBars(0)
		p.line(0.1, 0.1, 0.9, 0.9)
		p.line(0.9, 0.1, 0.1, 0.9)
	},
	IconBattery:  func(p pen) { p.batteryBars(6); p.fill(0.12, 0.38, 0.8, 0.62) },
	IconBattery6: func(p pen) { p.batteryBars(6) },
	IconBattery5: func(p pen) { p.batteryBars(5) },
	IconBattery4: func(p pen) { p.batteryBars(4) },
	IconBattery3: func(p pen) { p.batteryBars(3) },
	IconBattery2: func(p pen) { p.batteryBars(2) },
	IconBattery1: func(p pen) { p.batteryBars(1) },
	IconBattery0: func(p pen) { p.batteryBars(0) },
	IconBatteryX: func(p pen) {
		p.batteryBars(0)
		p.line(0.45, 0.36, 0.45, 0.54)
		p.fill(0.43, 0.58, 0.47, 0.63)
	},
}

func drawIcon(p pen, name string) {
	if fn, ok := icons[name]; ok {
		fn(p)
		return
	}
	// unknown icon: crossed box
	p.rect(0, 0, 1, 1)
	p.line(0, 0, 1, 1)
}

// IconNames lists the known icons, sorted.
func IconNames() []string {
	names := make([]string, 0, len(icons))
	for n := range icons {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HasIcon reports whether name is a known icon.
func HasIcon(name string) bool {
	_, ok := icons[name]
	return ok
}
