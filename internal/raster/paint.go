package raster

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// gradientLUTSize is the resolution of a precomputed gradient ramp.
const gradientLUTSize = 1024

// Point is a position on the canvas.
type Point struct {
	X, Y float64
}

// Paint yields the fill colour for a pixel.
type Paint interface {
	RGBAAt(x, y int) color.RGBA
}

// Solid paints every pixel with one opaque colour.
type Solid color.RGBA

// RGBAAt implements Paint.
func (s Solid) RGBAAt(int, int) color.RGBA { return color.RGBA(s) }

// Stop is one colour stop of a linear gradient, Offset in [0, 1].
type Stop struct {
	Offset float64
	Color  colorful.Color
}

// LinearGradient interpolates its stops along the axis (x0, y0) → (x1, y1).
// Pixels before the first or after the last stop take the end colours.
type LinearGradient struct {
	x0, y0 float64
	dx, dy float64
	len2   float64
	lut    [gradientLUTSize]color.RGBA
}

// NewLinearGradient precomputes the gradient ramp. At least one stop is required.
func NewLinearGradient(x0, y0, x1, y1 float64, stops ...Stop) *LinearGradient {
	if len(stops) == 0 {
		panic("raster: gradient needs at least one stop")
	}
	sorted := append([]Stop(nil), stops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	g := &LinearGradient{x0: x0, y0: y0, dx: x1 - x0, dy: y1 - y0}
	g.len2 = g.dx*g.dx + g.dy*g.dy
	for i := range g.lut {
		t := float64(i) / (gradientLUTSize - 1)
		g.lut[i] = toRGBA(sampleStops(sorted, t))
	}
	return g
}

// RGBAAt implements Paint by projecting the pixel centre onto the axis.
func (g *LinearGradient) RGBAAt(x, y int) color.RGBA {
	if g.len2 == 0 {
		return g.lut[0]
	}
	px, py := float64(x)+0.5-g.x0, float64(y)+0.5-g.y0
	t := (px*g.dx + py*g.dy) / g.len2
	t = math.Max(0, math.Min(1, t))
	return g.lut[int(math.Round(t*(gradientLUTSize-1)))]
}

func sampleStops(stops []Stop, t float64) colorful.Color {
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		if t > stops[i].Offset {
			continue
		}
		a, b := stops[i-1], stops[i]
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		return a.Color.BlendRgb(b.Color, (t-a.Offset)/span)
	}
	return stops[len(stops)-1].Color
}

// Hex parses a "#rrggbb" colour into an opaque RGBA.
func Hex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return toRGBA(c), nil
}

// MustHex is Hex for compile-time palette literals.
func MustHex(s string) color.RGBA {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MustStop builds a gradient stop from a hex literal.
func MustStop(offset float64, hex string) Stop {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	return Stop{Offset: offset, Color: c}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func quadAt(p0, p1, p2 Point, t float64) Point {
	u := 1 - t
	return Point{
		X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
		Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
	}
}

func cubicAt(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
