// Package raster implements the drawing surface the visualizer renders
// into: an RGBA pixel buffer plus the handful of filled and stroked
// primitives the compositor and sprites issue, rasterized in software with
// golang.org/x/image/vector.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// Pivot selects which point of a rectangle the (x, y) anchor refers to.
type Pivot uint8

const (
	// PivotCenter anchors the rectangle at its centre.
	PivotCenter Pivot = iota + 1
	// PivotTop anchors the rectangle at the middle of its top edge; it grows downward.
	PivotTop
	// PivotBottom anchors the rectangle at the middle of its bottom edge; it grows upward.
	PivotBottom
)

// curveSegments is the number of line segments a Bézier is flattened into
// before stroking.
const curveSegments = 48

// circleKappa places cubic control points so four arcs approximate a circle.
const circleKappa = 0.5522847498

// Canvas is a fixed-size RGBA surface.
type Canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// NewCanvas allocates a canvas. Non-positive sizes are a programming error.
func NewCanvas(width, height int) *Canvas {
	if width <= 0 || height <= 0 {
		panic("raster: canvas size must be positive")
	}
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image exposes the backing image. The pixel slice is shared, not copied.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Pix returns the raw RGBA quadruplets, row-major.
func (c *Canvas) Pix() []byte { return c.img.Pix }

// Stride returns the byte distance between vertically adjacent pixels.
func (c *Canvas) Stride() int { return c.img.Stride }

// Fill overwrites every pixel with col.
func (c *Canvas) Fill(col color.RGBA) {
	pix := c.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = col.R
		pix[i+1] = col.G
		pix[i+2] = col.B
		pix[i+3] = col.A
	}
}

// FillRect fills a w×h rectangle anchored at (x, y) by pivot. Negative
// extents flip the rectangle around the anchor the way a 2D canvas does.
func (c *Canvas) FillRect(x, y, w, h float64, pivot Pivot, col color.Color) {
	var left, top float64
	switch pivot {
	case PivotTop:
		left, top = x-w/2, y
	case PivotBottom:
		left, top = x-w/2, y-h
	default:
		left, top = x-w/2, y-h/2
	}
	right, bottom := left+w, top+h
	if left > right {
		left, right = right, left
	}
	if top > bottom {
		top, bottom = bottom, top
	}
	if right-left <= 0 || bottom-top <= 0 {
		return
	}
	c.begin()
	c.z.MoveTo(float32(left), float32(top))
	c.z.LineTo(float32(right), float32(top))
	c.z.LineTo(float32(right), float32(bottom))
	c.z.LineTo(float32(left), float32(bottom))
	c.z.ClosePath()
	c.flush(col)
}

// FillCircle fills a circle of radius r centred on (x, y).
func (c *Canvas) FillCircle(x, y, r float64, col color.Color) {
	if r <= 0 {
		return
	}
	k := r * circleKappa
	c.begin()
	c.z.MoveTo(f32(x+r), f32(y))
	c.z.CubeTo(f32(x+r), f32(y+k), f32(x+k), f32(y+r), f32(x), f32(y+r))
	c.z.CubeTo(f32(x-k), f32(y+r), f32(x-r), f32(y+k), f32(x-r), f32(y))
	c.z.CubeTo(f32(x-r), f32(y-k), f32(x-k), f32(y-r), f32(x), f32(y-r))
	c.z.CubeTo(f32(x+k), f32(y-r), f32(x+r), f32(y-k), f32(x+r), f32(y))
	c.z.ClosePath()
	c.flush(col)
}

// FillPolygon fills a regular polygon with the given number of sides
// inscribed in a circle of radius r, first vertex at angle rotation.
func (c *Canvas) FillPolygon(x, y, r float64, sides int, rotation float64, col color.Color) {
	if sides < 3 || r <= 0 {
		return
	}
	step := 2 * math.Pi / float64(sides)
	c.begin()
	for i := 0; i < sides; i++ {
		a := step*float64(i) + rotation
		px, py := x+r*math.Cos(a), y+r*math.Sin(a)
		if i == 0 {
			c.z.MoveTo(f32(px), f32(py))
			continue
		}
		c.z.LineTo(f32(px), f32(py))
	}
	c.z.ClosePath()
	c.flush(col)
}

// StrokeQuadratic strokes the closed path start → quadratic curve → end → start.
func (c *Canvas) StrokeQuadratic(start, ctrl, end Point, width float64, col color.Color) {
	pts := make([]Point, 0, curveSegments+2)
	for i := 0; i <= curveSegments; i++ {
		pts = append(pts, quadAt(start, ctrl, end, float64(i)/curveSegments))
	}
	pts = append(pts, start)
	c.strokePolyline(pts, width, col)
}

// StrokeCubic strokes the closed path start → cubic curve → end → start.
func (c *Canvas) StrokeCubic(start, ctrl1, ctrl2, end Point, width float64, col color.Color) {
	pts := make([]Point, 0, curveSegments+2)
	for i := 0; i <= curveSegments; i++ {
		pts = append(pts, cubicAt(start, ctrl1, ctrl2, end, float64(i)/curveSegments))
	}
	pts = append(pts, start)
	c.strokePolyline(pts, width, col)
}

// MultiplyFill blends paint over the whole canvas with the multiply
// operator. The canvas is assumed opaque, so alpha is left untouched.
func (c *Canvas) MultiplyFill(p Paint) {
	w, h := c.Width(), c.Height()
	pix, stride := c.img.Pix, c.img.Stride
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			src := p.RGBAAt(x, y)
			i := x * 4
			row[i] = mul255(row[i], src.R)
			row[i+1] = mul255(row[i+1], src.G)
			row[i+2] = mul255(row[i+2], src.B)
		}
	}
}

// strokePolyline covers every segment with a quad of the given width. All
// quads share one orientation so overlapping joints accumulate rather than
// cancel.
func (c *Canvas) strokePolyline(pts []Point, width float64, col color.Color) {
	if width <= 0 || len(pts) < 2 {
		return
	}
	hw := width / 2
	c.begin()
	drew := false
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l < 1e-9 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		c.z.MoveTo(f32(a.X+nx), f32(a.Y+ny))
		c.z.LineTo(f32(b.X+nx), f32(b.Y+ny))
		c.z.LineTo(f32(b.X-nx), f32(b.Y-ny))
		c.z.LineTo(f32(a.X-nx), f32(a.Y-ny))
		c.z.ClosePath()
		drew = true
	}
	if drew {
		c.flush(col)
	}
}

func (c *Canvas) begin() {
	c.z.Reset(c.Width(), c.Height())
}

func (c *Canvas) flush(col color.Color) {
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func mul255(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}

func f32(v float64) float32 { return float32(v) }
