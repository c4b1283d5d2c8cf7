package compositor

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"beatsprite/internal/raster"
)

var flatColors = map[ColorScheme]color.RGBA{
	SchemeRed:    raster.MustHex("#ff0873"),
	SchemeBlue:   raster.MustHex("#08ffff"),
	SchemeYellow: raster.MustHex("#f8ff29"),
	SchemeGreen:  raster.MustHex("#07f70f"),
	SchemeOrange: raster.MustHex("#f7a707"),
}

var gradientStops = map[ColorScheme][]raster.Stop{
	SchemeRainbow: {
		raster.MustStop(0, "#fa1919"), raster.MustStop(0.2, "#eb9f13"), raster.MustStop(0.4, "#fef826"),
		raster.MustStop(0.6, "#15f039"), raster.MustStop(0.8, "#203bf4"), raster.MustStop(1, "#871ff5"),
	},
	SchemeRed: {
		raster.MustStop(0, "#ff0873"), raster.MustStop(0.25, "#bf0053"), raster.MustStop(0.5, "#ed1e42"),
		raster.MustStop(0.75, "#ff5b78"), raster.MustStop(1, "#ff10ad"),
	},
	SchemeBlue: {
		raster.MustStop(0, "#0089c7"), raster.MustStop(0.25, "#25b4c1"), raster.MustStop(0.5, "#96ecff"),
		raster.MustStop(0.75, "#478ceb"), raster.MustStop(1, "#34dddd"),
	},
	SchemeYellow: {
		raster.MustStop(0, "#f0cf38"), raster.MustStop(0.25, "#f2f922"), raster.MustStop(0.5, "#f2ff8a"),
		raster.MustStop(0.75, "#fff800"), raster.MustStop(1, "#c8fc13"),
	},
	SchemeGreen: {
		raster.MustStop(0, "#a0ff80"), raster.MustStop(0.25, "#00cd08"), raster.MustStop(0.5, "#69ff32"),
		raster.MustStop(0.75, "#14c34e"), raster.MustStop(1, "#8affbb"),
	},
	SchemeOrange: {
		raster.MustStop(0, "#ffd581"), raster.MustStop(0.25, "#f77307"), raster.MustStop(0.5, "#f7b407"),
		raster.MustStop(0.75, "#eb4113"), raster.MustStop(1, "#ff7c09"),
	},
}

// barColor is hsl(0, 0%, 40%): neutral enough for the overlay to tint.
var barColor = func() color.RGBA {
	r, g, b := colorful.Hsl(0, 0, 0.4).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}()

// overlayPaint picks the multiply overlay. Rainbow is always a gradient;
// an unknown scheme falls back to flat red.
func (c *Compositor) overlayPaint(p Params) raster.Paint {
	if p.UseGradient || p.ColorScheme == SchemeRainbow {
		if g, ok := c.gradient(p.ColorScheme); ok {
			return g
		}
	}
	if rgba, ok := flatColors[p.ColorScheme]; ok {
		return raster.Solid(rgba)
	}
	return raster.Solid(flatColors[SchemeRed])
}

// gradient returns the horizontal gradient for scheme, built once per canvas.
func (c *Compositor) gradient(scheme ColorScheme) (raster.Paint, bool) {
	if g, ok := c.gradients[scheme]; ok {
		return g, true
	}
	stops, ok := gradientStops[scheme]
	if !ok {
		return nil, false
	}
	g := raster.NewLinearGradient(0, 0, float64(c.canvas.Width()), 0, stops...)
	c.gradients[scheme] = g
	return g, true
}
