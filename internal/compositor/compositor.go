// Package compositor turns one frame of analyser data plus the live entities
// into pixels: bars, sprites, the colour overlay and the pixel effects.
package compositor

import (
	"image/color"
	"math/rand"

	"beatsprite/internal/raster"
	"beatsprite/internal/sprite"
)

const (
	barMargin  = 5
	barSpacing = 3
	// barLift keeps silent frequency bins visible.
	barLift = 20
	// waveMid is the waveform byte value of silence.
	waveMid = 128
)

var black = color.RGBA{A: 255}

// Compositor draws frames onto a single canvas it owns.
type Compositor struct {
	canvas    *raster.Canvas
	rng       *rand.Rand
	gradients map[ColorScheme]raster.Paint
}

// New returns a compositor drawing onto canvas. rng feeds the noise effect.
func New(canvas *raster.Canvas, rng *rand.Rand) *Compositor {
	return &Compositor{
		canvas:    canvas,
		rng:       rng,
		gradients: make(map[ColorScheme]raster.Paint),
	}
}

// Canvas returns the surface frames are composed onto.
func (c *Compositor) Canvas() *raster.Canvas { return c.canvas }

// Compose renders one frame. Layers go bottom to top: black background,
// bars, entities, multiply overlay, the player in game mode, then the
// per-pixel effects.
func (c *Compositor) Compose(p Params, freq, wave []byte, reg *sprite.Registry) {
	c.canvas.Fill(black)

	n := len(freq)
	if n == 0 {
		n = len(wave)
	}
	if p.DataType == DataWaveform {
		c.drawWaveBars(wave, n)
	} else {
		c.drawFreqBars(freq, n)
	}

	if reg != nil {
		reg.Draw(c.canvas)
	}

	c.canvas.MultiplyFill(c.overlayPaint(p))

	if p.GameMode && reg != nil {
		reg.DrawPlayer(c.canvas)
	}

	if p.ShowNoise || p.ShowInvert {
		pointEffects(c.canvas.Pix(), p, c.rng)
	}
	if p.ShowEmboss {
		emboss(c.canvas.Pix(), c.canvas.Stride())
	}
}

// barWidth splits the canvas width between n bars. Both data types size
// their bars by the frequency bin count.
func (c *Compositor) barWidth(n int) float64 {
	return (float64(c.canvas.Width())-barMargin)/float64(n) - barSpacing
}

// drawFreqBars mirrors the spectrum: rising from the bottom left to right
// and hanging from the top right to left.
func (c *Compositor) drawFreqBars(freq []byte, n int) {
	if len(freq) == 0 {
		return
	}
	w, h := float64(c.canvas.Width()), float64(c.canvas.Height())
	bw := c.barWidth(n)
	for i, v := range freq {
		off := barMargin + float64(i)*(bw+barSpacing)
		bh := float64(v) + barLift
		c.canvas.FillRect(off, h, bw, bh, raster.PivotBottom, barColor)
		c.canvas.FillRect(w-off, 0, bw, bh, raster.PivotTop, barColor)
	}
}

// drawWaveBars draws the waveform three times, each bar centred on its
// row: across the middle (thickened by the bar width) and along both edges.
func (c *Compositor) drawWaveBars(wave []byte, n int) {
	if len(wave) == 0 {
		return
	}
	h := float64(c.canvas.Height())
	bw := c.barWidth(n)
	for i, v := range wave {
		x := barMargin + float64(i)*(bw+barSpacing)
		d := float64(int(v) - waveMid)
		c.canvas.FillRect(x, h/2, bw, d+bw, raster.PivotCenter, barColor)
		c.canvas.FillRect(x, 0, bw, d, raster.PivotCenter, barColor)
		c.canvas.FillRect(x, h, bw, d, raster.PivotCenter, barColor)
	}
}
