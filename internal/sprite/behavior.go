package sprite

import (
	"image/color"
	"math"

	"beatsprite/internal/raster"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func (r *Registry) update(e *Entity, freq, wave []byte) {
	switch e.Kind {
	case KindEmitter:
		r.updateEmitter(e, freq)
	case KindProjectile:
		r.updateProjectile(e)
	case KindBurst:
		r.updateBurst(e)
	case KindQuadCurve, KindCubicCurve:
		updateCurve(e, wave)
	case KindPlayer:
		// pointer driven, see UpdatePlayer
	}
}

func (r *Registry) updateEmitter(e *Entity, freq []byte) {
	e.Move()
	e.bounce()

	st := &e.emitter
	amp := amplitude(freq, st.node)
	st.drawSize = amp*st.maxSize + e.Size

	if st.cooldown <= 0 && (jumped(st.prevAmp, amp) || amp > loudThreshold) {
		r.pop(e)
		st.cooldown = EmitterCooldown
	}
	st.prevAmp = amp
	if st.cooldown > 0 {
		st.cooldown--
	}
}

// amplitude normalizes one frequency bin to [0, 1]. The bin index is
// clamped to the array so short arrays still read their last bin.
func amplitude(freq []byte, node int) float64 {
	if len(freq) == 0 {
		return 0
	}
	if node >= len(freq) {
		node = len(freq) - 1
	}
	return float64(freq[node]) / 255
}

// jumped reports a relative rise of more than 20%. A silent previous frame
// never counts as a jump.
func jumped(prev, cur float64) bool {
	if prev == 0 {
		return false
	}
	return (cur-prev)/prev > jumpThreshold
}

// pop fans DotNum projectiles out radially from a random phase and leaves a
// burst behind them.
func (r *Registry) pop(e *Entity) {
	n := e.emitter.dotNum
	phase := r.rng.Float64() * math.Pi
	for i := 0; i < n; i++ {
		a := 2*math.Pi/float64(n)*float64(i) + phase
		dir := Vec{X: math.Sin(a), Y: math.Cos(a)}
		r.Spawn(NewProjectile(e.Pos, e.Size, e.Bounds, dir, e.Speed*2, e.Circles))
	}
	r.Spawn(NewBurst(e.Pos))
	r.spawns++
}

func (r *Registry) updateProjectile(e *Entity) {
	e.Move()
	half := e.Size / 2
	if e.Pos.X <= -half || e.Pos.X >= e.Bounds.W+half ||
		e.Pos.Y <= -half || e.Pos.Y >= e.Bounds.H+half {
		r.Remove(e)
	}
}

func (r *Registry) updateBurst(e *Entity) {
	st := &e.burst
	st.timer++
	e.Size += burstGrowth
	st.opacity -= float64(burstOpacity) / BurstLifetime
	if st.timer > BurstLifetime {
		r.Remove(e)
	}
}

// waveOffset is the mean of the waveform around its 128 midpoint.
func waveOffset(wave []byte) float64 {
	if len(wave) == 0 {
		return 0
	}
	sum := 0
	for _, v := range wave {
		sum += int(v) - 128
	}
	return float64(sum) / float64(len(wave))
}

func updateCurve(e *Entity, wave []byte) {
	m := waveOffset(wave)
	moveControls(e, m)

	st := &e.curve
	half := e.Size / 2
	for i := 0; i < st.n; i++ {
		c, h := &st.ctrl[i], &st.heading[i]
		if (c.X <= half && h.X < 0) || (c.X >= e.Bounds.W-half && h.X > 0) {
			h.X = -h.X
			moveControls(e, m)
		}
		if (c.Y <= half && h.Y < 0) || (c.Y >= e.Bounds.H-half && h.Y > 0) {
			h.Y = -h.Y
			moveControls(e, m)
		}
	}
}

// moveControls shifts every control point by |speed + offset| along its heading.
func moveControls(e *Entity, offset float64) {
	step := math.Abs(e.Speed + offset)
	st := &e.curve
	for i := 0; i < st.n; i++ {
		st.ctrl[i] = st.ctrl[i].Add(st.heading[i].Scale(step))
	}
}

func draw(c Canvas, e *Entity) {
	switch e.Kind {
	case KindPlayer:
		drawPlayer(c, e)
	case KindEmitter:
		drawDot(c, e.Pos, e.emitter.drawSize, e.Circles)
	case KindProjectile:
		drawDot(c, e.Pos, e.Size, e.Circles)
	case KindBurst:
		c.FillCircle(e.Pos.X, e.Pos.Y, e.Size, burstColor(e.burst.opacity))
	case KindQuadCurve:
		st := &e.curve
		c.StrokeQuadratic(point(e.Pos), point(st.ctrl[0]), point(st.end), e.Size, white)
	case KindCubicCurve:
		st := &e.curve
		c.StrokeCubic(point(e.Pos), point(st.ctrl[0]), point(st.ctrl[1]), point(st.end), e.Size, white)
	}
}

func drawDot(c Canvas, p Vec, size float64, circle bool) {
	if circle {
		c.FillCircle(p.X, p.Y, size, white)
		return
	}
	c.FillRect(p.X, p.Y, size*2, size*2, raster.PivotCenter, white)
}

func burstColor(opacity float64) color.NRGBA {
	a := math.Round(opacity / 100 * 255)
	a = math.Max(0, math.Min(255, a))
	return color.NRGBA{R: 255, G: 255, B: 255, A: uint8(a)}
}

func point(v Vec) raster.Point { return raster.Point{X: v.X, Y: v.Y} }
