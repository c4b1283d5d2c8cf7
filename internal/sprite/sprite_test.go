package sprite

import (
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beatsprite/internal/raster"
)

type drawCall struct {
	op    string
	x, y  float64
	size  float64
	sides int
	col   color.Color
}

type recordingCanvas struct {
	calls []drawCall
}

func (c *recordingCanvas) FillRect(x, y, w, h float64, _ raster.Pivot, col color.Color) {
	c.calls = append(c.calls, drawCall{op: "rect", x: x, y: y, size: w, col: col})
}

func (c *recordingCanvas) FillCircle(x, y, r float64, col color.Color) {
	c.calls = append(c.calls, drawCall{op: "circle", x: x, y: y, size: r, col: col})
}

func (c *recordingCanvas) FillPolygon(x, y, r float64, sides int, _ float64, col color.Color) {
	c.calls = append(c.calls, drawCall{op: "polygon", x: x, y: y, size: r, sides: sides, col: col})
}

func (c *recordingCanvas) StrokeQuadratic(start, _, _ raster.Point, width float64, col color.Color) {
	c.calls = append(c.calls, drawCall{op: "quad", x: start.X, y: start.Y, size: width, col: col})
}

func (c *recordingCanvas) StrokeCubic(start, _, _, _ raster.Point, width float64, col color.Color) {
	c.calls = append(c.calls, drawCall{op: "cubic", x: start.X, y: start.Y, size: width, col: col})
}

var bigBounds = Bounds{W: 1000, H: 1000}

func newTestRegistry() *Registry {
	return NewRegistry(rand.New(rand.NewSource(7)))
}

func newTestEmitter(r *Registry, dotNum int) *Entity {
	e := NewEmitter(r.Rand(), EmitterConfig{
		Pos:     Vec{X: 500, Y: 500},
		Size:    5,
		MaxSize: 30,
		DotNum:  dotNum,
		Circles: true,
	}, bigBounds)
	r.Spawn(e)
	return e
}

func loud(n int) []byte {
	freq := make([]byte, n)
	for i := range freq {
		freq[i] = 255
	}
	return freq
}

func TestMoveOnlyChangesPosition(t *testing.T) {
	r := newTestRegistry()
	e := newTestEmitter(r, 6)
	before := *e

	e.Move()

	assert.Equal(t, before.Pos.X+before.Dir.X*before.Speed, e.Pos.X)
	assert.Equal(t, before.Pos.Y+before.Dir.Y*before.Speed, e.Pos.Y)
	moved := *e
	moved.Pos = before.Pos
	assert.Equal(t, before, moved, "move must not touch any other field")
}

func TestEmitterBouncesOncePerViolatingAxis(t *testing.T) {
	tests := []struct {
		name    string
		pos     Vec
		dir     Vec
		wantDir Vec
		wantPos Vec
	}{
		{name: "left edge", pos: Vec{X: 3, Y: 50}, dir: Vec{X: -1}, wantDir: Vec{X: 1}, wantPos: Vec{X: 3, Y: 50}},
		{name: "right edge", pos: Vec{X: 97, Y: 50}, dir: Vec{X: 1}, wantDir: Vec{X: -1}, wantPos: Vec{X: 97, Y: 50}},
		{name: "bottom edge", pos: Vec{X: 50, Y: 97}, dir: Vec{Y: 1}, wantDir: Vec{Y: -1}, wantPos: Vec{X: 50, Y: 97}},
		{name: "interior", pos: Vec{X: 50, Y: 50}, dir: Vec{X: 1}, wantDir: Vec{X: 1}, wantPos: Vec{X: 51, Y: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			e := NewEmitter(r.Rand(), EmitterConfig{Size: 10, MaxSize: 10}, Bounds{W: 100, H: 100})
			r.Spawn(e)
			e.Pos, e.Dir, e.Speed = tt.pos, tt.dir, 1

			r.Update(make([]byte, 128), make([]byte, 128))

			assert.Equal(t, tt.wantDir, e.Dir)
			assert.InDelta(t, tt.wantPos.X, e.Pos.X, 1e-9)
			assert.InDelta(t, tt.wantPos.Y, e.Pos.Y, 1e-9)
		})
	}
}

func TestEmitterCooldownHoldsThirtyTicks(t *testing.T) {
	r := newTestRegistry()
	e := newTestEmitter(r, 6)
	e.emitter.cooldown = 0
	e.Speed = 0
	freq, wave := loud(128), make([]byte, 128)

	r.Update(freq, wave)
	require.EqualValues(t, 1, r.Spawns())

	for tick := 1; tick < EmitterCooldown; tick++ {
		r.Update(freq, wave)
		require.EqualValues(t, 1, r.Spawns(), "spawned again on tick %d", tick)
	}
	r.Update(freq, wave)
	assert.EqualValues(t, 2, r.Spawns())
}

func TestEmitterDotNumClamp(t *testing.T) {
	tests := []struct {
		dotNum int
		want   int
	}{
		{dotNum: 0, want: 6},
		{dotNum: -3, want: 6},
		{dotNum: 1, want: 1},
		{dotNum: 5, want: 5},
		{dotNum: 12, want: 12},
		{dotNum: 20, want: 12},
	}
	for _, tt := range tests {
		r := newTestRegistry()
		e := newTestEmitter(r, tt.dotNum)
		e.emitter.cooldown = 0

		r.Update(loud(128), make([]byte, 128))

		assert.Equal(t, tt.want, e.DotNum())
		assert.Equal(t, tt.want, r.Count(KindProjectile), "dotNum=%d", tt.dotNum)
		assert.Equal(t, 1, r.Count(KindBurst))
	}
}

func TestEmitterSpawnScenario(t *testing.T) {
	r := newTestRegistry()
	e := newTestEmitter(r, 6)
	e.emitter.node = 10
	freq, wave := make([]byte, 128), make([]byte, 128)

	freq[10] = 200
	r.Update(freq, wave)
	require.Equal(t, 1, r.Len(), "initial cooldown blocks the first tick")
	require.InDelta(t, 200.0/255, e.emitter.prevAmp, 1e-9)

	e.emitter.cooldown = 0
	freq[10] = 250
	r.Update(freq, wave)

	assert.Equal(t, 1+e.DotNum()+1, r.Len())
	assert.InDelta(t, 250.0/255, e.emitter.prevAmp, 1e-9)
	assert.Equal(t, EmitterCooldown-1, e.Cooldown())

	entities := r.Entities()
	assert.Equal(t, KindBurst, entities[0].Kind, "burst goes to the back")
	for _, p := range entities[2:] {
		assert.Equal(t, KindProjectile, p.Kind)
		assert.Equal(t, e.Pos, p.Pos, "spawned projectiles wait for the next pass")
		assert.InDelta(t, 1, p.Dir.Len(), 1e-9)
		assert.Equal(t, e.Speed*2, p.Speed)
	}
}

func TestRelativeJumpTriggersSpawn(t *testing.T) {
	r := newTestRegistry()
	e := newTestEmitter(r, 4)
	e.emitter.node = 0
	e.emitter.cooldown = 0
	e.emitter.prevAmp = 0.3

	r.Update([]byte{100}, nil) // 0.39 is a 30% rise

	assert.EqualValues(t, 1, r.Spawns())
}

func TestSilentPreviousFrameIsNotAJump(t *testing.T) {
	assert.False(t, jumped(0, 0.5))
	assert.False(t, jumped(0.5, 0.55))
	assert.True(t, jumped(0.5, 0.65))
}

func TestAmplitudeClampsNode(t *testing.T) {
	assert.InDelta(t, 1.0, amplitude([]byte{0, 255}, 99), 1e-9)
	assert.Zero(t, amplitude(nil, 3))
}

func TestProjectileLeavesOnlyPastMargin(t *testing.T) {
	r := newTestRegistry()
	b := Bounds{W: 100, H: 100}
	leaving := NewProjectile(Vec{X: 101.5, Y: 50}, 4, b, Vec{X: 1}, 1, true)
	staying := NewProjectile(Vec{X: 100.5, Y: 50}, 4, b, Vec{X: 1}, 0.2, true)
	r.Spawn(leaving)
	r.Spawn(staying)

	r.Update(nil, nil)

	assert.True(t, leaving.Removed())
	assert.False(t, staying.Removed())
	assert.InDelta(t, 100.7, staying.Pos.X, 1e-9, "entity after a removed one is still updated")
	assert.Equal(t, 1, r.Len())
}

func TestBurstLifecycle(t *testing.T) {
	r := newTestRegistry()
	b := NewBurst(Vec{X: 10, Y: 10})
	r.Spawn(b)

	for tick := 1; tick <= BurstLifetime; tick++ {
		r.Update(nil, nil)
		require.False(t, b.Removed(), "removed early on tick %d", tick)
		assert.InDelta(t, float64(tick*10), b.Size, 1e-9)
		assert.InDelta(t, 100-float64(tick)*10, b.Opacity(), 1e-9)
	}
	r.Update(nil, nil)
	assert.True(t, b.Removed())
	assert.Zero(t, r.Len())
}

func TestCurveSpeedFollowsWaveOffset(t *testing.T) {
	r := newTestRegistry()
	q := NewQuadCurve(r.Rand(), Vec{}, 5, bigBounds, Vec{X: 500, Y: 500}, Vec{Y: 1000})
	q.Speed = 1
	q.curve.heading[0] = Vec{X: 1}
	r.Spawn(q)

	wave := make([]byte, 4)
	for i := range wave {
		wave[i] = 138
	}
	r.Update(nil, wave)
	assert.InDelta(t, 511, q.Controls()[0].X, 1e-9)

	for i := range wave {
		wave[i] = 108
	}
	r.Update(nil, wave)
	assert.InDelta(t, 530, q.Controls()[0].X, 1e-9, "|1 + -20| = 19")
	assert.Equal(t, Vec{}, q.Pos, "anchor never moves")
}

func TestCubicCurveReflectsEachControl(t *testing.T) {
	r := newTestRegistry()
	c := NewCubicCurve(r.Rand(), Vec{X: 50, Y: 50}, 4, Bounds{W: 100, H: 100}, Vec{X: 3, Y: 50}, Vec{X: 50, Y: 50})
	c.Speed = 1
	c.curve.heading = [2]Vec{{X: -1}, {X: 0, Y: 1}}
	r.Spawn(c)

	r.Update(nil, []byte{128})

	assert.Equal(t, 1.0, c.curve.heading[0].X)
	assert.Equal(t, 1.0, c.curve.heading[1].Y)
	ctrl := c.Controls()
	assert.InDelta(t, 3, ctrl[0].X, 1e-9)
	assert.InDelta(t, 52, ctrl[1].Y, 1e-9, "second control moved once per pass plus once per bounce")
}

func TestRegistryLayering(t *testing.T) {
	r := newTestRegistry()
	a := NewProjectile(Vec{}, 1, bigBounds, Vec{X: 1}, 1, true)
	b := NewProjectile(Vec{}, 1, bigBounds, Vec{X: 1}, 1, true)
	back := NewBurst(Vec{})

	r.Add(a, true)
	r.Add(b, true)
	r.Add(back, false)

	assert.Equal(t, []*Entity{back, a, b}, r.Entities())

	require.True(t, r.Remove(a))
	assert.False(t, r.Remove(a))
	assert.Equal(t, []*Entity{back, b}, r.Entities())

	r.RemoveAll()
	assert.Zero(t, r.Len())
	assert.True(t, b.Removed())
}

func TestSetPlayerLeavesSequenceAlone(t *testing.T) {
	r := newTestRegistry()
	p1 := NewPlayer(Vec{X: 1, Y: 1}, 8, bigBounds)
	r.Spawn(p1)
	r.SetPlayer(p1)

	p2 := NewPlayer(Vec{}, 8, bigBounds)
	r.SetPlayer(p2)

	assert.Same(t, p2, r.Player())
	assert.Equal(t, []*Entity{p1}, r.Entities())

	r.UpdatePlayer(30, 40)
	assert.Equal(t, Vec{X: 30, Y: 40}, p2.Pos)
	assert.Equal(t, Vec{X: 1, Y: 1}, p1.Pos)

	r.Update(nil, nil)
	assert.Equal(t, Vec{X: 1, Y: 1}, p1.Pos, "players do not move on their own")
}

func TestDrawFollowsSequenceOrder(t *testing.T) {
	r := newTestRegistry()
	dot := NewProjectile(Vec{X: 1}, 2, bigBounds, Vec{X: 1}, 1, false)
	burst := NewBurst(Vec{X: 2})
	burst.Size = 3
	r.Spawn(dot)
	r.Spawn(burst)

	c := &recordingCanvas{}
	r.Draw(c)

	require.Len(t, c.calls, 2)
	assert.Equal(t, "circle", c.calls[0].op, "burst is drawn first")
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, c.calls[0].col)
	assert.Equal(t, "rect", c.calls[1].op)
	assert.Equal(t, 4.0, c.calls[1].size)
}

func TestPlayerShapeByColor(t *testing.T) {
	tests := []struct {
		color PlayerColor
		op    string
		sides int
	}{
		{color: PlayerBlue, op: "polygon", sides: 4},
		{color: PlayerYellow, op: "polygon", sides: 3},
		{color: PlayerGreen, op: "polygon", sides: 5},
		{color: PlayerOrange, op: "circle"},
		{color: PlayerColor(0), op: "rect"},
	}
	for _, tt := range tests {
		t.Run(tt.color.String(), func(t *testing.T) {
			r := newTestRegistry()
			p := NewPlayer(Vec{X: 5, Y: 5}, 10, bigBounds)
			p.SetColor(tt.color)
			r.SetPlayer(p)

			c := &recordingCanvas{}
			r.DrawPlayer(c)

			require.Len(t, c.calls, 1)
			assert.Equal(t, tt.op, c.calls[0].op)
			assert.Equal(t, tt.sides, c.calls[0].sides)
		})
	}
}

func TestUnitFallsBackToRight(t *testing.T) {
	assert.Equal(t, Vec{X: 1}, Vec{}.Unit())
	u := RandomUnit(rand.New(rand.NewSource(1)))
	assert.InDelta(t, 1, math.Hypot(u.X, u.Y), 1e-9)
}

func TestParsePlayerColor(t *testing.T) {
	c, ok := ParsePlayerColor("green")
	require.True(t, ok)
	assert.Equal(t, PlayerGreen, c)
	assert.Equal(t, "green", c.String())

	_, ok = ParsePlayerColor("purple")
	assert.False(t, ok)
}
