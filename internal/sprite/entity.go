// Package sprite holds the visualizer's live entities and the ordered
// registry that updates and draws them once per tick.
package sprite

import (
	"math"
	"math/rand"
)

// Kind tags which behaviour an Entity runs on update and draw.
type Kind uint8

const (
	KindPlayer Kind = iota + 1
	KindEmitter
	KindProjectile
	KindBurst
	KindQuadCurve
	KindCubicCurve
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEmitter:
		return "emitter"
	case KindProjectile:
		return "projectile"
	case KindBurst:
		return "burst"
	case KindQuadCurve:
		return "quad-curve"
	case KindCubicCurve:
		return "cubic-curve"
	default:
		return "unknown"
	}
}

// Emitter and burst tuning.
const (
	EmitterCooldown = 30
	DefaultDotNum   = 6
	MaxDotNum       = 12
	jumpThreshold   = 0.2
	loudThreshold   = 0.7
	maxSampleNode   = 100

	BurstLifetime = 10
	burstGrowth   = 10
	burstOpacity  = 100

	minBaseSpeed = 0.5
	maxBaseSpeed = 1.0
)

// Vec is a 2D vector in canvas pixels.
type Vec struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Scale returns v * s.
func (v Vec) Scale(s float64) Vec { return Vec{X: v.X * s, Y: v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Unit returns v scaled to length 1. The zero vector points right.
func (v Vec) Unit() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{X: 1}
	}
	return Vec{X: v.X / l, Y: v.Y / l}
}

// RandomUnit draws a direction from the unit square, normalized.
func RandomUnit(rng *rand.Rand) Vec {
	return Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}.Unit()
}

// Bounds is the canvas size an entity bounces inside.
type Bounds struct {
	W, H float64
}

// Entity is the common record for every visual. Variant state lives in the
// unexported per-kind fields and is only read by the matching Kind.
type Entity struct {
	Kind   Kind
	Pos    Vec
	Size   float64
	Dir    Vec
	Speed  float64
	Bounds Bounds
	// Front entities are appended to the draw order, back entities prepended.
	Front bool
	// Circles selects round (true) or square (false) emitter and projectile shapes.
	Circles bool

	emitter emitterState
	burst   burstState
	curve   curveState
	color   PlayerColor

	removed bool
}

type emitterState struct {
	maxSize  float64
	drawSize float64
	dotNum   int
	node     int
	prevAmp  float64
	cooldown int
}

type burstState struct {
	opacity float64
	timer   int
}

type curveState struct {
	n       int
	ctrl    [2]Vec
	heading [2]Vec
	end     Vec
}

func newBase(rng *rand.Rand, kind Kind, pos Vec, size float64, b Bounds) *Entity {
	if size < 0 {
		size = 0
	}
	return &Entity{
		Kind:   kind,
		Pos:    pos,
		Size:   size,
		Dir:    RandomUnit(rng),
		Speed:  minBaseSpeed + rng.Float64()*(maxBaseSpeed-minBaseSpeed),
		Bounds: b,
		Front:  true,
	}
}

// NewPlayer creates the pointer-driven player. It never moves on its own.
func NewPlayer(pos Vec, size float64, b Bounds) *Entity {
	return &Entity{
		Kind:   KindPlayer,
		Pos:    pos,
		Size:   math.Max(size, 0),
		Dir:    Vec{X: 1},
		Bounds: b,
		Front:  true,
		color:  PlayerBlue,
	}
}

// EmitterConfig describes an emitter at construction.
type EmitterConfig struct {
	Pos     Vec
	Size    float64
	MaxSize float64
	// DotNum is the projectile count per spawn, clamped to [1, MaxDotNum];
	// zero or negative selects DefaultDotNum.
	DotNum  int
	Circles bool
}

// NewEmitter creates an emitter reading one random frequency bin.
func NewEmitter(rng *rand.Rand, cfg EmitterConfig, b Bounds) *Entity {
	e := newBase(rng, KindEmitter, cfg.Pos, cfg.Size, b)
	e.Circles = cfg.Circles
	e.emitter = emitterState{
		maxSize:  cfg.MaxSize,
		drawSize: e.Size,
		dotNum:   clampDotNum(cfg.DotNum),
		node:     rng.Intn(maxSampleNode),
		cooldown: EmitterCooldown,
	}
	return e
}

func clampDotNum(n int) int {
	switch {
	case n <= 0:
		return DefaultDotNum
	case n > MaxDotNum:
		return MaxDotNum
	default:
		return n
	}
}

// NewProjectile creates a projectile travelling along dir, normalized.
func NewProjectile(pos Vec, size float64, b Bounds, dir Vec, speed float64, circles bool) *Entity {
	return &Entity{
		Kind:    KindProjectile,
		Pos:     pos,
		Size:    math.Max(size, 0),
		Dir:     dir.Unit(),
		Speed:   speed,
		Bounds:  b,
		Front:   true,
		Circles: circles,
	}
}

// NewBurst creates the expanding ring left behind by an emitter spawn. It
// sits at the back of the draw order.
func NewBurst(pos Vec) *Entity {
	return &Entity{
		Kind:  KindBurst,
		Pos:   pos,
		Dir:   Vec{X: 1},
		burst: burstState{opacity: burstOpacity},
	}
}

// NewQuadCurve creates a quadratic curve from start to end whose single
// control point drifts around the canvas.
func NewQuadCurve(rng *rand.Rand, start Vec, width float64, b Bounds, ctrl, end Vec) *Entity {
	e := newBase(rng, KindQuadCurve, start, width, b)
	e.curve = curveState{
		n:       1,
		ctrl:    [2]Vec{ctrl},
		heading: [2]Vec{RandomUnit(rng)},
		end:     end,
	}
	return e
}

// NewCubicCurve creates a closed cubic loop anchored at anchor with two
// drifting control points.
func NewCubicCurve(rng *rand.Rand, anchor Vec, width float64, b Bounds, ctrl1, ctrl2 Vec) *Entity {
	e := newBase(rng, KindCubicCurve, anchor, width, b)
	e.curve = curveState{
		n:       2,
		ctrl:    [2]Vec{ctrl1, ctrl2},
		heading: [2]Vec{RandomUnit(rng), RandomUnit(rng)},
		end:     anchor,
	}
	return e
}

// Move advances the position by Dir * Speed and touches nothing else.
func (e *Entity) Move() {
	e.Pos = e.Pos.Add(e.Dir.Scale(e.Speed))
}

// bounce flips each axis whose position is outside [size/2, bound-size/2]
// and moves once more. A fast entity can still end up past the edge.
func (e *Entity) bounce() {
	half := e.Size / 2
	if e.Pos.X <= half || e.Pos.X >= e.Bounds.W-half {
		e.Dir.X = -e.Dir.X
		e.Move()
	}
	if e.Pos.Y <= half || e.Pos.Y >= e.Bounds.H-half {
		e.Dir.Y = -e.Dir.Y
		e.Move()
	}
}

// Removed reports whether the entity has left its registry.
func (e *Entity) Removed() bool { return e.removed }

// DotNum is the emitter's projectile count per spawn.
func (e *Entity) DotNum() int { return e.emitter.dotNum }

// Cooldown is the number of ticks before the emitter may spawn again.
func (e *Entity) Cooldown() int { return e.emitter.cooldown }

// Opacity is the burst's remaining opacity percentage.
func (e *Entity) Opacity() float64 { return e.burst.opacity }

// Color is the player's palette entry.
func (e *Entity) Color() PlayerColor { return e.color }

// SetColor changes the player's palette entry.
func (e *Entity) SetColor(c PlayerColor) { e.color = c }

// Controls returns the curve's control points.
func (e *Entity) Controls() []Vec {
	return append([]Vec(nil), e.curve.ctrl[:e.curve.n]...)
}
