// Package scene holds the per-track spawn scripts: what a track starts
// with and what it keeps spawning while it plays.
package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"beatsprite/internal/sprite"
)

// ErrUnknownScene is returned by Lookup for names no preset answers to.
var ErrUnknownScene = errors.New("unknown scene")

const (
	SummerBreeze = "summer-breeze"
	Candyland    = "candyland"
	Fantasy      = "fantasy"
)

const (
	emitterInset = 50
	controlInset = 150
	curveWidth   = 5
)

// Preset is one track's spawn script. Tick may be nil.
type Preset struct {
	Name string
	// Init populates an empty registry.
	Init func(reg *sprite.Registry, b sprite.Bounds)
	// Tick runs after every registry update pass while the track plays.
	Tick func(reg *sprite.Registry, b sprite.Bounds, wave []byte)
}

var presets = map[string]Preset{
	SummerBreeze: {Name: SummerBreeze, Init: initSummerBreeze},
	Candyland:    {Name: Candyland, Init: initCandyland, Tick: tickCandyland},
	Fantasy:      {Name: Fantasy, Init: initFantasy},
}

// Lookup returns the preset registered under name.
func Lookup(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return p, nil
}

// Names lists the preset names, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// between returns a uniform value in [lo, hi).
func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func insetPoint(rng *rand.Rand, b sprite.Bounds, inset float64) sprite.Vec {
	return sprite.Vec{
		X: between(rng, inset, b.W-inset),
		Y: between(rng, inset, b.H-inset),
	}
}

func addEmitter(reg *sprite.Registry, b sprite.Bounds, size, maxSize float64, dotNum int, circles bool) {
	rng := reg.Rand()
	reg.Spawn(sprite.NewEmitter(rng, sprite.EmitterConfig{
		Pos:     insetPoint(rng, b, emitterInset),
		Size:    size,
		MaxSize: maxSize,
		DotNum:  dotNum,
		Circles: circles,
	}, b))
}

func initSummerBreeze(reg *sprite.Registry, b sprite.Bounds) {
	addEmitter(reg, b, 5, 30, 8, false)
	addEmitter(reg, b, 5, 40, 6, true)
}

func initCandyland(reg *sprite.Registry, b sprite.Bounds) {
	addEmitter(reg, b, 8, 50, 5, true)
}

func initFantasy(reg *sprite.Registry, b sprite.Bounds) {
	rng := reg.Rand()
	centre := sprite.Vec{X: b.W / 2, Y: b.H / 2}
	for range 5 {
		ctrl1 := insetPoint(rng, b, controlInset)
		ctrl2 := insetPoint(rng, b, controlInset)
		reg.Spawn(sprite.NewCubicCurve(rng, centre, curveWidth, b, ctrl1, ctrl2))
	}
	reg.Spawn(sprite.NewQuadCurve(rng, sprite.Vec{}, curveWidth, b,
		insetPoint(rng, b, controlInset), sprite.Vec{Y: b.H}))
	reg.Spawn(sprite.NewQuadCurve(rng, sprite.Vec{X: b.W}, curveWidth, b,
		insetPoint(rng, b, controlInset), sprite.Vec{X: b.W, Y: b.H}))
}

// Candyland blip streams.
const (
	blipChunk     = 15
	blipThreshold = 80
	blipSize      = 5
	blipSpeed     = 5
)

// tickCandyland splits the waveform into lanes of blipChunk samples. A lane
// whose mean centred value exceeds blipThreshold fires a square projectile
// leftward from the right edge at the lane's height. Samples that do not
// fill a whole lane are ignored.
func tickCandyland(reg *sprite.Registry, b sprite.Bounds, wave []byte) {
	lanes := len(wave) / blipChunk
	if lanes == 0 {
		return
	}
	rng := reg.Rand()
	spacing := b.H / float64(lanes)
	for i := 0; i < lanes; i++ {
		sum := 0
		for _, v := range wave[i*blipChunk : (i+1)*blipChunk] {
			sum += int(v) - 128
		}
		if float64(sum)/blipChunk <= blipThreshold {
			continue
		}
		pos := sprite.Vec{X: b.W, Y: spacing*float64(i) + spacing/2}
		dir := sprite.Vec{X: between(rng, -1, -0.8), Y: between(rng, -0.6, 0.6)}
		reg.Spawn(sprite.NewProjectile(pos, blipSize, b, dir, blipSpeed, false))
	}
}
