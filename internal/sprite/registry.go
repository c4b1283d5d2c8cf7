package sprite

import (
	"image/color"
	"math/rand"

	"beatsprite/internal/raster"
)

// Canvas is the set of drawing primitives entities issue.
type Canvas interface {
	FillRect(x, y, w, h float64, pivot raster.Pivot, col color.Color)
	FillCircle(x, y, r float64, col color.Color)
	FillPolygon(x, y, r float64, sides int, rotation float64, col color.Color)
	StrokeQuadratic(start, ctrl, end raster.Point, width float64, col color.Color)
	StrokeCubic(start, ctrl1, ctrl2, end raster.Point, width float64, col color.Color)
}

// Registry owns the live entities. Sequence order is update order and draw
// order; the player is tracked separately. Not safe for concurrent use.
type Registry struct {
	rng    *rand.Rand
	list   []*Entity
	pass   []*Entity
	player *Entity

	spawns uint64
}

// NewRegistry creates an empty registry drawing spawn randomness from rng.
func NewRegistry(rng *rand.Rand) *Registry {
	return &Registry{rng: rng}
}

// Rand exposes the registry's random source for scene scripts.
func (r *Registry) Rand() *rand.Rand { return r.rng }

// Add inserts e on top of the draw order when front is set, underneath
// everything otherwise. Front entities are appended, so they are drawn last.
func (r *Registry) Add(e *Entity, front bool) {
	e.removed = false
	e.Front = front
	if front {
		r.list = append(r.list, e)
		return
	}
	r.list = append(r.list, nil)
	copy(r.list[1:], r.list)
	r.list[0] = e
}

// Spawn inserts e at the layer it was constructed with.
func (r *Registry) Spawn(e *Entity) {
	r.Add(e, e.Front)
}

// Remove deletes e by identity. It takes effect immediately, including
// during an update pass.
func (r *Registry) Remove(e *Entity) bool {
	for i, cur := range r.list {
		if cur != e {
			continue
		}
		copy(r.list[i:], r.list[i+1:])
		r.list[len(r.list)-1] = nil
		r.list = r.list[:len(r.list)-1]
		e.removed = true
		return true
	}
	return false
}

// RemoveAll clears the sequence. The player reference is left alone.
func (r *Registry) RemoveAll() {
	for i, e := range r.list {
		e.removed = true
		r.list[i] = nil
	}
	r.list = r.list[:0]
}

// Len returns the number of entities in the sequence.
func (r *Registry) Len() int { return len(r.list) }

// Entities returns a snapshot of the sequence in order.
func (r *Registry) Entities() []*Entity {
	return append([]*Entity(nil), r.list...)
}

// Count returns how many entities of kind k are in the sequence.
func (r *Registry) Count(k Kind) int {
	n := 0
	for _, e := range r.list {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Spawns returns how many emitter spawn events happened so far.
func (r *Registry) Spawns() uint64 { return r.spawns }

// Player returns the tracked player, or nil.
func (r *Registry) Player() *Entity { return r.player }

// SetPlayer replaces the tracked player. It does not touch the sequence.
func (r *Registry) SetPlayer(p *Entity) { r.player = p }

// UpdatePlayer moves the tracked player to the pointer position.
func (r *Registry) UpdatePlayer(x, y float64) {
	if r.player == nil {
		return
	}
	r.player.Pos = Vec{X: x, Y: y}
}

// Update runs one update pass over the entities present when it starts.
// Entities removed mid-pass are skipped; entities spawned mid-pass are first
// updated on the next call.
func (r *Registry) Update(freq, wave []byte) {
	r.pass = append(r.pass[:0], r.list...)
	for _, e := range r.pass {
		if e.removed {
			continue
		}
		r.update(e, freq, wave)
	}
	clear(r.pass)
}

// Draw runs one draw pass in sequence order.
func (r *Registry) Draw(c Canvas) {
	for _, e := range r.list {
		draw(c, e)
	}
}

// DrawPlayer draws the tracked player, if any.
func (r *Registry) DrawPlayer(c Canvas) {
	if r.player == nil {
		return
	}
	draw(c, r.player)
}
