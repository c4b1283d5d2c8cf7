package audio

import (
	"math"
	"sync"
)

// Filter tuning.
const (
	shelfFrequency = 1000
	// UnitVolume plays at gain 1; the gain is volume/100 × 2.
	UnitVolume = 50
	MaxVolume  = 100
)

// Sink receives the mono signal after filtering and before the volume
// gain, the point the analyser listens at.
type Sink interface {
	Write(samples []float64)
}

// Settings are the user-adjustable chain parameters.
type Settings struct {
	Gain        float64
	LowshelfDB  float64
	HighshelfDB float64
	Distortion  bool
}

type shelfKind uint8

const (
	lowShelf shelfKind = iota
	highShelf
)

// biquad is a direct form I filter. An inactive biquad passes samples
// through untouched.
type biquad struct {
	active             bool
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// design sets shelf coefficients for gainDB at freq, slope 1.
func (f *biquad) design(kind shelfKind, sampleRate, freq, gainDB float64) {
	f.active = gainDB != 0
	if !f.active {
		return
	}
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cos := math.Cos(w0)
	alpha := math.Sin(w0) / 2 * math.Sqrt2
	sq := 2 * math.Sqrt(a) * alpha

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case lowShelf:
		b0 = a * ((a + 1) - (a-1)*cos + sq)
		b1 = 2 * a * ((a - 1) - (a+1)*cos)
		b2 = a * ((a + 1) - (a-1)*cos - sq)
		a0 = (a + 1) + (a-1)*cos + sq
		a1 = -2 * ((a - 1) + (a+1)*cos)
		a2 = (a + 1) + (a-1)*cos - sq
	case highShelf:
		b0 = a * ((a + 1) + (a-1)*cos + sq)
		b1 = -2 * a * ((a - 1) + (a+1)*cos)
		b2 = a * ((a + 1) + (a-1)*cos - sq)
		a0 = (a + 1) - (a-1)*cos + sq
		a1 = 2 * ((a - 1) - (a+1)*cos)
		a2 = (a + 1) - (a-1)*cos - sq
	}
	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

func (f *biquad) process(x float64) float64 {
	if !f.active {
		return x
	}
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func (f *biquad) reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// distort is the wave-shaper transfer curve, input clamped to [-1, 1].
func distort(x float64) float64 {
	x = max(-1, min(1, x))
	return (math.Pi + 50*x) / (math.Pi + 100*math.Abs(x))
}

// Chain applies lowshelf, highshelf and distortion, reports the result to
// the sink, then applies the volume gain. Setters may be called from any
// goroutine; Process runs on the audio goroutine.
type Chain struct {
	sampleRate float64
	sink       Sink

	mu       sync.Mutex
	settings Settings
	dirty    bool

	low, high [2]biquad
	mono      []float64
}

// NewChain returns a chain at unit gain with flat filters. sink may be nil.
func NewChain(sampleRate int, sink Sink) *Chain {
	return &Chain{
		sampleRate: float64(sampleRate),
		sink:       sink,
		settings:   Settings{Gain: 1},
	}
}

// Settings returns the current parameters.
func (c *Chain) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

func (c *Chain) update(fn func(s *Settings)) {
	c.mu.Lock()
	fn(&c.settings)
	c.dirty = true
	c.mu.Unlock()
}

// SetGain sets the output gain.
func (c *Chain) SetGain(g float64) { c.update(func(s *Settings) { s.Gain = max(0, g) }) }

// SetLowshelf sets the bass shelf gain in dB.
func (c *Chain) SetLowshelf(db float64) { c.update(func(s *Settings) { s.LowshelfDB = db }) }

// SetHighshelf sets the treble shelf gain in dB.
func (c *Chain) SetHighshelf(db float64) { c.update(func(s *Settings) { s.HighshelfDB = db }) }

// SetDistortion switches the wave shaper.
func (c *Chain) SetDistortion(on bool) { c.update(func(s *Settings) { s.Distortion = on }) }

// Reset forgets filter history, as after a seek.
func (c *Chain) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.low {
		c.low[i].reset()
		c.high[i].reset()
	}
}

// Process filters whole 16-bit stereo frames of pcm in place.
func (c *Chain) Process(pcm []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty {
		for i := range c.low {
			c.low[i].design(lowShelf, c.sampleRate, shelfFrequency, c.settings.LowshelfDB)
			c.high[i].design(highShelf, c.sampleRate, shelfFrequency, c.settings.HighshelfDB)
		}
		c.dirty = false
	}
	s := c.settings

	frames := len(pcm) / bytesPerFrame
	c.mono = c.mono[:0]
	for i := 0; i < frames; i++ {
		frame := pcm[i*bytesPerFrame : (i+1)*bytesPerFrame]
		l, r := readFrame(frame)
		l = c.high[0].process(c.low[0].process(l))
		r = c.high[1].process(c.low[1].process(r))
		if s.Distortion {
			l, r = distort(l), distort(r)
		}
		c.mono = append(c.mono, (l+r)/2)
		writeFrame(frame, l*s.Gain, r*s.Gain)
	}
	if c.sink != nil && len(c.mono) > 0 {
		c.sink.Write(c.mono)
	}
}

// VolumeGain maps a 0–100 volume onto the chain gain.
func VolumeGain(volume int) float64 {
	v := max(0, min(MaxVolume, volume))
	return float64(v) / 100 * 2
}
