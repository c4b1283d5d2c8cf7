package feed

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// TapConfig tunes the spectrum the tap reports.
type TapConfig struct {
	FFTSize int
	// Smoothing blends each frame's magnitudes with the previous frame, 0–1.
	Smoothing float64
	// MinDB and MaxDB map onto byte values 0 and 255.
	MinDB float64
	MaxDB float64
}

// DefaultTapConfig matches the usual browser analyser defaults.
func DefaultTapConfig() TapConfig {
	return TapConfig{
		FFTSize:   DefaultTransformSize,
		Smoothing: 0.8,
		MinDB:     -100,
		MaxDB:     -30,
	}
}

// Tap records the most recently played mono samples in a ring buffer and
// analyses them on demand. Write is called from the audio goroutine;
// FrequencyData and WaveformData from the game loop.
type Tap struct {
	cfg TapConfig

	mu   sync.Mutex
	ring []float64
	next int

	// analysis state, owned by the reading goroutine
	frame  []float64
	window []float64
	smooth []float64
}

// NewTap creates a silent tap. FFTSize must be even and positive.
func NewTap(cfg TapConfig) *Tap {
	if cfg.FFTSize <= 0 || cfg.FFTSize%2 != 0 {
		panic("feed: fft size must be even and positive")
	}
	return &Tap{
		cfg:    cfg,
		ring:   make([]float64, cfg.FFTSize),
		frame:  make([]float64, cfg.FFTSize),
		window: window.Blackman(cfg.FFTSize),
		smooth: make([]float64, cfg.FFTSize/2),
	}
}

// Write appends mono samples in [-1, 1].
func (t *Tap) Write(samples []float64) {
	t.mu.Lock()
	for _, s := range samples {
		t.ring[t.next] = s
		t.next++
		if t.next == len(t.ring) {
			t.next = 0
		}
	}
	t.mu.Unlock()
}

// Reset silences the tap and forgets the smoothing history.
func (t *Tap) Reset() {
	t.mu.Lock()
	clear(t.ring)
	t.next = 0
	t.mu.Unlock()
	clear(t.smooth)
}

// snapshot copies the ring into frame, oldest sample first.
func (t *Tap) snapshot() {
	t.mu.Lock()
	n := copy(t.frame, t.ring[t.next:])
	copy(t.frame[n:], t.ring[:t.next])
	t.mu.Unlock()
}

// FrequencyData writes smoothed decibel magnitudes. Bins past FFTSize/2
// are zeroed.
func (t *Tap) FrequencyData(dst []byte) {
	t.snapshot()
	for i := range t.frame {
		t.frame[i] *= t.window[i]
	}
	spectrum := fft.FFTReal(t.frame)

	size := float64(t.cfg.FFTSize)
	span := t.cfg.MaxDB - t.cfg.MinDB
	for k := range dst {
		if k >= len(t.smooth) {
			dst[k] = 0
			continue
		}
		mag := cmplx.Abs(spectrum[k]) / size
		t.smooth[k] = t.cfg.Smoothing*t.smooth[k] + (1-t.cfg.Smoothing)*mag
		if span <= 0 || t.smooth[k] == 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(t.smooth[k])
		dst[k] = clampByte(255 * (db - t.cfg.MinDB) / span)
	}
}

// WaveformData writes the oldest len(dst) samples of the current window as
// 128 × (1 + x).
func (t *Tap) WaveformData(dst []byte) {
	t.snapshot()
	for i := range dst {
		if i >= len(t.frame) {
			dst[i] = 128
			continue
		}
		dst[i] = clampByte(128 * (1 + t.frame[i]))
	}
}

func clampByte(v float64) byte {
	return byte(max(0, min(255, v)))
}
