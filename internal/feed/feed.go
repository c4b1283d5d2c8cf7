// Package feed supplies the per-frame sample arrays the visualizer reacts
// to: a frequency spectrum and a waveform, each transformSize/2 bytes.
package feed

// Analyser fills caller-owned buffers with the current audio snapshot.
type Analyser interface {
	// FrequencyData writes one 0–255 magnitude per frequency bin.
	FrequencyData(dst []byte)
	// WaveformData writes time-domain samples centred on 128.
	WaveformData(dst []byte)
}

// DefaultTransformSize gives 128-entry sample arrays.
const DefaultTransformSize = 256

// Feed owns the two sample arrays. They are allocated once and overwritten
// in place by Refresh, so slices handed out earlier stay valid.
type Feed struct {
	src  Analyser
	freq []byte
	wave []byte
}

// New allocates the arrays for transformSize, which must be even and
// positive.
func New(src Analyser, transformSize int) *Feed {
	if transformSize <= 0 || transformSize%2 != 0 {
		panic("feed: transform size must be even and positive")
	}
	n := transformSize / 2
	return &Feed{
		src:  src,
		freq: make([]byte, n),
		wave: make([]byte, n),
	}
}

// Refresh asks the analyser to overwrite both arrays.
func (f *Feed) Refresh() {
	f.src.FrequencyData(f.freq)
	f.src.WaveformData(f.wave)
}

// Frequency returns the frequency array.
func (f *Feed) Frequency() []byte { return f.freq }

// Waveform returns the waveform array.
func (f *Feed) Waveform() []byte { return f.wave }
