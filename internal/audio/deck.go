package audio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// stream serves decoded PCM to the player through the chain and remembers
// whether it ran out.
type stream struct {
	src   *bytes.Reader
	chain *Chain
	ended atomic.Bool
}

func newStream(pcm []byte, chain *Chain) *stream {
	return &stream{src: bytes.NewReader(pcm), chain: chain}
}

func (s *stream) Read(p []byte) (int, error) {
	if len(p) >= bytesPerFrame {
		p = p[:len(p)-len(p)%bytesPerFrame]
	}
	n, err := s.src.Read(p)
	if n > 0 {
		s.chain.Process(p[:n])
	}
	if err == io.EOF {
		s.ended.Store(true)
	}
	return n, err
}

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.src.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	s.ended.Store(false)
	s.chain.Reset()
	return pos, nil
}

// Deck plays one track at a time. Its methods are called from the game
// loop; the player pulls samples on the audio goroutine.
type Deck struct {
	ctx    *audio.Context
	chain  *Chain
	logger *slog.Logger

	player   *audio.Player
	stream   *stream
	duration time.Duration
	volume   int
}

// NewDeck creates an empty deck on ctx. Load a track before playing.
func NewDeck(ctx *audio.Context, chain *Chain, logger *slog.Logger) *Deck {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Deck{ctx: ctx, chain: chain, logger: logger}
	d.SetVolume(UnitVolume)
	return d
}

// Load decodes path and replaces the current track. The new track starts
// paused at its beginning.
func (d *Deck) Load(path string) error {
	pcm, err := Decode(d.ctx.SampleRate(), path)
	if err != nil {
		return err
	}
	s := newStream(pcm, d.chain)
	player, err := d.ctx.NewPlayer(s)
	if err != nil {
		return fmt.Errorf("creating player for %q: %w", path, err)
	}

	d.closePlayer()
	d.chain.Reset()
	d.player = player
	d.stream = s
	frames := len(pcm) / bytesPerFrame
	d.duration = time.Duration(frames) * time.Second / time.Duration(d.ctx.SampleRate())
	d.logger.Debug("Track loaded",
		slog.String("path", path),
		slog.Duration("duration", d.duration))
	return nil
}

func (d *Deck) closePlayer() {
	if d.player == nil {
		return
	}
	d.player.Pause()
	if err := d.player.Close(); err != nil {
		d.logger.Warn("Closing player failed", slog.String("error", err.Error()))
	}
	d.player = nil
	d.stream = nil
}

// Play resumes playback.
func (d *Deck) Play() {
	if d.player != nil {
		d.player.Play()
	}
}

// Pause halts playback, keeping the position.
func (d *Deck) Pause() {
	if d.player != nil {
		d.player.Pause()
	}
}

// IsPlaying reports whether the player is producing sound.
func (d *Deck) IsPlaying() bool {
	return d.player != nil && d.player.IsPlaying()
}

// Ended reports whether the track played through to its end.
func (d *Deck) Ended() bool {
	return d.stream != nil && d.stream.ended.Load() && !d.player.IsPlaying()
}

// Rewind seeks back to the start.
func (d *Deck) Rewind() error {
	if d.player == nil {
		return nil
	}
	return d.player.Rewind()
}

// Position returns the playback position.
func (d *Deck) Position() time.Duration {
	if d.player == nil {
		return 0
	}
	return d.player.Position()
}

// Duration returns the loaded track's length.
func (d *Deck) Duration() time.Duration { return d.duration }

// Volume returns the 0–100 volume.
func (d *Deck) Volume() int { return d.volume }

// SetVolume clamps v to 0–100 and applies it.
func (d *Deck) SetVolume(v int) {
	d.volume = max(0, min(MaxVolume, v))
	d.chain.SetGain(VolumeGain(d.volume))
}

// Chain exposes the filter chain for the bass, treble and distortion controls.
func (d *Deck) Chain() *Chain { return d.chain }

// Close releases the player.
func (d *Deck) Close() {
	d.closePlayer()
}
