// Package session drives one interactive run: it owns the registry, the
// sample feed and the compositor, and advances them once per tick according
// to the visualizer/game state machine.
package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"beatsprite/internal/compositor"
	"beatsprite/internal/feed"
	"beatsprite/internal/metrics"
	"beatsprite/internal/raster"
	"beatsprite/internal/scene"
	"beatsprite/internal/sprite"
)

// Player placement when a game starts.
const (
	playerSize    = 8
	playerXFactor = 0.2
)

// Deck is the playback side of the audio collaborator.
type Deck interface {
	Load(path string) error
	Play()
	Pause()
	Ended() bool
	Rewind() error
	Position() time.Duration
	Duration() time.Duration
}

// Track is one playable entry.
type Track struct {
	Name  string
	Path  string
	Scene string
}

// Options configures a new session.
type Options struct {
	Width         int
	Height        int
	TransformSize int
	Params        compositor.Params
	// Seed fixes every random source; zero picks one from the clock.
	Seed    int64
	Game    bool
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Session is not safe for concurrent use; call it from the game loop only.
type Session struct {
	id      string
	log     *slog.Logger
	metrics *metrics.Metrics

	rng    *rand.Rand
	reg    *sprite.Registry
	feed   *feed.Feed
	tap    feed.Analyser
	comp   *compositor.Compositor
	deck   Deck
	bounds sprite.Bounds

	tracks  []Track
	current int
	preset  scene.Preset

	params   compositor.Params
	state    State
	gameMode bool
	playing  bool
	initDone bool
	dirty    bool

	playerColor  sprite.PlayerColor
	pendingColor sprite.PlayerColor
	colorChanged bool

	lastSpawns uint64
}

// ErrNoTracks is returned by New for an empty track list.
var ErrNoTracks = errors.New("session: no tracks")

// New builds a session and loads the first track. Every track's scene
// must exist.
func New(opts Options, src feed.Analyser, deck Deck, tracks []Track) (*Session, error) {
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	if opts.TransformSize == 0 {
		opts.TransformSize = feed.DefaultTransformSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		id:          uuid.NewString(),
		metrics:     opts.Metrics,
		rng:         rand.New(rand.NewSource(seed)),
		feed:        feed.New(src, opts.TransformSize),
		tap:         src,
		deck:        deck,
		bounds:      sprite.Bounds{W: float64(opts.Width), H: float64(opts.Height)},
		tracks:      append([]Track(nil), tracks...),
		params:      opts.Params,
		state:       StateVisualizer,
		playerColor: sprite.PlayerBlue,
		dirty:       true,
	}
	s.log = opts.Logger.With(slog.String("session", s.id))
	s.reg = sprite.NewRegistry(rand.New(rand.NewSource(seed + 1)))
	s.comp = compositor.New(raster.NewCanvas(opts.Width, opts.Height), rand.New(rand.NewSource(seed+2)))

	if err := s.loadTrack(0); err != nil {
		return nil, err
	}
	s.log.Info("Session started",
		slog.String("track", s.Track().Name),
		slog.Int("width", opts.Width),
		slog.Int("height", opts.Height))

	if opts.Game {
		s.SetGameMode(true)
	}
	return s, nil
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// State returns the current mode.
func (s *Session) State() State { return s.state }

// GameMode reports whether the game overlay is enabled.
func (s *Session) GameMode() bool { return s.gameMode }

// Playing reports whether the session believes the deck is playing.
func (s *Session) Playing() bool { return s.playing }

// Registry exposes the live entities.
func (s *Session) Registry() *sprite.Registry { return s.reg }

// Params returns the compositor configuration applied on the next frame.
func (s *Session) Params() compositor.Params { return s.params }

// Frame returns the last composed frame. The image is reused across ticks.
func (s *Session) Frame() *image.RGBA { return s.comp.Canvas().Image() }

// Track returns the selected track.
func (s *Session) Track() Track { return s.tracks[s.current] }

// Tracks returns the track list.
func (s *Session) Tracks() []Track { return append([]Track(nil), s.tracks...) }

// Progress returns elapsed and total playback time.
func (s *Session) Progress() (elapsed, total time.Duration) {
	return s.deck.Position(), s.deck.Duration()
}

// Dirty reports whether the next tick will recompose the frame.
func (s *Session) Dirty() bool { return s.dirty }

// Tick runs one frame. px and py are the pointer position in canvas pixels.
func (s *Session) Tick(px, py float64) {
	s.metrics.CountTick(s.state.String())

	switch s.state {
	case StateVisualizer:
		s.advance()
		s.compose()
		if s.playing && s.deck.Ended() {
			s.TogglePlay()
		}

	case StateGame:
		s.advance()
		s.reg.UpdatePlayer(px, py)
		s.compose()
		if s.deck.Ended() {
			s.TogglePlay()
			s.enterVoid()
		}

	case StatePaused:
		// Nothing moves; settings changes still repaint.
		if s.dirty {
			s.compose()
		}

	case StateVoid:
		if err := s.deck.Rewind(); err != nil {
			s.log.Debug("Rewind failed", slog.Any("error", err))
		}
		if !s.initDone {
			s.resetScene()
			s.initDone = true
		}
		s.feed.Refresh()
		s.reg.UpdatePlayer(px, py)
		s.applyPendingColor()
		s.compose()
	}
}

// advance refreshes the samples, runs the update pass and the scene script.
func (s *Session) advance() {
	s.feed.Refresh()
	s.reg.Update(s.feed.Frequency(), s.feed.Waveform())
	if s.preset.Tick != nil {
		s.preset.Tick(s.reg, s.bounds, s.feed.Waveform())
	}
	spawns := s.reg.Spawns()
	s.metrics.AddSpawns(spawns - s.lastSpawns)
	s.lastSpawns = spawns
}

func (s *Session) compose() {
	start := time.Now()
	p := s.params
	p.GameMode = s.gameMode
	s.comp.Compose(p, s.feed.Frequency(), s.feed.Waveform(), s.reg)
	s.dirty = false
	s.metrics.ObserveCompose(time.Since(start))
	s.metrics.SetEntities(s.reg.Len())
}

// resetScene clears the registry and reruns the track's scene script,
// adding the player when the game overlay is on.
func (s *Session) resetScene() {
	s.reg.RemoveAll()
	s.reg.SetPlayer(nil)
	s.preset.Init(s.reg, s.bounds)
	if s.gameMode {
		p := sprite.NewPlayer(sprite.Vec{X: s.bounds.W * playerXFactor, Y: s.bounds.H / 2}, playerSize, s.bounds)
		p.SetColor(s.playerColor)
		s.reg.SetPlayer(p)
	}
	s.dirty = true
}

func (s *Session) setState(next State) {
	if next == s.state {
		return
	}
	s.log.Debug("State changed",
		slog.String("from", s.state.String()),
		slog.String("to", next.String()))
	s.state = next
}

func (s *Session) enterVoid() {
	s.initDone = false
	s.setState(StateVoid)
}

// TogglePlay starts or pauses playback. Starting from void or paused begins
// the game; pausing a game moves it to paused. Starting a track that played
// to its end begins it again.
func (s *Session) TogglePlay() {
	if !s.playing {
		if s.deck.Ended() {
			if err := s.deck.Rewind(); err != nil {
				s.log.Warn("Rewind failed", slog.Any("error", err))
			}
		}
		s.deck.Play()
		s.playing = true
		if s.state == StatePaused || s.state == StateVoid {
			s.setState(StateGame)
		}
		return
	}
	s.deck.Pause()
	s.playing = false
	if s.state == StateGame {
		s.setState(StatePaused)
	}
}

// SetGameMode switches the game overlay on or off. Playback is paused
// either way; turning it on waits in void, turning it off rewinds and
// restarts the scene as a plain visualizer.
func (s *Session) SetGameMode(on bool) {
	s.gameMode = on
	if s.playing {
		s.TogglePlay()
	}
	if on {
		s.enterVoid()
		return
	}
	s.setState(StateVisualizer)
	if err := s.deck.Rewind(); err != nil {
		s.log.Warn("Rewind failed", slog.Any("error", err))
	}
	s.resetScene()
}

// ToggleGameMode flips SetGameMode.
func (s *Session) ToggleGameMode() { s.SetGameMode(!s.gameMode) }

// SelectTrack loads track i and restarts its scene.
func (s *Session) SelectTrack(i int) error {
	if i < 0 || i >= len(s.tracks) {
		return fmt.Errorf("track index %d out of range [0, %d)", i, len(s.tracks))
	}
	if err := s.loadTrack(i); err != nil {
		return err
	}
	if s.playing {
		s.TogglePlay()
	}
	if s.state != StateVisualizer {
		s.enterVoid()
	}
	s.log.Info("Track changed",
		slog.String("track", s.Track().Name),
		slog.String("scene", s.preset.Name))
	return nil
}

// NextTrack selects the following track, wrapping around.
func (s *Session) NextTrack() error {
	return s.SelectTrack((s.current + 1) % len(s.tracks))
}

// PrevTrack selects the preceding track, wrapping around.
func (s *Session) PrevTrack() error {
	return s.SelectTrack((s.current + len(s.tracks) - 1) % len(s.tracks))
}

func (s *Session) loadTrack(i int) error {
	t := s.tracks[i]
	preset, err := scene.Lookup(t.Scene)
	if err != nil {
		return fmt.Errorf("track %q: %w", t.Name, err)
	}
	if err := s.deck.Load(t.Path); err != nil {
		return fmt.Errorf("load track %q: %w", t.Name, err)
	}
	if r, ok := s.tap.(interface{ Reset() }); ok {
		r.Reset()
	}
	s.current = i
	s.preset = preset
	s.resetScene()
	return nil
}
