package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beatsprite/internal/compositor"
	"beatsprite/internal/metrics"
	"beatsprite/internal/scene"
	"beatsprite/internal/sprite"
)

type fakeDeck struct {
	loaded  []string
	playing bool
	ended   bool
	rewinds int
	loadErr error
}

func (d *fakeDeck) Load(path string) error {
	if d.loadErr != nil {
		return d.loadErr
	}
	d.loaded = append(d.loaded, path)
	d.playing = false
	d.ended = false
	return nil
}

func (d *fakeDeck) Play()                   { d.playing = true }
func (d *fakeDeck) Pause()                  { d.playing = false }
func (d *fakeDeck) Ended() bool             { return d.ended }
func (d *fakeDeck) Rewind() error           { d.rewinds++; d.ended = false; return nil }
func (d *fakeDeck) Position() time.Duration { return 3 * time.Second }
func (d *fakeDeck) Duration() time.Duration { return time.Minute }

type silentAnalyser struct {
	resets int
}

func (silentAnalyser) FrequencyData(dst []byte) { clear(dst) }

func (silentAnalyser) WaveformData(dst []byte) {
	for i := range dst {
		dst[i] = 128
	}
}

func (a *silentAnalyser) Reset() { a.resets++ }

var testTracks = []Track{
	{Name: "one", Path: "one.mp3", Scene: scene.SummerBreeze},
	{Name: "two", Path: "two.mp3", Scene: scene.Candyland},
	{Name: "three", Path: "three.mp3", Scene: scene.Fantasy},
}

func newTestSession(t *testing.T, opts Options) (*Session, *fakeDeck) {
	t.Helper()
	if opts.Width == 0 {
		opts.Width, opts.Height = 160, 120
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	if opts.Params == (compositor.Params{}) {
		opts.Params = compositor.DefaultParams()
	}
	deck := &fakeDeck{}
	s, err := New(opts, &silentAnalyser{}, deck, testTracks)
	require.NoError(t, err)
	return s, deck
}

func TestNewLoadsFirstTrack(t *testing.T) {
	s, deck := newTestSession(t, Options{})

	assert.Equal(t, []string{"one.mp3"}, deck.loaded)
	assert.Equal(t, StateVisualizer, s.State())
	assert.Equal(t, 2, s.Registry().Count(sprite.KindEmitter))
	assert.Nil(t, s.Registry().Player())
	_, err := uuid.Parse(s.ID())
	assert.NoError(t, err)

	elapsed, total := s.Progress()
	assert.Equal(t, 3*time.Second, elapsed)
	assert.Equal(t, time.Minute, total)
}

func TestNewRejectsUnknownScene(t *testing.T) {
	tracks := []Track{{Name: "x", Path: "x.mp3", Scene: "lofi"}}
	_, err := New(Options{Width: 10, Height: 10, Seed: 1}, &silentAnalyser{}, &fakeDeck{}, tracks)
	require.ErrorIs(t, err, scene.ErrUnknownScene)
}

func TestNewSurfacesLoadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(Options{Width: 10, Height: 10, Seed: 1}, &silentAnalyser{}, &fakeDeck{loadErr: boom}, testTracks)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"one"`)
}

func TestNewRejectsEmptyTrackList(t *testing.T) {
	deck := &fakeDeck{}
	s, err := New(Options{Width: 10, Height: 10}, &silentAnalyser{}, deck, nil)
	assert.ErrorIs(t, err, ErrNoTracks)
	assert.Nil(t, s)
	assert.Empty(t, deck.loaded)
}

func TestVisualizerPausesWhenTrackEnds(t *testing.T) {
	s, deck := newTestSession(t, Options{})
	s.TogglePlay()
	require.True(t, deck.playing)
	assert.Equal(t, StateVisualizer, s.State())

	deck.ended = true
	s.Tick(0, 0)

	assert.False(t, s.Playing())
	assert.False(t, deck.playing)
	assert.Equal(t, StateVisualizer, s.State())
}

func TestPlayAfterTrackEndStartsOver(t *testing.T) {
	s, deck := newTestSession(t, Options{})
	s.TogglePlay()
	deck.ended = true
	s.Tick(0, 0)
	require.False(t, s.Playing())
	rewinds := deck.rewinds

	s.TogglePlay()
	assert.Equal(t, rewinds+1, deck.rewinds)
	assert.True(t, deck.playing)

	s.Tick(0, 0)
	assert.True(t, s.Playing(), "a restarted track keeps playing")
	assert.Equal(t, StateVisualizer, s.State())
}

func TestPlayMidTrackDoesNotRewind(t *testing.T) {
	s, deck := newTestSession(t, Options{})
	s.TogglePlay()
	s.TogglePlay()
	rewinds := deck.rewinds

	s.TogglePlay()
	assert.Equal(t, rewinds, deck.rewinds)
	assert.True(t, deck.playing)
}

func TestGameLifecycle(t *testing.T) {
	s, deck := newTestSession(t, Options{})
	s.TogglePlay()

	s.SetGameMode(true)
	assert.False(t, deck.playing, "entering game mode pauses playback")
	require.Equal(t, StateVoid, s.State())

	s.Tick(10, 20)
	assert.Equal(t, 1, deck.rewinds)
	player := s.Registry().Player()
	require.NotNil(t, player)
	assert.Equal(t, sprite.Vec{X: 10, Y: 20}, player.Pos)

	s.TogglePlay()
	require.Equal(t, StateGame, s.State())
	s.Tick(50, 60)
	assert.Equal(t, sprite.Vec{X: 50, Y: 60}, player.Pos)

	s.TogglePlay()
	require.Equal(t, StatePaused, s.State())

	s.TogglePlay()
	deck.ended = true
	s.Tick(0, 0)
	assert.Equal(t, StateVoid, s.State())
	assert.False(t, s.Playing())

	// Void reruns the scene once, with a fresh player.
	s.Tick(0, 0)
	assert.NotSame(t, player, s.Registry().Player())
	assert.Equal(t, 2, s.Registry().Count(sprite.KindEmitter))
}

func TestPausedFreezesFrameUntilDirty(t *testing.T) {
	s, _ := newTestSession(t, Options{Game: true})
	s.Tick(0, 0)
	s.TogglePlay()
	s.Tick(0, 0)
	s.TogglePlay()
	require.Equal(t, StatePaused, s.State())

	emitter := s.Registry().Entities()[0]
	pos := emitter.Pos
	before := append([]byte(nil), s.Frame().Pix...)

	s.Tick(0, 0)
	assert.Equal(t, before, s.Frame().Pix)
	assert.Equal(t, pos, emitter.Pos)

	s.ToggleInvert()
	require.True(t, s.Dirty())
	s.Tick(0, 0)
	assert.False(t, s.Dirty())
	assert.Equal(t, pos, emitter.Pos, "repaint does not advance entities")
	assert.Equal(t, 255-before[0], s.Frame().Pix[0])
}

func TestPlayerColorAppliesOnlyInVoid(t *testing.T) {
	s, _ := newTestSession(t, Options{Game: true})
	s.Tick(0, 0)
	s.TogglePlay()
	require.Equal(t, StateGame, s.State())

	s.SelectPlayerColor(sprite.PlayerGreen)
	s.Tick(0, 0)
	assert.Equal(t, sprite.PlayerBlue, s.Registry().Player().Color())

	s.SetGameMode(true)
	s.Tick(0, 0)
	assert.Equal(t, sprite.PlayerGreen, s.Registry().Player().Color())
}

func TestGameModeOffReturnsToVisualizer(t *testing.T) {
	s, deck := newTestSession(t, Options{Game: true})
	s.Tick(0, 0)
	require.NotNil(t, s.Registry().Player())

	s.SetGameMode(false)
	assert.Equal(t, StateVisualizer, s.State())
	assert.Nil(t, s.Registry().Player())
	assert.Equal(t, 2, deck.rewinds)
	assert.False(t, s.GameMode())
}

func TestTogglesMarkDirty(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Tick(0, 0)
	require.False(t, s.Dirty())

	tests := []struct {
		name   string
		toggle func()
		check  func(p compositor.Params) bool
	}{
		{"gradient", s.ToggleGradient, func(p compositor.Params) bool { return p.UseGradient }},
		{"invert", s.ToggleInvert, func(p compositor.Params) bool { return p.ShowInvert }},
		{"emboss", s.ToggleEmboss, func(p compositor.Params) bool { return p.ShowEmboss }},
		{"data type", s.ToggleDataType, func(p compositor.Params) bool { return p.DataType == compositor.DataWaveform }},
		{"scheme", func() { s.SetColorScheme(compositor.SchemeGreen) }, func(p compositor.Params) bool {
			return p.ColorScheme == compositor.SchemeGreen
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.toggle()
			assert.True(t, s.Dirty())
			assert.True(t, tt.check(s.Params()))
			s.Tick(0, 0)
			assert.False(t, s.Dirty())
		})
	}
}

func TestNoiseColorRerolledOnEnable(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.ToggleNoise()
	first := s.Params().NoiseColor
	require.True(t, s.Params().ShowNoise)
	assert.Equal(t, uint8(255), first.A)

	s.ToggleNoise()
	assert.False(t, s.Params().ShowNoise)
	assert.Equal(t, first, s.Params().NoiseColor)

	s.ToggleNoise()
	s.ToggleNoise()
	s.ToggleNoise()
	assert.NotEqual(t, first, s.Params().NoiseColor)
}

func TestTrackNavigation(t *testing.T) {
	s, deck := newTestSession(t, Options{})

	require.NoError(t, s.NextTrack())
	assert.Equal(t, "two", s.Track().Name)
	assert.Equal(t, 1, s.Registry().Count(sprite.KindEmitter))

	require.NoError(t, s.PrevTrack())
	require.NoError(t, s.PrevTrack())
	assert.Equal(t, "three", s.Track().Name)
	assert.Equal(t, 5, s.Registry().Count(sprite.KindCubicCurve))

	assert.Equal(t, []string{"one.mp3", "two.mp3", "one.mp3", "three.mp3"}, deck.loaded)
	assert.Error(t, s.SelectTrack(7))
}

func TestTrackChangeInGameWaitsInVoid(t *testing.T) {
	s, deck := newTestSession(t, Options{Game: true})
	s.Tick(0, 0)
	s.TogglePlay()
	require.Equal(t, StateGame, s.State())

	require.NoError(t, s.SelectTrack(2))
	assert.Equal(t, StateVoid, s.State())
	assert.False(t, s.Playing())
	assert.False(t, deck.playing)
}

func TestTickFeedsMetrics(t *testing.T) {
	m := metrics.New()
	s, _ := newTestSession(t, Options{Metrics: m})
	s.Tick(0, 0)
	s.Tick(0, 0)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["beatsprite_ticks_total"])
	assert.True(t, found["beatsprite_entities"])
	assert.True(t, found["beatsprite_frame_compose_seconds"])
}
