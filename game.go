package main

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	beataudio "beatsprite/internal/audio"
	"beatsprite/internal/config"
	"beatsprite/internal/session"
)

// Game adapts a session to ebiten's loop: hotkeys and config reloads are
// applied first, then the session ticks with the cursor position.
type Game struct {
	sess   *session.Session
	deck   *beataudio.Deck
	logger *slog.Logger

	width, height int
	debug         bool

	updates <-chan *config.Config
	quit    atomic.Bool

	lastLogged  time.Time
	lastTickDur time.Duration
}

// newGame wires a session and its deck into a runnable Game.
func newGame(sess *session.Session, deck *beataudio.Deck, cfg *config.Config, logger *slog.Logger, debug bool) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		sess:   sess,
		deck:   deck,
		logger: logger,
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
		debug:  debug,
	}
}

// Update applies pending input and advances the session by one tick.
func (g *Game) Update() error {
	if g.quit.Load() {
		return ebiten.Termination
	}
	g.drainConfigUpdates()
	g.handleInput()

	cx, cy := ebiten.CursorPosition()
	start := time.Now()
	g.sess.Tick(float64(cx), float64(cy))
	g.lastTickDur = time.Since(start)

	g.logProgress()
	return nil
}

func (g *Game) drainConfigUpdates() {
	for {
		select {
		case cfg, ok := <-g.updates:
			if !ok {
				g.updates = nil
				return
			}
			if cfg != nil {
				g.applyConfig(cfg)
			}
		default:
			return
		}
	}
}

// applyConfig takes over the live-tunable sections of a reloaded config.
// Window size, sample rate and the track list need a restart.
func (g *Game) applyConfig(cfg *config.Config) {
	params, err := cfg.Visual.Params()
	if err != nil {
		g.logger.Warn("Ignoring reloaded visual config", slog.String("error", err.Error()))
		return
	}
	g.sess.SetParams(params)

	g.deck.SetVolume(cfg.Audio.Volume)
	chain := g.deck.Chain()
	chain.SetLowshelf(cfg.Audio.Lowshelf)
	chain.SetHighshelf(cfg.Audio.Highshelf)
	chain.SetDistortion(cfg.Audio.Distortion)

	g.logger.Info("Config reloaded",
		slog.String("color_scheme", cfg.Visual.ColorScheme),
		slog.String("data_type", cfg.Visual.DataType),
		slog.Int("volume", cfg.Audio.Volume))
}

func (g *Game) logProgress() {
	if !g.sess.Playing() || time.Since(g.lastLogged) < trackLogEvery {
		return
	}
	g.lastLogged = time.Now()
	elapsed, total := g.sess.Progress()
	g.logger.Debug("Playback",
		slog.String("track", g.sess.Track().Name),
		slog.String("state", g.sess.State().String()),
		slog.Duration("elapsed", elapsed),
		slog.Duration("total", total),
		slog.Int("entities", g.sess.Registry().Len()))
}
