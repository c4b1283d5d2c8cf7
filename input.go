package main

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"beatsprite/internal/compositor"
	"beatsprite/internal/config"
	"beatsprite/internal/sprite"
)

var schemeKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5, ebiten.Key6}

var playerColorKeys = map[ebiten.Key]sprite.PlayerColor{
	ebiten.KeyQ: sprite.PlayerBlue,
	ebiten.KeyW: sprite.PlayerYellow,
	ebiten.KeyA: sprite.PlayerGreen,
	ebiten.KeyS: sprite.PlayerOrange,
}

func justPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

// handleInput processes the hotkeys pressed since the last tick.
func (g *Game) handleInput() {
	for i, k := range schemeKeys {
		if i < len(compositor.Schemes) && justPressed(k) {
			g.sess.SetColorScheme(compositor.Schemes[i])
		}
	}
	for k, c := range playerColorKeys {
		if justPressed(k) {
			g.sess.SelectPlayerColor(c)
		}
	}

	if justPressed(ebiten.KeyG) {
		g.sess.ToggleGradient()
	}
	if justPressed(ebiten.KeyN) {
		g.sess.ToggleNoise()
	}
	if justPressed(ebiten.KeyI) {
		g.sess.ToggleInvert()
	}
	if justPressed(ebiten.KeyE) {
		g.sess.ToggleEmboss()
	}
	if justPressed(ebiten.KeyD) {
		g.sess.ToggleDataType()
	}
	if justPressed(ebiten.KeyM) {
		g.sess.ToggleGameMode()
	}
	if justPressed(ebiten.KeySpace) {
		g.sess.TogglePlay()
	}

	if justPressed(ebiten.KeyArrowRight) {
		if err := g.sess.NextTrack(); err != nil {
			g.logger.Error("Track change failed", slog.String("error", err.Error()))
		}
	}
	if justPressed(ebiten.KeyArrowLeft) {
		if err := g.sess.PrevTrack(); err != nil {
			g.logger.Error("Track change failed", slog.String("error", err.Error()))
		}
	}

	g.handleAudioControls()

	if justPressed(ebiten.KeyF) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if justPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
}

// handleAudioControls maps the volume, shelf and distortion hotkeys onto
// the deck's chain.
func (g *Game) handleAudioControls() {
	if justPressed(ebiten.KeyArrowUp, ebiten.KeyEqual, ebiten.KeyKPAdd) {
		g.adjustVolume(volumeStep)
	}
	if justPressed(ebiten.KeyArrowDown, ebiten.KeyMinus, ebiten.KeyKPSubtract) {
		g.adjustVolume(-volumeStep)
	}

	chain := g.deck.Chain()
	if justPressed(ebiten.KeyB) {
		db := stepShelf(chain.Settings().LowshelfDB, lowshelfStepDB, config.MaxLowshelfDB)
		chain.SetLowshelf(db)
		g.logger.Debug("Bass", slog.Float64("db", db))
	}
	if justPressed(ebiten.KeyT) {
		db := stepShelf(chain.Settings().HighshelfDB, highshelfStepDB, config.MaxHighshelfDB)
		chain.SetHighshelf(db)
		g.logger.Debug("Treble", slog.Float64("db", db))
	}
	if justPressed(ebiten.KeyX) {
		on := !chain.Settings().Distortion
		chain.SetDistortion(on)
		g.logger.Debug("Distortion", slog.Bool("on", on))
	}
}

// adjustVolume clamps the deck volume delta within 0–100.
func (g *Game) adjustVolume(delta int) {
	g.deck.SetVolume(g.deck.Volume() + delta)
	g.logger.Debug("Volume", slog.Int("volume", g.deck.Volume()))
}

// stepShelf raises a shelf gain by step and wraps to -limit once it would
// pass limit.
func stepShelf(db, step, limit float64) float64 {
	next := db + step
	if next > limit {
		return -limit
	}
	return next
}
