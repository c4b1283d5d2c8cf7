package session

import (
	"image/color"

	"beatsprite/internal/compositor"
	"beatsprite/internal/sprite"
)

// Visual toggles only set the field and mark the frame dirty; the change
// shows on the next compose.

func (s *Session) SetColorScheme(cs compositor.ColorScheme) {
	s.params.ColorScheme = cs
	s.dirty = true
}

func (s *Session) ToggleGradient() {
	s.params.UseGradient = !s.params.UseGradient
	s.dirty = true
}

// ToggleNoise flips the noise effect, picking a fresh noise colour each time
// it turns on.
func (s *Session) ToggleNoise() {
	s.params.ShowNoise = !s.params.ShowNoise
	if s.params.ShowNoise {
		s.params.NoiseColor = color.RGBA{
			R: uint8(s.rng.Intn(256)),
			G: uint8(s.rng.Intn(256)),
			B: uint8(s.rng.Intn(256)),
			A: 255,
		}
	}
	s.dirty = true
}

func (s *Session) ToggleInvert() {
	s.params.ShowInvert = !s.params.ShowInvert
	s.dirty = true
}

func (s *Session) ToggleEmboss() {
	s.params.ShowEmboss = !s.params.ShowEmboss
	s.dirty = true
}

// ToggleDataType switches between frequency and waveform bars.
func (s *Session) ToggleDataType() {
	if s.params.DataType == compositor.DataWaveform {
		s.params.DataType = compositor.DataFrequency
	} else {
		s.params.DataType = compositor.DataWaveform
	}
	s.dirty = true
}

// SetParams replaces the visual configuration, as on a config reload.
func (s *Session) SetParams(p compositor.Params) {
	s.params = p
	s.dirty = true
}

// SelectPlayerColor queues a colour change. It is applied on the next void
// tick and ignored in every other state until then.
func (s *Session) SelectPlayerColor(c sprite.PlayerColor) {
	s.pendingColor = c
	s.colorChanged = true
}

func (s *Session) applyPendingColor() {
	if !s.colorChanged {
		return
	}
	s.colorChanged = false
	s.playerColor = s.pendingColor
	if p := s.reg.Player(); p != nil {
		p.SetColor(s.playerColor)
	}
}
