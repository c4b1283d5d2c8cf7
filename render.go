package main

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Draw uploads the session's software-composited frame and the optional
// debug overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	frame := g.sess.Frame()
	if len(frame.Pix) == g.width*g.height*4 {
		screen.WritePixels(frame.Pix)
	}

	if g.debug {
		ebitenutil.DebugPrint(screen, g.debugText())
	}
}

func (g *Game) debugText() string {
	tps := ebiten.ActualTPS()
	if tps < 0 {
		tps = 0
	}
	elapsed, total := g.sess.Progress()
	p := g.sess.Params()
	return fmt.Sprintf("FPS: %.1f  TPS: %.1f\nTick: %.2f ms\nState: %s  Entities: %d\nTrack: %s [%s / %s]\nScheme: %s  Data: %s  Volume: %d",
		ebiten.ActualFPS(), tps,
		g.lastTickDur.Seconds()*1000,
		g.sess.State(), g.sess.Registry().Len(),
		g.sess.Track().Name, formatClock(elapsed), formatClock(total),
		p.ColorScheme, p.DataType, g.deck.Volume())
}

// Layout reports the logical screen size: the canvas, scaled by ebiten.
func (g *Game) Layout(_, _ int) (int, int) { return g.width, g.height }

// formatClock renders d as m:ss.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}
