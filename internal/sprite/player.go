package sprite

import (
	"image/color"
	"math"

	"beatsprite/internal/raster"
)

// PlayerColor is one entry of the fixed player palette. Each colour also
// picks the player's shape.
type PlayerColor uint8

const (
	PlayerBlue PlayerColor = iota + 1
	PlayerYellow
	PlayerGreen
	PlayerOrange
)

// playerSizeBoost enlarges polygons so they read about as big as the circle
// drawn with the raw size.
const playerSizeBoost = 1.2

var playerPalette = map[PlayerColor]color.RGBA{
	PlayerBlue:   raster.MustHex("#08ffff"),
	PlayerYellow: raster.MustHex("#f8ff29"),
	PlayerGreen:  raster.MustHex("#07f70f"),
	PlayerOrange: raster.MustHex("#f7a707"),
}

var playerColorNames = map[string]PlayerColor{
	"blue":   PlayerBlue,
	"yellow": PlayerYellow,
	"green":  PlayerGreen,
	"orange": PlayerOrange,
}

// ParsePlayerColor maps a palette name to its colour.
func ParsePlayerColor(name string) (PlayerColor, bool) {
	c, ok := playerColorNames[name]
	return c, ok
}

func (c PlayerColor) String() string {
	for name, pc := range playerColorNames {
		if pc == c {
			return name
		}
	}
	return "unknown"
}

// RGBA returns the display colour, blue for unknown entries.
func (c PlayerColor) RGBA() color.RGBA {
	if rgba, ok := playerPalette[c]; ok {
		return rgba
	}
	return playerPalette[PlayerBlue]
}

func drawPlayer(c Canvas, e *Entity) {
	x, y := e.Pos.X, e.Pos.Y
	poly := e.Size * playerSizeBoost
	switch e.color {
	case PlayerBlue:
		c.FillPolygon(x, y, poly, 4, math.Pi/4, e.color.RGBA())
	case PlayerYellow:
		c.FillPolygon(x, y, poly, 3, 0, e.color.RGBA())
	case PlayerGreen:
		c.FillPolygon(x, y, poly, 5, 0, e.color.RGBA())
	case PlayerOrange:
		c.FillCircle(x, y, e.Size, e.color.RGBA())
	default:
		c.FillRect(x, y, e.Size*2, e.Size*2, raster.PivotCenter, PlayerBlue.RGBA())
	}
}
