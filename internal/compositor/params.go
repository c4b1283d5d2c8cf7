package compositor

import (
	"fmt"
	"image/color"
)

// ColorScheme names the overlay colour family.
type ColorScheme string

const (
	SchemeRed     ColorScheme = "red"
	SchemeBlue    ColorScheme = "blue"
	SchemeYellow  ColorScheme = "yellow"
	SchemeGreen   ColorScheme = "green"
	SchemeOrange  ColorScheme = "orange"
	SchemeRainbow ColorScheme = "rainbow"
)

// Schemes lists the recognised colour schemes in menu order.
var Schemes = []ColorScheme{SchemeRed, SchemeBlue, SchemeYellow, SchemeGreen, SchemeOrange, SchemeRainbow}

// DataType selects which sample array drives the bars.
type DataType string

const (
	DataFrequency DataType = "freq"
	DataWaveform  DataType = "wave"
)

// Params is the per-frame compositor configuration. It is a plain value:
// changing a field has no effect until the next Compose call.
type Params struct {
	ColorScheme ColorScheme
	UseGradient bool
	DataType    DataType
	ShowNoise   bool
	ShowInvert  bool
	ShowEmboss  bool
	NoiseColor  color.RGBA
	GameMode    bool
}

// DefaultParams returns the start-up look: flat red overlay over
// frequency bars, no pixel effects.
func DefaultParams() Params {
	return Params{
		ColorScheme: SchemeRed,
		DataType:    DataFrequency,
		NoiseColor:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// ParseColorScheme validates a scheme name.
func ParseColorScheme(s string) (ColorScheme, error) {
	for _, cs := range Schemes {
		if string(cs) == s {
			return cs, nil
		}
	}
	return "", fmt.Errorf("unknown color scheme %q", s)
}

// ParseDataType validates a data type name.
func ParseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case DataFrequency, DataWaveform:
		return DataType(s), nil
	}
	return "", fmt.Errorf("unknown data type %q", s)
}
