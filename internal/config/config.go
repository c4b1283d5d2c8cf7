// Package config provides configuration loading for beatsprite.
package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"beatsprite/internal/compositor"
	"beatsprite/internal/scene"
)

// Config represents the complete beatsprite configuration
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Audio   AudioConfig   `yaml:"audio"`
	Visual  VisualConfig  `yaml:"visual"`
	Tracks  []TrackConfig `yaml:"tracks"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	// TracksGlob discovers extra tracks, e.g. "music/**/*.{mp3,wav}".
	TracksGlob string `yaml:"tracks_glob"`
	// GlobScene is the scene given to discovered tracks.
	GlobScene string `yaml:"glob_scene"`

	// BaseDir anchors relative track paths: the directory of the last file
	// loaded, or the working directory.
	BaseDir string `yaml:"-"`
}

// WindowConfig configures the window and canvas
type WindowConfig struct {
	// Width and Height are the canvas size in pixels
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Scale multiplies the canvas size for the initial window size
	Scale float64 `yaml:"scale"`
	Title string  `yaml:"title"`
}

// AudioConfig configures playback and analysis
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	// FFTSize is the analyser transform size; sample arrays hold half as many entries
	FFTSize int `yaml:"fft_size"`
	// Volume is 0-100; 50 plays at unit gain
	Volume    int     `yaml:"volume"`
	Smoothing float64 `yaml:"smoothing"`
	MinDB     float64 `yaml:"min_db"`
	MaxDB     float64 `yaml:"max_db"`
	// Lowshelf and Highshelf are shelf gains in dB at 1 kHz
	Lowshelf   float64 `yaml:"lowshelf"`
	Highshelf  float64 `yaml:"highshelf"`
	Distortion bool    `yaml:"distortion"`
}

// VisualConfig is the live-reloadable compositor configuration
type VisualConfig struct {
	ColorScheme string `yaml:"color_scheme"`
	Gradient    bool   `yaml:"gradient"`
	DataType    string `yaml:"data_type"`
	Noise       bool   `yaml:"noise"`
	Invert      bool   `yaml:"invert"`
	Emboss      bool   `yaml:"emboss"`
	NoiseColor  RGB    `yaml:"noise_color"`
}

// RGB is an opaque colour
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// TrackConfig names one playable file and the scene it runs
type TrackConfig struct {
	Name  string `yaml:"name"`
	Path  string `yaml:"path"`
	Scene string `yaml:"scene"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint
	Addr string `yaml:"addr"`
}

// Limits enforced by Validate.
const (
	MaxLowshelfDB  = 15
	MaxHighshelfDB = 30
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Scale:  1,
			Title:  "beatsprite",
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			FFTSize:    256,
			Volume:     50,
			Smoothing:  0.8,
			MinDB:      -100,
			MaxDB:      -30,
		},
		Visual: VisualConfig{
			ColorScheme: string(compositor.SchemeRed),
			DataType:    string(compositor.DataFrequency),
			NoiseColor:  RGB{R: 255, G: 255, B: 255},
		},
		GlobScene: scene.SummerBreeze,
		Log:       LogConfig{Level: "info"},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.Scale <= 0 {
		return fmt.Errorf("window.scale must be positive")
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive")
	}
	if c.Audio.FFTSize <= 0 || c.Audio.FFTSize%2 != 0 {
		return fmt.Errorf("audio.fft_size must be even and positive, got %d", c.Audio.FFTSize)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("audio.volume must be between 0 and 100")
	}
	if c.Audio.Smoothing < 0 || c.Audio.Smoothing >= 1 {
		return fmt.Errorf("audio.smoothing must be in [0, 1)")
	}
	if c.Audio.MinDB >= c.Audio.MaxDB {
		return fmt.Errorf("audio.min_db must be below audio.max_db")
	}
	if c.Audio.Lowshelf < -MaxLowshelfDB || c.Audio.Lowshelf > MaxLowshelfDB {
		return fmt.Errorf("audio.lowshelf must be within ±%d dB", MaxLowshelfDB)
	}
	if c.Audio.Highshelf < -MaxHighshelfDB || c.Audio.Highshelf > MaxHighshelfDB {
		return fmt.Errorf("audio.highshelf must be within ±%d dB", MaxHighshelfDB)
	}
	if _, err := c.Visual.Params(); err != nil {
		return err
	}
	for i, t := range c.Tracks {
		if t.Path == "" {
			return fmt.Errorf("tracks[%d].path is required", i)
		}
		if _, err := scene.Lookup(t.Scene); err != nil {
			return fmt.Errorf("tracks[%d]: %w", i, err)
		}
	}
	if c.TracksGlob != "" {
		if _, err := scene.Lookup(c.GlobScene); err != nil {
			return fmt.Errorf("glob_scene: %w", err)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Params converts the visual section for the compositor.
func (v VisualConfig) Params() (compositor.Params, error) {
	cs, err := compositor.ParseColorScheme(v.ColorScheme)
	if err != nil {
		return compositor.Params{}, fmt.Errorf("visual.color_scheme: %w", err)
	}
	dt, err := compositor.ParseDataType(v.DataType)
	if err != nil {
		return compositor.Params{}, fmt.Errorf("visual.data_type: %w", err)
	}
	return compositor.Params{
		ColorScheme: cs,
		UseGradient: v.Gradient,
		DataType:    dt,
		ShowNoise:   v.Noise,
		ShowInvert:  v.Invert,
		ShowEmboss:  v.Emboss,
		NoiseColor:  color.RGBA{R: v.NoiseColor.R, G: v.NoiseColor.G, B: v.NoiseColor.B, A: 255},
	}, nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.apply(path); err != nil {
		return nil, err
	}
	return config, nil
}

// apply overlays the keys present in the file at path onto c.
func (c *Config) apply(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		c.BaseDir = abs
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
