package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoTracks is returned when neither the track list nor the glob yields
// anything to play.
var ErrNoTracks = errors.New("no tracks")

// ResolveTracks returns the configured tracks followed by any files the
// glob discovers, with paths made absolute against BaseDir. A file listed
// explicitly is not repeated by the glob.
func (c *Config) ResolveTracks() ([]TrackConfig, error) {
	seen := make(map[string]bool)
	var out []TrackConfig

	for _, t := range c.Tracks {
		t.Path = c.absPath(t.Path)
		if t.Name == "" {
			t.Name = trackName(t.Path)
		}
		seen[t.Path] = true
		out = append(out, t)
	}

	if c.TracksGlob != "" {
		matches, err := doublestar.FilepathGlob(c.absPath(c.TracksGlob))
		if err != nil {
			return nil, fmt.Errorf("tracks_glob %q: %w", c.TracksGlob, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, TrackConfig{Name: trackName(m), Path: m, Scene: c.GlobScene})
		}
	}

	if len(out) == 0 {
		return nil, ErrNoTracks
	}
	return out, nil
}

func (c *Config) absPath(p string) string {
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(c.BaseDir, p)
}

// trackName is the file name without its extension.
func trackName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
