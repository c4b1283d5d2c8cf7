// Package audio plays tracks through a filter chain and feeds what is
// heard to the analyser tap.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// bytesPerFrame is one 16-bit stereo frame.
const bytesPerFrame = 4

// Decode reads the file at path and returns 16-bit little-endian stereo
// PCM at sampleRate. The format is picked by extension.
func Decode(sampleRate int, path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var stream io.Reader
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(sampleRate, bytes.NewReader(raw))
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(raw))
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(sampleRate, bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("decoding %q: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading decoded %q: %w", path, err)
	}
	pcm = pcm[:len(pcm)-len(pcm)%bytesPerFrame]
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%q has no audio data", path)
	}
	return pcm, nil
}

func readFrame(pcm []byte) (left, right float64) {
	l := int16(binary.LittleEndian.Uint16(pcm[0:2]))
	r := int16(binary.LittleEndian.Uint16(pcm[2:4]))
	return float64(l) / 32768, float64(r) / 32768
}

func writeFrame(pcm []byte, left, right float64) {
	binary.LittleEndian.PutUint16(pcm[0:2], uint16(toInt16(left)))
	binary.LittleEndian.PutUint16(pcm[2:4], uint16(toInt16(right)))
}

func toInt16(v float64) int16 {
	s := v * 32768
	switch {
	case s >= 32767:
		return 32767
	case s <= -32768:
		return -32768
	}
	if s < 0 {
		return int16(s - 0.5)
	}
	return int16(s + 0.5)
}
