// Package pcm provides the beep-backed audio adapters: a whole-file decoder
// for mp3, wav, ogg/vorbis and flac payloads, and the speaker output.
package pcm

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

// Container formats recognised by the decoder.
const (
	FormatWAV     = "wav"
	FormatMP3     = "mp3"
	FormatVorbis  = "vorbis"
	FormatFLAC    = "flac"
	FormatUnknown = "unknown"
)

const decodeChunk = 4096

var _ ports.Decoder = (*Decoder)(nil)

// Decoder decodes complete payloads into AudioAssets.
//
// Thread-safety: Decoder is stateless and safe for concurrent use.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates a decoder.
func NewDecoder(logger *slog.Logger) *Decoder {
	return &Decoder{logger: logger.With(slog.String("component", "Decoder"))}
}

// Sniff detects the container of raw from its magic bytes, falling back to
// the extension of name.
func Sniff(name string, raw []byte) string {
	switch {
	case len(raw) >= 12 && string(raw[0:4]) == "RIFF" && string(raw[8:12]) == "WAVE":
		return FormatWAV
	case bytes.HasPrefix(raw, []byte("OggS")):
		return FormatVorbis
	case bytes.HasPrefix(raw, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(raw, []byte("ID3")):
		return FormatMP3
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1]&0xE0 == 0xE0:
		return FormatMP3
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	case ".ogg", ".oga":
		return FormatVorbis
	case ".flac":
		return FormatFLAC
	}
	return FormatUnknown
}

// Decode decodes the whole of raw. raw is not retained.
func (d *Decoder) Decode(name string, raw []byte) (*domain.AudioAsset, error) {
	format := Sniff(name, raw)
	if format == FormatUnknown {
		return nil, domain.NewDecodeError(name, len(raw), format, domain.ErrUnsupportedFormat)
	}

	streamer, f, err := open(format, raw)
	if err != nil {
		return nil, domain.NewDecodeError(name, len(raw), format, err)
	}
	defer streamer.Close()

	asset, err := readAll(name, streamer, f)
	if err != nil {
		return nil, domain.NewDecodeError(name, len(raw), format, err)
	}

	d.logger.Debug("decoded",
		slog.String("name", name),
		slog.String("format", format),
		slog.Int("sample_rate", asset.SampleRate),
		slog.Int("frames", asset.Frames()))
	return asset, nil
}

func open(format string, raw []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := bytes.NewReader(raw)
	switch format {
	case FormatWAV:
		return wav.Decode(r)
	case FormatMP3:
		return mp3.Decode(io.NopCloser(r))
	case FormatVorbis:
		return vorbis.Decode(io.NopCloser(r))
	case FormatFLAC:
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, domain.ErrUnsupportedFormat
	}
}

// readAll drains s into per-channel sample slices.
func readAll(name string, s beep.Streamer, f beep.Format) (*domain.AudioAsset, error) {
	channels := min(max(f.NumChannels, 1), 2)
	if f.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}

	out := make([][]float32, channels)
	buf := make([][2]float64, decodeChunk)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			for ch := range channels {
				out[ch] = append(out[ch], float32(frame[ch]))
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(out[0]) == 0 {
		return nil, domain.ErrEmptyAsset
	}

	return &domain.AudioAsset{
		Name:       name,
		SampleRate: int(f.SampleRate),
		Channels:   out,
	}, nil
}
