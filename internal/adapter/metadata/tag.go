// Package metadata reads embedded tags from audio payloads.
package metadata

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/dhowden/tag"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/ports"
)

var _ ports.MetadataReader = (*TagReader)(nil)

// TagReader extracts titles from ID3, MP4, FLAC and Vorbis comment tags.
type TagReader struct {
	logger *slog.Logger
}

// NewTagReader creates a TagReader.
func NewTagReader(logger *slog.Logger) *TagReader {
	return &TagReader{logger: logger.With(slog.String("component", "TagReader"))}
}

// Title returns the embedded title, optionally prefixed by the artist.
// It returns "" when raw carries no usable tags.
func (r *TagReader) Title(raw []byte) string {
	m, err := tag.ReadFrom(bytes.NewReader(raw))
	if err != nil || m == nil {
		// Untagged files are normal, not worth more than a debug line.
		r.logger.Debug("no tags", slog.Any("error", err))
		return ""
	}

	title := strings.TrimSpace(m.Title())
	if title == "" {
		return ""
	}
	if artist := strings.TrimSpace(m.Artist()); artist != "" {
		return artist + " - " + title
	}
	return title
}
