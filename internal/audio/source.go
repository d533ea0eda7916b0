// Package audio implements the signal source adapter: it owns the decoded
// asset and the playback graph that feeds both the output and the analysers.
//
// The graph is a chain of beep streamers:
//
//	[Asset] -> [Resample] -> [Low-shelf]? -> [Gain] -> [Analyser] -> [Bass analyser]? -> [Ctrl] -> [Output]
package audio

import (
	"fmt"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"
)

// assetStreamer streams an AudioAsset as stereo frames.
// Mono assets are duplicated to both channels; extra channels are ignored.
// Position and Seek must be called with the output locked.
type assetStreamer struct {
	left, right []float32
	pos         int
}

func newAssetStreamer(asset *domain.AudioAsset) *assetStreamer {
	s := &assetStreamer{}
	if asset.NumChannels() > 0 {
		s.left = asset.Channels[0]
		s.right = s.left
	}
	if asset.NumChannels() > 1 {
		s.right = asset.Channels[1]
	}
	return s
}

func (s *assetStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.left) {
		return 0, false
	}

	n := min(len(samples), len(s.left)-s.pos)
	for i := range n {
		samples[i][0] = float64(s.left[s.pos+i])
		samples[i][1] = float64(s.right[s.pos+i])
	}
	s.pos += n
	return n, true
}

func (s *assetStreamer) Err() error { return nil }

// Len returns the number of frames in the asset.
func (s *assetStreamer) Len() int { return len(s.left) }

// Position returns the index of the next frame to be streamed.
func (s *assetStreamer) Position() int { return s.pos }

// Seek moves the read position to frame p.
func (s *assetStreamer) Seek(p int) error {
	if p < 0 || p > len(s.left) {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, len(s.left))
	}
	s.pos = p
	return nil
}
