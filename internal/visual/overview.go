package visual

import "github.com/CoderFleet/AudioVisualiserHackClub/internal/domain"

// Overview renders the first channel of asset as a single polyline of at
// most w vertices, sampled with a fixed stride.
func Overview(asset *domain.AudioAsset, w, h int) []DrawCommand {
	if asset == nil || asset.Frames() == 0 || w <= 0 || h <= 0 {
		return nil
	}

	samples := asset.Channels[0]
	stride := max(1, len(samples)/w)
	points := make([]Point, 0, min(w, len(samples)))
	for i := 0; i < len(samples) && len(points) < w; i += stride {
		points = append(points, Point{
			X: float64(len(points)),
			Y: (1 + float64(samples[i])) * float64(h) / 2,
		})
	}

	return []DrawCommand{
		{Kind: KindClear},
		{
			Kind:        KindStrokePolyline,
			Points:      points,
			StrokeWidth: 1,
			Color:       OverviewColor,
		},
	}
}
