package detect

import (
	"math"

	"github.com/neutrinographics/faceguard/internal/core"
)

// edgeFraction is the fraction of a frame dimension within which a
// lookahead region's center must fall, relative to the nearest edge, to
// be pulled inward by edge interpolation.
const edgeFraction = 0.25

// Merger combines the current frame's regions with a lookahead window
// of future frames' regions, so a face entering near a frame edge
// begins to slide in several frames before its first real detection.
type Merger struct{}

// NewMerger builds a Merger.
func NewMerger() *Merger { return &Merger{} }

// Merge deduplicates by track ID first (current always wins over
// lookahead), edge-interpolates newly-seen tracked regions toward the
// nearest frame edge, then applies a final greedy IoU deduplication.
func (m *Merger) Merge(current []core.Region, lookahead [][]core.Region, frameW, frameH int) []core.Region {
	seen := make(map[uint32]struct{}, len(current))
	for _, r := range current {
		if r.HasTrackID {
			seen[r.TrackID] = struct{}{}
		}
	}

	result := make([]core.Region, len(current))
	copy(result, current)
	total := len(lookahead)

	for idx, future := range lookahead {
		for _, r := range future {
			if !r.HasTrackID {
				result = append(result, r)
				continue
			}
			if _, ok := seen[r.TrackID]; ok {
				continue
			}
			seen[r.TrackID] = struct{}{}
			if total > 0 {
				result = append(result, interpolate(r, idx, total, frameW, frameH))
			} else {
				result = append(result, r)
			}
		}
	}

	return core.Deduplicate(result, core.DefaultIoUThreshold)
}

// interpolate pushes a lookahead region toward its nearest frame edge
// by strength t = (idx+1)/(total+1), but only when the region's center
// already lies within edgeFraction of a frame dimension from that edge.
func interpolate(region core.Region, idx, total, frameW, frameH int) core.Region {
	t := float64(idx+1) / float64(total+1)

	cx := float64(region.X) + float64(region.Width)/2.0
	cy := float64(region.Y) + float64(region.Height)/2.0

	dLeft := cx
	dRight := float64(frameW) - cx
	dTop := cy
	dBottom := float64(frameH) - cy

	minDist := math.Min(math.Min(dLeft, dRight), math.Min(dTop, dBottom))

	const eps = 1e-9
	var threshold float64
	if math.Abs(minDist-dLeft) < eps || math.Abs(minDist-dRight) < eps {
		threshold = float64(frameW) * edgeFraction
	} else {
		threshold = float64(frameH) * edgeFraction
	}

	if minDist > threshold {
		return region
	}

	var dx, dy float64
	switch {
	case math.Abs(minDist-dLeft) < eps:
		dx, dy = -dLeft*t, 0
	case math.Abs(minDist-dRight) < eps:
		dx, dy = dRight*t, 0
	case math.Abs(minDist-dTop) < eps:
		dx, dy = 0, -dTop*t
	default:
		dx, dy = 0, dBottom*t
	}

	newX := int(math.Max(float64(region.X)+dx, 0))
	newY := int(math.Max(float64(region.Y)+dy, 0))

	out := region
	out.X, out.Y = newX, newY
	if region.HasUnclamped {
		out.UnclampedX = int(float64(region.UnclampedX) + dx)
		out.UnclampedY = int(float64(region.UnclampedY) + dy)
	}
	return out
}
