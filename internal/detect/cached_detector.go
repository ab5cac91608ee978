package detect

import (
	"context"

	"github.com/neutrinographics/faceguard/internal/core"
)

// CachedDetector replays pre-computed regions keyed by frame index,
// used when a preview pass has already located every face: the blur
// pass reuses those exact regions so track IDs match what the user
// selected in the preview.
type CachedDetector struct {
	cache map[uint64][]core.Region
}

// NewCachedDetector builds a CachedDetector over a completed cache.
func NewCachedDetector(cache map[uint64][]core.Region) *CachedDetector {
	return &CachedDetector{cache: cache}
}

// Detect implements Detector. Unknown frame indices yield no regions.
func (d *CachedDetector) Detect(ctx context.Context, frame core.Frame) ([]core.Region, error) {
	return d.cache[frame.Index], nil
}
