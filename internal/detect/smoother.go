// Package detect implements the detection subsystem: region
// construction from raw boxes and landmarks, per-track smoothing, the
// lookahead region merger, track-ID filtering, the ByteTrack-style
// tracker, and the skip-frame and cached detector decorators.
package detect

// DefaultAlpha is the EMA smoother's default weight on the new
// observation.
const DefaultAlpha = 0.6

// SmoothParams is the four-parameter vector a region is smoothed on:
// center X, center Y, half-width, half-height.
type SmoothParams [4]float64

// Smoother applies temporal smoothing to region parameters keyed by
// track ID.
type Smoother interface {
	Smooth(params SmoothParams, trackID uint32, hasTrackID bool) SmoothParams
}

// EMASmoother is a per-track exponential moving average:
// ema[t] = alpha*current + (1-alpha)*ema[t-1]. A region without a track
// ID bypasses smoothing entirely; the first observation for a new track
// ID passes through unchanged.
type EMASmoother struct {
	alpha float64
	state map[uint32]SmoothParams
}

// NewEMASmoother builds a smoother with the given alpha in [0, 1].
func NewEMASmoother(alpha float64) *EMASmoother {
	return &EMASmoother{alpha: alpha, state: make(map[uint32]SmoothParams)}
}

// NewDefaultEMASmoother builds a smoother with DefaultAlpha.
func NewDefaultEMASmoother() *EMASmoother {
	return NewEMASmoother(DefaultAlpha)
}

func (s *EMASmoother) Smooth(params SmoothParams, trackID uint32, hasTrackID bool) SmoothParams {
	if !hasTrackID {
		return params
	}

	prev, ok := s.state[trackID]
	smoothed := params
	if ok {
		for i := range smoothed {
			smoothed[i] = s.alpha*params[i] + (1-s.alpha)*prev[i]
		}
	}

	s.state[trackID] = smoothed
	return smoothed
}
