package detect

import (
	"context"

	"github.com/neutrinographics/faceguard/internal/core"
)

// SkipFrameDecorator runs an inner Detector every skipInterval frames,
// reusing the last result in between. On skipped frames it linearly
// extrapolates each tracked region's position from the velocity
// observed between the two most recent real detections, so motion
// doesn't stutter between real detections.
type SkipFrameDecorator struct {
	inner        Detector
	skipInterval int
	frameCount   int

	lastRegions      []core.Region
	framesSinceDetect int
	velocity         map[uint32][2]float64
	prevPos          map[uint32][2]int
}

// NewSkipFrameDecorator wraps inner so it only runs every skipInterval
// frames. skipInterval must be >= 1.
func NewSkipFrameDecorator(inner Detector, skipInterval int) (*SkipFrameDecorator, error) {
	if skipInterval < 1 {
		return nil, errSkipInterval
	}
	return &SkipFrameDecorator{
		inner:        inner,
		skipInterval: skipInterval,
		velocity:     make(map[uint32][2]float64),
		prevPos:      make(map[uint32][2]int),
	}, nil
}

// Detect implements Detector.
func (d *SkipFrameDecorator) Detect(ctx context.Context, frame core.Frame) ([]core.Region, error) {
	if d.frameCount%d.skipInterval == 0 {
		regions, err := d.inner.Detect(ctx, frame)
		if err != nil {
			return nil, err
		}
		d.updateVelocity(regions)
		d.lastRegions = regions
		d.framesSinceDetect = 0
	} else {
		d.framesSinceDetect++
	}
	d.frameCount++

	if d.framesSinceDetect == 0 {
		return d.lastRegions, nil
	}
	return d.extrapolate(d.lastRegions, d.framesSinceDetect), nil
}

func (d *SkipFrameDecorator) updateVelocity(regions []core.Region) {
	newPos := make(map[uint32][2]int, len(regions))
	for _, r := range regions {
		if !r.HasTrackID {
			continue
		}
		newPos[r.TrackID] = [2]int{r.X, r.Y}
		if old, ok := d.prevPos[r.TrackID]; ok {
			dx := float64(r.X-old[0]) / float64(d.skipInterval)
			dy := float64(r.Y-old[1]) / float64(d.skipInterval)
			d.velocity[r.TrackID] = [2]float64{dx, dy}
		}
	}
	d.prevPos = newPos
}

func (d *SkipFrameDecorator) extrapolate(regions []core.Region, steps int) []core.Region {
	out := make([]core.Region, len(regions))
	for i, r := range regions {
		if !r.HasTrackID {
			out[i] = r
			continue
		}
		vel, ok := d.velocity[r.TrackID]
		if !ok {
			out[i] = r
			continue
		}
		dx, dy := vel[0]*float64(steps), vel[1]*float64(steps)
		nr := r
		nr.X = max(r.X+int(dx), 0)
		nr.Y = max(r.Y+int(dy), 0)
		if r.HasUnclamped {
			nr.UnclampedX = r.UnclampedX + int(dx)
			nr.UnclampedY = r.UnclampedY + int(dy)
		}
		out[i] = nr
	}
	return out
}

type skipIntervalError string

func (e skipIntervalError) Error() string { return string(e) }

const errSkipInterval = skipIntervalError("detect: skip_interval must be >= 1")
