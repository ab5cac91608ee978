package detect

import (
	"testing"

	"github.com/neutrinographics/faceguard/internal/core"
)

const (
	frameW = 1000
	frameH = 1000
)

func frontalBox() BBox { return BBox{400, 300, 600, 500} }

func frontalLandmarks() core.FaceLandmarks {
	return core.FaceLandmarks{Points: [5][2]float64{
		{440, 350}, {560, 350}, {500, 420}, {460, 470}, {540, 470},
	}}
}

func regionContainsPoint(r core.Region, px, py float64) bool {
	return float64(r.X) <= px && px <= float64(r.X+r.Width) &&
		float64(r.Y) <= py && py <= float64(r.Y+r.Height)
}

func TestFrontalNoLandmarks(t *testing.T) {
	b := NewRegionBuilder(DefaultPadding, nil)
	r := b.Build(frontalBox(), frameW, frameH, nil, 0, false)
	if r.Width <= 0 || r.Height <= 0 {
		t.Fatalf("expected positive dimensions, got %+v", r)
	}
	if !regionContainsPoint(r, 500, 400) {
		t.Errorf("region should contain box center")
	}
}

func TestFrontalWithLandmarksCentersOnFace(t *testing.T) {
	b := NewRegionBuilder(DefaultPadding, nil)
	lm := frontalLandmarks()
	r := b.Build(frontalBox(), frameW, frameH, &lm, 0, false)
	cx := float64(r.X) + float64(r.Width)/2
	cy := float64(r.Y) + float64(r.Height)/2
	if !approxEqual(cx, 500, 5) || !approxEqual(cy, 400, 5) {
		t.Errorf("center = (%v,%v), want ~(500,400)", cx, cy)
	}
}

func TestNarrowBoxEnforcesMinWidth(t *testing.T) {
	b := NewRegionBuilder(DefaultPadding, nil)
	bbox := BBox{490, 300, 510, 500}
	r := b.Build(bbox, frameW, frameH, nil, 0, false)
	expectedMinHalfW := 200.0 * minWidthRatio * (1.0 + DefaultPadding) / 2.0
	if float64(r.FullWidth) < expectedMinHalfW*2.0-2.0 {
		t.Errorf("full width %d below minimum width constraint", r.FullWidth)
	}
}

func TestFaceAtLeftEdgeClamps(t *testing.T) {
	b := NewRegionBuilder(DefaultPadding, nil)
	bbox := BBox{0, 300, 100, 500}
	r := b.Build(bbox, frameW, frameH, nil, 0, false)
	if r.X != 0 {
		t.Errorf("x = %d, want 0", r.X)
	}
	if r.UnclampedX >= 0 {
		t.Errorf("unclamped_x = %d, want negative", r.UnclampedX)
	}
	if r.Width <= 0 {
		t.Error("expected positive width")
	}
}

func TestFaceAtRightEdgeClamps(t *testing.T) {
	b := NewRegionBuilder(DefaultPadding, nil)
	bbox := BBox{900, 300, 1000, 500}
	r := b.Build(bbox, frameW, frameH, nil, 0, false)
	if r.X+r.Width > frameW {
		t.Errorf("region exceeds frame width: %+v", r)
	}
}

func TestTrackIDPreserved(t *testing.T) {
	b := NewRegionBuilder(DefaultPadding, nil)
	r := b.Build(frontalBox(), frameW, frameH, nil, 42, true)
	if !r.HasTrackID || r.TrackID != 42 {
		t.Errorf("expected track id 42, got %+v", r)
	}
}

func TestNoTrackID(t *testing.T) {
	b := NewRegionBuilder(DefaultPadding, nil)
	r := b.Build(frontalBox(), frameW, frameH, nil, 0, false)
	if r.HasTrackID {
		t.Error("expected no track id")
	}
}

func TestUnclampedGeometryAlwaysPresent(t *testing.T) {
	b := NewRegionBuilder(DefaultPadding, nil)
	r := b.Build(frontalBox(), frameW, frameH, nil, 0, false)
	if !r.HasUnclamped {
		t.Error("expected unclamped geometry to be populated")
	}
}
