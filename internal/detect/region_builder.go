package detect

import (
	"math"

	"github.com/neutrinographics/faceguard/internal/core"
)

// DefaultPadding is the symmetric padding factor applied around a
// detected face.
const DefaultPadding = 0.4

// minWidthRatio enforces a floor on effective width relative to box
// height, so narrow profile detections don't collapse into slivers.
const minWidthRatio = 0.8

// BBox is a detection box as (x1, y1, x2, y2).
type BBox struct {
	X1, Y1, X2, Y2 float64
}

// RegionBuilder converts detection boxes plus optional landmarks into
// blur-ready regions, blending landmark-centroid and box-center
// placement by how much the face is turned, and optionally smoothing
// the result per track ID.
type RegionBuilder struct {
	padding  float64
	smoother Smoother
}

// NewRegionBuilder builds a RegionBuilder. smoother may be nil to
// disable smoothing entirely.
func NewRegionBuilder(padding float64, smoother Smoother) *RegionBuilder {
	return &RegionBuilder{padding: padding, smoother: smoother}
}

// Build computes the blur region for one detection.
func (b *RegionBuilder) Build(bbox BBox, frameW, frameH int, landmarks *core.FaceLandmarks, trackID uint32, hasTrackID bool) core.Region {
	profileRatio := 0.0
	if landmarks != nil && landmarks.HasVisible() {
		profileRatio = landmarks.ProfileRatio()
	}

	cx, cy := b.computeCenter(bbox, landmarks, profileRatio)
	halfW, halfH := b.computeHalfSize(bbox, profileRatio)

	params := SmoothParams{cx, cy, halfW, halfH}
	if b.smoother != nil {
		params = b.smoother.Smooth(params, trackID, hasTrackID)
	}

	return paramsToRegion(params, frameW, frameH, trackID, hasTrackID)
}

func (b *RegionBuilder) computeCenter(bbox BBox, landmarks *core.FaceLandmarks, profileRatio float64) (cx, cy float64) {
	boxCX := (bbox.X1 + bbox.X2) / 2.0
	boxCY := (bbox.Y1 + bbox.Y2) / 2.0

	if landmarks != nil && landmarks.HasVisible() {
		faceCX, faceCY, err := landmarks.Center()
		if err != nil {
			faceCX, faceCY = boxCX, boxCY
		}
		cx = faceCX + (boxCX-faceCX)*profileRatio
		cy = faceCY + (boxCY-faceCY)*profileRatio
		return cx, cy
	}
	return boxCX, boxCY
}

func (b *RegionBuilder) computeHalfSize(bbox BBox, profileRatio float64) (halfW, halfH float64) {
	boxW := bbox.X2 - bbox.X1
	boxH := bbox.Y2 - bbox.Y1

	effectiveW := math.Max(boxW+(boxH-boxW)*profileRatio, boxH*minWidthRatio)

	halfW = effectiveW * (1.0 + b.padding) / 2.0
	halfH = boxH * (1.0 + b.padding) / 2.0
	return halfW, halfH
}

func paramsToRegion(params SmoothParams, frameW, frameH int, trackID uint32, hasTrackID bool) core.Region {
	cx, cy, halfW, halfH := params[0], params[1], params[2], params[3]

	ux := int(cx - halfW)
	uy := int(cy - halfH)
	fullW := int(halfW * 2.0)
	fullH := int(halfH * 2.0)

	x := max(ux, 0)
	y := max(uy, 0)
	w := max(int(math.Min(cx+halfW, float64(frameW)))-x, 0)
	h := max(int(math.Min(cy+halfH, float64(frameH)))-y, 0)

	return core.Region{
		X: x, Y: y, Width: w, Height: h,
		HasTrackID: hasTrackID, TrackID: trackID,
		HasUnclamped: true,
		UnclampedX:   ux, UnclampedY: uy,
		FullWidth: fullW, FullHeight: fullH,
	}
}
