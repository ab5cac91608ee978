package core

import (
	"errors"
	"math"
)

const (
	landmarkLeftEye = 0
	landmarkRightEye = 1
	landmarkNose     = 2
)

// landmarkWeights emphasizes the nose (3x) over the eyes (2x) and mouth
// corners (1x): the nose is the most reliable anchor across head
// rotations.
var landmarkWeights = [5]float64{2.0, 2.0, 3.0, 1.0, 1.0}

// ErrNoVisibleLandmarks is returned by FaceLandmarks.Center when every
// point is invisible.
var ErrNoVisibleLandmarks = errors.New("core: no visible landmarks")

// FaceLandmarks holds five 2D points in a fixed order: left eye, right
// eye, nose, left mouth, right mouth. A point with X <= 0 is treated as
// not visible.
type FaceLandmarks struct {
	Points [5][2]float64
}

// HasVisible reports whether at least one point is visible.
func (l FaceLandmarks) HasVisible() bool {
	for _, p := range l.Points {
		if p[0] > 0 {
			return true
		}
	}
	return false
}

// Center returns the weighted centroid of the visible landmarks.
func (l FaceLandmarks) Center() (cx, cy float64, err error) {
	var wxSum, wySum, wSum float64
	for i, p := range l.Points {
		if p[0] > 0 {
			w := landmarkWeights[i]
			wxSum += p[0] * w
			wySum += p[1] * w
			wSum += w
		}
	}
	if wSum == 0 {
		return 0, 0, ErrNoVisibleLandmarks
	}
	return wxSum / wSum, wySum / wSum, nil
}

// ProfileRatio measures how much the face is turned: 0 is frontal, 1 is
// full profile. It is the nose's offset from the eye midpoint, relative
// to the eye span, clamped to 1. Returns 0 when the nose or either eye
// is not visible, or when the eyes coincide.
func (l FaceLandmarks) ProfileRatio() float64 {
	nose := l.Points[landmarkNose]
	leftEye := l.Points[landmarkLeftEye]
	rightEye := l.Points[landmarkRightEye]

	if nose[0] <= 0 || leftEye[0] <= 0 || rightEye[0] <= 0 {
		return 0
	}

	eyeMidX := (leftEye[0] + rightEye[0]) / 2.0
	eyeSpan := math.Abs(rightEye[0] - leftEye[0])
	if eyeSpan <= 0 {
		return 0
	}

	return math.Min(math.Abs(nose[0]-eyeMidX)/eyeSpan, 1.0)
}
