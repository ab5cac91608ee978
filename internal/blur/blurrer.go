// Package blur selects and coordinates frame blurring backends.
package blur

import "github.com/neutrinographics/faceguard/internal/core"

// Blurrer applies blur to a set of regions within a frame, in place.
type Blurrer interface {
	Blur(frame *core.Frame, regions []core.Region) error
}

// Shape selects the blurred area's geometry.
type Shape int

const (
	ShapeElliptical Shape = iota
	ShapeRectangular
)

func (s Shape) String() string {
	if s == ShapeRectangular {
		return "rectangular"
	}
	return "elliptical"
}
