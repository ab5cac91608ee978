package cpublur

import (
	"math"

	"github.com/neutrinographics/faceguard/internal/core"
)

// DefaultKernelSize is the Gaussian kernel width used when a caller
// doesn't specify one.
const DefaultKernelSize = 201

// EllipticalBlurrer blurs each region's rectangular ROI with a
// separable Gaussian, then composites only the elliptical area back
// into the frame, using the region's edge-aware ellipse geometry so
// the blur extends smoothly off frame edges.
type EllipticalBlurrer struct {
	kernelSize int
	scale      int
	smallK     int
}

// NewEllipticalBlurrer builds a blurrer for the given kernel size.
// Large kernels are blurred at a reduced resolution and upscaled, to
// keep the cost roughly linear in kernel size instead of quadratic.
func NewEllipticalBlurrer(kernelSize int) *EllipticalBlurrer {
	scale := max(kernelSize/50, 1)
	smallK := (kernelSize / scale) | 1
	return &EllipticalBlurrer{kernelSize: kernelSize, scale: scale, smallK: smallK}
}

// NewDefaultEllipticalBlurrer builds a blurrer using DefaultKernelSize.
func NewDefaultEllipticalBlurrer() *EllipticalBlurrer {
	return NewEllipticalBlurrer(DefaultKernelSize)
}

// Blur implements blur.Blurrer.
func (b *EllipticalBlurrer) Blur(frame *core.Frame, regions []core.Region) error {
	fw := frame.Width
	channels := frame.Channels
	data := frame.Data

	for _, r := range regions {
		rx, ry := max(r.X, 0), max(r.Y, 0)
		rw, rh := max(r.Width, 0), max(r.Height, 0)
		if rw == 0 || rh == 0 {
			continue
		}

		roi := make([]uint8, rw*rh*channels)
		for row := 0; row < rh; row++ {
			srcOff := ((ry+row)*fw + rx) * channels
			dstOff := row * rw * channels
			copy(roi[dstOff:dstOff+rw*channels], data[srcOff:srcOff+rw*channels])
		}

		var blurredROI []uint8
		if b.scale <= 1 || rh < b.scale*2 || rw < b.scale*2 {
			separableGaussianBlur(roi, rw, rh, channels, b.kernelSize)
			blurredROI = roi
		} else {
			small, sw, sh := downscale(roi, rw, rh, channels, b.scale)
			separableGaussianBlur(small, sw, sh, channels, b.smallK)
			blurredROI = upscale(small, sw, sh, channels, rw, rh)
		}

		ecx, ecy := r.EllipseCenter()
		semiA, semiB := r.EllipseAxes()
		invASq, invBSq := 0.0, 0.0
		if semiA > 0 {
			invASq = 1.0 / (semiA * semiA)
		}
		if semiB > 0 {
			invBSq = 1.0 / (semiB * semiB)
		}
		ellipseValid := semiA > 0 && semiB > 0

		for row := 0; row < rh; row++ {
			for col := 0; col < rw; col++ {
				dx := float64(col) - ecx
				dy := float64(row) - ecy
				ellipseDist := math.MaxFloat64
				if ellipseValid {
					ellipseDist = dx*dx*invASq + dy*dy*invBSq
				}
				if ellipseDist > 1.0 {
					continue
				}
				frameOff := ((ry+row)*fw + (rx + col)) * channels
				roiOff := (row*rw + col) * channels
				copy(data[frameOff:frameOff+channels], blurredROI[roiOff:roiOff+channels])
			}
		}
	}

	return nil
}
