package cpublur

import "github.com/neutrinographics/faceguard/internal/core"

// RectangularBlurrer blurs each region's entire rectangular ROI with a
// separable Gaussian, with no ellipse masking.
type RectangularBlurrer struct {
	kernelSize int
	scale      int
	smallK     int
}

// NewRectangularBlurrer builds a blurrer for the given kernel size.
func NewRectangularBlurrer(kernelSize int) *RectangularBlurrer {
	scale := max(kernelSize/50, 1)
	smallK := (kernelSize / scale) | 1
	return &RectangularBlurrer{kernelSize: kernelSize, scale: scale, smallK: smallK}
}

// NewDefaultRectangularBlurrer builds a blurrer using DefaultKernelSize.
func NewDefaultRectangularBlurrer() *RectangularBlurrer {
	return NewRectangularBlurrer(DefaultKernelSize)
}

// Blur implements blur.Blurrer.
func (b *RectangularBlurrer) Blur(frame *core.Frame, regions []core.Region) error {
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

		if b.scale <= 1 || rh < b.scale*2 || rw < b.scale*2 {
			separableGaussianBlur(roi, rw, rh, channels, b.kernelSize)
		} else {
			small, sw, sh := downscale(roi, rw, rh, channels, b.scale)
			separableGaussianBlur(small, sw, sh, channels, b.smallK)
			roi = upscale(small, sw, sh, channels, rw, rh)
		}

		for row := 0; row < rh; row++ {
			dstOff := ((ry+row)*fw + rx) * channels
			srcOff := row * rw * channels
			copy(data[dstOff:dstOff+rw*channels], roi[srcOff:srcOff+rw*channels])
		}
	}

	return nil
}
