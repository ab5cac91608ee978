package gpublur

import "github.com/neutrinographics/faceguard/internal/core"

// RectangularBlurrer runs the same two-pass GPU Gaussian blur as
// Blurrer, but with no ellipse mask — the entire ROI is replaced.
type RectangularBlurrer struct {
	ctx        *context
	kernelSize uint32
}

// ProbeRectangular attempts to acquire a GPU adapter and build a
// RectangularBlurrer. ok is false with no error when unavailable.
func ProbeRectangular(kernelSize int) (*RectangularBlurrer, bool) {
	ctx, ok := newContext()
	if !ok {
		return nil, false
	}
	return &RectangularBlurrer{ctx: ctx, kernelSize: uint32(kernelSize)}, true
}

// Close releases the underlying GPU resources.
func (b *RectangularBlurrer) Close() {
	b.ctx.release()
}

// Blur implements blur.Blurrer.
func (b *RectangularBlurrer) Blur(frame *core.Frame, regions []core.Region) error {
	if len(regions) == 0 {
		return nil
	}

	fw := frame.Width
	channels := frame.Channels
	data := frame.Data

	for _, r := range regions {
		rx, ry := max(r.X, 0), max(r.Y, 0)
		rw, rh := max(r.Width, 0), max(r.Height, 0)
		if rw == 0 || rh == 0 {
			continue
		}

		packed := make([]uint32, rw*rh)
		for row := 0; row < rh; row++ {
			for col := 0; col < rw; col++ {
				offset := ((ry+row)*fw + (rx + col)) * channels
				rv := uint32(data[offset])
				var gv, bv uint32
				if channels > 1 {
					gv = uint32(data[offset+1])
				}
				if channels > 2 {
					bv = uint32(data[offset+2])
				}
				packed[row*rw+col] = rv | (gv << 8) | (bv << 16) | (255 << 24)
			}
		}

		result := b.ctx.blurROI(packed, uint32(rw), uint32(rh), b.kernelSize, 0, 0, 0, 0, false)

		for row := 0; row < rh; row++ {
			for col := 0; col < rw; col++ {
				pixel := result[row*rw+col]
				offset := ((ry+row)*fw + (rx + col)) * channels
				data[offset] = byte(pixel & 0xFF)
				if channels > 1 {
					data[offset+1] = byte((pixel >> 8) & 0xFF)
				}
				if channels > 2 {
					data[offset+2] = byte((pixel >> 16) & 0xFF)
				}
			}
		}
	}

	return nil
}
