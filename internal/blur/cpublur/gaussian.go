// Package cpublur implements the CPU separable-Gaussian blur backend.
package cpublur

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// gaussianKernel1D precomputes a normalized 1D Gaussian kernel.
// kernelSize must be odd and >= 1. Sigma is derived as
// kernelSize/6.0, matching OpenCV's sigma=0 convention.
func gaussianKernel1D(kernelSize int) []float64 {
	sigma := float64(kernelSize) / 6.0
	half := float64(kernelSize / 2)
	kernel := make([]float64, kernelSize)
	sum := 0.0
	for i := range kernel {
		x := float64(i) - half
		v := math.Exp(-x * x / (2.0 * sigma * sigma))
		kernel[i] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// separableGaussianBlur blurs an RGB(A)-interleaved image in place
// using a horizontal pass followed by a vertical pass. kernelSize <= 1
// is a no-op.
func separableGaussianBlur(data []uint8, width, height, channels, kernelSize int) {
	if kernelSize <= 1 || width == 0 || height == 0 {
		return
	}
	kernel := gaussianKernel1D(kernelSize)
	half := kernelSize / 2

	temp := make([]float64, width*height*channels)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				sum := 0.0
				for k, w := range kernel {
					sx := clampInt(x+k-half, 0, width-1)
					sum += float64(data[(y*width+sx)*channels+c]) * w
				}
				temp[(y*width+x)*channels+c] = sum
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				sum := 0.0
				for k, w := range kernel {
					sy := clampInt(y+k-half, 0, height-1)
					sum += temp[(sy*width+x)*channels+c] * w
				}
				data[(y*width+x)*channels+c] = clampByte(math.Round(sum))
			}
		}
	}
}

// downscale reduces an image by an integer factor using area averaging.
func downscale(data []uint8, width, height, channels, scale int) (out []uint8, newW, newH int) {
	newW, newH = width/scale, height/scale
	out = make([]uint8, newW*newH*channels)

	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			for c := 0; c < channels; c++ {
				var sum, count uint32
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						sy, sx := y*scale+dy, x*scale+dx
						if sy < height && sx < width {
							sum += uint32(data[(sy*width+sx)*channels+c])
							count++
						}
					}
				}
				out[(y*newW+x)*channels+c] = uint8(sum / count)
			}
		}
	}
	return out, newW, newH
}

// upscale enlarges an interleaved RGB/RGBA buffer to (targetW, targetH)
// using x/image/draw's bilinear scaler. Other channel counts fall back
// to a hand-rolled bilinear pass since draw has no raw-buffer path for
// them.
func upscale(data []uint8, width, height, channels, targetW, targetH int) []uint8 {
	if channels != 3 && channels != 4 {
		return upscaleBilinear(data, width, height, channels, targetW, targetH)
	}

	src := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			srcOff := (y*width + x) * channels
			dstOff := src.PixOffset(x, y)
			copy(src.Pix[dstOff:dstOff+3], data[srcOff:srcOff+3])
			if channels == 4 {
				src.Pix[dstOff+3] = data[srcOff+3]
			} else {
				src.Pix[dstOff+3] = 255
			}
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	out := make([]uint8, targetW*targetH*channels)
	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			srcOff := dst.PixOffset(x, y)
			dstOff := (y*targetW + x) * channels
			copy(out[dstOff:dstOff+3], dst.Pix[srcOff:srcOff+3])
			if channels == 4 {
				out[dstOff+3] = dst.Pix[srcOff+3]
			}
		}
	}
	return out
}

// upscaleBilinear is the hand-rolled fallback for channel counts x/image
// can't represent directly (e.g. single-channel masks).
func upscaleBilinear(data []uint8, width, height, channels, targetW, targetH int) []uint8 {
	out := make([]uint8, targetW*targetH*channels)

	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			srcX := float64(x) * (float64(width) - 1.0) / math.Max(float64(targetW)-1.0, 1.0)
			srcY := float64(y) * (float64(height) - 1.0) / math.Max(float64(targetH)-1.0, 1.0)

			x0 := clampInt(int(math.Floor(srcX)), 0, width-1)
			x1 := clampInt(x0+1, 0, width-1)
			y0 := clampInt(int(math.Floor(srcY)), 0, height-1)
			y1 := clampInt(y0+1, 0, height-1)

			fx := srcX - float64(x0)
			fy := srcY - float64(y0)

			for c := 0; c < channels; c++ {
				v00 := float64(data[(y0*width+x0)*channels+c])
				v10 := float64(data[(y0*width+x1)*channels+c])
				v01 := float64(data[(y1*width+x0)*channels+c])
				v11 := float64(data[(y1*width+x1)*channels+c])

				val := v00*(1-fx)*(1-fy) + v10*fx*(1-fy) + v01*(1-fx)*fy + v11*fx*fy
				out[(y*targetW+x)*channels+c] = clampByte(math.Round(val))
			}
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, v)))
}
