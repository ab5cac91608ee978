package imageio

import (
	"image"

	"golang.org/x/image/draw"
)

// resizeSquare scales img to a size x size square using bilinear
// interpolation, matching the usecase.PreviewSize thumbnail dimension
// face preview crops are saved at.
func resizeSquare(img image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
