package onnxyolo

import "github.com/neutrinographics/faceguard/internal/core"

// letterbox resizes frame into an NCHW float32 tensor of
// targetSize x targetSize, preserving aspect ratio and padding with
// YOLO's conventional 114/255 gray. Returns the flattened tensor data,
// the scale factor applied, and the padding added on each axis.
func letterbox(frame core.Frame, targetSize int) (data []float32, scale float64, padX, padY int) {
	fw, fh := float64(frame.Width), float64(frame.Height)
	target := float64(targetSize)

	scale = min(target/fw, target/fh)
	newW := int(fw*scale + 0.5)
	newH := int(fh*scale + 0.5)
	padX = (targetSize - newW) / 2
	padY = (targetSize - newH) / 2

	const gray = float32(114.0 / 255.0)
	data = make([]float32, 3*targetSize*targetSize)
	for i := range data {
		data[i] = gray
	}

	plane := targetSize * targetSize
	channels := frame.Channels
	for y := 0; y < newH; y++ {
		srcY := min(int(float64(y)/scale), frame.Height-1)
		for x := 0; x < newW; x++ {
			srcX := min(int(float64(x)/scale), frame.Width-1)
			ty, tx := padY+y, padX+x
			srcOff := (srcY*frame.Width + srcX) * channels
			for c := 0; c < 3; c++ {
				var v uint8
				if c < channels {
					v = frame.Data[srcOff+c]
				}
				data[c*plane+ty*targetSize+tx] = float32(v) / 255.0
			}
		}
	}

	return data, scale, padX, padY
}
