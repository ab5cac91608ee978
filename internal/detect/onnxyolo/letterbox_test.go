package onnxyolo

import (
	"testing"

	"github.com/neutrinographics/faceguard/internal/core"
)

func letterboxFrame(w, h int, value uint8) core.Frame {
	data := make([]byte, w*h*3)
	for i := range data {
		data[i] = value
	}
	f, err := core.NewFrame(data, w, h, 3, 0)
	if err != nil {
		panic(err)
	}
	return f
}

func TestLetterboxPreservesAspectRatio(t *testing.T) {
	f := letterboxFrame(200, 100, 128)
	data, scale, padX, padY := letterbox(f, 640)

	if len(data) != 3*640*640 {
		t.Fatalf("tensor length = %d, want %d", len(data), 3*640*640)
	}
	if !approxEqFloat(scale, 3.2, 0.01) {
		t.Errorf("scale = %v, want ~3.2", scale)
	}
	if padX != 0 {
		t.Errorf("padX = %d, want 0", padX)
	}
	if padY != 160 {
		t.Errorf("padY = %d, want 160", padY)
	}
}

func TestLetterboxSquareFrame(t *testing.T) {
	f := letterboxFrame(100, 100, 128)
	_, scale, padX, padY := letterbox(f, 640)

	if !approxEqFloat(scale, 6.4, 0.01) {
		t.Errorf("scale = %v, want ~6.4", scale)
	}
	if padX != 0 || padY != 0 {
		t.Errorf("padX, padY = %d, %d, want 0, 0", padX, padY)
	}
}

func TestLetterboxValuesNormalized(t *testing.T) {
	f := letterboxFrame(100, 50, 255)
	data, _, padX, padY := letterbox(f, 640)

	if padX != 0 {
		t.Errorf("padX = %d, want 0", padX)
	}
	if padY <= 0 {
		t.Errorf("padY = %d, want > 0", padY)
	}

	plane := 640 * 640
	y, x := padY+1, padX+1
	inImage := data[0*plane+y*640+x]
	if !approxEqFloat(float64(inImage), 1.0, 0.01) {
		t.Errorf("in-image value = %v, want ~1.0", inImage)
	}

	padVal := float32(114.0 / 255.0)
	corner := data[0*plane+0*640+0]
	if !approxEqFloat(float64(corner), float64(padVal), 0.01) {
		t.Errorf("pad value = %v, want ~%v", corner, padVal)
	}
}

func approxEqFloat(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
