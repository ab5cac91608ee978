package cpublur

import (
	"testing"

	"github.com/neutrinographics/faceguard/internal/core"
)

func makeFrame(width, height int, value uint8) core.Frame {
	data := make([]byte, width*height*3)
	for i := range data {
		data[i] = value
	}
	f, err := core.NewFrame(data, width, height, 3, 0)
	if err != nil {
		panic(err)
	}
	return f
}

func ellipticalRegion(x, y, w, h int) core.Region {
	return core.Region{X: x, Y: y, Width: w, Height: h}
}

func TestEllipticalNoRegionsFrameUnchanged(t *testing.T) {
	f := makeFrame(100, 100, 128)
	original := append([]byte(nil), f.Data...)
	b := NewEllipticalBlurrer(5)
	if err := b.Blur(&f, nil); err != nil {
		t.Fatal(err)
	}
	for i := range f.Data {
		if f.Data[i] != original[i] {
			t.Fatal("frame changed with no regions")
		}
	}
}

func TestEllipticalPreservesFrameIndex(t *testing.T) {
	data := make([]byte, 100*100*3)
	f, _ := core.NewFrame(data, 100, 100, 3, 42)
	b := NewEllipticalBlurrer(5)
	b.Blur(&f, nil)
	if f.Index != 42 {
		t.Errorf("index = %d, want 42", f.Index)
	}
}

func TestEllipticalBlursRegionPixels(t *testing.T) {
	f := makeFrame(100, 100, 0)
	for y := 18; y < 22; y++ {
		for x := 18; x < 22; x++ {
			idx := (y*100 + x) * 3
			f.Data[idx], f.Data[idx+1], f.Data[idx+2] = 255, 255, 255
		}
	}

	b := NewEllipticalBlurrer(5)
	if err := b.Blur(&f, []core.Region{ellipticalRegion(5, 5, 30, 30)}); err != nil {
		t.Fatal(err)
	}

	center := (20*100 + 20) * 3
	corner := (18*100 + 18) * 3
	if f.Data[center] >= 255 && f.Data[corner] >= 255 {
		t.Error("expected blurring to spread bright patch")
	}
}

func TestEllipticalPixelsOutsideRegionUnchanged(t *testing.T) {
	f := makeFrame(100, 100, 200)
	original := append([]byte(nil), f.Data...)
	b := NewEllipticalBlurrer(5)
	b.Blur(&f, []core.Region{ellipticalRegion(10, 10, 20, 20)})

	if f.Data[0] != original[0] {
		t.Error("pixel (0,0) should be unchanged")
	}
	idx := (50*100 + 50) * 3
	if f.Data[idx] != original[idx] {
		t.Error("pixel (50,50) should be unchanged")
	}
}

func TestEllipticalDoesNotBlurCorners(t *testing.T) {
	f := makeFrame(100, 100, 0)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			idx := (y*100 + x) * 3
			f.Data[idx], f.Data[idx+1], f.Data[idx+2] = 200, 200, 200
		}
	}
	original := append([]byte(nil), f.Data...)

	b := NewEllipticalBlurrer(5)
	b.Blur(&f, []core.Region{ellipticalRegion(0, 0, 40, 40)})

	if f.Data[0] != original[0] {
		t.Error("corner pixel outside ellipse should be unchanged")
	}
}

func TestEllipticalZeroSizeRegionSkipped(t *testing.T) {
	f := makeFrame(100, 100, 128)
	original := append([]byte(nil), f.Data...)
	b := NewEllipticalBlurrer(5)
	b.Blur(&f, []core.Region{ellipticalRegion(10, 10, 0, 20)})
	for i := range f.Data {
		if f.Data[i] != original[i] {
			t.Fatal("zero-size region should be skipped")
		}
	}
}

func TestEllipticalDefaultKernelSize(t *testing.T) {
	b := NewDefaultEllipticalBlurrer()
	if b.kernelSize != DefaultKernelSize {
		t.Errorf("kernelSize = %d, want %d", b.kernelSize, DefaultKernelSize)
	}
}

func TestEllipticalUsesFullDimensionsWhenClipped(t *testing.T) {
	r := core.Region{
		X: 0, Y: 10, Width: 30, Height: 40,
		HasUnclamped: true, UnclampedX: -30, UnclampedY: 10,
		FullWidth: 60, FullHeight: 40,
	}
	ecx, _ := r.EllipseCenter()
	sa, sb := r.EllipseAxes()

	if ecx >= float64(r.Width)/2.0 {
		t.Errorf("ellipse center should be offset left, got %v", ecx)
	}
	if sa != 30.0 || sb != 20.0 {
		t.Errorf("semi-axes = (%v,%v), want (30,20)", sa, sb)
	}

	f := makeFrame(100, 100, 128)
	b := NewEllipticalBlurrer(5)
	if err := b.Blur(&f, []core.Region{r}); err != nil {
		t.Fatal(err)
	}
}
