package cpublur

import "testing"

func TestKernelSumsToOne(t *testing.T) {
	k := gaussianKernel1D(7)
	sum := 0.0
	for _, v := range k {
		sum += v
	}
	if !approxEq(sum, 1.0, 1e-10) {
		t.Errorf("sum = %v, want 1.0", sum)
	}
}

func TestKernelIsSymmetric(t *testing.T) {
	k := gaussianKernel1D(7)
	for i := 0; i < len(k)/2; i++ {
		if !approxEq(k[i], k[len(k)-1-i], 1e-10) {
			t.Errorf("kernel not symmetric at %d", i)
		}
	}
}

func TestKernelCenterIsLargest(t *testing.T) {
	k := gaussianKernel1D(7)
	center := k[3]
	for i, v := range k {
		if i != 3 && center < v {
			t.Errorf("center %v should be >= %v at %d", center, v, i)
		}
	}
}

func TestBlurUniformImageUnchanged(t *testing.T) {
	data := make([]uint8, 10*10*3)
	for i := range data {
		data[i] = 128
	}
	separableGaussianBlur(data, 10, 10, 3, 5)
	for _, v := range data {
		if diff := int(v) - 128; diff > 1 || diff < -1 {
			t.Errorf("value %d drifted from 128", v)
		}
	}
}

func TestBlurModifiesHighContrast(t *testing.T) {
	data := make([]uint8, 10*10*3)
	cx := (5*10 + 5) * 3
	data[cx], data[cx+1], data[cx+2] = 255, 255, 255
	original := append([]uint8(nil), data...)

	separableGaussianBlur(data, 10, 10, 3, 5)

	if data[cx] >= 255 {
		t.Error("center pixel should have dimmed")
	}
	neighbor := (5*10 + 6) * 3
	if data[neighbor] == 0 {
		t.Error("neighbor pixel should have brightened")
	}
	same := true
	for i := range data {
		if data[i] != original[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected image to change")
	}
}

func TestKernelSizeOneIsIdentity(t *testing.T) {
	data := make([]uint8, 5*5*3)
	for i := range data {
		data[i] = 42
	}
	original := append([]uint8(nil), data...)
	separableGaussianBlur(data, 5, 5, 3, 1)
	for i := range data {
		if data[i] != original[i] {
			t.Fatalf("kernel size 1 should be identity")
		}
	}
}

func TestDownscaleUpscaleRoundtrip(t *testing.T) {
	data := make([]uint8, 8*8*3)
	for i := range data {
		data[i] = 100
	}
	small, sw, sh := downscale(data, 8, 8, 3, 2)
	if sw != 4 || sh != 4 {
		t.Fatalf("downscale dims = %dx%d, want 4x4", sw, sh)
	}
	big := upscale(small, sw, sh, 3, 8, 8)
	for _, v := range big {
		if diff := int(v) - 100; diff > 1 || diff < -1 {
			t.Errorf("roundtrip value %d drifted from 100", v)
		}
	}
}

func approxEq(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
