package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// DefaultFormantShiftRatio is the ratio applied by the Medium voice
// disguise tier.
const DefaultFormantShiftRatio = 1.15

const (
	lpcOrder          = 16
	formantWindowSize = 2048
	formantHopSize    = 512
)

// FormantWarp reshapes an audio segment's spectral envelope via LPC
// analysis, shifting formant frequencies by a fixed ratio without
// affecting pitch. A ratio of 1.0 is a no-op.
type FormantWarp struct {
	Ratio float64
}

// NewFormantWarp returns a FormantWarp transformer.
func NewFormantWarp(ratio float64) *FormantWarp {
	return &FormantWarp{Ratio: ratio}
}

// Transform implements Transformer.
func (f *FormantWarp) Transform(seg *Segment) error {
	if math.Abs(f.Ratio-1.0) < 1e-10 {
		return nil
	}

	samples := make([]float64, len(seg.Samples))
	for i, s := range seg.Samples {
		samples[i] = float64(s)
	}
	n := len(samples)
	if n < formantWindowSize {
		return nil
	}

	halfWindow := formantWindowSize/2 + 1
	hann := hannWindow(formantWindowSize)

	output := make([]float64, n)
	windowSum := make([]float64, n)

	fft := fourier.NewCmplxFFT(formantWindowSize)

	numFrames := (n-formantWindowSize)/formantHopSize + 1
	windowed := make([]float64, formantWindowSize)
	spectrum := make([]complex128, formantWindowSize)

	for frameIdx := 0; frameIdx < numFrames; frameIdx++ {
		start := frameIdx * formantHopSize

		for i := 0; i < formantWindowSize; i++ {
			windowed[i] = samples[start+i] * hann[i]
		}

		r := autocorrelation(windowed, lpcOrder)
		if math.Abs(r[0]) < 1e-30 {
			for i := 0; i < formantWindowSize; i++ {
				if start+i < n {
					windowSum[start+i] += hann[i] * hann[i]
				}
			}
			continue
		}

		coeffs, predErr := levinsonDurbin(r, lpcOrder)
		gain := math.Max(math.Sqrt(math.Abs(predErr)), 1e-15)

		originalEnv := lpcSpectralEnvelope(coeffs, gain, halfWindow)
		shiftedEnv := shiftEnvelope(originalEnv, f.Ratio)

		for i, s := range windowed {
			spectrum[i] = complex(s, 0)
		}
		fft.Coefficients(spectrum, spectrum)

		for k := 0; k < halfWindow; k++ {
			origMag := math.Max(originalEnv[k], 1e-15)
			newMag := shiftedEnv[k]
			ratio := newMag / origMag
			ratio = math.Max(0.01, math.Min(100.0, ratio))
			spectrum[k] *= complex(ratio, 0)
		}
		for k := 1; k < halfWindow-1; k++ {
			spectrum[formantWindowSize-k] = complexConj(spectrum[k])
		}

		fft.Sequence(spectrum, spectrum)

		for i := 0; i < formantWindowSize; i++ {
			if start+i < n {
				val := real(spectrum[i]) * hann[i]
				if !math.IsNaN(val) && !math.IsInf(val, 0) {
					output[start+i] += val
				}
				windowSum[start+i] += hann[i] * hann[i]
			}
		}
	}

	maxWs := 0.0
	for _, v := range windowSum {
		if v > maxWs {
			maxWs = v
		}
	}
	threshold := maxWs * 0.1

	for i := range output {
		if windowSum[i] >= threshold {
			output[i] /= windowSum[i]
		} else {
			output[i] = 0
		}
	}

	inputPeak := peakAbsF64(samples)
	outputPeak := peakAbsF64(output)
	gainAdj := 1.0
	if outputPeak > 1e-10 && outputPeak > inputPeak {
		gainAdj = inputPeak / outputPeak
	}

	result := make([]float32, n)
	for i, v := range output {
		result[i] = float32(v * gainAdj)
	}
	seg.Samples = result
	return nil
}

func complexConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// autocorrelation computes the autocorrelation of x at lags 0..order.
func autocorrelation(x []float64, order int) []float64 {
	n := len(x)
	r := make([]float64, order+1)
	for lag := 0; lag <= order; lag++ {
		var sum float64
		for i := 0; i < n-lag; i++ {
			sum += x[i] * x[i+lag]
		}
		r[lag] = sum
	}
	return r
}

// levinsonDurbin computes LPC coefficients (a[0] = 1) of the given
// order via the Levinson-Durbin recursion, returning the coefficients
// and the final prediction error.
func levinsonDurbin(r []float64, order int) ([]float64, float64) {
	a := make([]float64, order+1)
	aPrev := make([]float64, order+1)
	a[0] = 1
	aPrev[0] = 1

	errv := r[0]
	if math.Abs(errv) < 1e-30 {
		return a, errv
	}

	for i := 1; i <= order; i++ {
		lambda := 0.0
		for j := 0; j < i; j++ {
			lambda -= aPrev[j] * r[i-j]
		}
		lambda /= errv
		lambda = math.Max(-0.999, math.Min(0.999, lambda))

		for j := 0; j <= i; j++ {
			rev := 0.0
			if i-j >= 0 {
				rev = aPrev[i-j]
			}
			a[j] = aPrev[j] + lambda*rev
		}

		errv *= 1 - lambda*lambda
		if math.Abs(errv) < 1e-30 {
			break
		}
		copy(aPrev[:i+1], a[:i+1])
	}

	return a, errv
}

// lpcSpectralEnvelope evaluates the LPC envelope magnitude |1/A(e^jw)|
// at numBins frequency points.
func lpcSpectralEnvelope(a []float64, gain float64, numBins int) []float64 {
	order := len(a) - 1
	env := make([]float64, numBins)
	for k := 0; k < numBins; k++ {
		omega := math.Pi * float64(k) / float64(numBins)
		var re, im float64
		for i := 0; i <= order; i++ {
			re += a[i] * math.Cos(omega*float64(i))
			im -= a[i] * math.Sin(omega*float64(i))
		}
		magSq := re*re + im*im
		if magSq > 1e-30 {
			env[k] = gain / math.Sqrt(magSq)
		} else {
			env[k] = gain * 1e15
		}
	}
	return env
}

// shiftEnvelope resamples envelope by ratio via linear interpolation,
// shifting formants up for ratio > 1.
func shiftEnvelope(envelope []float64, ratio float64) []float64 {
	n := len(envelope)
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		src := float64(k) / ratio
		idx := int(math.Floor(src))
		frac := src - float64(idx)
		switch {
		case idx+1 < n:
			out[k] = envelope[idx]*(1-frac) + envelope[idx+1]*frac
		case idx < n:
			out[k] = envelope[idx] * (1 - frac)
		default:
			out[k] = envelope[n-1]
		}
	}
	return out
}
