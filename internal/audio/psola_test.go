package audio

import (
	"math"
	"testing"
)

func sineSegment(freq float64, sampleRate int, duration float64) Segment {
	n := int(duration * float64(sampleRate))
	samples := make([]float32, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = float32(math.Sin(2 * math.Pi * freq * t))
	}
	return NewSegment(samples, sampleRate, 1)
}

func TestPSOLAPreservesLength(t *testing.T) {
	seg := sineSegment(150, 16000, 1.0)
	ratio := semitonesToRatio(2.5)
	out := NewPSOLA().Shift(seg, func(int) float64 { return ratio })
	if len(out.Samples) != len(seg.Samples) {
		t.Errorf("output length = %d, want %d", len(out.Samples), len(seg.Samples))
	}
}

func TestPSOLAZeroSemitonesNearIdentity(t *testing.T) {
	seg := sineSegment(150, 16000, 1.0)
	out := NewPSOLA().Shift(seg, func(int) float64 { return 1.0 })

	var mse float64
	for i := range seg.Samples {
		d := float64(seg.Samples[i] - out.Samples[i])
		mse += d * d
	}
	mse /= float64(len(seg.Samples))
	if mse >= 0.01 {
		t.Errorf("MSE = %v, want < 0.01 for unity shift", mse)
	}
}

func TestPSOLAShiftsDominantPeriod(t *testing.T) {
	sampleRate := 16000
	seg := sineSegment(150, sampleRate, 1.0)
	ratio := semitonesToRatio(2.5)
	out := NewPSOLA().Shift(seg, func(int) float64 { return ratio })

	wantFreq := 150.0 * ratio
	gotFreq := dominantFrequency(out.Samples, sampleRate)

	tolerance := wantFreq * 0.03
	if math.Abs(gotFreq-wantFreq) > tolerance {
		t.Errorf("dominant freq = %.2f Hz, want %.2f Hz (+/- %.2f)", gotFreq, wantFreq, tolerance)
	}
}

// dominantFrequency estimates the dominant period via autocorrelation
// over a broad lag range and returns the corresponding frequency.
func dominantFrequency(samples []float32, sampleRate int) float64 {
	minLag := sampleRate / 500
	maxLag := sampleRate / 60
	bestLag := minLag
	bestCorr := -1.0
	for lag := minLag; lag <= maxLag && lag < len(samples); lag++ {
		corr := autocorrelationAt(samples, lag)
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	return float64(sampleRate) / float64(bestLag)
}

func TestPlacePitchMarksCoversSignal(t *testing.T) {
	frames := []pitchFrame{{voiced: true, period: 100}}
	marks := placePitchMarks(1000, 16000, frames)
	if marks[0] != 0 {
		t.Errorf("first mark = %d, want 0", marks[0])
	}
	if marks[len(marks)-1] >= 1000 {
		t.Errorf("last mark = %d, should stay within bounds", marks[len(marks)-1])
	}
}

func TestAnalyzePitchDetectsVoicedSine(t *testing.T) {
	seg := sineSegment(150, 16000, 0.5)
	frames := analyzePitch(seg.Samples, seg.SampleRate)
	voicedCount := 0
	for _, f := range frames {
		if f.voiced {
			voicedCount++
		}
	}
	if voicedCount == 0 {
		t.Error("expected at least one voiced frame for a clean sine tone")
	}
}
