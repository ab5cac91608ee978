package audio

import "math"

const (
	psolaAnalysisFrameSize = 512
	psolaHopSize           = 256
	psolaVoicedThreshold   = 0.3
	psolaFixedMarkSeconds  = 0.005
)

// pitchFrame is the pitch-analysis result for one 512-sample, 256-hop
// analysis window.
type pitchFrame struct {
	voiced bool
	period int // samples
}

// analyzePitch slides a 512-sample frame with 256-sample hop across
// samples, classifying each as voiced/unvoiced via normalized
// autocorrelation over lags [sampleRate/500, sampleRate/60].
func analyzePitch(samples []float32, sampleRate int) []pitchFrame {
	minLag := max(sampleRate/500, 1)
	maxLag := max(sampleRate/60, minLag+1)

	var frames []pitchFrame
	for start := 0; start+psolaAnalysisFrameSize <= len(samples); start += psolaHopSize {
		frame := samples[start : start+psolaAnalysisFrameSize]
		energy0 := autocorrelationAt(frame, 0)

		bestLag := minLag
		bestNorm := -1.0
		for lag := minLag; lag <= maxLag && lag < len(frame); lag++ {
			corr := autocorrelationAt(frame, lag)
			norm := 0.0
			if energy0 > 1e-12 {
				norm = corr / energy0
			}
			if norm > bestNorm {
				bestNorm = norm
				bestLag = lag
			}
		}

		frames = append(frames, pitchFrame{
			voiced: bestNorm > psolaVoicedThreshold,
			period: bestLag,
		})
	}
	if len(frames) == 0 {
		frames = append(frames, pitchFrame{voiced: false, period: maxLag})
	}
	return frames
}

func autocorrelationAt(x []float32, lag int) float64 {
	var sum float64
	for i := 0; i+lag < len(x); i++ {
		sum += float64(x[i]) * float64(x[i+lag])
	}
	return sum
}

// placePitchMarks walks the signal placing one mark per period at the
// detected local period when the enclosing analysis frame is voiced,
// else at a fixed spacing.
func placePitchMarks(n, sampleRate int, frames []pitchFrame) []int {
	fixedSpacing := max(int(psolaFixedMarkSeconds*float64(sampleRate)), 1)

	marks := []int{0}
	pos := 0
	for pos < n {
		frameIdx := min(pos/psolaHopSize, len(frames)-1)
		f := frames[frameIdx]

		step := fixedSpacing
		if f.voiced && f.period > 0 {
			step = f.period
		}

		pos += step
		if pos >= n {
			break
		}
		marks = append(marks, pos)
	}
	return marks
}

// localPeriod returns the pitch period (in samples) governing the
// analysis frame enclosing the given mark.
func localPeriod(markSample, sampleRate int, frames []pitchFrame) int {
	frameIdx := min(markSample/psolaHopSize, len(frames)-1)
	if p := frames[frameIdx].period; p > 0 {
		return p
	}
	return max(int(psolaFixedMarkSeconds*float64(sampleRate)), 1)
}

// PSOLA implements pitch-synchronous overlap-add pitch shifting.
type PSOLA struct{}

// NewPSOLA returns a PSOLA shifter.
func NewPSOLA() *PSOLA { return &PSOLA{} }

// Shift applies a pitch shift to seg's samples, returning a new
// Segment of the same length. shiftRatioAt(markIndex) supplies the
// desired pitch-shift ratio for the synthesis mark at that index,
// allowing a constant ratio (Low/Medium tiers) or a time-varying one
// (the High tier's random walk).
func (PSOLA) Shift(seg Segment, shiftRatioAt func(markIndex int) float64) Segment {
	samples := seg.Samples
	n := len(samples)
	if n < psolaAnalysisFrameSize {
		out := make([]float32, n)
		copy(out, samples)
		return Segment{Samples: out, SampleRate: seg.SampleRate, Channels: seg.Channels}
	}

	frames := analyzePitch(samples, seg.SampleRate)
	marks := placePitchMarks(n, seg.SampleRate, frames)

	output := make([]float64, n)
	norm := make([]float64, n)

	synPos := float64(marks[0])
	for i, mark := range marks {
		if i > 0 {
			ratio := shiftRatioAt(i)
			if ratio <= 0 {
				ratio = 1
			}
			analysisSpacing := float64(marks[i] - marks[i-1])
			synPos += analysisSpacing / ratio
		}
		if synPos >= float64(n) {
			break
		}

		period := localPeriod(mark, seg.SampleRate, frames)
		grainLen := 2 * period
		half := grainLen / 2
		win := hannWindow(grainLen)

		synCenter := int(math.Round(synPos))
		for offset := -half; offset < half; offset++ {
			srcIdx := mark + offset
			if srcIdx < 0 || srcIdx >= n {
				continue
			}
			dstIdx := synCenter + offset
			if dstIdx < 0 || dstIdx >= n {
				continue
			}
			w := win[offset+half]
			output[dstIdx] += float64(samples[srcIdx]) * w
			norm[dstIdx] += w * w
		}
	}

	for i := range output {
		if norm[i] > 0 {
			output[i] /= norm[i]
		}
	}

	inputPeak := peakAbsF32(samples)
	outputPeak := peakAbsF64(output)
	gain := 1.0
	if outputPeak > 1e-10 && outputPeak > inputPeak {
		gain = inputPeak / outputPeak
	}

	result := make([]float32, n)
	for i, v := range output {
		result[i] = float32(v * gain)
	}

	return Segment{Samples: result, SampleRate: seg.SampleRate, Channels: seg.Channels}
}
