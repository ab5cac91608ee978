package audio

import (
	"math"
	"strings"
)

// DefaultBleepPadding is the default padding, in seconds, added around
// each censor region.
const DefaultBleepPadding = 0.05

// DefaultBleepFrequency is the default bleep tone frequency in Hz.
const DefaultBleepFrequency = 1000.0

// BleepMode selects how a censor region's samples are replaced.
type BleepMode int

const (
	// BleepTone replaces samples with a sine wave at a given frequency.
	BleepTone BleepMode = iota
	// BleepSilence zeroes samples.
	BleepSilence
)

// WordCensor locates and redacts keyword hits in a transcript.
type WordCensor struct{}

// FindCensorRegions returns one CensorRegion per transcript word whose
// text case-insensitively equals one of keywords. An empty keywords
// list yields no regions.
func (WordCensor) FindCensorRegions(transcript []TranscriptWord, keywords []string, padding float64) []CensorRegion {
	if len(keywords) == 0 {
		return nil
	}

	lower := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		lower[strings.ToLower(k)] = struct{}{}
	}

	var regions []CensorRegion
	for _, w := range transcript {
		if _, ok := lower[strings.ToLower(w.Word)]; ok {
			regions = append(regions, CensorRegion{
				StartTime: w.StartTime,
				EndTime:   w.EndTime,
				Padding:   padding,
			})
		}
	}
	return regions
}

// ApplyBleep replaces, in place, the samples within each region's
// effective range with either a sine tone at frequency or silence.
func (WordCensor) ApplyBleep(audio *Segment, regions []CensorRegion, frequency float64, mode BleepMode) {
	sampleRate := float64(audio.SampleRate)
	channels := float64(audio.Channels)

	for _, region := range regions {
		start := audio.SampleIndexAtTime(region.EffectiveStart())
		end := min(audio.SampleIndexAtTime(region.EffectiveEnd()), len(audio.Samples))
		if start >= end || start < 0 {
			continue
		}

		switch mode {
		case BleepTone:
			for offset := range audio.Samples[start:end] {
				t := float64(offset) / (sampleRate * channels)
				audio.Samples[start+offset] = float32(math.Sin(2*math.Pi*frequency*t) * 0.3)
			}
		case BleepSilence:
			for i := start; i < end; i++ {
				audio.Samples[i] = 0
			}
		}
	}
}
