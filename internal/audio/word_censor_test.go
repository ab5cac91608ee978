package audio

import "testing"

func word(w string, start, end float64) TranscriptWord {
	return TranscriptWord{Word: w, StartTime: start, EndTime: end, Confidence: 0.9}
}

func TestFindCensorRegionsNoKeywordsReturnsEmpty(t *testing.T) {
	transcript := []TranscriptWord{word("hello", 0, 0.5), word("world", 0.5, 1.0)}
	regions := WordCensor{}.FindCensorRegions(transcript, nil, DefaultBleepPadding)
	if len(regions) != 0 {
		t.Errorf("regions = %v, want empty", regions)
	}
}

func TestFindCensorRegionsMatchingKeyword(t *testing.T) {
	transcript := []TranscriptWord{
		word("my", 0, 0.3),
		word("name", 0.3, 0.6),
		word("is", 0.6, 0.8),
		word("john", 0.8, 1.2),
	}
	regions := WordCensor{}.FindCensorRegions(transcript, []string{"john"}, 0.05)
	if len(regions) != 1 {
		t.Fatalf("regions = %d, want 1", len(regions))
	}
	if regions[0].StartTime != 0.8 || regions[0].EndTime != 1.2 {
		t.Errorf("region = %+v, want [0.8, 1.2]", regions[0])
	}
}

func TestFindCensorRegionsCaseInsensitive(t *testing.T) {
	transcript := []TranscriptWord{word("John", 1.0, 1.5)}
	regions := WordCensor{}.FindCensorRegions(transcript, []string{"john"}, 0.05)
	if len(regions) != 1 {
		t.Fatalf("regions = %d, want 1", len(regions))
	}
}

func TestFindCensorRegionsMultipleMatches(t *testing.T) {
	transcript := []TranscriptWord{
		word("call", 0, 0.3),
		word("john", 0.3, 0.6),
		word("or", 0.6, 0.8),
		word("jane", 0.8, 1.2),
	}
	regions := WordCensor{}.FindCensorRegions(transcript, []string{"john", "jane"}, 0.05)
	if len(regions) != 2 {
		t.Fatalf("regions = %d, want 2", len(regions))
	}
}

func TestFindCensorRegionsNoMatches(t *testing.T) {
	transcript := []TranscriptWord{word("hello", 0, 0.5)}
	regions := WordCensor{}.FindCensorRegions(transcript, []string{"goodbye"}, 0.05)
	if len(regions) != 0 {
		t.Errorf("regions = %v, want empty", regions)
	}
}

func silentSegment(durationSecs float64, sampleRate int) Segment {
	n := int(durationSecs * float64(sampleRate))
	return NewSegment(make([]float32, n), sampleRate, 1)
}

func energy(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return sum
}

func TestApplyBleepToneReplacesRegion(t *testing.T) {
	seg := silentSegment(2.0, 16000)
	regions := []CensorRegion{{StartTime: 0.5, EndTime: 1.0, Padding: 0}}
	WordCensor{}.ApplyBleep(&seg, regions, DefaultBleepFrequency, BleepTone)

	start := seg.SampleIndexAtTime(0.5)
	end := seg.SampleIndexAtTime(1.0)
	if energy(seg.Samples[start:end]) <= 0 {
		t.Error("bleep region should have non-zero energy")
	}
}

func TestApplyBleepLeavesNonRegionUntouched(t *testing.T) {
	seg := silentSegment(2.0, 16000)
	regions := []CensorRegion{{StartTime: 0.5, EndTime: 1.0, Padding: 0}}
	WordCensor{}.ApplyBleep(&seg, regions, DefaultBleepFrequency, BleepTone)

	if energy(seg.Samples[0:8000]) != 0 {
		t.Error("samples before region should remain zero")
	}
}

func TestApplyBleepWithPadding(t *testing.T) {
	seg := silentSegment(2.0, 16000)
	regions := []CensorRegion{{StartTime: 1.0, EndTime: 1.5, Padding: 0.1}}
	WordCensor{}.ApplyBleep(&seg, regions, DefaultBleepFrequency, BleepTone)

	idx := seg.SampleIndexAtTime(0.95)
	if seg.Samples[idx] == 0 {
		t.Error("padded region should be non-zero")
	}
}

func TestApplyBleepEmptyRegionsNoChange(t *testing.T) {
	seg := silentSegment(1.0, 16000)
	original := make([]float32, len(seg.Samples))
	copy(original, seg.Samples)
	WordCensor{}.ApplyBleep(&seg, nil, DefaultBleepFrequency, BleepTone)
	for i := range original {
		if seg.Samples[i] != original[i] {
			t.Fatalf("sample %d changed with no regions", i)
		}
	}
}

func TestApplyBleepSilenceZeroesRegion(t *testing.T) {
	samples := make([]float32, 32000)
	for i := range samples {
		samples[i] = 0.5
	}
	seg := NewSegment(samples, 16000, 1)
	regions := []CensorRegion{{StartTime: 0.5, EndTime: 1.0, Padding: 0}}
	WordCensor{}.ApplyBleep(&seg, regions, DefaultBleepFrequency, BleepSilence)

	start := seg.SampleIndexAtTime(0.5)
	end := seg.SampleIndexAtTime(1.0)
	if energy(seg.Samples[start:end]) != 0 {
		t.Error("silenced region should have zero energy")
	}
	if seg.Samples[0] != 0.5 {
		t.Error("samples before region should be untouched")
	}
	if seg.Samples[len(seg.Samples)-1] != 0.5 {
		t.Error("samples after region should be untouched")
	}
}
