// Package audio implements the optional transcription, keyword bleep,
// and voice disguise pass over a video's audio track.
package audio

// Segment is interleaved PCM audio normalized to [-1.0, 1.0].
type Segment struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// NewSegment builds a Segment.
func NewSegment(samples []float32, sampleRate, channels int) Segment {
	return Segment{Samples: samples, SampleRate: sampleRate, Channels: channels}
}

// Duration returns the segment's length in seconds.
func (s Segment) Duration() float64 {
	return float64(len(s.Samples)) / (float64(s.SampleRate) * float64(s.Channels))
}

// SampleIndexAtTime converts a time offset in seconds to a sample
// index into Samples.
func (s Segment) SampleIndexAtTime(t float64) int {
	return int(t * float64(s.SampleRate) * float64(s.Channels))
}
