package audio

import (
	"context"
	"testing"
)

type stubReader struct {
	segment *Segment
}

func (s *stubReader) ReadAudio(string, int) (*Segment, error) {
	return s.segment, nil
}

type stubWriter struct {
	written *Segment
}

func (s *stubWriter) WriteAudio(_ string, audio Segment) error {
	s.written = &audio
	return nil
}

type stubRecognizer struct {
	words []TranscriptWord
}

func (s *stubRecognizer) Transcribe(context.Context, Segment) ([]TranscriptWord, error) {
	return s.words, nil
}

type stubTransformer struct {
	called bool
}

func (s *stubTransformer) Transform(seg *Segment) error {
	s.called = true
	for i := range seg.Samples {
		seg.Samples[i] += 1
	}
	return nil
}

func TestPassNoAudioTrackSkipsProcessing(t *testing.T) {
	reader := &stubReader{segment: nil}
	writer := &stubWriter{}
	pass := NewPass(reader, writer, &stubRecognizer{}, &stubTransformer{}, []string{"secret"}, BleepSilence)

	if err := pass.Run(context.Background(), "in.mp4", "out.mp4"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if writer.written != nil {
		t.Error("writer should not have been invoked when there is no audio track")
	}
}

func TestPassKeywordsTriggerBleep(t *testing.T) {
	seg := NewSegment(make([]float32, 16000), 16000, 1)
	for i := range seg.Samples {
		seg.Samples[i] = 1
	}
	reader := &stubReader{segment: &seg}
	writer := &stubWriter{}
	recognizer := &stubRecognizer{words: []TranscriptWord{
		{Word: "secret", StartTime: 0.5, EndTime: 0.7, Confidence: 1},
	}}
	pass := NewPass(reader, writer, recognizer, nil, []string{"secret"}, BleepSilence)

	if err := pass.Run(context.Background(), "in.mp4", "out.mp4"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if writer.written == nil {
		t.Fatal("writer was not invoked")
	}

	region := CensorRegion{StartTime: 0.5, EndTime: 0.7, Padding: DefaultBleepPadding}
	start := seg.SampleIndexAtTime(region.EffectiveStart())
	end := seg.SampleIndexAtTime(region.EffectiveEnd())
	for i := start; i < end && i < len(writer.written.Samples); i++ {
		if writer.written.Samples[i] != 0 {
			t.Fatalf("sample %d = %v, want 0 (silenced)", i, writer.written.Samples[i])
		}
	}
}

func TestPassVoiceTransformApplied(t *testing.T) {
	seg := NewSegment(make([]float32, 100), 16000, 1)
	reader := &stubReader{segment: &seg}
	writer := &stubWriter{}
	transformer := &stubTransformer{}
	pass := NewPass(reader, writer, nil, transformer, nil, BleepSilence)

	if err := pass.Run(context.Background(), "in.mp4", "out.mp4"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !transformer.called {
		t.Error("transformer should have been invoked")
	}
	if writer.written == nil {
		t.Fatal("writer was not invoked")
	}
	for i, s := range writer.written.Samples {
		if s != 1 {
			t.Fatalf("sample %d = %v, want 1 (transformed)", i, s)
		}
	}
}
