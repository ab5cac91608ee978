package whisperasr

import (
	"testing"

	"github.com/neutrinographics/faceguard/internal/audio"
)

func trySkipNoWhisper(t *testing.T) {
	t.Helper()
	if r := recover(); r != nil {
		t.Skipf("whisper.cpp runtime unavailable: %v", r)
	}
}

func TestNewWithNonexistentModelReturnsError(t *testing.T) {
	defer trySkipNoWhisper(t)
	if _, err := New("/nonexistent/whisper/model.bin", ""); err == nil {
		t.Error("expected error for nonexistent model path")
	}
}

func TestTranscribeRejectsWrongFormat(t *testing.T) {
	defer trySkipNoWhisper(t)
	r := &Recognizer{language: "en"}
	seg := audio.NewSegment(make([]float32, 100), 8000, 2)
	if _, err := r.Transcribe(nil, seg); err == nil {
		t.Error("expected error for non-mono-16kHz audio")
	}
}
