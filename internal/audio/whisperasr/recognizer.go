// Package whisperasr implements audio.Recognizer over the whisper.cpp
// CGO bindings, replacing the permanently-stubbed original recognizer
// with real inference.
package whisperasr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/neutrinographics/faceguard/internal/audio"
)

// Recognizer runs whisper.cpp inference against a shared, once-loaded
// model. It is safe for concurrent use: each Transcribe call opens its
// own whisper.cpp context.
type Recognizer struct {
	model    whisperlib.Model
	language string
}

// New loads the whisper.cpp model at modelPath. language is a BCP-47
// code (e.g. "en"); empty defaults to "en".
func New(modelPath, language string) (*Recognizer, error) {
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisperasr: load model %q: %w", modelPath, err)
	}
	if language == "" {
		language = "en"
	}
	return &Recognizer{model: model, language: language}, nil
}

// Close releases the underlying whisper.cpp model.
func (r *Recognizer) Close() error {
	return r.model.Close()
}

// Transcribe implements audio.Recognizer. seg must be mono 16 kHz PCM.
func (r *Recognizer) Transcribe(_ context.Context, seg audio.Segment) ([]audio.TranscriptWord, error) {
	if seg.Channels != 1 || seg.SampleRate != 16000 {
		return nil, fmt.Errorf("whisperasr: expected mono 16kHz audio, got %d channel(s) at %d Hz", seg.Channels, seg.SampleRate)
	}

	wctx, err := r.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisperasr: create context: %w", err)
	}
	if err := wctx.SetLanguage(r.language); err != nil {
		return nil, fmt.Errorf("whisperasr: set language %q: %w", r.language, err)
	}
	if err := wctx.SetTokenTimestamps(true); err != nil {
		return nil, fmt.Errorf("whisperasr: enable token timestamps: %w", err)
	}

	if err := wctx.Process(seg.Samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisperasr: process audio: %w", err)
	}

	var words []audio.TranscriptWord
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisperasr: read segment: %w", err)
		}
		for _, tok := range segment.Tokens {
			text := strings.TrimSpace(tok.Text)
			if text == "" || strings.HasPrefix(text, "[") {
				continue
			}
			words = append(words, audio.TranscriptWord{
				Word:       text,
				StartTime:  tok.Start.Seconds(),
				EndTime:    tok.End.Seconds(),
				Confidence: tok.P,
			})
		}
	}
	return words, nil
}
