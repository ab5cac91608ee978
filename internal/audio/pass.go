package audio

import (
	"context"
	"fmt"
)

// transcribeSampleRate is the sample rate the speech recognizer
// expects its input resampled to.
const transcribeSampleRate = 16000

// Pass runs the optional audio leg of a processing job: transcribe,
// locate keyword hits, disguise the voice, then bleep. The voice
// transform always runs before bleeping — PSOLA's overlap-add would
// otherwise corrupt the bleep tones.
type Pass struct {
	Reader      Reader
	Writer      Writer
	Recognizer  Recognizer
	Transformer Transformer
	Keywords    []string
	BleepMode   BleepMode
}

// NewPass builds a Pass. Recognizer and Transformer may be nil to
// skip censoring or voice disguise respectively.
func NewPass(reader Reader, writer Writer, recognizer Recognizer, transformer Transformer, keywords []string, mode BleepMode) *Pass {
	return &Pass{
		Reader:      reader,
		Writer:      writer,
		Recognizer:  recognizer,
		Transformer: transformer,
		Keywords:    keywords,
		BleepMode:   mode,
	}
}

// Run reads sourcePath's audio track, applies the configured
// transform and keyword bleep, and writes the result into
// outputPath. It is a no-op if sourcePath has no audio track.
func (p *Pass) Run(ctx context.Context, sourcePath, outputPath string) error {
	segment, err := p.Reader.ReadAudio(sourcePath, transcribeSampleRate)
	if err != nil {
		return fmt.Errorf("audio: read: %w", err)
	}
	if segment == nil {
		return nil
	}

	var censorRegions []CensorRegion
	if len(p.Keywords) > 0 && p.Recognizer != nil {
		transcript, err := p.Recognizer.Transcribe(ctx, *segment)
		if err != nil {
			return fmt.Errorf("audio: transcribe: %w", err)
		}
		censorRegions = WordCensor{}.FindCensorRegions(transcript, p.Keywords, DefaultBleepPadding)
	}

	if p.Transformer != nil {
		if err := p.Transformer.Transform(segment); err != nil {
			return fmt.Errorf("audio: transform: %w", err)
		}
	}

	if len(censorRegions) > 0 {
		WordCensor{}.ApplyBleep(segment, censorRegions, DefaultBleepFrequency, p.BleepMode)
	}

	if err := p.Writer.WriteAudio(outputPath, *segment); err != nil {
		return fmt.Errorf("audio: write: %w", err)
	}
	return nil
}
