package audio

import "context"

// Recognizer transcribes speech in an audio segment to word-level
// timestamps.
type Recognizer interface {
	Transcribe(ctx context.Context, audio Segment) ([]TranscriptWord, error)
}
