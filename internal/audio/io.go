package audio

// Reader decodes a media file's audio track.
type Reader interface {
	// ReadAudio decodes path's audio track to mono PCM resampled to
	// targetSampleRate. It returns (nil, nil) if path has no audio
	// track.
	ReadAudio(path string, targetSampleRate int) (*Segment, error)
}

// Writer replaces a media file's audio track.
type Writer interface {
	// WriteAudio replaces videoPath's audio track with audio.
	WriteAudio(videoPath string, audio Segment) error
}
