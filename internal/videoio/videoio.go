// Package videoio abstracts video decoding and encoding so the pipeline
// can process file-based media without depending on a specific codec
// library at the call site. The GStreamer-backed implementation is
// adapted from the RTSP live-capture pipeline idiom (appsink pull,
// caps negotiation, dynamic pad linking) to file-source decode and
// file-sink encode.
package videoio

import (
	"errors"

	"github.com/neutrinographics/faceguard/internal/core"
)

// Metadata describes a video stream's dimensions, rate, and source.
// An image file is represented as a single-frame video with FPS 0.
type Metadata struct {
	Width       int
	Height      int
	FPS         float64
	TotalFrames int
	Codec       string
	SourcePath  string
}

// ErrNotOpen is returned by Next/Write when called before Open.
var ErrNotOpen = errors.New("videoio: not open")

// Reader decodes frames from a media file one at a time.
type Reader interface {
	// Open starts decoding path and returns its stream metadata.
	Open(path string) (Metadata, error)

	// Next returns the next decoded frame, or io.EOF once the stream
	// is exhausted.
	Next() (core.Frame, error)

	// Close releases decoder resources. Idempotent.
	Close() error
}

// Writer encodes frames to a media file. When metadata.SourcePath is
// set, the writer muxes that source's audio track into the output
// alongside the video frames written through Write.
type Writer interface {
	// Open prepares path for writing using metadata.
	Open(path string, metadata Metadata) error

	// Write encodes and appends a single frame. Frames must be
	// written in increasing Index order.
	Write(frame core.Frame) error

	// Close flushes the encoder and finalizes the output file.
	// Idempotent.
	Close() error
}
