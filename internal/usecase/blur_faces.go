// Package usecase wires the detect, blur, videoio, and pipeline
// packages into the three operations the CLI and any future service
// layer drive: blurring a video, blurring a single image, and
// scanning a video for face previews.
package usecase

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/neutrinographics/faceguard/internal/blur"
	"github.com/neutrinographics/faceguard/internal/detect"
	"github.com/neutrinographics/faceguard/internal/pipeline"
	"github.com/neutrinographics/faceguard/internal/videoio"
)

// DefaultLookahead is the merge stage's default lookahead window size.
const DefaultLookahead = 5

// errAlreadyExecuted guards against reusing a single-use case.
var errAlreadyExecuted = errors.New("usecase: already executed")

// BlurFaces orchestrates the full video blurring pipeline: it wires
// domain components together and delegates execution to
// pipeline.Execute. Single-use: a second Execute call fails.
type BlurFaces struct {
	reader     videoio.Reader
	writer     videoio.Writer
	detector   detect.Detector
	blurrer    blur.Blurrer
	merger     *detect.Merger
	lookahead  int
	blurIDs    map[uint32]struct{}
	excludeIDs map[uint32]struct{}
	onProgress func(processed, total int) bool
	cancelled  *atomic.Bool
	executed   bool
}

// NewBlurFaces builds a BlurFaces use case. reader must already be
// open. lookahead <= 0 uses DefaultLookahead.
func NewBlurFaces(
	reader videoio.Reader,
	writer videoio.Writer,
	detector detect.Detector,
	blurrer blur.Blurrer,
	merger *detect.Merger,
	lookahead int,
	blurIDs, excludeIDs map[uint32]struct{},
	onProgress func(processed, total int) bool,
	cancelled *atomic.Bool,
) *BlurFaces {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &BlurFaces{
		reader:     reader,
		writer:     writer,
		detector:   detector,
		blurrer:    blurrer,
		merger:     merger,
		lookahead:  lookahead,
		blurIDs:    blurIDs,
		excludeIDs: excludeIDs,
		onProgress: onProgress,
		cancelled:  cancelled,
	}
}

// Execute runs the pipeline, writing the blurred output to outputPath.
func (u *BlurFaces) Execute(ctx context.Context, metadata videoio.Metadata, outputPath string) error {
	if u.executed {
		return errAlreadyExecuted
	}
	u.executed = true

	cfg := pipeline.Config{
		Lookahead:  u.lookahead,
		BlurIDs:    u.blurIDs,
		ExcludeIDs: u.excludeIDs,
		OnProgress: u.onProgress,
		Cancelled:  u.cancelled,
	}

	return pipeline.Execute(ctx, u.reader, u.writer, u.detector, u.blurrer, u.merger, metadata, outputPath, cfg)
}
