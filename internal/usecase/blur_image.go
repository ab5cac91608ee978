package usecase

import (
	"context"
	"fmt"

	"github.com/neutrinographics/faceguard/internal/blur"
	"github.com/neutrinographics/faceguard/internal/detect"
	"github.com/neutrinographics/faceguard/internal/videoio"
)

// BlurImage is the single-image blurring pipeline: read, detect,
// filter, blur, write.
type BlurImage struct {
	reader     videoio.Reader
	writer     videoio.Writer
	detector   detect.Detector
	blurrer    blur.Blurrer
	blurIDs    map[uint32]struct{}
	excludeIDs map[uint32]struct{}
}

// NewBlurImage builds a BlurImage use case. reader and writer are
// opened by Execute, unlike BlurFaces/PreviewFaces which take an
// already-open reader.
func NewBlurImage(
	reader videoio.Reader,
	writer videoio.Writer,
	detector detect.Detector,
	blurrer blur.Blurrer,
	blurIDs, excludeIDs map[uint32]struct{},
) *BlurImage {
	return &BlurImage{
		reader:     reader,
		writer:     writer,
		detector:   detector,
		blurrer:    blurrer,
		blurIDs:    blurIDs,
		excludeIDs: excludeIDs,
	}
}

// Execute reads a single image, detects faces, filters, blurs, and
// writes the output.
func (u *BlurImage) Execute(ctx context.Context, inputPath, outputPath string) error {
	metadata, err := u.reader.Open(inputPath)
	if err != nil {
		return fmt.Errorf("usecase: open input: %w", err)
	}

	frame, err := u.reader.Next()
	u.reader.Close()
	if err != nil {
		return fmt.Errorf("usecase: read image: %w", err)
	}

	regions, err := u.detector.Detect(ctx, frame)
	if err != nil {
		return fmt.Errorf("usecase: detect: %w", err)
	}
	filtered := detect.FilterRegions(regions, u.blurIDs, u.excludeIDs)

	if err := u.blurrer.Blur(&frame, filtered); err != nil {
		return fmt.Errorf("usecase: blur: %w", err)
	}

	if err := u.writer.Open(outputPath, metadata); err != nil {
		return fmt.Errorf("usecase: open output: %w", err)
	}
	if err := u.writer.Write(frame); err != nil {
		return fmt.Errorf("usecase: write output: %w", err)
	}
	return u.writer.Close()
}
