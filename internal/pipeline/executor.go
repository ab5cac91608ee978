// Package pipeline wires a reader, detector, blurrer, and writer into
// a four-stage concurrent run: reading, detection, merge+blur, and
// writing each get their own goroutine connected by bounded channels,
// so detection and blurring overlap with I/O instead of running
// strictly serially.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/neutrinographics/faceguard/internal/blur"
	"github.com/neutrinographics/faceguard/internal/core"
	"github.com/neutrinographics/faceguard/internal/detect"
	"github.com/neutrinographics/faceguard/internal/videoio"
)

// DefaultChannelCapacity is the bounded channel size between stages.
const DefaultChannelCapacity = 8

// ErrCancelled is returned by Execute when a run stops early because
// the progress callback returned false, the context was cancelled, or
// cfg.Cancelled was set — never because of a real failure. Callers
// distinguish a user-initiated stop from an error with errors.Is.
var ErrCancelled = errors.New("pipeline: cancelled")

// Config configures a single pipeline run.
type Config struct {
	// Lookahead is the number of future frames' regions the merge
	// stage considers before flushing the oldest buffered frame.
	Lookahead int

	// BlurIDs, if non-nil, restricts blurring to these track IDs.
	// Takes precedence over ExcludeIDs.
	BlurIDs map[uint32]struct{}

	// ExcludeIDs, if non-nil and BlurIDs is nil, excludes these
	// track IDs from blurring.
	ExcludeIDs map[uint32]struct{}

	// OnProgress is called after each frame is written; returning
	// false stops the run early.
	OnProgress func(processed, total int) bool

	// Cancelled, if set, is polled by every stage so an external
	// caller can stop the run without waiting for EOF.
	Cancelled *atomic.Bool
}

type frameResult struct {
	frame core.Frame
	err   error
}

type detectedResult struct {
	frame   core.Frame
	regions []core.Region
	err     error
}

type bufferedFrame struct {
	frame   core.Frame
	regions []core.Region
}

// Execute runs the pipeline to completion: reader and detector run on
// their own goroutines feeding a merge+blur goroutine that drains into
// the writer goroutine. The writer is opened and closed here; reader
// and detector lifecycle (Close) are the caller's responsibility
// except for Reader.Close, which the reader goroutine calls itself
// once its frame stream is exhausted or cancelled.
//
// If the run stops early because of ctx cancellation, cfg.Cancelled,
// or cfg.OnProgress returning false, Execute returns ErrCancelled
// (check with errors.Is) rather than nil, so callers can tell a
// user-initiated stop apart from a clean completion.
func Execute(
	ctx context.Context,
	reader videoio.Reader,
	writer videoio.Writer,
	detector detect.Detector,
	blurrer blur.Blurrer,
	merger *detect.Merger,
	metadata videoio.Metadata,
	outputPath string,
	cfg Config,
) error {
	if err := writer.Open(outputPath, metadata); err != nil {
		return fmt.Errorf("pipeline: open writer: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	frameCh := make(chan frameResult, DefaultChannelCapacity)
	detectedCh := make(chan detectedResult, DefaultChannelCapacity)
	writeCh := make(chan core.Frame, DefaultChannelCapacity)

	g.Go(func() error { return runReader(gctx, reader, frameCh, cfg.Cancelled) })
	g.Go(func() error { return runDetect(gctx, detector, frameCh, detectedCh, cfg) })
	g.Go(func() error { return runMergeBlur(gctx, merger, blurrer, detectedCh, writeCh, metadata, cfg) })
	g.Go(func() error { return runWriter(writer, writeCh) })

	err := g.Wait()

	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}

	return err
}

func runReader(ctx context.Context, reader videoio.Reader, out chan<- frameResult, cancelled *atomic.Bool) error {
	defer close(out)
	defer reader.Close()

	for {
		if cancelled != nil && cancelled.Load() {
			return ErrCancelled
		}

		frame, err := reader.Next()
		if err == io.EOF {
			return nil
		}

		select {
		case out <- frameResult{frame: frame, err: err}:
		case <-ctx.Done():
			return ErrCancelled
		}

		if err != nil {
			return fmt.Errorf("pipeline: read: %w", err)
		}
	}
}

func runDetect(ctx context.Context, detector detect.Detector, in <-chan frameResult, out chan<- detectedResult, cfg Config) error {
	defer close(out)

	for fr := range in {
		if cfg.Cancelled != nil && cfg.Cancelled.Load() {
			return ErrCancelled
		}

		result := detectedResult{frame: fr.frame}
		if fr.err != nil {
			result.err = fr.err
		} else {
			regions, err := detector.Detect(ctx, fr.frame)
			if err != nil {
				result.err = fmt.Errorf("pipeline: detect: %w", err)
			} else {
				result.regions = detect.FilterRegions(regions, cfg.BlurIDs, cfg.ExcludeIDs)
			}
		}

		select {
		case out <- result:
		case <-ctx.Done():
			return ErrCancelled
		}

		if result.err != nil {
			return result.err
		}
	}
	return nil
}

func runMergeBlur(ctx context.Context, merger *detect.Merger, blurrer blur.Blurrer, in <-chan detectedResult, out chan<- core.Frame, metadata videoio.Metadata, cfg Config) error {
	defer close(out)

	var buffer []bufferedFrame
	processed := 0

	flushOldest := func() error {
		item := buffer[0]
		buffer = buffer[1:]

		lookahead := make([][]core.Region, len(buffer))
		for i, b := range buffer {
			lookahead[i] = b.regions
		}

		merged := merger.Merge(item.regions, lookahead, metadata.Width, metadata.Height)
		if err := blurrer.Blur(&item.frame, merged); err != nil {
			return fmt.Errorf("pipeline: blur: %w", err)
		}

		select {
		case out <- item.frame:
		case <-ctx.Done():
			return ErrCancelled
		}

		processed++
		if cfg.OnProgress != nil && !cfg.OnProgress(processed, metadata.TotalFrames) {
			return ErrCancelled
		}
		return nil
	}

	for d := range in {
		if cfg.Cancelled != nil && cfg.Cancelled.Load() {
			return ErrCancelled
		}
		if d.err != nil {
			return d.err
		}

		buffer = append(buffer, bufferedFrame{frame: d.frame, regions: d.regions})

		if len(buffer) > cfg.Lookahead {
			if err := flushOldest(); err != nil {
				return err
			}
		}
	}

	for len(buffer) > 0 {
		if cfg.Cancelled != nil && cfg.Cancelled.Load() {
			return ErrCancelled
		}
		if err := flushOldest(); err != nil {
			return err
		}
	}

	return nil
}

func runWriter(writer videoio.Writer, in <-chan core.Frame) error {
	for frame := range in {
		if err := writer.Write(frame); err != nil {
			return fmt.Errorf("pipeline: write: %w", err)
		}
	}
	return nil
}
