package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/neutrinographics/faceguard/internal/core"
	"github.com/neutrinographics/faceguard/internal/detect"
	"github.com/neutrinographics/faceguard/internal/imageio"
	"github.com/neutrinographics/faceguard/internal/videoio"
)

// PreviewSize is the thumbnail dimension saved for each tracked face.
const PreviewSize = 256

// errCancelled is returned when the progress callback requests a stop.
var errCancelled = errors.New("usecase: cancelled")

// PreviewResult is the return value of PreviewFaces.Execute.
type PreviewResult struct {
	// Crops maps track ID to the saved thumbnail's file path.
	Crops map[uint32]string
	// DetectionCache maps frame index to the regions detected on that
	// frame, for reuse by a subsequent BlurFaces pass via
	// detect.CachedDetector.
	DetectionCache map[uint64][]core.Region
}

// PreviewFaces scans a video for faces and saves the largest-area crop
// of each tracked identity as a square thumbnail.
type PreviewFaces struct {
	reader     videoio.Reader
	detector   detect.Detector
	onProgress func(processed, total int) bool
}

// NewPreviewFaces builds a PreviewFaces use case. reader must already
// be open.
func NewPreviewFaces(
	reader videoio.Reader,
	detector detect.Detector,
	onProgress func(processed, total int) bool,
) *PreviewFaces {
	return &PreviewFaces{
		reader:     reader,
		detector:   detector,
		onProgress: onProgress,
	}
}

type bestCrop struct {
	area int
	crop core.Frame
}

// Execute scans every frame of the already-open reader, running
// detection on each, and writes the best (largest-area) crop per track
// ID to outputDir as "<trackID>.jpg".
func (u *PreviewFaces) Execute(ctx context.Context, metadata videoio.Metadata, outputDir string) (PreviewResult, error) {
	best := make(map[uint32]bestCrop)
	cache := make(map[uint64][]core.Region)

	totalFrames := metadata.TotalFrames
	processed := 0

	for {
		frame, err := u.reader.Next()
		if err != nil {
			break
		}

		regions, err := u.detector.Detect(ctx, frame)
		if err != nil {
			u.reader.Close()
			return PreviewResult{}, fmt.Errorf("usecase: detect: %w", err)
		}
		cache[frame.Index] = regions

		for _, r := range regions {
			if !r.HasTrackID {
				continue
			}
			area := r.Width * r.Height
			if existing, ok := best[r.TrackID]; !ok || area > existing.area {
				best[r.TrackID] = bestCrop{area: area, crop: squareCrop(frame, r)}
			}
		}

		processed++
		if u.onProgress != nil && !u.onProgress(processed, totalFrames) {
			u.reader.Close()
			return PreviewResult{}, errCancelled
		}
	}
	u.reader.Close()

	ids := make([]uint32, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	crops := make(map[uint32]string, len(ids))
	for _, id := range ids {
		path := filepath.Join(outputDir, strconv.FormatUint(uint64(id), 10)+".jpg")
		if err := imageio.WriteSized(path, best[id].crop, PreviewSize); err != nil {
			return PreviewResult{}, fmt.Errorf("usecase: write crop %d: %w", id, err)
		}
		crops[id] = path
	}

	return PreviewResult{Crops: crops, DetectionCache: cache}, nil
}

// squareCrop extracts a square region centered on r, clamped to the
// frame's bounds.
func squareCrop(frame core.Frame, r core.Region) core.Frame {
	fw, fh := frame.Width, frame.Height

	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	half := max(r.Width, r.Height) / 2

	x1 := max(cx-half, 0)
	y1 := max(cy-half, 0)
	x2 := min(cx+half, fw)
	y2 := min(cy+half, fh)

	cropW := x2 - x1
	cropH := y2 - y1
	channels := frame.Channels

	data := make([]byte, 0, cropW*cropH*channels)
	for row := y1; row < y2; row++ {
		rowOff := row * fw * channels
		data = append(data, frame.Data[rowOff+x1*channels:rowOff+x2*channels]...)
	}

	crop, _ := core.NewFrame(data, cropW, cropH, channels, 0)
	return crop
}
