package videoio

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"sync"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/neutrinographics/faceguard/internal/core"
)

// GstReader decodes a video file frame-by-frame through a
// filesrc -> decodebin -> videoconvert -> videoscale -> capsfilter ->
// appsink pipeline, adapted from the RTSP live-capture pipeline to a
// file source with synchronous, pull-mode frame retrieval instead of
// a push-mode callback.
type GstReader struct {
	mu       sync.Mutex
	pipeline *gst.Pipeline
	appsink  *app.Sink
	width    int
	height   int
	index    uint64
	closed   bool
}

// NewGstReader returns an unopened GstReader.
func NewGstReader() *GstReader {
	return &GstReader{}
}

var capsFieldRe = regexp.MustCompile(`(\w+)=\(?\w*\)?([0-9/]+)`)

// Open implements Reader.
func (r *GstReader) Open(path string) (Metadata, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return Metadata{}, fmt.Errorf("videoio: create pipeline: %w", err)
	}

	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return Metadata{}, fmt.Errorf("videoio: create filesrc: %w", err)
	}
	filesrc.SetProperty("location", path)

	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return Metadata{}, fmt.Errorf("videoio: create decodebin: %w", err)
	}

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return Metadata{}, fmt.Errorf("videoio: create videoconvert: %w", err)
	}

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return Metadata{}, fmt.Errorf("videoio: create videoscale: %w", err)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return Metadata{}, fmt.Errorf("videoio: create capsfilter: %w", err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString("video/x-raw,format=RGB"))

	appsink, err := app.NewAppSink()
	if err != nil {
		return Metadata{}, fmt.Errorf("videoio: create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 4)
	appsink.SetProperty("drop", false)

	pipeline.AddMany(filesrc, decodebin, converter, scaler, capsfilter, appsink.Element)

	if err := filesrc.Link(decodebin); err != nil {
		return Metadata{}, fmt.Errorf("videoio: link filesrc->decodebin: %w", err)
	}
	if err := gst.ElementLinkMany(converter, scaler, capsfilter, appsink.Element); err != nil {
		return Metadata{}, fmt.Errorf("videoio: link decode chain: %w", err)
	}

	// decodebin exposes video/audio pads dynamically once the stream
	// type is known; only the video pad is linked into our chain, the
	// same pattern rtspsrc uses for its dynamic pads.
	decodebin.Connect("pad-added", func(_ *gst.Element, pad *gst.Pad) {
		caps := pad.GetCurrentCaps()
		if caps == nil {
			return
		}
		capsStr := caps.String()
		if !isVideoCaps(capsStr) {
			return
		}
		sinkPad := converter.GetStaticPad("sink")
		if sinkPad == nil || sinkPad.IsLinked() {
			return
		}
		if ret := pad.Link(sinkPad); ret != gst.PadLinkOK {
			slog.Error("videoio: failed to link decodebin video pad", "ret", ret)
		}
	})

	if err := pipeline.SetState(gst.StatePaused); err != nil {
		return Metadata{}, fmt.Errorf("videoio: pipeline pause: %w", err)
	}
	pipeline.GetState(gst.ClockTimeNone)

	negotiated := capsfilter.GetStaticPad("src").GetCurrentCaps()
	var width, height int
	var fps float64
	if negotiated != nil {
		width, height, fps = parseVideoCaps(negotiated.String())
	}

	duration, _ := pipeline.QueryDuration(gst.FormatTime)
	totalFrames := 0
	if fps > 0 && duration > 0 {
		totalFrames = int(float64(duration) / float64(gst.ClockTime(1_000_000_000)) * fps)
	}

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return Metadata{}, fmt.Errorf("videoio: pipeline play: %w", err)
	}

	r.pipeline = pipeline
	r.appsink = appsink
	r.width = width
	r.height = height

	return Metadata{
		Width:       width,
		Height:      height,
		FPS:         fps,
		TotalFrames: totalFrames,
		Codec:       "",
		SourcePath:  path,
	}, nil
}

// Next implements Reader.
func (r *GstReader) Next() (core.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pipeline == nil {
		return core.Frame{}, ErrNotOpen
	}

	sample := r.appsink.PullSample()
	if sample == nil {
		return core.Frame{}, io.EOF
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		return core.Frame{}, fmt.Errorf("videoio: empty sample buffer")
	}

	mapInfo := buffer.Map(gst.MapRead)
	defer buffer.Unmap()

	data := mapInfo.Bytes()
	frameData := make([]byte, len(data))
	copy(frameData, data)

	frame, err := core.NewFrame(frameData, r.width, r.height, 3, r.index)
	if err != nil {
		return core.Frame{}, fmt.Errorf("videoio: decoded frame: %w", err)
	}
	r.index++
	return frame, nil
}

// Close implements Reader. Idempotent.
func (r *GstReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.pipeline == nil {
		r.closed = true
		return nil
	}
	r.closed = true
	return r.pipeline.SetState(gst.StateNull)
}

func isVideoCaps(capsStr string) bool {
	return len(capsStr) >= 6 && capsStr[:6] == "video/"
}

func parseVideoCaps(capsStr string) (width, height int, fps float64) {
	for _, m := range capsFieldRe.FindAllStringSubmatch(capsStr, -1) {
		switch m[1] {
		case "width":
			width, _ = strconv.Atoi(m[2])
		case "height":
			height, _ = strconv.Atoi(m[2])
		case "framerate":
			fps = parseFraction(m[2])
		}
	}
	return width, height, fps
}

func parseFraction(s string) float64 {
	var num, den int
	n, err := fmt.Sscanf(s, "%d/%d", &num, &den)
	if err != nil || n != 2 || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
