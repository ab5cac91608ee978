package videoio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/neutrinographics/faceguard/internal/core"
)

// GstWriter encodes frames through an appsrc -> videoconvert ->
// avenc_mpeg4 -> mp4mux -> filesink pipeline. When metadata.SourcePath
// is set, a second filesrc -> decodebin -> queue -> audioconvert ->
// voaacenc branch decodes that source's audio track and re-encodes it
// as AAC into the same mp4mux, so the output keeps the original audio
// without a separate mux pass.
type GstWriter struct {
	mu           sync.Mutex
	pipeline     *gst.Pipeline
	appsrc       *app.Source
	frameDur     gst.ClockTime
	nextPTS      gst.ClockTime
	width        int
	height       int
	eosWaiter    chan struct{}
	closed       bool
}

// NewGstWriter returns an unopened GstWriter.
func NewGstWriter() *GstWriter {
	return &GstWriter{}
}

// Open implements Writer.
func (w *GstWriter) Open(path string, metadata Metadata) error {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("videoio: create pipeline: %w", err)
	}

	appsrc, err := app.NewAppSrc()
	if err != nil {
		return fmt.Errorf("videoio: create appsrc: %w", err)
	}
	inCaps := gst.NewCapsFromString(fmt.Sprintf(
		"video/x-raw,format=RGB,width=%d,height=%d,framerate=0/1", metadata.Width, metadata.Height))
	appsrc.SetProperty("caps", inCaps)
	appsrc.SetProperty("format", int(gst.FormatTime))
	appsrc.SetProperty("is-live", false)
	appsrc.SetProperty("block", true)

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return fmt.Errorf("videoio: create videoconvert: %w", err)
	}

	fps := metadata.FPS
	if fps <= 0 {
		fps = 30
	}

	encoder, err := gst.NewElement("avenc_mpeg4")
	if err != nil {
		return fmt.Errorf("videoio: create avenc_mpeg4: %w", err)
	}

	mux, err := gst.NewElement("mp4mux")
	if err != nil {
		return fmt.Errorf("videoio: create mp4mux: %w", err)
	}

	filesink, err := gst.NewElement("filesink")
	if err != nil {
		return fmt.Errorf("videoio: create filesink: %w", err)
	}
	filesink.SetProperty("location", path)

	pipeline.AddMany(appsrc.Element, converter, encoder, mux, filesink)
	if err := gst.ElementLinkMany(appsrc.Element, converter, encoder, mux, filesink); err != nil {
		return fmt.Errorf("videoio: link encode chain: %w", err)
	}

	if metadata.SourcePath != "" {
		if err := addAudioPassthrough(pipeline, mux, metadata.SourcePath); err != nil {
			slog.Warn("videoio: continuing without audio passthrough", "error", err)
		}
	}

	eosWaiter := make(chan struct{})
	bus := pipeline.GetBus()
	bus.AddWatch(func(msg *gst.Message) bool {
		switch msg.Type() {
		case gst.MessageEOS:
			close(eosWaiter)
			return false
		case gst.MessageError:
			gerr := msg.ParseError()
			slog.Error("videoio: pipeline error", "error", gerr.Error())
			close(eosWaiter)
			return false
		}
		return true
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("videoio: pipeline play: %w", err)
	}

	w.pipeline = pipeline
	w.appsrc = appsrc
	w.frameDur = gst.ClockTime(float64(gst.ClockTime(1_000_000_000)) / fps)
	w.width = metadata.Width
	w.height = metadata.Height
	w.eosWaiter = eosWaiter

	return nil
}

// Write implements Writer.
func (w *GstWriter) Write(frame core.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.appsrc == nil {
		return ErrNotOpen
	}

	buffer := gst.NewBufferFromBytes(frame.Data)
	buffer.SetPresentationTimestamp(w.nextPTS)
	buffer.SetDuration(w.frameDur)
	w.nextPTS += w.frameDur

	if ret := w.appsrc.PushBuffer(buffer); ret != gst.FlowOK {
		return fmt.Errorf("videoio: push buffer: %v", ret)
	}
	return nil
}

// Close implements Writer. Idempotent.
func (w *GstWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.pipeline == nil {
		w.closed = true
		return nil
	}
	w.closed = true

	w.appsrc.EndStream()
	<-w.eosWaiter

	return w.pipeline.SetState(gst.StateNull)
}

// addAudioPassthrough decodes sourcePath's audio track, re-encodes it
// with voaacenc, and links the encoder into mux's dynamically requested
// audio sink pad.
func addAudioPassthrough(pipeline *gst.Pipeline, mux *gst.Element, sourcePath string) error {
	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return fmt.Errorf("create filesrc: %w", err)
	}
	filesrc.SetProperty("location", sourcePath)

	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return fmt.Errorf("create decodebin: %w", err)
	}

	queue, err := gst.NewElement("queue")
	if err != nil {
		return fmt.Errorf("create queue: %w", err)
	}

	converter, err := gst.NewElement("audioconvert")
	if err != nil {
		return fmt.Errorf("create audioconvert: %w", err)
	}

	encoder, err := gst.NewElement("voaacenc")
	if err != nil {
		return fmt.Errorf("create voaacenc: %w", err)
	}

	pipeline.AddMany(filesrc, decodebin, queue, converter, encoder)
	if err := filesrc.Link(decodebin); err != nil {
		return fmt.Errorf("link filesrc->decodebin: %w", err)
	}
	if err := gst.ElementLinkMany(queue, converter, encoder); err != nil {
		return fmt.Errorf("link audio chain: %w", err)
	}

	decodebin.Connect("pad-added", func(_ *gst.Element, pad *gst.Pad) {
		caps := pad.GetCurrentCaps()
		if caps == nil || !isAudioCaps(caps.String()) {
			return
		}
		sinkPad := queue.GetStaticPad("sink")
		if sinkPad == nil || sinkPad.IsLinked() {
			return
		}
		if ret := pad.Link(sinkPad); ret != gst.PadLinkOK {
			slog.Error("videoio: failed to link decodebin audio pad", "ret", ret)
			return
		}

		muxAudioPad := mux.GetRequestPad("audio_%u")
		if muxAudioPad == nil {
			slog.Error("videoio: mp4mux has no audio pad template")
			return
		}
		encoderSrc := encoder.GetStaticPad("src")
		if ret := encoderSrc.Link(muxAudioPad); ret != gst.PadLinkOK {
			slog.Error("videoio: failed to link audio encoder to mux", "ret", ret)
		}
	})

	return nil
}

func isAudioCaps(capsStr string) bool {
	return len(capsStr) >= 6 && capsStr[:6] == "audio/"
}
