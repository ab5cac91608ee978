package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// GstReader decodes a file's audio track through a filesrc ->
// decodebin -> audioconvert -> audioresample -> capsfilter -> appsink
// pipeline, the same dynamic-pad-linking shape videoio.GstReader uses
// for its video chain.
type GstReader struct{}

// NewGstReader returns a GstReader.
func NewGstReader() *GstReader { return &GstReader{} }

// ReadAudio decodes path's audio track to mono float32 PCM resampled
// to targetSampleRate. It returns (nil, nil) if path has no audio
// track.
func (r *GstReader) ReadAudio(path string, targetSampleRate int) (*Segment, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("audio: create pipeline: %w", err)
	}

	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return nil, fmt.Errorf("audio: create filesrc: %w", err)
	}
	filesrc.SetProperty("location", path)

	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return nil, fmt.Errorf("audio: create decodebin: %w", err)
	}

	converter, err := gst.NewElement("audioconvert")
	if err != nil {
		return nil, fmt.Errorf("audio: create audioconvert: %w", err)
	}

	resample, err := gst.NewElement("audioresample")
	if err != nil {
		return nil, fmt.Errorf("audio: create audioresample: %w", err)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("audio: create capsfilter: %w", err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(
		fmt.Sprintf("audio/x-raw,format=F32LE,channels=1,rate=%d", targetSampleRate)))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("audio: create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)

	pipeline.AddMany(filesrc, decodebin, converter, resample, capsfilter, appsink.Element)
	if err := filesrc.Link(decodebin); err != nil {
		return nil, fmt.Errorf("audio: link filesrc->decodebin: %w", err)
	}
	if err := gst.ElementLinkMany(converter, resample, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("audio: link decode chain: %w", err)
	}

	linked := false
	decodebin.Connect("pad-added", func(_ *gst.Element, pad *gst.Pad) {
		caps := pad.GetCurrentCaps()
		if caps == nil || !isAudioCaps(caps.String()) {
			return
		}
		sinkPad := converter.GetStaticPad("sink")
		if sinkPad == nil || sinkPad.IsLinked() {
			return
		}
		if ret := pad.Link(sinkPad); ret == gst.PadLinkOK {
			linked = true
		}
	})

	if err := pipeline.SetState(gst.StatePaused); err != nil {
		return nil, fmt.Errorf("audio: pipeline pause: %w", err)
	}
	pipeline.GetState(gst.ClockTimeNone)

	if !linked {
		pipeline.SetState(gst.StateNull)
		return nil, nil
	}

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, fmt.Errorf("audio: pipeline play: %w", err)
	}

	var samples []float32
	for {
		sample := appsink.PullSample()
		if sample == nil {
			break
		}
		buffer := sample.GetBuffer()
		if buffer == nil {
			continue
		}
		mapInfo := buffer.Map(gst.MapRead)
		samples = append(samples, bytesToFloat32LE(mapInfo.Bytes())...)
		buffer.Unmap()
	}
	pipeline.SetState(gst.StateNull)

	return &Segment{Samples: samples, SampleRate: targetSampleRate, Channels: 1}, nil
}

// GstWriter re-muxes a new audio track into an existing video file,
// leaving the video stream's encoded bytes untouched. It demuxes the
// target file's video stream with qtdemux (no decode) and mixes it
// with a freshly encoded audio stream into a temporary file, then
// renames it over the original atomically.
type GstWriter struct{}

// NewGstWriter returns a GstWriter.
func NewGstWriter() *GstWriter { return &GstWriter{} }

// WriteAudio replaces videoPath's audio track with audio.
func (w *GstWriter) WriteAudio(videoPath string, audio Segment) error {
	gst.Init(nil)

	tmpPath := videoPath + ".audio-tmp"

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("audio: create pipeline: %w", err)
	}

	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return fmt.Errorf("audio: create filesrc: %w", err)
	}
	filesrc.SetProperty("location", videoPath)

	demux, err := gst.NewElement("qtdemux")
	if err != nil {
		return fmt.Errorf("audio: create qtdemux: %w", err)
	}

	videoQueue, err := gst.NewElement("queue")
	if err != nil {
		return fmt.Errorf("audio: create video queue: %w", err)
	}

	appsrc, err := app.NewAppSrc()
	if err != nil {
		return fmt.Errorf("audio: create appsrc: %w", err)
	}
	appsrc.SetProperty("caps", gst.NewCapsFromString(
		fmt.Sprintf("audio/x-raw,format=F32LE,channels=%d,rate=%d", audio.Channels, audio.SampleRate)))
	appsrc.SetProperty("format", int(gst.FormatTime))
	appsrc.SetProperty("is-live", false)

	audioConverter, err := gst.NewElement("audioconvert")
	if err != nil {
		return fmt.Errorf("audio: create audioconvert: %w", err)
	}

	audioEncoder, err := gst.NewElement("voaacenc")
	if err != nil {
		return fmt.Errorf("audio: create voaacenc: %w", err)
	}

	mux, err := gst.NewElement("mp4mux")
	if err != nil {
		return fmt.Errorf("audio: create mp4mux: %w", err)
	}

	filesink, err := gst.NewElement("filesink")
	if err != nil {
		return fmt.Errorf("audio: create filesink: %w", err)
	}
	filesink.SetProperty("location", tmpPath)

	pipeline.AddMany(filesrc, demux, videoQueue, appsrc.Element, audioConverter, audioEncoder, mux, filesink)

	if err := filesrc.Link(demux); err != nil {
		return fmt.Errorf("audio: link filesrc->qtdemux: %w", err)
	}
	if err := gst.ElementLinkMany(appsrc.Element, audioConverter, audioEncoder); err != nil {
		return fmt.Errorf("audio: link audio encode chain: %w", err)
	}
	if err := gst.ElementLinkMany(mux, filesink); err != nil {
		return fmt.Errorf("audio: link mux->filesink: %w", err)
	}

	videoMuxPad := mux.GetRequestPad("video_%u")
	if videoMuxPad == nil {
		return fmt.Errorf("audio: mp4mux has no video pad template")
	}
	if ret := videoQueue.GetStaticPad("src").Link(videoMuxPad); ret != gst.PadLinkOK {
		return fmt.Errorf("audio: link video queue to mux: %v", ret)
	}

	audioMuxPad := mux.GetRequestPad("audio_%u")
	if audioMuxPad == nil {
		return fmt.Errorf("audio: mp4mux has no audio pad template")
	}
	if ret := audioEncoder.GetStaticPad("src").Link(audioMuxPad); ret != gst.PadLinkOK {
		return fmt.Errorf("audio: link audio encoder to mux: %v", ret)
	}

	demux.Connect("pad-added", func(_ *gst.Element, pad *gst.Pad) {
		caps := pad.GetCurrentCaps()
		if caps == nil || !isVideoCaps(caps.String()) {
			return
		}
		sinkPad := videoQueue.GetStaticPad("sink")
		if sinkPad == nil || sinkPad.IsLinked() {
			return
		}
		pad.Link(sinkPad)
	})

	eosWaiter := make(chan struct{})
	bus := pipeline.GetBus()
	bus.AddWatch(func(msg *gst.Message) bool {
		switch msg.Type() {
		case gst.MessageEOS:
			close(eosWaiter)
			return false
		case gst.MessageError:
			close(eosWaiter)
			return false
		}
		return true
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("audio: pipeline play: %w", err)
	}

	frameDur := gst.ClockTime(1_000_000_000 / audio.SampleRate)
	buffer := gst.NewBufferFromBytes(float32LEToBytes(audio.Samples))
	buffer.SetPresentationTimestamp(0)
	buffer.SetDuration(frameDur * gst.ClockTime(len(audio.Samples)/max(audio.Channels, 1)))
	if ret := appsrc.PushBuffer(buffer); ret != gst.FlowOK {
		return fmt.Errorf("audio: push buffer: %v", ret)
	}
	appsrc.EndStream()

	<-eosWaiter
	if err := pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("audio: pipeline stop: %w", err)
	}

	return os.Rename(tmpPath, videoPath)
}

func isAudioCaps(capsStr string) bool {
	return len(capsStr) >= 6 && capsStr[:6] == "audio/"
}

func isVideoCaps(capsStr string) bool {
	return len(capsStr) >= 6 && capsStr[:6] == "video/"
}

func bytesToFloat32LE(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

func float32LEToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], math.Float32bits(s))
	}
	return out
}
