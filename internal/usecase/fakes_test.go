package usecase

import (
	"context"
	"io"

	"github.com/neutrinographics/faceguard/internal/core"
	"github.com/neutrinographics/faceguard/internal/videoio"
)

func testFrame(index uint64, width, height int, value byte) core.Frame {
	data := make([]byte, width*height*3)
	for i := range data {
		data[i] = value
	}
	f, err := core.NewFrame(data, width, height, 3, index)
	if err != nil {
		panic(err)
	}
	return f
}

type fakeReader struct {
	metadata videoio.Metadata
	frames   []core.Frame
	pos      int
	opened   bool
	closed   bool
	openErr  error
}

func (r *fakeReader) Open(string) (videoio.Metadata, error) {
	r.opened = true
	return r.metadata, r.openErr
}

func (r *fakeReader) Next() (core.Frame, error) {
	if r.pos >= len(r.frames) {
		return core.Frame{}, io.EOF
	}
	f := r.frames[r.pos]
	r.pos++
	return f, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type fakeWriter struct {
	written []core.Frame
	opened  bool
	closed  bool
	path    string
}

func (w *fakeWriter) Open(path string, _ videoio.Metadata) error {
	w.opened = true
	w.path = path
	return nil
}

func (w *fakeWriter) Write(frame core.Frame) error {
	w.written = append(w.written, frame)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeDetector struct {
	regionsByIndex map[uint64][]core.Region
}

func (d *fakeDetector) Detect(_ context.Context, frame core.Frame) ([]core.Region, error) {
	return d.regionsByIndex[frame.Index], nil
}

type fakeBlurrer struct {
	blurredIndices []uint64
}

func (b *fakeBlurrer) Blur(frame *core.Frame, regions []core.Region) error {
	b.blurredIndices = append(b.blurredIndices, frame.Index)
	return nil
}

func trackedRegion(trackID uint32, x, y, w, h int) core.Region {
	r := core.Region{X: x, Y: y, Width: w, Height: h}
	r.HasTrackID = true
	r.TrackID = trackID
	return r
}
