// Package imageio adapts single image files to the pipeline's
// videoio.Reader/Writer interfaces, decoding and encoding through
// github.com/disintegration/imaging rather than GStreamer, plus a
// fixed-size thumbnail writer for face preview crops.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/neutrinographics/faceguard/internal/core"
	"github.com/neutrinographics/faceguard/internal/videoio"
)

// Reader adapts a single image file to videoio.Reader, presenting it
// as a one-frame video with FPS 0 and TotalFrames 1 so the pipeline
// can process images and videos uniformly.
type Reader struct {
	frame  *core.Frame
	served bool
}

// NewReader returns an unopened Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Open implements videoio.Reader.
func (r *Reader) Open(path string) (videoio.Metadata, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return videoio.Metadata{}, fmt.Errorf("imageio: open image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := rgbFromImage(img, width, height)

	frame, err := core.NewFrame(data, width, height, 3, 0)
	if err != nil {
		return videoio.Metadata{}, fmt.Errorf("imageio: decoded image: %w", err)
	}

	r.frame = &frame
	r.served = false

	return videoio.Metadata{
		Width:       width,
		Height:      height,
		FPS:         0,
		TotalFrames: 1,
		SourcePath:  path,
	}, nil
}

// Next implements videoio.Reader, yielding the single decoded frame
// once and io.EOF thereafter.
func (r *Reader) Next() (core.Frame, error) {
	if r.frame == nil {
		return core.Frame{}, videoio.ErrNotOpen
	}
	if r.served {
		return core.Frame{}, io.EOF
	}
	r.served = true
	return *r.frame, nil
}

// Close implements videoio.Reader. Idempotent.
func (r *Reader) Close() error {
	r.frame = nil
	return nil
}

// Writer adapts a single image file to videoio.Writer. Only a single
// Write call is meaningful; a second returns an error.
type Writer struct {
	path    string
	written bool
}

// NewWriter returns an unopened Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Open implements videoio.Writer.
func (w *Writer) Open(path string, _ videoio.Metadata) error {
	w.path = path
	w.written = false
	return nil
}

// Write implements videoio.Writer.
func (w *Writer) Write(frame core.Frame) error {
	if w.path == "" {
		return videoio.ErrNotOpen
	}
	if w.written {
		return errors.New("imageio: Writer accepts only one frame")
	}

	img := imageFromRGB(frame.Data, frame.Width, frame.Height)
	if err := imaging.Save(img, w.path); err != nil {
		return fmt.Errorf("imageio: save image: %w", err)
	}
	w.written = true
	return nil
}

// Close implements videoio.Writer. Idempotent.
func (w *Writer) Close() error {
	return nil
}

// WriteSized saves frame to path, resizing it to a size x size square
// thumbnail first. Used for face preview crops, which are square unless
// clamping to the frame edge cut them short (see usecase.PreviewFaces);
// a non-square input is stretched to fill the square.
func WriteSized(path string, frame core.Frame, size int) error {
	img := imageFromRGB(frame.Data, frame.Width, frame.Height)
	thumb := resizeSquare(img, size)
	if err := imaging.Save(thumb, path); err != nil {
		return fmt.Errorf("imageio: save thumbnail: %w", err)
	}
	return nil
}

func rgbFromImage(img image.Image, width, height int) []byte {
	nrgba := imaging.Clone(img)
	data := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		rowOff := y * nrgba.Stride
		for x := 0; x < width; x++ {
			srcOff := rowOff + x*4
			dstOff := (y*width + x) * 3
			data[dstOff] = nrgba.Pix[srcOff]
			data[dstOff+1] = nrgba.Pix[srcOff+1]
			data[dstOff+2] = nrgba.Pix[srcOff+2]
		}
	}
	return data
}

func imageFromRGB(data []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			srcOff := (y*width + x) * 3
			dstOff := y*img.Stride + x*4
			img.Pix[dstOff] = data[srcOff]
			img.Pix[dstOff+1] = data[srcOff+1]
			img.Pix[dstOff+2] = data[srcOff+2]
			img.Pix[dstOff+3] = 255
		}
	}
	return img
}
