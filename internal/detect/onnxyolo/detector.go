// Package onnxyolo implements a Detector backed by a YOLO pose/face
// model running under ONNX Runtime: letterbox preprocessing, NMS
// post-processing, ByteTrack tracking, and region building through
// detect.RegionBuilder.
package onnxyolo

import (
	"context"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/neutrinographics/faceguard/internal/core"
	"github.com/neutrinographics/faceguard/internal/detect"
)

// DefaultInputSize is the fallback YOLO input resolution New uses when
// it is given a non-positive inputSize. The model's own input
// dimensions are not inspected.
const DefaultInputSize = 640

// DefaultConfidence is the default detection confidence threshold.
const DefaultConfidence = 0.25

// nmsIoUThresh is the IoU threshold above which overlapping detections
// are suppressed.
const nmsIoUThresh = 0.45

// numKeypointValues is 5 landmarks x (x, y, confidence).
const numKeypointValues = 15

// keypointConfThresh is the minimum per-keypoint confidence to treat a
// landmark as visible.
const keypointConfThresh = 0.5

// Detector runs YOLO pose inference through ONNX Runtime.
type Detector struct {
	session       *ort.DynamicAdvancedSession
	regionBuilder *detect.RegionBuilder
	tracker       *detect.ByteTracker
	confidence    float64
	inputSize     int
	inputName     string
	outputName    string
}

// New loads a YOLO ONNX model and prepares it for inference. inputSize
// should match the model's expected square input resolution; pass
// DefaultInputSize when unknown.
func New(modelPath string, inputSize int, regionBuilder *detect.RegionBuilder, tracker *detect.ByteTracker, confidence float64) (*Detector, error) {
	inputNames := []string{"images"}
	outputNames := []string{"output0"}

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("onnxyolo: load model: %w", err)
	}

	if inputSize <= 0 {
		inputSize = DefaultInputSize
	}

	return &Detector{
		session:       session,
		regionBuilder: regionBuilder,
		tracker:       tracker,
		confidence:    confidence,
		inputSize:     inputSize,
		inputName:     inputNames[0],
		outputName:    outputNames[0],
	}, nil
}

// Close releases the underlying ONNX Runtime session.
func (d *Detector) Close() error {
	return d.session.Destroy()
}

// Detect implements detect.Detector.
func (d *Detector) Detect(ctx context.Context, frame core.Frame) ([]core.Region, error) {
	fw, fh := frame.Width, frame.Height

	tensorData, scale, padX, padY := letterbox(frame, d.inputSize)

	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, int64(d.inputSize), int64(d.inputSize)), tensorData)
	if err != nil {
		return nil, fmt.Errorf("onnxyolo: build input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := d.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("onnxyolo: run inference: %w", err)
	}
	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("onnxyolo: unexpected output tensor type")
	}
	defer outputTensor.Destroy()

	shape := outputTensor.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("onnxyolo: unexpected output shape %v", shape)
	}

	numDets, numFeats := int(shape[1]), int(shape[2])
	transposed := numDets < numFeats
	if transposed {
		numDets, numFeats = numFeats, numDets
	}

	data := outputTensor.GetData()

	raw := parseDetections(data, numDets, numFeats, transposed, d.confidence, scale, padX, padY)
	filtered := nonMaxSuppress(raw, nmsIoUThresh)

	trackerDets := make([]detect.Detection, len(filtered))
	for i, r := range filtered {
		trackerDets[i] = detect.Detection{BBox: [4]float64{r.x1, r.y1, r.x2, r.y2}, Score: r.confidence}
	}
	tracks := d.tracker.Update(trackerDets)

	regions := make([]core.Region, 0, len(tracks))
	for _, track := range tracks {
		best := bestMatch(filtered, track.BBox)

		var landmarks *core.FaceLandmarks
		if best != nil && best.hasKeypoints {
			lm := core.FaceLandmarks{Points: best.keypoints}
			landmarks = &lm
		}

		bbox := detect.BBox{X1: track.BBox[0], Y1: track.BBox[1], X2: track.BBox[2], Y2: track.BBox[3]}
		region := d.regionBuilder.Build(bbox, fw, fh, landmarks, track.ID, true)
		regions = append(regions, region)
	}

	return regions, nil
}

func bestMatch(dets []rawDetection, bbox [4]float64) *rawDetection {
	var best *rawDetection
	bestIoU := -1.0
	for i := range dets {
		iou := bboxIoU([4]float64{dets[i].x1, dets[i].y1, dets[i].x2, dets[i].y2}, bbox)
		if iou > bestIoU {
			bestIoU = iou
			best = &dets[i]
		}
	}
	return best
}
