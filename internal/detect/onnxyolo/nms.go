package onnxyolo

import "sort"

// rawDetection is a raw YOLO output row after letterbox-inverse
// coordinate mapping, before tracking.
type rawDetection struct {
	x1, y1, x2, y2 float64
	confidence     float64
	hasKeypoints   bool
	keypoints      [5][2]float64
}

// parseDetections decodes the model's raw feature rows into
// rawDetections, discarding anything below confidence and mapping
// coordinates from letterbox space back to the original frame.
func parseDetections(data []float32, numDets, numFeats int, transposed bool, confidence, scale float64, padX, padY int) []rawDetection {
	var out []rawDetection

	row := make([]float64, numFeats)
	for i := 0; i < numDets; i++ {
		if transposed {
			for f := 0; f < numFeats; f++ {
				row[f] = float64(data[f*numDets+i])
			}
		} else {
			for f := 0; f < numFeats; f++ {
				row[f] = float64(data[i*numFeats+f])
			}
		}

		if len(row) < 5 {
			continue
		}
		conf := row[4]
		if conf < confidence {
			continue
		}

		cx, cy, w, h := row[0], row[1], row[2], row[3]
		x1 := ((cx - w/2.0) - float64(padX)) / scale
		y1 := ((cy - h/2.0) - float64(padY)) / scale
		x2 := ((cx + w/2.0) - float64(padX)) / scale
		y2 := ((cy + h/2.0) - float64(padY)) / scale

		det := rawDetection{x1: x1, y1: y1, x2: x2, y2: y2, confidence: conf}

		if len(row) >= 5+numKeypointValues {
			for k := 0; k < 5; k++ {
				kconf := row[5+k*3+2]
				if kconf >= keypointConfThresh {
					kx := row[5+k*3]
					ky := row[5+k*3+1]
					det.keypoints[k] = [2]float64{(kx - float64(padX)) / scale, (ky - float64(padY)) / scale}
				}
			}
			det.hasKeypoints = true
		}

		out = append(out, det)
	}

	return out
}

// nonMaxSuppress greedily keeps the highest-confidence detection in
// each overlapping cluster.
func nonMaxSuppress(dets []rawDetection, iouThresh float64) []rawDetection {
	sort.Slice(dets, func(i, j int) bool { return dets[i].confidence > dets[j].confidence })

	suppressed := make([]bool, len(dets))
	var keep []rawDetection
	for i := range dets {
		if suppressed[i] {
			continue
		}
		keep = append(keep, dets[i])
		for j := i + 1; j < len(dets); j++ {
			if suppressed[j] {
				continue
			}
			iou := bboxIoU([4]float64{dets[i].x1, dets[i].y1, dets[i].x2, dets[i].y2}, [4]float64{dets[j].x1, dets[j].y1, dets[j].x2, dets[j].y2})
			if iou > iouThresh {
				suppressed[j] = true
			}
		}
	}
	return keep
}

func bboxIoU(a, b [4]float64) float64 {
	x1 := max(a[0], b[0])
	y1 := max(a[1], b[1])
	x2 := min(a[2], b[2])
	y2 := min(a[3], b[3])

	interW := max(x2-x1, 0)
	interH := max(y2-y1, 0)
	inter := interW * interH
	if inter == 0 {
		return 0
	}

	areaA := (a[2] - a[0]) * (a[3] - a[1])
	areaB := (b[2] - b[0]) * (b[3] - b[1])
	return inter / (areaA + areaB - inter)
}
