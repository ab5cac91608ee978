package detect

import "sort"

// HighThresh is the detection score above which a box participates in
// stage-1 matching against every live track.
const HighThresh = 0.5

// MatchThresh is the minimum IoU for a detection-track pair to be
// considered a match in either stage.
const MatchThresh = 0.3

// Detection is one raw detector output: an axis-aligned box plus a
// confidence score.
type Detection struct {
	BBox  [4]float64 // x1, y1, x2, y2
	Score float64
}

// Track is a tracked face identity surfaced to callers.
type Track struct {
	ID   uint32
	BBox [4]float64
}

type trackState struct {
	id         uint32
	bbox       [4]float64
	framesLost int
}

// ByteTracker assigns stable IDs to detections across frames using a
// two-stage greedy IoU match: high-confidence boxes first against all
// live tracks, then low-confidence boxes against whatever tracks stage
// one left unmatched. A track is dropped once its missed-update count
// exceeds maxLost, so a momentary missed detection doesn't churn IDs.
// A matched track survives maxLost further empty updates; a track
// created in an Update counts that Update as missed, so it survives
// maxLost-1.
type ByteTracker struct {
	maxLost int
	nextID  uint32
	tracks  []trackState
}

// NewByteTracker builds a tracker. IDs start at 1.
func NewByteTracker(maxLost int) *ByteTracker {
	return &ByteTracker{maxLost: maxLost, nextID: 1}
}

// Update advances the tracker by one frame's detections and returns the
// surviving tracks.
func (t *ByteTracker) Update(detections []Detection) []Track {
	var high, low []Detection
	for _, d := range detections {
		if d.Score >= HighThresh {
			high = append(high, d)
		} else {
			low = append(low, d)
		}
	}

	matchedTracks := make(map[int]bool, len(t.tracks))
	matchedHigh := make(map[int]bool, len(high))

	pairs1 := candidatePairs(t.tracks, high, nil, nil)
	for _, p := range pairs1 {
		if matchedTracks[p.trackIdx] || matchedHigh[p.detIdx] {
			continue
		}
		matchedTracks[p.trackIdx] = true
		matchedHigh[p.detIdx] = true
		t.tracks[p.trackIdx].bbox = high[p.detIdx].BBox
		t.tracks[p.trackIdx].framesLost = 0
	}

	var remainingTrackIdx []int
	for i := range t.tracks {
		if !matchedTracks[i] {
			remainingTrackIdx = append(remainingTrackIdx, i)
		}
	}

	matchedLow := make(map[int]bool, len(low))
	pairs2 := candidatePairs(t.tracks, low, remainingTrackIdx, nil)
	for _, p := range pairs2 {
		if matchedTracks[p.trackIdx] || matchedLow[p.detIdx] {
			continue
		}
		matchedTracks[p.trackIdx] = true
		matchedLow[p.detIdx] = true
		t.tracks[p.trackIdx].bbox = low[p.detIdx].BBox
		t.tracks[p.trackIdx].framesLost = 0
	}

	for i, d := range high {
		if matchedHigh[i] {
			continue
		}
		t.tracks = append(t.tracks, trackState{id: t.nextID, bbox: d.BBox})
		t.nextID++
	}

	// Tracks created above this call aren't in matchedTracks, so they
	// take their first framesLost increment immediately rather than on
	// their next unmatched Update.
	for i := range t.tracks {
		if !matchedTracks[i] {
			t.tracks[i].framesLost++
		}
	}

	survivors := t.tracks[:0]
	for _, s := range t.tracks {
		if s.framesLost <= t.maxLost {
			survivors = append(survivors, s)
		}
	}
	t.tracks = survivors

	out := make([]Track, len(t.tracks))
	for i, s := range t.tracks {
		out[i] = Track{ID: s.id, BBox: s.bbox}
	}
	return out
}

type matchPair struct {
	trackIdx int
	detIdx   int
	iou      float64
}

// candidatePairs builds every (track, detection) pair at or above
// MatchThresh and returns them sorted by descending IoU, ready for
// greedy assignment. trackSubset restricts which track indices
// participate (nil means all).
func candidatePairs(tracks []trackState, dets []Detection, trackSubset []int, _ []int) []matchPair {
	indices := trackSubset
	if indices == nil {
		indices = make([]int, len(tracks))
		for i := range tracks {
			indices[i] = i
		}
	}

	var pairs []matchPair
	for _, ti := range indices {
		for di, d := range dets {
			iou := iouBBox(tracks[ti].bbox, d.BBox)
			if iou >= MatchThresh {
				pairs = append(pairs, matchPair{trackIdx: ti, detIdx: di, iou: iou})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].iou > pairs[j].iou })
	return pairs
}

func iouBBox(a, b [4]float64) float64 {
	x1 := max(a[0], b[0])
	y1 := max(a[1], b[1])
	x2 := min(a[2], b[2])
	y2 := min(a[3], b[3])

	if x2 <= x1 || y2 <= y1 {
		return 0
	}

	intersection := (x2 - x1) * (y2 - y1)
	areaA := (a[2] - a[0]) * (a[3] - a[1])
	areaB := (b[2] - b[0]) * (b[3] - b[1])
	union := areaA + areaB - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}
