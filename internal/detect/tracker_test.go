package detect

import "testing"

func box(x1, y1, x2, y2 float64) [4]float64 { return [4]float64{x1, y1, x2, y2} }

func TestNewDetectionsGetUniqueIDs(t *testing.T) {
	tr := NewByteTracker(30)
	tracks := tr.Update([]Detection{
		{BBox: box(0, 0, 50, 50), Score: 0.9},
		{BBox: box(200, 200, 250, 250), Score: 0.9},
	})
	if len(tracks) != 2 {
		t.Fatalf("len = %d, want 2", len(tracks))
	}
	if tracks[0].ID == tracks[1].ID {
		t.Errorf("expected distinct ids, got %d and %d", tracks[0].ID, tracks[1].ID)
	}
}

func TestConsistentIDAcrossFrames(t *testing.T) {
	tr := NewByteTracker(30)
	t1 := tr.Update([]Detection{{BBox: box(0, 0, 50, 50), Score: 0.9}})
	t2 := tr.Update([]Detection{{BBox: box(5, 5, 55, 55), Score: 0.9}})
	if t1[0].ID != t2[0].ID {
		t.Errorf("id changed across frames: %d -> %d", t1[0].ID, t2[0].ID)
	}
}

func TestLostTrackRemovedAfterMaxLost(t *testing.T) {
	tr := NewByteTracker(2)
	tr.Update([]Detection{{BBox: box(0, 0, 50, 50), Score: 0.9}})
	tr.Update(nil)
	tr.Update(nil)
	tracks := tr.Update(nil)
	if len(tracks) != 0 {
		t.Errorf("expected track dropped after exceeding maxLost, got %+v", tracks)
	}
}

func TestTrackSurvivesWithinMaxLost(t *testing.T) {
	tr := NewByteTracker(2)
	first := tr.Update([]Detection{{BBox: box(0, 0, 50, 50), Score: 0.9}})
	// A match resets framesLost; a track created in an Update has
	// already counted that Update as missed.
	tr.Update([]Detection{{BBox: box(0, 0, 50, 50), Score: 0.9}})
	tr.Update(nil)
	tracks := tr.Update(nil)
	if len(tracks) != 1 || tracks[0].ID != first[0].ID {
		t.Errorf("expected track to survive within maxLost, got %+v", tracks)
	}
}

func TestLowConfidenceMatchesExistingTrack(t *testing.T) {
	tr := NewByteTracker(30)
	first := tr.Update([]Detection{{BBox: box(0, 0, 50, 50), Score: 0.9}})
	tracks := tr.Update([]Detection{{BBox: box(2, 2, 52, 52), Score: 0.2}})
	if len(tracks) != 1 || tracks[0].ID != first[0].ID {
		t.Errorf("expected low-confidence detection to match existing track, got %+v", tracks)
	}
}

func TestLowConfidenceDoesNotStartNewTrack(t *testing.T) {
	tr := NewByteTracker(30)
	tracks := tr.Update([]Detection{{BBox: box(0, 0, 50, 50), Score: 0.2}})
	if len(tracks) != 0 {
		t.Errorf("expected no track started from low-confidence detection alone, got %+v", tracks)
	}
}

func TestMultipleTracksIndependentIDs(t *testing.T) {
	tr := NewByteTracker(30)
	first := tr.Update([]Detection{
		{BBox: box(0, 0, 50, 50), Score: 0.9},
		{BBox: box(500, 500, 550, 550), Score: 0.9},
	})
	second := tr.Update([]Detection{
		{BBox: box(5, 5, 55, 55), Score: 0.9},
		{BBox: box(505, 505, 555, 555), Score: 0.9},
	})

	find := func(tracks []Track, near [4]float64) *Track {
		for i := range tracks {
			if iouBBox(tracks[i].BBox, near) > 0.3 {
				return &tracks[i]
			}
		}
		return nil
	}

	a1, a2 := find(first, box(0, 0, 50, 50)), find(second, box(5, 5, 55, 55))
	b1, b2 := find(first, box(500, 500, 550, 550)), find(second, box(505, 505, 555, 555))
	if a1 == nil || a2 == nil || b1 == nil || b2 == nil {
		t.Fatalf("expected to find matches in both frames")
	}
	if a1.ID != a2.ID {
		t.Errorf("track a id changed: %d -> %d", a1.ID, a2.ID)
	}
	if b1.ID != b2.ID {
		t.Errorf("track b id changed: %d -> %d", b1.ID, b2.ID)
	}
	if a1.ID == b1.ID {
		t.Errorf("expected distinct ids for independent tracks")
	}
}

func TestIoUBBoxIdenticalBoxes(t *testing.T) {
	iou := iouBBox(box(0, 0, 10, 10), box(0, 0, 10, 10))
	if !approxEqual(iou, 1.0, 1e-9) {
		t.Errorf("iou = %v, want 1.0", iou)
	}
}

func TestIoUBBoxDisjointBoxes(t *testing.T) {
	iou := iouBBox(box(0, 0, 10, 10), box(100, 100, 110, 110))
	if iou != 0 {
		t.Errorf("iou = %v, want 0", iou)
	}
}

func TestIoUBBoxPartialOverlap(t *testing.T) {
	iou := iouBBox(box(0, 0, 10, 10), box(5, 5, 15, 15))
	// intersection = 5x5 = 25, union = 100+100-25 = 175
	want := 25.0 / 175.0
	if !approxEqual(iou, want, 1e-9) {
		t.Errorf("iou = %v, want %v", iou, want)
	}
}

func TestEmptyDetectionsNoTracks(t *testing.T) {
	tr := NewByteTracker(30)
	tracks := tr.Update(nil)
	if len(tracks) != 0 {
		t.Errorf("expected no tracks, got %+v", tracks)
	}
}
