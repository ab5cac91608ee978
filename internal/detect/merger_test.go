package detect

import (
	"testing"

	"github.com/neutrinographics/faceguard/internal/core"
)

const (
	mergerFW = 1000
	mergerFH = 800
)

func trackedMergeRegion(x, y, w, h int, trackID uint32, hasTrack bool) core.Region {
	return core.Region{X: x, Y: y, Width: w, Height: h, TrackID: trackID, HasTrackID: hasTrack}
}

func TestMergeEmptyInputs(t *testing.T) {
	m := NewMerger()
	got := m.Merge(nil, nil, mergerFW, mergerFH)
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestMergeCurrentOnlyNoLookahead(t *testing.T) {
	m := NewMerger()
	current := []core.Region{trackedMergeRegion(100, 100, 50, 50, 1, true)}
	got := m.Merge(current, nil, mergerFW, mergerFH)
	if len(got) != 1 || got[0].TrackID != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestMergeTrackIDDedupCurrentWins(t *testing.T) {
	m := NewMerger()
	current := []core.Region{trackedMergeRegion(100, 100, 50, 50, 1, true)}
	lookahead := [][]core.Region{{trackedMergeRegion(200, 200, 50, 50, 1, true)}}
	got := m.Merge(current, lookahead, mergerFW, mergerFH)

	var track1 []core.Region
	for _, r := range got {
		if r.HasTrackID && r.TrackID == 1 {
			track1 = append(track1, r)
		}
	}
	if len(track1) != 1 || track1[0].X != 100 {
		t.Errorf("expected current region to win, got %+v", track1)
	}
}

func TestMergeNewTrackFromLookaheadAdded(t *testing.T) {
	m := NewMerger()
	current := []core.Region{trackedMergeRegion(100, 100, 50, 50, 1, true)}
	lookahead := [][]core.Region{{trackedMergeRegion(500, 500, 50, 50, 2, true)}}
	got := m.Merge(current, lookahead, mergerFW, mergerFH)

	hasID := func(id uint32) bool {
		for _, r := range got {
			if r.HasTrackID && r.TrackID == id {
				return true
			}
		}
		return false
	}
	if !hasID(1) || !hasID(2) {
		t.Errorf("expected both tracks present, got %+v", got)
	}
}

func TestMergeIoUDedupRemovesOverlappingUntracked(t *testing.T) {
	m := NewMerger()
	current := []core.Region{trackedMergeRegion(100, 100, 100, 100, 0, false)}
	lookahead := [][]core.Region{{trackedMergeRegion(110, 110, 100, 100, 0, false)}}
	got := m.Merge(current, lookahead, mergerFW, mergerFH)
	if len(got) != 1 {
		t.Errorf("len = %d, want 1 (overlapping untracked dedup'd)", len(got))
	}
}

func TestEdgeInterpolationPushesTowardLeftEdge(t *testing.T) {
	r := trackedMergeRegion(25, 400, 50, 50, 5, true)
	interpolated := interpolate(r, 0, 3, mergerFW, mergerFH)
	if interpolated.X > r.X {
		t.Errorf("expected push left, got x=%d from x=%d", interpolated.X, r.X)
	}
}

func TestEdgeInterpolationNoPushCenterRegion(t *testing.T) {
	r := trackedMergeRegion(475, 375, 50, 50, 5, true)
	interpolated := interpolate(r, 0, 3, mergerFW, mergerFH)
	if interpolated.X != r.X || interpolated.Y != r.Y {
		t.Errorf("expected no change, got %+v from %+v", interpolated, r)
	}
}

func TestInterpolationClampsXToZero(t *testing.T) {
	r := trackedMergeRegion(0, 400, 50, 50, 5, true)
	interpolated := interpolate(r, 4, 5, mergerFW, mergerFH)
	if interpolated.X < 0 {
		t.Errorf("x = %d, want >= 0", interpolated.X)
	}
}

func TestInterpolationStrengthIncreasesWithDistance(t *testing.T) {
	r := trackedMergeRegion(25, 400, 50, 50, 5, true)
	near := interpolate(r, 0, 5, mergerFW, mergerFH)
	far := interpolate(r, 4, 5, mergerFW, mergerFH)
	if far.X > near.X {
		t.Errorf("expected farther lookahead to push more: near=%d far=%d", near.X, far.X)
	}
}
