package detect

import "github.com/neutrinographics/faceguard/internal/core"

// FilterRegions applies track ID inclusion/exclusion sets to regions.
//
// blurIDs takes absolute precedence over excludeIDs:
//   - blurIDs non-nil: keep only regions whose track ID is in the set.
//     A region with no track ID is dropped.
//   - else excludeIDs non-nil: keep regions whose track ID is NOT in
//     the set. A region with no track ID is kept.
//   - else: keep everything.
func FilterRegions(regions []core.Region, blurIDs, excludeIDs map[uint32]struct{}) []core.Region {
	if blurIDs != nil {
		out := make([]core.Region, 0, len(regions))
		for _, r := range regions {
			if r.HasTrackID {
				if _, ok := blurIDs[r.TrackID]; ok {
					out = append(out, r)
				}
			}
		}
		return out
	}

	if excludeIDs != nil {
		out := make([]core.Region, 0, len(regions))
		for _, r := range regions {
			if !r.HasTrackID {
				out = append(out, r)
				continue
			}
			if _, ok := excludeIDs[r.TrackID]; !ok {
				out = append(out, r)
			}
		}
		return out
	}

	out := make([]core.Region, len(regions))
	copy(out, regions)
	return out
}
