package detection

import "sort"

// Deduplicate collapses detections that describe the same airing. After
// sorting by start, every detection starting less than window seconds after
// the first member of the current cluster joins it. Each cluster keeps its
// earliest member, preferring higher confidence on equal starts. The input
// slice is not modified, and applying Deduplicate to its own output returns
// the same detections.
func Deduplicate(detections []Detection, window float64) []Detection {
	if len(detections) == 0 {
		return nil
	}
	sorted := append([]Detection(nil), detections...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartSeconds < sorted[j].StartSeconds
	})

	kept := make([]Detection, 0, len(sorted))
	for i := 0; i < len(sorted); {
		head := sorted[i]
		best := head
		j := i + 1
		for ; j < len(sorted) && sorted[j].StartSeconds-head.StartSeconds < window; j++ {
			candidate := sorted[j]
			if candidate.StartSeconds < best.StartSeconds ||
				(candidate.StartSeconds == best.StartSeconds && candidate.Confidence > best.Confidence) {
				best = candidate
			}
		}
		kept = append(kept, best)
		i = j
	}
	return kept
}
