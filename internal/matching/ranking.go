package matching

import (
	"sort"

	"github.com/google/uuid"
)

// TopMatchThreshold is the minimum score a listing must reach to
// survive the top_matches view.
const TopMatchThreshold = 70

// RankByScore reorders listing IDs by compatibility score, descending.
// The input order (creation time, newest first) is the tiebreak: the
// sort is stable, so equal scores keep their prior relative order.
// IDs missing from the score map rank as 0.
func RankByScore(ids []uuid.UUID, scores map[uuid.UUID]int) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i]] > scores[out[j]]
	})
	return out
}

// FilterTopMatches drops listings scoring below the threshold,
// preserving order.
func FilterTopMatches(ids []uuid.UUID, scores map[uuid.UUID]int) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if scores[id] >= TopMatchThreshold {
			out = append(out, id)
		}
	}
	return out
}
