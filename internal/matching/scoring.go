package matching

import (
	"math"

	"github.com/google/uuid"
)

const (
	// Visible score ceiling. 99, not 100: a perfect match is never shown.
	MaxScore = 99
	MinScore = 0
)

// Predictor is the loaded pipeline artifact: a batch of candidate rows
// in, one raw compatibility value per row out. Implementations must be
// safe for concurrent use; the handle is never mutated after load.
type Predictor interface {
	PredictBatch(rows []Row) ([]float64, error)
}

// Result is the outcome of scoring one feed request. Scored=false means
// personalization was unavailable (no artifact, or caller not eligible);
// callers then omit the score field entirely rather than reporting an
// error.
type Result struct {
	Scored bool
	Scores map[uuid.UUID]int
}

func Unscored() Result {
	return Result{}
}

// ScoreListings runs one batched prediction over all assembled rows and
// aggregates raw predictions into a bounded integer score per listing.
//
// Per listing the raw predictions of its contributing rows are
// averaged; a listing with no rows scores 0. A prediction failure
// degrades the whole batch to 0 for every listing instead of
// propagating: scoring must never surface an error to the end caller.
func ScoreListings(p Predictor, listingIDs []uuid.UUID, rows []CandidateRow) Result {
	if p == nil {
		return Unscored()
	}

	scores := make(map[uuid.UUID]int, len(listingIDs))
	for _, id := range listingIDs {
		scores[id] = 0
	}

	if len(rows) == 0 {
		return Result{Scored: true, Scores: scores}
	}

	batch := make([]Row, len(rows))
	for i, r := range rows {
		batch[i] = r.Features
	}

	preds, err := p.PredictBatch(batch)
	if err != nil || len(preds) != len(rows) {
		return Result{Scored: true, Scores: scores}
	}

	sums := make(map[uuid.UUID]float64, len(listingIDs))
	counts := make(map[uuid.UUID]int, len(listingIDs))
	for i, r := range rows {
		sums[r.ListingID] += preds[i]
		counts[r.ListingID]++
	}

	for id, n := range counts {
		scores[id] = clampScore(sums[id] / float64(n))
	}

	return Result{Scored: true, Scores: scores}
}

func clampScore(raw float64) int {
	if math.IsNaN(raw) {
		return MinScore
	}
	s := int(math.Round(raw))
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}
