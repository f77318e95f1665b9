package matching

import (
	"github.com/google/uuid"

	"sharespace/internal/domain/user"
)

// Member is one scorable occupant of a candidate listing with their
// profile attributes already materialized by the storage layer.
type Member struct {
	ID      uuid.UUID
	Profile user.Profile
}

// Candidate is a listing presented for scoring: the lister plus any
// current roommates.
type Candidate struct {
	ListingID uuid.UUID
	Members   []Member
}

// AssembleRows emits one candidate row per (seeker, member) pair. The
// seeker is excluded from its own candidate pool, so a listing whose
// only member is the seeker contributes zero rows and later aggregates
// to score 0. An empty candidate set yields an empty row set.
func AssembleRows(seekerID uuid.UUID, seeker user.Profile, candidates []Candidate) []CandidateRow {
	rows := make([]CandidateRow, 0, len(candidates))
	left := seekerSide(seeker)

	for _, cand := range candidates {
		for _, m := range cand.Members {
			if m.ID == seekerID {
				continue
			}

			features := make(Row, len(left)+11)
			for col, v := range left {
				features[col] = v
			}
			for col, v := range listerSide(m.Profile) {
				features[col] = v
			}

			rows = append(rows, CandidateRow{ListingID: cand.ListingID, Features: features})
		}
	}

	return rows
}
