package listing

import (
	"time"

	"github.com/google/uuid"
)

type Listing struct {
	ID              uuid.UUID
	ListerID        uuid.UUID
	ListerUsername  string
	Title           string
	Address         *string
	Description     *string
	City            string
	Rent            int
	RoommatesNeeded int
	RoommatesFound  int
	PetsAllowed     bool
	SmokingAllowed  bool
	IsActive        bool
	Latitude        *float64
	Longitude       *float64
	ImageURLs       []string
	ViewCount       int
	CreatedAt       time.Time

	// IDs of current roommates living in the place, excluding the
	// lister. Together with the lister they form the set of people a
	// seeker is scored against.
	RoommateIDs []uuid.UUID
}

// Occupants returns the lister plus current roommates, deduplicated.
func (l Listing) Occupants() []uuid.UUID {
	seen := map[uuid.UUID]struct{}{l.ListerID: {}}
	out := []uuid.UUID{l.ListerID}
	for _, id := range l.RoommateIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Filter carries the already-typed feed filters. Parsing and rejecting
// malformed query values happens at the handler boundary.
type Filter struct {
	Search         string
	PetsAllowed    *bool
	SmokingAllowed *bool
	MinRent        *int
	MaxRent        *int
	City           string
}
