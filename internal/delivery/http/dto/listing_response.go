package dto

import (
	"time"

	"github.com/google/uuid"

	"sharespace/internal/domain/listing"
	"sharespace/internal/usecase"
)

type ListingResponse struct {
	ID              uuid.UUID   `json:"id"`
	ListerID        uuid.UUID   `json:"lister_id"`
	ListerUsername  string      `json:"lister_username"`
	Title           string      `json:"title"`
	Address         *string     `json:"address"`
	Description     *string     `json:"description"`
	City            string      `json:"city"`
	Rent            int         `json:"rent"`
	RoommatesNeeded int         `json:"roommates_needed"`
	RoommatesFound  int         `json:"roommates_found"`
	PetsAllowed     bool        `json:"pets_allowed"`
	SmokingAllowed  bool        `json:"smoking_allowed"`
	IsActive        bool        `json:"is_active"`
	Latitude        *float64    `json:"latitude"`
	Longitude       *float64    `json:"longitude"`
	ImageURLs       []string    `json:"image_urls"`
	RoommateIDs     []uuid.UUID `json:"current_roommates"`
	ViewCount       int         `json:"view_count"`
	CreatedAt       time.Time   `json:"created_at"`

	// Present only when personalization was applied to the request.
	CompatibilityScore *int `json:"compatibility_score,omitempty"`
}

func NewListingResponse(l listing.Listing) ListingResponse {
	imageURLs := l.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	roommateIDs := l.RoommateIDs
	if roommateIDs == nil {
		roommateIDs = []uuid.UUID{}
	}

	return ListingResponse{
		ID:              l.ID,
		ListerID:        l.ListerID,
		ListerUsername:  l.ListerUsername,
		Title:           l.Title,
		Address:         l.Address,
		Description:     l.Description,
		City:            l.City,
		Rent:            l.Rent,
		RoommatesNeeded: l.RoommatesNeeded,
		RoommatesFound:  l.RoommatesFound,
		PetsAllowed:     l.PetsAllowed,
		SmokingAllowed:  l.SmokingAllowed,
		IsActive:        l.IsActive,
		Latitude:        l.Latitude,
		Longitude:       l.Longitude,
		ImageURLs:       imageURLs,
		RoommateIDs:     roommateIDs,
		ViewCount:       l.ViewCount,
		CreatedAt:       l.CreatedAt,
	}
}

func NewFeedResponse(items []usecase.FeedItem) []ListingResponse {
	out := make([]ListingResponse, len(items))
	for i, it := range items {
		resp := NewListingResponse(it.Listing)
		resp.CompatibilityScore = it.Score
		out[i] = resp
	}
	return out
}

type MyListingResponse struct {
	ListingResponse
	FavoritesCount int `json:"favorites_count"`
}

func NewMyListingsResponse(items []usecase.MyListing) []MyListingResponse {
	out := make([]MyListingResponse, len(items))
	for i, it := range items {
		out[i] = MyListingResponse{
			ListingResponse: NewListingResponse(it.Listing),
			FavoritesCount:  it.FavoritesCount,
		}
	}
	return out
}

func NewListingsResponse(items []listing.Listing) []ListingResponse {
	out := make([]ListingResponse, len(items))
	for i, l := range items {
		out[i] = NewListingResponse(l)
	}
	return out
}
