package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"sharespace/internal/domain/listing"
	"sharespace/internal/repository"
)

type ListingInput struct {
	Title           string
	Address         *string
	Description     *string
	City            string
	Rent            int
	RoommatesNeeded int
	RoommatesFound  int
	PetsAllowed     bool
	SmokingAllowed  bool
	IsActive        *bool
	Latitude        *float64
	Longitude       *float64
	ImageURLs       []string
	RoommateIDs     []uuid.UUID
}

// MyListing pairs an owned listing with how many users saved it.
type MyListing struct {
	Listing        listing.Listing `json:"listing"`
	FavoritesCount int             `json:"favorites_count"`
}

type ListingUsecase interface {
	Create(ctx context.Context, listerID uuid.UUID, in ListingInput) (listing.Listing, error)
	GetDetail(ctx context.Context, id uuid.UUID) (listing.Listing, error)
	MyListings(ctx context.Context, listerID uuid.UUID) ([]MyListing, error)
	Update(ctx context.Context, id, listerID uuid.UUID, in ListingInput) (listing.Listing, error)
	Delete(ctx context.Context, id, listerID uuid.UUID) error
}

type Listings struct {
	listings repository.ListingRepository
	cache    FeedCache
}

func NewListingUsecase(listings repository.ListingRepository, cache FeedCache) *Listings {
	return &Listings{listings: listings, cache: cache}
}

func (s *Listings) Create(ctx context.Context, listerID uuid.UUID, in ListingInput) (listing.Listing, error) {
	if listerID == uuid.Nil {
		return listing.Listing{}, ErrUnauthorized
	}
	if err := validateListingInput(in); err != nil {
		return listing.Listing{}, err
	}

	l := listing.Listing{
		ID:              uuid.New(),
		ListerID:        listerID,
		Title:           strings.TrimSpace(in.Title),
		Address:         in.Address,
		Description:     in.Description,
		City:            strings.TrimSpace(in.City),
		Rent:            in.Rent,
		RoommatesNeeded: defaultIfZero(in.RoommatesNeeded, 1),
		RoommatesFound:  in.RoommatesFound,
		PetsAllowed:     in.PetsAllowed,
		SmokingAllowed:  in.SmokingAllowed,
		IsActive:        true,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		ImageURLs:       in.ImageURLs,
		RoommateIDs:     withoutID(in.RoommateIDs, listerID),
	}
	if in.IsActive != nil {
		l.IsActive = *in.IsActive
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return listing.Listing{}, ErrInternal
	}

	created, err := s.listings.GetByID(ctx, l.ID)
	if err != nil {
		return listing.Listing{}, ErrInternal
	}

	s.invalidateFeed(ctx)
	return created, nil
}

// GetDetail is the public detail view; every hit bumps the view
// counter. The bump is best effort and never fails the read.
func (s *Listings) GetDetail(ctx context.Context, id uuid.UUID) (listing.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return listing.Listing{}, ErrNotFound
		}
		return listing.Listing{}, ErrInternal
	}

	if err := s.listings.IncrementViewCount(ctx, id); err == nil {
		l.ViewCount++
	}
	return l, nil
}

func (s *Listings) MyListings(ctx context.Context, listerID uuid.UUID) ([]MyListing, error) {
	if listerID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	owned, err := s.listings.ListByLister(ctx, listerID)
	if err != nil {
		return nil, ErrInternal
	}

	ids := make([]uuid.UUID, len(owned))
	for i, l := range owned {
		ids[i] = l.ID
	}
	counts, err := s.listings.FavoritesCount(ctx, ids)
	if err != nil {
		counts = map[uuid.UUID]int{}
	}

	out := make([]MyListing, len(owned))
	for i, l := range owned {
		out[i] = MyListing{Listing: l, FavoritesCount: counts[l.ID]}
	}
	return out, nil
}

func (s *Listings) Update(ctx context.Context, id, listerID uuid.UUID, in ListingInput) (listing.Listing, error) {
	if listerID == uuid.Nil {
		return listing.Listing{}, ErrUnauthorized
	}
	if err := validateListingInput(in); err != nil {
		return listing.Listing{}, err
	}

	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return listing.Listing{}, ErrNotFound
		}
		return listing.Listing{}, ErrInternal
	}
	if current.ListerID != listerID {
		return listing.Listing{}, ErrForbidden
	}

	current.Title = strings.TrimSpace(in.Title)
	current.Address = in.Address
	current.Description = in.Description
	current.City = strings.TrimSpace(in.City)
	current.Rent = in.Rent
	current.RoommatesNeeded = defaultIfZero(in.RoommatesNeeded, 1)
	current.RoommatesFound = in.RoommatesFound
	current.PetsAllowed = in.PetsAllowed
	current.SmokingAllowed = in.SmokingAllowed
	current.Latitude = in.Latitude
	current.Longitude = in.Longitude
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}

	if err := s.listings.Update(ctx, current); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return listing.Listing{}, ErrNotFound
		}
		return listing.Listing{}, ErrInternal
	}

	if in.RoommateIDs != nil {
		if err := s.listings.SetRoommates(ctx, id, withoutID(in.RoommateIDs, listerID)); err != nil {
			return listing.Listing{}, ErrInternal
		}
	}

	updated, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return listing.Listing{}, ErrInternal
	}

	s.invalidateFeed(ctx)
	return updated, nil
}

func (s *Listings) Delete(ctx context.Context, id, listerID uuid.UUID) error {
	if listerID == uuid.Nil {
		return ErrUnauthorized
	}

	if err := s.listings.Delete(ctx, id, listerID); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	s.invalidateFeed(ctx)
	return nil
}

func (s *Listings) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.InvalidateListings(ctx)
}

func validateListingInput(in ListingInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.City) == "" {
		return ErrInvalidInput
	}
	if in.Rent < 0 || in.RoommatesNeeded < 0 || in.RoommatesFound < 0 {
		return ErrInvalidInput
	}
	return nil
}

func defaultIfZero(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func withoutID(ids []uuid.UUID, drop uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == drop || id == uuid.Nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
