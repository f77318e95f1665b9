package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"sharespace/internal/domain/listing"
	"sharespace/internal/repository"
)

type FavoriteUsecase interface {
	List(ctx context.Context, userID uuid.UUID) ([]listing.Listing, error)
	Add(ctx context.Context, userID, listingID uuid.UUID) error
	Remove(ctx context.Context, userID, listingID uuid.UUID) error
}

type Favorites struct {
	favorites repository.FavoriteRepository
	listings  repository.ListingRepository
}

func NewFavoriteUsecase(favorites repository.FavoriteRepository, listings repository.ListingRepository) *Favorites {
	return &Favorites{favorites: favorites, listings: listings}
}

// List returns saved listings in most-recently-saved order.
func (s *Favorites) List(ctx context.Context, userID uuid.UUID) ([]listing.Listing, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	ids, err := s.favorites.ListListingIDs(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	if len(ids) == 0 {
		return []listing.Listing{}, nil
	}

	found, err := s.listings.ListByIDs(ctx, ids)
	if err != nil {
		return nil, ErrInternal
	}

	byID := make(map[uuid.UUID]listing.Listing, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}

	out := make([]listing.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Favorites) Add(ctx context.Context, userID, listingID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}

	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	if err := s.favorites.Add(ctx, userID, listingID); err != nil {
		return ErrInternal
	}
	return nil
}

func (s *Favorites) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}

	removed, err := s.favorites.Remove(ctx, userID, listingID)
	if err != nil {
		return ErrInternal
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
