package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestListingCreate_DefaultsAndOwnExclusion(t *testing.T) {
	repo := newMockListingRepo()
	cache := newMockFeedCache()
	uc := NewListingUsecase(repo, cache)
	listerID := uuid.New()
	roommate := uuid.New()

	l, err := uc.Create(context.Background(), listerID, ListingInput{
		Title:       "  Bright Room  ",
		City:        "Mumbai",
		Rent:        20000,
		RoommateIDs: []uuid.UUID{listerID, roommate, uuid.Nil},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if l.Title != "Bright Room" {
		t.Fatalf("title must be trimmed, got %q", l.Title)
	}
	if l.RoommatesNeeded != 1 {
		t.Fatalf("roommates_needed must default to 1, got %d", l.RoommatesNeeded)
	}
	if !l.IsActive {
		t.Fatalf("new listings default to active")
	}

	stored := repo.byID[l.ID]
	if len(stored.RoommateIDs) != 1 || stored.RoommateIDs[0] != roommate {
		t.Fatalf("lister and nil ids must be dropped from roommates, got %v", stored.RoommateIDs)
	}
	if cache.invalidated != 1 {
		t.Fatalf("create must invalidate the feed cache")
	}
}

func TestListingCreate_Validation(t *testing.T) {
	uc := NewListingUsecase(newMockListingRepo(), nil)

	cases := []ListingInput{
		{Title: "", City: "Mumbai", Rent: 100},
		{Title: "Room", City: "", Rent: 100},
		{Title: "Room", City: "Mumbai", Rent: -1},
	}
	for i, in := range cases {
		if _, err := uc.Create(context.Background(), uuid.New(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestListingGetDetail_BumpsViewCount(t *testing.T) {
	lister := listerUser("lister1")
	l := activeListing(lister.ID, "Mumbai", time.Hour)
	l.ViewCount = 7
	repo := newMockListingRepo(l)
	uc := NewListingUsecase(repo, nil)

	got, err := uc.GetDetail(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ViewCount != 8 {
		t.Fatalf("detail view must report the bumped counter, got %d", got.ViewCount)
	}
	if len(repo.viewBumps) != 1 || repo.viewBumps[0] != l.ID {
		t.Fatalf("expected one view bump for %s", l.ID)
	}
}

func TestListingGetDetail_NotFound(t *testing.T) {
	uc := NewListingUsecase(newMockListingRepo(), nil)

	_, err := uc.GetDetail(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListingUpdate_OwnerOnly(t *testing.T) {
	lister := listerUser("lister1")
	l := activeListing(lister.ID, "Mumbai", time.Hour)
	uc := NewListingUsecase(newMockListingRepo(l), nil)

	_, err := uc.Update(context.Background(), l.ID, uuid.New(), ListingInput{Title: "New", City: "Mumbai", Rent: 100})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	updated, err := uc.Update(context.Background(), l.ID, lister.ID, ListingInput{Title: "New Title", City: "Delhi", Rent: 30000})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "New Title" || updated.City != "Delhi" || updated.Rent != 30000 {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestListingDelete(t *testing.T) {
	lister := listerUser("lister1")
	l := activeListing(lister.ID, "Mumbai", time.Hour)
	repo := newMockListingRepo(l)
	cache := newMockFeedCache()
	uc := NewListingUsecase(repo, cache)

	if err := uc.Delete(context.Background(), l.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-owner delete must look like not found, got %v", err)
	}
	if err := uc.Delete(context.Background(), l.ID, lister.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if cache.invalidated != 1 {
		t.Fatalf("delete must invalidate the feed cache")
	}
}

func TestListingMyListings_WithFavoriteCounts(t *testing.T) {
	lister := listerUser("lister1")
	mine := activeListing(lister.ID, "Mumbai", time.Hour)
	other := activeListing(uuid.New(), "Delhi", time.Hour)
	repo := newMockListingRepo(mine, other)
	repo.counts[mine.ID] = 3
	uc := NewListingUsecase(repo, nil)

	owned, err := uc.MyListings(context.Background(), lister.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(owned) != 1 {
		t.Fatalf("expected only own listings, got %d", len(owned))
	}
	if owned[0].FavoritesCount != 3 {
		t.Fatalf("expected favorites count 3, got %d", owned[0].FavoritesCount)
	}
}
