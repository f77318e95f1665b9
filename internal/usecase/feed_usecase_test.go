package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"sharespace/internal/domain/listing"
	"sharespace/internal/domain/user"
)

func seekerUser(city string) user.User {
	return user.User{
		ID:       uuid.New(),
		Username: "seeker",
		Profile: user.Profile{
			Role:        user.RoleSeeker,
			City:        strPtr(city),
			Budget:      intPtr(25000),
			Cleanliness: intPtr(4),
		},
	}
}

func listerUser(username string) user.User {
	return user.User{
		ID:       uuid.New(),
		Username: username,
		Profile: user.Profile{
			Role:        user.RoleLister,
			Cleanliness: intPtr(3),
		},
	}
}

func activeListing(listerID uuid.UUID, city string, age time.Duration) listing.Listing {
	return listing.Listing{
		ID:        uuid.New(),
		ListerID:  listerID,
		Title:     "Room in " + city,
		City:      city,
		Rent:      20000,
		IsActive:  true,
		CreatedAt: time.Now().Add(-age),
	}
}

func TestFeedList_AnonymousUnscored(t *testing.T) {
	lister := listerUser("lister1")
	l1 := activeListing(lister.ID, "Mumbai", time.Hour)
	l2 := activeListing(lister.ID, "Delhi", 2*time.Hour)

	uc := NewFeedUsecase(newMockListingRepo(l1, l2), newMockUserRepo(lister), &mockPredictor{}, nil)

	items, err := uc.List(context.Background(), FeedParams{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Creation order is preserved and no score fields appear.
	if items[0].Listing.ID != l1.ID || items[1].Listing.ID != l2.ID {
		t.Fatalf("anonymous feed must keep base order")
	}
	for _, it := range items {
		if it.Score != nil {
			t.Fatalf("anonymous feed must not carry scores")
		}
	}
}

func TestFeedList_AnonymousUsesCache(t *testing.T) {
	lister := listerUser("lister1")
	repo := newMockListingRepo(activeListing(lister.ID, "Mumbai", time.Hour))
	cache := newMockFeedCache()
	uc := NewFeedUsecase(repo, newMockUserRepo(lister), nil, cache)

	if _, err := uc.List(context.Background(), FeedParams{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache fill, sets=%d", cache.sets)
	}

	repo.listActiveErr = errTest
	items, err := uc.List(context.Background(), FeedParams{})
	if err != nil {
		t.Fatalf("second call should hit cache: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected cached item, got %d", len(items))
	}
}

func TestFeedList_SearchMatchesSingleListing(t *testing.T) {
	lister := listerUser("lister1")
	match := activeListing(lister.ID, "Mumbai", time.Hour)
	match.Title = "Bright Room near University"
	other := activeListing(lister.ID, "Mumbai", 2*time.Hour)
	third := activeListing(lister.ID, "Delhi", 3*time.Hour)

	uc := NewFeedUsecase(newMockListingRepo(match, other, third), newMockUserRepo(lister), nil, nil)

	items, err := uc.List(context.Background(), FeedParams{
		Filter: listing.Filter{Search: "bright"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 1 || items[0].Listing.ID != match.ID {
		t.Fatalf("search must return exactly the matching listing, got %d items", len(items))
	}
}

func TestFeedList_FiltersCombineWithAnd(t *testing.T) {
	lister := listerUser("lister1")

	petsCheap := activeListing(lister.ID, "Mumbai", time.Hour)
	petsCheap.PetsAllowed = true
	petsCheap.Rent = 18000

	petsExpensive := activeListing(lister.ID, "Mumbai", 2*time.Hour)
	petsExpensive.PetsAllowed = true
	petsExpensive.Rent = 40000

	noPetsCheap := activeListing(lister.ID, "Mumbai", 3*time.Hour)
	noPetsCheap.Rent = 18000

	uc := NewFeedUsecase(
		newMockListingRepo(petsCheap, petsExpensive, noPetsCheap),
		newMockUserRepo(lister),
		nil,
		nil,
	)

	pets := true
	items, err := uc.List(context.Background(), FeedParams{
		Filter: listing.Filter{PetsAllowed: &pets, MaxRent: intPtr(20000)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 1 || items[0].Listing.ID != petsCheap.ID {
		t.Fatalf("filters must combine with AND, got %d items", len(items))
	}
}

func TestFeedList_AnonymousShowModesShareCacheEntry(t *testing.T) {
	lister := listerUser("lister1")
	repo := newMockListingRepo(activeListing(lister.ID, "Mumbai", time.Hour))
	cache := newMockFeedCache()
	uc := NewFeedUsecase(repo, newMockUserRepo(lister), nil, cache)

	if _, err := uc.List(context.Background(), FeedParams{Show: ShowAll}); err != nil {
		t.Fatalf("show=all: %v", err)
	}

	// Without personalization my_city and top_matches degrade to the
	// plain feed, so they must reuse the show=all cache entry.
	repo.listActiveErr = errTest
	for _, show := range []ShowMode{ShowMyCity, ShowTopMatches} {
		items, err := uc.List(context.Background(), FeedParams{Show: show})
		if err != nil {
			t.Fatalf("show=%s should hit cache: %v", show, err)
		}
		if len(items) != 1 {
			t.Fatalf("show=%s: expected cached item, got %d", show, len(items))
		}
	}
	if len(cache.data) != 1 {
		t.Fatalf("expected one cache entry across show modes, got %d", len(cache.data))
	}
}

func TestFeedList_ListerViewerNotPersonalized(t *testing.T) {
	lister := listerUser("lister1")
	l := activeListing(lister.ID, "Mumbai", time.Hour)
	p := &mockPredictor{}
	uc := NewFeedUsecase(newMockListingRepo(l), newMockUserRepo(lister), p, nil)

	items, err := uc.List(context.Background(), FeedParams{
		Viewer: &Viewer{ID: lister.ID, Role: user.RoleLister},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if items[0].Score != nil {
		t.Fatalf("lister feed must not be personalized")
	}
	if p.calls != 0 {
		t.Fatalf("predictor must not run for listers")
	}
}

func TestFeedList_SeekerRankedByScore(t *testing.T) {
	seeker := seekerUser("Mumbai")
	listerA := listerUser("listerA")
	listerB := listerUser("listerB")

	newer := activeListing(listerA.ID, "Mumbai", time.Hour)
	older := activeListing(listerB.ID, "Mumbai", 2*time.Hour)

	// One row per listing (lister only); older one scores higher.
	p := &mockPredictor{preds: []float64{40, 88.6}}
	uc := NewFeedUsecase(
		newMockListingRepo(newer, older),
		newMockUserRepo(seeker, listerA, listerB),
		p,
		nil,
	)

	items, err := uc.List(context.Background(), FeedParams{
		Viewer: &Viewer{ID: seeker.ID, Role: user.RoleSeeker},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Listing.ID != older.ID {
		t.Fatalf("higher-scored listing must rank first")
	}
	if items[0].Score == nil || *items[0].Score != 89 {
		t.Fatalf("expected rounded score 89, got %v", items[0].Score)
	}
	if items[1].Score == nil || *items[1].Score != 40 {
		t.Fatalf("expected score 40, got %v", items[1].Score)
	}
}

func TestFeedList_ScoreTiesKeepBaseOrder(t *testing.T) {
	seeker := seekerUser("Mumbai")
	listerA := listerUser("listerA")
	listerB := listerUser("listerB")

	first := activeListing(listerA.ID, "Mumbai", time.Hour)
	second := activeListing(listerB.ID, "Mumbai", 2*time.Hour)

	p := &mockPredictor{preds: []float64{55, 55}}
	uc := NewFeedUsecase(
		newMockListingRepo(first, second),
		newMockUserRepo(seeker, listerA, listerB),
		p,
		nil,
	)

	items, err := uc.List(context.Background(), FeedParams{
		Viewer: &Viewer{ID: seeker.ID, Role: user.RoleSeeker},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if items[0].Listing.ID != first.ID || items[1].Listing.ID != second.ID {
		t.Fatalf("equal scores must keep creation-time order")
	}
}

func TestFeedList_NoPredictorOmitsScores(t *testing.T) {
	seeker := seekerUser("Mumbai")
	lister := listerUser("lister1")
	l := activeListing(lister.ID, "Mumbai", time.Hour)

	uc := NewFeedUsecase(newMockListingRepo(l), newMockUserRepo(seeker, lister), nil, nil)

	items, err := uc.List(context.Background(), FeedParams{
		Viewer: &Viewer{ID: seeker.ID, Role: user.RoleSeeker},
	})
	if err != nil {
		t.Fatalf("personalization failure must not fail the feed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Score != nil {
		t.Fatalf("missing artifact must omit the score field entirely")
	}
}

func TestFeedList_MyCityFiltersBySeekerCity(t *testing.T) {
	seeker := seekerUser("Mumbai")
	lister := listerUser("lister1")
	mumbai := activeListing(lister.ID, "Mumbai", time.Hour)
	delhi := activeListing(lister.ID, "Delhi", time.Hour)

	uc := NewFeedUsecase(
		newMockListingRepo(mumbai, delhi),
		newMockUserRepo(seeker, lister),
		&mockPredictor{preds: []float64{80}},
		nil,
	)

	items, err := uc.List(context.Background(), FeedParams{
		Viewer: &Viewer{ID: seeker.ID, Role: user.RoleSeeker},
		Show:   ShowMyCity,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 1 || items[0].Listing.ID != mumbai.ID {
		t.Fatalf("my_city must restrict to the seeker's city")
	}
}

func TestFeedList_TopMatchesThreshold(t *testing.T) {
	seeker := seekerUser("Mumbai")
	listerA := listerUser("listerA")
	listerB := listerUser("listerB")
	listerC := listerUser("listerC")

	strong := activeListing(listerA.ID, "Mumbai", time.Hour)
	edge := activeListing(listerB.ID, "Mumbai", 2*time.Hour)
	weak := activeListing(listerC.ID, "Mumbai", 3*time.Hour)

	p := &mockPredictor{preds: []float64{91, 70, 69.4}}
	uc := NewFeedUsecase(
		newMockListingRepo(strong, edge, weak),
		newMockUserRepo(seeker, listerA, listerB, listerC),
		p,
		nil,
	)

	items, err := uc.List(context.Background(), FeedParams{
		Viewer: &Viewer{ID: seeker.ID, Role: user.RoleSeeker},
		Show:   ShowTopMatches,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 top matches, got %d", len(items))
	}
	for _, it := range items {
		if it.Score == nil || *it.Score < 70 {
			t.Fatalf("top match below threshold: %v", it.Score)
		}
	}
	if items[0].Listing.ID != strong.ID || items[1].Listing.ID != edge.ID {
		t.Fatalf("top matches must stay score-ordered")
	}
}

func TestFeedList_SeekerOwnPoolScoresZero(t *testing.T) {
	seeker := seekerUser("Mumbai")
	lister := listerUser("lister1")

	// The seeker is the only roommate of one listing; its lone
	// counterpart being the seeker leaves zero rows for it.
	own := activeListing(seeker.ID, "Mumbai", time.Hour)
	other := activeListing(lister.ID, "Mumbai", 2*time.Hour)

	p := &mockPredictor{preds: []float64{85}}
	uc := NewFeedUsecase(
		newMockListingRepo(own, other),
		newMockUserRepo(seeker, lister),
		p,
		nil,
	)

	items, err := uc.List(context.Background(), FeedParams{
		Viewer: &Viewer{ID: seeker.ID, Role: user.RoleSeeker},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Listing.ID != other.ID || items[0].Score == nil || *items[0].Score != 85 {
		t.Fatalf("scored listing must rank first")
	}
	if items[1].Listing.ID != own.ID || items[1].Score == nil || *items[1].Score != 0 {
		t.Fatalf("zero-row listing must score exactly 0, got %v", items[1].Score)
	}
}

func TestFeedList_PredictionFailureZeroesScores(t *testing.T) {
	seeker := seekerUser("Mumbai")
	lister := listerUser("lister1")
	l := activeListing(lister.ID, "Mumbai", time.Hour)

	p := &mockPredictor{err: errTest}
	uc := NewFeedUsecase(newMockListingRepo(l), newMockUserRepo(seeker, lister), p, nil)

	items, err := uc.List(context.Background(), FeedParams{
		Viewer: &Viewer{ID: seeker.ID, Role: user.RoleSeeker},
	})
	if err != nil {
		t.Fatalf("prediction failure must not surface: %v", err)
	}
	if items[0].Score == nil || *items[0].Score != 0 {
		t.Fatalf("expected degraded score 0, got %v", items[0].Score)
	}
}

func TestFeedCacheKey_Deterministic(t *testing.T) {
	pets := true
	p1 := FeedParams{Filter: listing.Filter{Search: "  Bright  Room ", PetsAllowed: &pets}, Show: ShowAll}
	p2 := FeedParams{Filter: listing.Filter{Search: "bright room", PetsAllowed: &pets}, Show: ShowAll}

	if FeedCacheKey(p1) != FeedCacheKey(p2) {
		t.Fatalf("normalized filters must share a cache key")
	}

	p3 := p2
	p3.Show = ShowMyCity
	if FeedCacheKey(p2) == FeedCacheKey(p3) {
		t.Fatalf("different show modes must not share a cache key")
	}
}

func TestParseShowMode(t *testing.T) {
	for raw, want := range map[string]ShowMode{"": ShowAll, "all": ShowAll, "my_city": ShowMyCity, "top_matches": ShowTopMatches} {
		got, ok := ParseShowMode(raw)
		if !ok || got != want {
			t.Fatalf("ParseShowMode(%q) = %v ok=%v", raw, got, ok)
		}
	}
	if _, ok := ParseShowMode("bogus"); ok {
		t.Fatalf("unknown show mode must be rejected")
	}
}
