package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sharespace/internal/domain/listing"
	"sharespace/internal/domain/user"
	"sharespace/internal/matching"
	"sharespace/internal/repository"
)

type ShowMode string

const (
	ShowAll        ShowMode = "all"
	ShowMyCity     ShowMode = "my_city"
	ShowTopMatches ShowMode = "top_matches"
)

func ParseShowMode(s string) (ShowMode, bool) {
	switch ShowMode(s) {
	case "", ShowAll:
		return ShowAll, true
	case ShowMyCity:
		return ShowMyCity, true
	case ShowTopMatches:
		return ShowTopMatches, true
	default:
		return "", false
	}
}

// Viewer identifies the authenticated caller of a feed request. A nil
// viewer is an anonymous caller.
type Viewer struct {
	ID   uuid.UUID
	Role string
}

type FeedParams struct {
	Viewer *Viewer
	Filter listing.Filter
	Show   ShowMode
}

// FeedItem is one listing in the final ordering. Score is nil when
// personalization was not applied; the presentation layer omits the
// field entirely in that case.
type FeedItem struct {
	Listing listing.Listing `json:"listing"`
	Score   *int            `json:"compatibility_score,omitempty"`
}

type FeedUsecase interface {
	List(ctx context.Context, p FeedParams) ([]FeedItem, error)
}

type Feed struct {
	listings  repository.ListingRepository
	users     repository.UserRepository
	predictor matching.Predictor
	cache     FeedCache
	cacheTTL  time.Duration
}

func NewFeedUsecase(
	listings repository.ListingRepository,
	users repository.UserRepository,
	predictor matching.Predictor,
	cache FeedCache,
) *Feed {
	return &Feed{
		listings:  listings,
		users:     users,
		predictor: predictor,
		cache:     cache,
		cacheTTL:  5 * time.Minute,
	}
}

// List produces the listing feed: typed pre-filters, then candidate
// pairing, one batched prediction, per-listing aggregation, and a
// stable score ranking. Personalization applies only to authenticated
// seekers; everyone else gets the pre-filtered set in creation-time
// order with no score fields.
func (s *Feed) List(ctx context.Context, p FeedParams) ([]FeedItem, error) {
	if p.Show == "" {
		p.Show = ShowAll
	}

	personalized := p.Viewer != nil && p.Viewer.Role == matchingRole
	if !personalized {
		// my_city and top_matches have no effect without
		// personalization; fold them into one cache entry.
		p.Show = ShowAll
	}

	if !personalized && s.cache != nil {
		var cached []FeedItem
		if hit, err := s.cache.GetJSON(ctx, FeedCacheKey(p), &cached); err == nil && hit {
			return cached, nil
		}
	}

	filter := p.Filter
	var seekerProfile *seekerView
	if personalized {
		sv, err := s.loadSeeker(ctx, p.Viewer.ID)
		if err != nil {
			return nil, err
		}
		seekerProfile = sv
		if p.Show == ShowMyCity && sv.city != "" {
			filter.City = sv.city
		}
	}

	candidates, err := s.listings.ListActive(ctx, filter)
	if err != nil {
		return nil, ErrInternal
	}

	if !personalized {
		items := unscoredItems(candidates)
		if s.cache != nil {
			_ = s.cache.SetJSON(ctx, FeedCacheKey(p), items, s.cacheTTL)
		}
		return items, nil
	}

	result := s.score(ctx, seekerProfile, candidates)
	if !result.Scored {
		// Artifact unavailable: serve the feed unscored rather than fail.
		return unscoredItems(candidates), nil
	}

	ids := make([]uuid.UUID, len(candidates))
	byID := make(map[uuid.UUID]listing.Listing, len(candidates))
	for i, l := range candidates {
		ids[i] = l.ID
		byID[l.ID] = l
	}

	ranked := matching.RankByScore(ids, result.Scores)
	if p.Show == ShowTopMatches {
		ranked = matching.FilterTopMatches(ranked, result.Scores)
	}

	items := make([]FeedItem, 0, len(ranked))
	for _, id := range ranked {
		score := result.Scores[id]
		items = append(items, FeedItem{Listing: byID[id], Score: &score})
	}
	return items, nil
}

const matchingRole = user.RoleSeeker

type seekerView struct {
	id      uuid.UUID
	city    string
	profile user.Profile
}

func (s *Feed) loadSeeker(ctx context.Context, id uuid.UUID) (*seekerView, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}

	city := ""
	if u.Profile.City != nil {
		city = *u.Profile.City
	}
	return &seekerView{id: u.ID, city: city, profile: u.Profile}, nil
}

func (s *Feed) score(ctx context.Context, seeker *seekerView, listings []listing.Listing) matching.Result {
	if s.predictor == nil {
		return matching.Unscored()
	}

	occupantIDs := make([]uuid.UUID, 0, len(listings)*2)
	seen := make(map[uuid.UUID]struct{})
	for _, l := range listings {
		for _, id := range l.Occupants() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			occupantIDs = append(occupantIDs, id)
		}
	}

	profiles, err := s.users.ProfilesByIDs(ctx, occupantIDs)
	if err != nil {
		// Treat a profile fetch failure like a prediction failure:
		// every listing degrades to the neutral score.
		profiles = nil
	}

	ids := make([]uuid.UUID, len(listings))
	candidates := make([]matching.Candidate, 0, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
		cand := matching.Candidate{ListingID: l.ID}
		for _, id := range l.Occupants() {
			p, ok := profiles[id]
			if !ok {
				// Unresolvable occupant: a normal zero-row case, not
				// an error.
				continue
			}
			cand.Members = append(cand.Members, matching.Member{ID: id, Profile: p})
		}
		candidates = append(candidates, cand)
	}

	rows := matching.AssembleRows(seeker.id, seeker.profile, candidates)
	return matching.ScoreListings(s.predictor, ids, rows)
}

func unscoredItems(listings []listing.Listing) []FeedItem {
	items := make([]FeedItem, len(listings))
	for i, l := range listings {
		items[i] = FeedItem{Listing: l}
	}
	return items
}
