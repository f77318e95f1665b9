package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"sharespace/internal/domain/chat"
	"sharespace/internal/domain/listing"
	"sharespace/internal/domain/user"
	"sharespace/internal/matching"
	"sharespace/internal/repository"
)

var errTest = errors.New("test error")

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

type mockUserRepo struct {
	byID       map[uuid.UUID]user.User
	byUsername map[string]user.User
	profiles   map[uuid.UUID]user.Profile

	createErr   error
	profilesErr error

	created []user.User
	updated []user.User
}

func newMockUserRepo(users ...user.User) *mockUserRepo {
	m := &mockUserRepo{
		byID:       map[uuid.UUID]user.User{},
		byUsername: map[string]user.User{},
		profiles:   map[uuid.UUID]user.Profile{},
	}
	for _, u := range users {
		m.put(u)
	}
	return m
}

func (m *mockUserRepo) put(u user.User) {
	m.byID[u.ID] = u
	m.byUsername[u.Username] = u
	m.profiles[u.ID] = u.Profile
}

func (m *mockUserRepo) Create(_ context.Context, u user.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, u)
	m.put(u)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return user.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return user.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, u user.User) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	m.updated = append(m.updated, u)
	m.put(u)
	return nil
}

func (m *mockUserRepo) ProfilesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error) {
	if m.profilesErr != nil {
		return nil, m.profilesErr
	}
	out := map[uuid.UUID]user.Profile{}
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type mockListingRepo struct {
	byID   map[uuid.UUID]listing.Listing
	active []listing.Listing
	counts map[uuid.UUID]int

	listActiveErr error
	lastFilter    listing.Filter

	viewBumps []uuid.UUID
	deleted   []uuid.UUID
}

func newMockListingRepo(listings ...listing.Listing) *mockListingRepo {
	m := &mockListingRepo{
		byID:   map[uuid.UUID]listing.Listing{},
		counts: map[uuid.UUID]int{},
	}
	for _, l := range listings {
		m.byID[l.ID] = l
		m.active = append(m.active, l)
	}
	return m
}

func (m *mockListingRepo) Create(_ context.Context, l listing.Listing) error {
	m.byID[l.ID] = l
	m.active = append(m.active, l)
	return nil
}

func (m *mockListingRepo) GetByID(_ context.Context, id uuid.UUID) (listing.Listing, error) {
	l, ok := m.byID[id]
	if !ok {
		return listing.Listing{}, repository.ErrListingNotFound
	}
	return l, nil
}

func (m *mockListingRepo) ListActive(_ context.Context, f listing.Filter) ([]listing.Listing, error) {
	m.lastFilter = f
	if m.listActiveErr != nil {
		return nil, m.listActiveErr
	}
	out := []listing.Listing{}
	for _, l := range m.active {
		if matchesFilter(l, f) {
			out = append(out, l)
		}
	}
	return out, nil
}

// matchesFilter mirrors the WHERE clause the Postgres repository builds
// so filter behavior is exercised through the usecase.
func matchesFilter(l listing.Listing, f listing.Filter) bool {
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		hay := strings.ToLower(l.Title) + " " + strings.ToLower(l.City)
		if l.Description != nil {
			hay += " " + strings.ToLower(*l.Description)
		}
		if l.Address != nil {
			hay += " " + strings.ToLower(*l.Address)
		}
		if !strings.Contains(hay, s) {
			return false
		}
	}
	if f.PetsAllowed != nil && l.PetsAllowed != *f.PetsAllowed {
		return false
	}
	if f.SmokingAllowed != nil && l.SmokingAllowed != *f.SmokingAllowed {
		return false
	}
	if f.MinRent != nil && l.Rent < *f.MinRent {
		return false
	}
	if f.MaxRent != nil && l.Rent > *f.MaxRent {
		return false
	}
	if f.City != "" && !strings.EqualFold(l.City, f.City) {
		return false
	}
	return true
}

func (m *mockListingRepo) ListByLister(_ context.Context, listerID uuid.UUID) ([]listing.Listing, error) {
	var out []listing.Listing
	for _, l := range m.active {
		if l.ListerID == listerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockListingRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]listing.Listing, error) {
	var out []listing.Listing
	for _, id := range ids {
		if l, ok := m.byID[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockListingRepo) Update(_ context.Context, l listing.Listing) error {
	if _, ok := m.byID[l.ID]; !ok {
		return repository.ErrListingNotFound
	}
	m.byID[l.ID] = l
	for i := range m.active {
		if m.active[i].ID == l.ID {
			m.active[i] = l
		}
	}
	return nil
}

func (m *mockListingRepo) Delete(_ context.Context, id, listerID uuid.UUID) error {
	l, ok := m.byID[id]
	if !ok || l.ListerID != listerID {
		return repository.ErrListingNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockListingRepo) IncrementViewCount(_ context.Context, id uuid.UUID) error {
	m.viewBumps = append(m.viewBumps, id)
	return nil
}

func (m *mockListingRepo) SetRoommates(_ context.Context, id uuid.UUID, roommateIDs []uuid.UUID) error {
	l, ok := m.byID[id]
	if !ok {
		return repository.ErrListingNotFound
	}
	l.RoommateIDs = roommateIDs
	m.byID[id] = l
	return nil
}

func (m *mockListingRepo) FavoritesCount(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for _, id := range ids {
		out[id] = m.counts[id]
	}
	return out, nil
}

type mockFavoriteRepo struct {
	// Kept in insertion order, newest first, to mirror the query.
	ids map[uuid.UUID][]uuid.UUID
}

func newMockFavoriteRepo() *mockFavoriteRepo {
	return &mockFavoriteRepo{ids: map[uuid.UUID][]uuid.UUID{}}
}

func (m *mockFavoriteRepo) Add(_ context.Context, userID, listingID uuid.UUID) error {
	for _, id := range m.ids[userID] {
		if id == listingID {
			return nil
		}
	}
	m.ids[userID] = append([]uuid.UUID{listingID}, m.ids[userID]...)
	return nil
}

func (m *mockFavoriteRepo) Remove(_ context.Context, userID, listingID uuid.UUID) (bool, error) {
	cur := m.ids[userID]
	for i, id := range cur {
		if id == listingID {
			m.ids[userID] = append(cur[:i], cur[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFavoriteRepo) ListListingIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return m.ids[userID], nil
}

type mockConversationRepo struct {
	byID   map[int64]chat.Conversation
	nextID int64

	createErr error
}

func newMockConversationRepo() *mockConversationRepo {
	return &mockConversationRepo{byID: map[int64]chat.Conversation{}, nextID: 1}
}

func (m *mockConversationRepo) Create(_ context.Context, userA, userB uuid.UUID) (chat.Conversation, error) {
	if m.createErr != nil {
		return chat.Conversation{}, m.createErr
	}
	c := chat.Conversation{ID: m.nextID, UserA: userA, UserB: userB, CreatedAt: time.Now()}
	m.byID[c.ID] = c
	m.nextID++
	return c, nil
}

func (m *mockConversationRepo) FindByPair(_ context.Context, userA, userB uuid.UUID) (chat.Conversation, error) {
	for _, c := range m.byID {
		if (c.UserA == userA && c.UserB == userB) || (c.UserA == userB && c.UserB == userA) {
			return c, nil
		}
	}
	return chat.Conversation{}, repository.ErrConversationNotFound
}

func (m *mockConversationRepo) GetByID(_ context.Context, id int64) (chat.Conversation, error) {
	c, ok := m.byID[id]
	if !ok {
		return chat.Conversation{}, repository.ErrConversationNotFound
	}
	return c, nil
}

func (m *mockConversationRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]chat.Conversation, error) {
	var out []chat.Conversation
	for _, c := range m.byID {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockMessageRepo struct {
	msgs   []chat.Message
	nextID int64
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{nextID: 1}
}

func (m *mockMessageRepo) Create(_ context.Context, conversationID int64, senderID uuid.UUID, text string) (chat.Message, error) {
	msg := chat.Message{
		ID:             m.nextID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	m.msgs = append(m.msgs, msg)
	m.nextID++
	return msg, nil
}

func (m *mockMessageRepo) ListByConversation(_ context.Context, conversationID int64) ([]chat.Message, error) {
	var out []chat.Message
	for _, msg := range m.msgs {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type mockPredictor struct {
	preds []float64
	fn    func(rows []matching.Row) ([]float64, error)
	err   error
	calls int
}

func (p *mockPredictor) PredictBatch(rows []matching.Row) ([]float64, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if p.fn != nil {
		return p.fn(rows)
	}
	if p.preds != nil {
		return p.preds, nil
	}
	return make([]float64, len(rows)), nil
}

type mockFeedCache struct {
	data        map[string][]byte
	gets        int
	sets        int
	invalidated int
}

func newMockFeedCache() *mockFeedCache {
	return &mockFeedCache{data: map[string][]byte{}}
}

func (m *mockFeedCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	m.gets++
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mockFeedCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	m.sets++
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *mockFeedCache) InvalidateListings(_ context.Context) error {
	m.invalidated++
	m.data = map[string][]byte{}
	return nil
}
