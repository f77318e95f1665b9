package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type FeedCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateListings(ctx context.Context) error
}

type feedCacheKeyInput struct {
	Search         string `json:"search"`
	PetsAllowed    *bool  `json:"pets_allowed"`
	SmokingAllowed *bool  `json:"smoking_allowed"`
	MinRent        *int   `json:"min_rent"`
	MaxRent        *int   `json:"max_rent"`
	Show           string `json:"show"`
}

// FeedCacheKey hashes the normalized filter set. Only anonymous feeds
// are cached, so viewer identity is not part of the key.
func FeedCacheKey(p FeedParams) string {
	in := feedCacheKeyInput{
		Search:         normalizeSearchValue(p.Filter.Search),
		PetsAllowed:    p.Filter.PetsAllowed,
		SmokingAllowed: p.Filter.SmokingAllowed,
		MinRent:        p.Filter.MinRent,
		MaxRent:        p.Filter.MaxRent,
		Show:           string(p.Show),
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "listings:feed:" + hex.EncodeToString(sum[:])
}

func normalizeSearchValue(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}
