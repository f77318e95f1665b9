package repository

import (
	"context"

	"github.com/google/uuid"

	"sharespace/internal/database"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, listingID uuid.UUID) error
	Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	ListListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type PostgresFavoriteRepository struct {
	db database.DB
}

func NewPostgresFavoriteRepository(db database.DB) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{db: db}
}

func (r *PostgresFavoriteRepository) Add(ctx context.Context, userID, listingID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO favorites (user_id, listing_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, listingID,
	)
	return err
}

func (r *PostgresFavoriteRepository) Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	n, err := r.db.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2`,
		userID, listingID,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresFavoriteRepository) ListListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT listing_id FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
