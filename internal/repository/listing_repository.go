package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sharespace/internal/database"
	"sharespace/internal/domain/listing"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingRepository interface {
	Create(ctx context.Context, l listing.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (listing.Listing, error)
	ListActive(ctx context.Context, f listing.Filter) ([]listing.Listing, error)
	ListByLister(ctx context.Context, listerID uuid.UUID) ([]listing.Listing, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]listing.Listing, error)
	Update(ctx context.Context, l listing.Listing) error
	Delete(ctx context.Context, id, listerID uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	SetRoommates(ctx context.Context, id uuid.UUID, roommateIDs []uuid.UUID) error
	FavoritesCount(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

type PostgresListingRepository struct {
	db database.DB
}

func NewPostgresListingRepository(db database.DB) *PostgresListingRepository {
	return &PostgresListingRepository{db: db}
}

const listingColumns = `l.id, l.lister_id, u.username, l.title, l.address, l.description,
	l.city, l.rent, l.roommates_needed, l.roommates_found, l.pets_allowed,
	l.smoking_allowed, l.is_active, l.latitude, l.longitude, l.view_count, l.created_at,
	COALESCE(ARRAY(SELECT lr.user_id FROM listing_roommates lr WHERE lr.listing_id = l.id), '{}'),
	COALESCE(ARRAY(SELECT li.image_url FROM listing_images li WHERE li.listing_id = l.id ORDER BY li.position, li.id), '{}')`

func (r *PostgresListingRepository) Create(ctx context.Context, l listing.Listing) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO listings (
				id, lister_id, title, address, description, city, rent,
				roommates_needed, roommates_found, pets_allowed, smoking_allowed,
				is_active, latitude, longitude
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			l.ID, l.ListerID, l.Title, l.Address, l.Description, l.City, l.Rent,
			l.RoommatesNeeded, l.RoommatesFound, l.PetsAllowed, l.SmokingAllowed,
			l.IsActive, l.Latitude, l.Longitude,
		)
		if err != nil {
			return err
		}

		for i, url := range l.ImageURLs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO listing_images (listing_id, image_url, position) VALUES ($1, $2, $3)`,
				l.ID, url, i,
			); err != nil {
				return err
			}
		}

		for _, rid := range l.RoommateIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO listing_roommates (listing_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				l.ID, rid,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresListingRepository) GetByID(ctx context.Context, id uuid.UUID) (listing.Listing, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings l JOIN users u ON u.id = l.lister_id WHERE l.id = $1`,
		id,
	)
	return scanListing(row)
}

// ListActive applies the typed pre-filters and returns candidates in
// creation-time order, newest first. Compatibility ranking happens on
// top of this order, never instead of it.
func (r *PostgresListingRepository) ListActive(ctx context.Context, f listing.Filter) ([]listing.Listing, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + listingColumns + ` FROM listings l JOIN users u ON u.id = l.lister_id WHERE l.is_active`)

	args := make([]any, 0, 6)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		sb.WriteString(` AND (l.title ILIKE ` + p +
			` OR l.description ILIKE ` + p +
			` OR l.city ILIKE ` + p +
			` OR l.address ILIKE ` + p + `)`)
	}
	if f.PetsAllowed != nil {
		sb.WriteString(` AND l.pets_allowed = ` + arg(*f.PetsAllowed))
	}
	if f.SmokingAllowed != nil {
		sb.WriteString(` AND l.smoking_allowed = ` + arg(*f.SmokingAllowed))
	}
	if f.MinRent != nil {
		sb.WriteString(` AND l.rent >= ` + arg(*f.MinRent))
	}
	if f.MaxRent != nil {
		sb.WriteString(` AND l.rent <= ` + arg(*f.MaxRent))
	}
	if c := strings.TrimSpace(f.City); c != "" {
		sb.WriteString(` AND lower(l.city) = lower(` + arg(c) + `)`)
	}

	sb.WriteString(` ORDER BY l.created_at DESC`)

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *PostgresListingRepository) ListByLister(ctx context.Context, listerID uuid.UUID) ([]listing.Listing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+listingColumns+` FROM listings l JOIN users u ON u.id = l.lister_id
		 WHERE l.lister_id = $1 ORDER BY l.created_at DESC`,
		listerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *PostgresListingRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]listing.Listing, error) {
	if len(ids) == 0 {
		return []listing.Listing{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+listingColumns+` FROM listings l JOIN users u ON u.id = l.lister_id
		 WHERE l.id = ANY($1) ORDER BY l.created_at DESC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *PostgresListingRepository) Update(ctx context.Context, l listing.Listing) error {
	n, err := r.db.Exec(ctx,
		`UPDATE listings SET
			title = $3, address = $4, description = $5, city = $6, rent = $7,
			roommates_needed = $8, roommates_found = $9, pets_allowed = $10,
			smoking_allowed = $11, is_active = $12, latitude = $13, longitude = $14
		 WHERE id = $1 AND lister_id = $2`,
		l.ID, l.ListerID, l.Title, l.Address, l.Description, l.City, l.Rent,
		l.RoommatesNeeded, l.RoommatesFound, l.PetsAllowed, l.SmokingAllowed,
		l.IsActive, l.Latitude, l.Longitude,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *PostgresListingRepository) Delete(ctx context.Context, id, listerID uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1 AND lister_id = $2`, id, listerID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *PostgresListingRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE listings SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

func (r *PostgresListingRepository) SetRoommates(ctx context.Context, id uuid.UUID, roommateIDs []uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM listing_roommates WHERE listing_id = $1`, id); err != nil {
			return err
		}
		for _, rid := range roommateIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO listing_roommates (listing_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, rid,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresListingRepository) FavoritesCount(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT listing_id, COUNT(*) FROM favorites WHERE listing_id = ANY($1) GROUP BY listing_id`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

type listingRow interface {
	Scan(dest ...any) error
}

func scanListing(row listingRow) (listing.Listing, error) {
	var l listing.Listing
	if err := row.Scan(
		&l.ID, &l.ListerID, &l.ListerUsername, &l.Title, &l.Address, &l.Description,
		&l.City, &l.Rent, &l.RoommatesNeeded, &l.RoommatesFound, &l.PetsAllowed,
		&l.SmokingAllowed, &l.IsActive, &l.Latitude, &l.Longitude, &l.ViewCount,
		&l.CreatedAt, &l.RoommateIDs, &l.ImageURLs,
	); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return listing.Listing{}, ErrListingNotFound
		}
		return listing.Listing{}, err
	}
	return l, nil
}

func collectListings(rows database.Rows) ([]listing.Listing, error) {
	out := make([]listing.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
