package seeder

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"sharespace/internal/database"
	"sharespace/internal/domain/user"
)

// ListingsSeeder distributes Count listings across the seeded lister
// accounts, each placed in its lister's home city so city filtering has
// something to find.
type ListingsSeeder struct {
	Count int
	Rand  *rand.Rand
}

func (ListingsSeeder) Name() string { return "listings" }

func (s ListingsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "listings",
		"id", "lister_id", "title", "address", "description", "city", "rent",
		"pets_allowed", "smoking_allowed", "latitude", "longitude",
	); err != nil {
		return err
	}

	count := s.Count
	if count <= 0 {
		count = 20
	}
	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	rows, err := db.Query(
		ctx,
		`SELECT id, COALESCE(city, '') FROM users WHERE role = $1 AND username LIKE 'listeruser%' ORDER BY username`,
		user.RoleLister,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	type lister struct {
		id   uuid.UUID
		city string
	}
	var listers []lister
	for rows.Next() {
		var l lister
		if err := rows.Scan(&l.id, &l.city); err != nil {
			return err
		}
		listers = append(listers, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(listers) == 0 {
		return fmt.Errorf("no seeded listers found; run the users seeder first")
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	const description = "A clean, quiet, and comfortable room perfect for a student or " +
		"young professional. Fully furnished with access to all common areas " +
		"including a modern kitchen and high-speed internet."

	for i := 0; i < count; i++ {
		l := listers[rng.Intn(len(listers))]
		city := l.city
		if city == "" {
			city = seedCities[rng.Intn(len(seedCities))]
		}

		title := fmt.Sprintf("Spacious & Bright Room in %s", city)
		address := fmt.Sprintf("%d Blossom Avenue, %s", 100+i*12, city)

		_, err := tx.Exec(
			ctx,
			`INSERT INTO listings (
				id, lister_id, title, address, description, city, rent,
				pets_allowed, smoking_allowed, latitude, longitude
			) VALUES (
				gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
			)`,
			l.id, title, address, description, city,
			15000+rng.Intn(40001),
			rng.Intn(2) == 0,
			rng.Intn(2) == 0,
			23.0225+(rng.Float64()-0.5)*0.2,
			72.5714+(rng.Float64()-0.5)*0.2,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
