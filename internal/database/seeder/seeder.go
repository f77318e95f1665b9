package seeder

import (
	"context"
	"fmt"
	"log"

	"sharespace/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

// RunAll executes seeders in order and stops on the first failure.
// Every seeder is idempotent, so re-running is safe.
func RunAll(ctx context.Context, db database.DB, logger *log.Logger, seeders ...Seeder) error {
	for _, s := range seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seeder %s: %w", s.Name(), err)
		}
		if logger != nil {
			logger.Printf("seeder completed | name=%s", s.Name())
		}
	}
	return nil
}
