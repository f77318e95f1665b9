package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"sharespace/internal/config"
	"sharespace/internal/database/migration"
	dbpostgres "sharespace/internal/database/postgres"
	"sharespace/internal/database/seeder"
)

func main() {
	count := flag.Int("count", 20, "number of listings to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := (migration.Runner{Dir: "migrations"}).Run(ctx, db.SQLDB()); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	err = seeder.RunAll(ctx, db, log.Default(),
		seeder.UsersSeeder{Rand: rng},
		seeder.ListingsSeeder{Count: *count, Rand: rng},
	)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	log.Printf("seeding finished | listings=%d", *count)
}
