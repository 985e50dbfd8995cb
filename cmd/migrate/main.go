package main

import (
	"context"
	"time"

	mongoMigration "onehotel/internal/migrations/mongo"
	postgresMigration "onehotel/internal/migrations/postgres"
	"onehotel/internal/migrations/seed"
	"onehotel/pkg/app"
	"onehotel/pkg/clock"
	"onehotel/pkg/config"
)

const JobName = "hotel-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	if cfg.StoreDriver == config.StoreMemory {
		cfg.Log.Info("Memory store selected, nothing to migrate")
		return
	}
	cfg.SetStore()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting migration job", "store_driver", cfg.StoreDriver)
	if err := migrate(ctx, cfg); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if cfg.SeedData {
		if err := seedData(ctx, cfg); err != nil {
			cfg.Log.Fatal("Seeding failed", "error", err)
		}
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log)
	default:
		return mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
	}
}

func seedData(ctx context.Context, cfg *config.Config) error {
	stores, err := app.NewStores(cfg)
	if err != nil {
		return err
	}
	return seed.Run(ctx, stores.Rooms, stores.Reservations, clock.NewSystem(cfg.Location), cfg.Log)
}
