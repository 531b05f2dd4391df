package main

import (
	"context"

	"luxe-storefront/internal/config"
	"luxe-storefront/internal/db"
	"luxe-storefront/internal/logging"
	"luxe-storefront/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New("migrate", cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	logger.Info().Msg("migrations applied")
}
