package main

import (
	"context"

	"luxe-storefront/internal/config"
	"luxe-storefront/internal/db"
	"luxe-storefront/internal/logging"
	productrepo "luxe-storefront/internal/repository/product"
	"luxe-storefront/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New("seed", cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, productrepo.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}

	logger.Info().Int("products", n).Msg("seed applied")
}
