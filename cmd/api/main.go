package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"luxe-storefront/internal/cart"
	"luxe-storefront/internal/config"
	"luxe-storefront/internal/db"
	"luxe-storefront/internal/events"
	"luxe-storefront/internal/httpserver"
	"luxe-storefront/internal/logging"
	customerrepo "luxe-storefront/internal/repository/customer"
	orderrepo "luxe-storefront/internal/repository/order"
	productrepo "luxe-storefront/internal/repository/product"
	tokenrepo "luxe-storefront/internal/repository/token"
	cartsvc "luxe-storefront/internal/service/cart"
	"luxe-storefront/internal/service/identity"
	ordersvc "luxe-storefront/internal/service/order"
	productsvc "luxe-storefront/internal/service/product"
	profilesvc "luxe-storefront/internal/service/profile"
	"luxe-storefront/internal/session"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	var persister cart.Persister = cart.NopPersister{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect to redis")
		}
		defer rdb.Close()
		persister = cart.NewRedisPersister(rdb, cfg.CartTTL)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("carts persisted to redis")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderTopic, "luxe-api", logger)
		defer kp.Close()
		publisher = kp
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	var verifier identity.Verifier
	if cfg.GoogleClientID != "" {
		verifier = identity.NewGoogleVerifier(cfg.GoogleClientID)
	}
	identityService := identity.New(customerRepo, tokenrepo.NewPostgres(dbpool), verifier, logger)
	profileService := profilesvc.New(customerRepo)
	orderService := ordersvc.New(orderRepo, publisher, cfg.EnforceStockLimit, logger)

	sessions := session.NewManager(session.Options{
		Policy:    cart.Policy{EnforceStockLimit: cfg.EnforceStockLimit},
		Persister: persister,
		Profiles:  profileService,
		Orders:    orderService,
		IdleTTL:   cfg.SessionIdle,
		Logger:    logger,
	})
	sessions.Watch(identityService)
	defer sessions.Close()
	go sessions.Run(ctx)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions:    sessions,
		ProductSvc:  productsvc.New(productRepo),
		CartSvc:     cartsvc.New(productRepo, sessions, logger.With().Str("component", "cart").Logger()),
		IdentitySvc: identityService,
		ProfileSvc:  profileService,
		OrderSvc:    orderService,
		AdminAPIKey: cfg.AdminAPIKey,
		CORSOrigins: cfg.CORSOrigins,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
