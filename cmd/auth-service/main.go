// Command auth-service runs the fleet authentication API.
//
// @title                       Fleet Auth API
// @version                     1.0
// @description                 Credential and federated login service issuing role-bearing bearer tokens.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetops/auth-service/internal/api"
	"github.com/fleetops/auth-service/internal/api/handler"
	"github.com/fleetops/auth-service/internal/api/metrics"
	"github.com/fleetops/auth-service/internal/core/ports"
	"github.com/fleetops/auth-service/internal/core/service"
	mongostore "github.com/fleetops/auth-service/internal/infrastructure/db/mongo"
	pgstore "github.com/fleetops/auth-service/internal/infrastructure/db/postgres"
	redisstore "github.com/fleetops/auth-service/internal/infrastructure/db/redis"
	"github.com/fleetops/auth-service/internal/infrastructure/federated"
	"github.com/fleetops/auth-service/internal/infrastructure/queue"
	"github.com/fleetops/auth-service/internal/infrastructure/security"
	"github.com/fleetops/auth-service/internal/infrastructure/token"
	"github.com/fleetops/auth-service/internal/pkg/config"
	"github.com/fleetops/auth-service/pkg/logger"
)

const (
	serviceName     = "fleet-auth"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("auth service terminated")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Credential store ---
	users, storeCheck, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	checks := map[string]handler.Check{cfg.Store.Driver: storeCheck}

	// --- Profile cache (optional) ---
	var cache ports.ProfileCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		cache = redisstore.NewProfileCache(rdb, cfg.Redis.TTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn().Msg("REDIS_ADDR not set, profile cache disabled")
	}

	// --- Password hashing ---
	// The pool outlives the signal context so in-flight requests drain during shutdown.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool := queue.NewHashPool(security.NewBcryptHasher(cfg.Hash.Cost), cfg.Hash.Workers, queue.PoolMetrics{
		Duration: metrics.PasswordHashDuration,
		Depth:    metrics.HashQueueDepth,
	}, logger.Component("hashpool"))
	pool.Start(poolCtx)

	// --- Tokens and federated identity ---
	tokens, err := token.NewJWTIssuer(token.Config{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		return err
	}

	verifier, err := federated.NewGoogleVerifier(federated.Config{
		ClientID: cfg.Google.ClientID,
		JWKSURL:  cfg.Google.JWKSURL,
		Timeout:  cfg.Google.Timeout,
	}, logger.Component("federated"))
	if err != nil {
		return err
	}

	// --- Services ---
	authService, err := service.NewAuthService(ctx, service.AuthDeps{
		Users:       users,
		Hasher:      pool,
		Tokens:      tokens,
		Identities:  verifier,
		Placeholder: security.RandomSecret,
	}, logger.Component("auth"))
	if err != nil {
		return err
	}
	userService := service.NewUserService(users, cache, logger.Component("users"))

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		Auth:   authService,
		Users:  userService,
		Tokens: tokens,
		Checks: checks,
		Logger: logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("auth service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore connects the configured credential store and makes sure its
// email uniqueness constraint exists before any request is served.
func openStore(ctx context.Context, cfg *config.Config) (ports.UserRepository, handler.Check, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := pgstore.Connect(ctx, pgstore.Config{URL: cfg.PG.URL})
		if err != nil {
			return nil, nil, nil, err
		}
		repo := pgstore.NewUserRepository(pg)
		if err := repo.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, nil, err
		}
		return repo, pg.Ping, pg.Close, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		check := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return repo, check, closeFn, nil
	}
}
