// Command server runs the user account API.
//
//	@title						User Account API
//	@version					1.0
//	@description				Registration, token authentication and self-service account management.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/accountkit/user-api/docs"
	"github.com/accountkit/user-api/internal/api"
	"github.com/accountkit/user-api/internal/api/metrics"
	"github.com/accountkit/user-api/internal/core/ports"
	"github.com/accountkit/user-api/internal/core/service"
	"github.com/accountkit/user-api/internal/infrastructure/config"
	"github.com/accountkit/user-api/internal/infrastructure/db/mongo"
	"github.com/accountkit/user-api/internal/infrastructure/db/postgres"
	"github.com/accountkit/user-api/internal/infrastructure/db/redis"
	"github.com/accountkit/user-api/internal/infrastructure/http/handlers"
	"github.com/accountkit/user-api/internal/infrastructure/queue"
	"github.com/accountkit/user-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})
	log := logger.Get()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Relational store ---
	db, err := postgres.Open(ctx, postgres.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("database migrations applied")

	readiness := []handlers.Dependency{handlers.PostgresDependency(db)}

	// --- Optional token cache ---
	var (
		rdb        *goredis.Client
		tokenOpts  []service.TokenOption
		eventDedup service.DedupChecker
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer closeRedis(rdb, log)

		tokenOpts = append(tokenOpts, service.WithTokenCache(redis.NewTokenCache(rdb)))
		eventDedup = redis.NewDedupChecker(rdb)
		readiness = append(readiness, handlers.RedisDependency(rdb))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token cache enabled")
	}

	// --- Optional audit trail ---
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()

	var (
		events     ports.EventPublisher
		dispatcher *queue.Dispatcher
	)
	if cfg.Mongo.Enabled {
		client, mdb, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer disconnectMongo(client, log)

		if err := mongo.EnsureIndexes(ctx, mdb); err != nil {
			return err
		}

		recorder := service.NewEventService(mongo.NewEventRepository(mdb), eventDedup, log)
		dispatcher = queue.NewDispatcher(cfg.Audit.Workers, recorder, log, queue.WithObserver(metrics.ObserveAuditEvent))
		dispatcher.Start(auditCtx)
		events = dispatcher

		readiness = append(readiness, handlers.MongoDependency(mdb))
		log.Info().Str("database", cfg.Mongo.Database).Msg("audit trail enabled")
	}

	// --- Services ---
	tokens := service.NewTokenService(
		postgres.NewTokenRepository(db),
		cfg.Auth.SecretKey,
		cfg.Auth.TokenTTL,
		log,
		tokenOpts...,
	)
	accounts := service.NewAccountService(
		postgres.NewUserRepository(db),
		postgres.NewCredentialRepository(db),
		tokens,
		service.NewCredentials(cfg.Auth.BcryptCost),
		events,
		log,
	)

	e := api.NewRouter(api.Deps{
		Accounts:     accounts,
		Tokens:       tokens,
		Readiness:    handlers.NewHealthDependenciesHandler(readiness...),
		Log:          log,
		APIPrefix:    cfg.APIPrefix,
		SessionCheck: cfg.Auth.SessionCheck,
		Production:   cfg.IsProduction(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// Requests are finished; let the workers drain what they already hold.
	stopAudit()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return err
}

func closeDB(db *sql.DB, log zerolog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("postgres close")
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}

func disconnectMongo(client *gomongo.Client, log zerolog.Logger) {
	if err := client.Disconnect(context.Background()); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect")
	}
}
