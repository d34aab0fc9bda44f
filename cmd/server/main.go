// Command server runs the mediation gateway: the MCP tool endpoint, the REST
// resources and the operational routes on one HTTP listener.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/accessdesk/mediation-gateway/internal/api"
	"github.com/accessdesk/mediation-gateway/internal/api/handler"
	"github.com/accessdesk/mediation-gateway/internal/api/metrics"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
	"github.com/accessdesk/mediation-gateway/internal/core/service"
	"github.com/accessdesk/mediation-gateway/internal/core/validation"
	"github.com/accessdesk/mediation-gateway/internal/gateway"
	"github.com/accessdesk/mediation-gateway/internal/infrastructure/crypto"
	"github.com/accessdesk/mediation-gateway/internal/infrastructure/db/memory"
	"github.com/accessdesk/mediation-gateway/internal/infrastructure/db/mongo"
	"github.com/accessdesk/mediation-gateway/internal/infrastructure/db/redis"
	"github.com/accessdesk/mediation-gateway/internal/pkg/config"
	"github.com/accessdesk/mediation-gateway/pkg/logger"
)

const (
	serviceName = "mediation-gateway"
	version     = "1.0.0"
)

// stores bundles the repositories and the shutdown hook of the chosen driver.
type stores struct {
	roles    ports.RoleRepository
	accounts ports.AccountRepository
	check    handler.Check
	close    func(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open store")
	}

	checks := map[string]handler.Check{cfg.StoreDriver: st.check}

	var (
		rdb    *goredis.Client
		locker ports.SeedLocker
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		}
		locker = redis.NewSeedLock(rdb)
		checks["redis"] = redis.Check(rdb)
	}

	v := validation.New()
	hasher := crypto.NewBcryptHasher(cfg.BcryptCost)

	accounts := service.NewAccountService(st.accounts, hasher, v, log)
	roles := service.NewRoleService(st.roles, st.accounts, v, service.DeletePolicy(cfg.Roles.DeletePolicy), log)
	resolver := service.NewRoleResolver(st.roles, cfg.Roles.StrictReferences)
	seeder := service.NewSeedService(st.roles, st.accounts, hasher, locker, service.SeedAccount{
		Email:     cfg.Seed.AdminEmail,
		Password:  cfg.Seed.AdminPassword,
		FirstName: cfg.Seed.AdminFirstName,
		LastName:  cfg.Seed.AdminLastName,
	}, log)

	if cfg.Seed.OnStart {
		seedOnStart(ctx, seeder)
	}

	gw := gateway.New(accounts, roles, resolver, seeder, log)
	router := api.NewRouter(api.Deps{
		Gateway: gw,
		Logger:  log,
		Server:  handler.ServerInfo{Name: serviceName, Version: version},
		Checks:  checks,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Redis close error")
		}
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Store close error")
	}

	log.Info().Msg("Server exited")
}

func openStore(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		mem := memory.NewStore()
		return &stores{
			roles:    mem.Roles(),
			accounts: mem.Accounts(),
			check:    mem.Ping,
			close:    func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log := logger.Get()
	log.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")
	return &stores{
		roles:    mongo.NewRoleRepository(db),
		accounts: mongo.NewAccountRepository(db),
		check:    mongo.Check(client),
		close:    client.Disconnect,
	}, nil
}

// seedOnStart runs the seed once. A failure is logged and the server still
// starts; seed_database can be called later.
func seedOnStart(ctx context.Context, seeder *service.SeedService) {
	log := logger.Get()
	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := seeder.Seed(seedCtx)
	metrics.ObserveSeed("startup", err == nil)
	if err != nil {
		log.Error().Err(err).Msg("Seed on start failed")
		return
	}
	log.Info().Int("roles", len(res.Roles)).Int("users", len(res.Accounts)).Msg("Seed on start completed")
}
