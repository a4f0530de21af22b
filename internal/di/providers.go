package di

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/wire"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lmittmann/tint"

	"github.com/CodeStorm-Hub/stormcom/internal/cache"
	"github.com/CodeStorm-Hub/stormcom/internal/config"
	"github.com/CodeStorm-Hub/stormcom/internal/domain"
	"github.com/CodeStorm-Hub/stormcom/internal/handler"
	"github.com/CodeStorm-Hub/stormcom/internal/identity"
	"github.com/CodeStorm-Hub/stormcom/internal/middleware"
	"github.com/CodeStorm-Hub/stormcom/internal/repository"
	"github.com/CodeStorm-Hub/stormcom/internal/server"
	"github.com/CodeStorm-Hub/stormcom/internal/tenant"
)

const Version = "0.1.0"

var ConfigSet = wire.NewSet(
	config.Load,
)

var LoggerSet = wire.NewSet(
	ProvideLogger,
)

var DatabaseSet = wire.NewSet(
	ProvideDatabase,
)

var RepositorySet = wire.NewSet(
	repository.NewPostgresStoreRepository,
	wire.Bind(new(domain.StoreRepository), new(*repository.PostgresStoreRepository)),
	wire.Bind(new(tenant.Directory), new(*repository.PostgresStoreRepository)),
)

var TenantSet = wire.NewSet(
	ProvideStoreCache,
	wire.Bind(new(tenant.ResolutionCache), new(*cache.StoreCache)),
	ProvideVerifier,
	wire.Bind(new(identity.Verifier), new(*identity.JWTVerifier)),
	ProvideTenantConfig,
	tenant.NewResolver,
	ProvideTenantMiddleware,
)

var HandlerSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewStoreLookupHandler,
	handler.NewStorefrontHandler,
)

var ServerSet = wire.NewSet(
	ProvideServerConfig,
	server.New,
)

var AppSet = wire.NewSet(
	ConfigSet,
	LoggerSet,
	DatabaseSet,
	RepositorySet,
	TenantSet,
	HandlerSet,
	ServerSet,
	wire.Struct(new(Application), "*"),
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	var logLevel slog.Level
	switch cfg.Server.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var h slog.Handler
	if cfg.Server.Env == "development" {
		h = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	}

	return slog.New(h)
}

func ProvideDatabase(cfg *config.Config) (*sql.DB, func(), error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup, nil
}

func ProvideStoreCache(cfg *config.Config) (*cache.StoreCache, func(), error) {
	c, err := cache.New(cfg.Tenant.CacheTTL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resolution cache: %w", err)
	}
	return c, c.Close, nil
}

func ProvideVerifier(cfg *config.Config) *identity.JWTVerifier {
	return identity.NewJWTVerifier(cfg.Auth.SessionSecret)
}

func ProvideTenantConfig(cfg *config.Config) tenant.Config {
	return tenant.Config{
		RootDomains:       cfg.Tenant.RootDomains,
		DevSuffix:         cfg.Tenant.DevSuffix,
		ReservedSubdomain: cfg.Tenant.ReservedSubdomain,
		ProtectedPrefixes: cfg.Tenant.ProtectedPrefixes,
		ExemptPrefixes:    cfg.Tenant.ExemptPrefixes,
		BypassPrefixes:    cfg.Tenant.BypassPrefixes,
		StorePathPrefix:   cfg.Tenant.StorePathPrefix,
		NotFoundPath:      cfg.Tenant.NotFoundPath,
		LoginPath:         cfg.Tenant.LoginPath,
	}
}

func ProvideTenantMiddleware(cfg *config.Config, resolver *tenant.Resolver, logger *slog.Logger) *middleware.TenantMiddleware {
	return middleware.NewTenantMiddleware(middleware.TenantMiddlewareConfig{
		Resolver:          resolver,
		SessionCookieName: cfg.Auth.SessionCookieName,
		Logger:            logger,
	})
}

func ProvideHealthHandler() *handler.HealthHandler {
	return handler.NewHealthHandler(Version)
}

func ProvideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
		CorsOrigins:  cfg.Server.CorsOrigins,
	}
}

type Application struct {
	Config             *config.Config
	Logger             *slog.Logger
	DB                 *sql.DB
	Server             *server.Server
	HealthHandler      *handler.HealthHandler
	StoreLookupHandler *handler.StoreLookupHandler
	StorefrontHandler  *handler.StorefrontHandler
}
