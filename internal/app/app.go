package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/db"
	httpserver "github.com/yungbote/quantpath-backend/internal/http"
	"github.com/yungbote/quantpath-backend/internal/observability"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *httpserver.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewWithOptions(logger.Options{
		Mode:             cfg.Server.LogMode,
		Level:            cfg.Server.LogLevel,
		DisableRedaction: !cfg.Server.LogRedact,
		HashSalt:         cfg.Server.LogHashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OTel.Enabled,
		ServiceName: cfg.OTel.ServiceName,
		Environment: cfg.OTel.Environment,
		Version:     cfg.OTel.Version,
		SampleRatio: cfg.OTel.SampleRatio,
		Endpoint:    cfg.OTel.Endpoint,
		Headers:     cfg.OTel.Headers,
		Insecure:    cfg.OTel.Insecure,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log, db.PostgresConfig{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		Name:            cfg.Postgres.Name,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		SlowThreshold:   cfg.Postgres.SlowThreshold,
	})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if cfg.Postgres.AutoMigrate {
		if err := pg.AutoMigrateAll(); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
	}
	theDB := pg.DB()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, clients, reposet)
	handlerset := wireHandlers(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Server.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Close drains the HTTP server then releases clients in reverse order.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown failed", "error", err)
		}
	}
	a.Clients.Close(ctx)
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
