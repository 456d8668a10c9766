package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"podium/internal/config"
	"podium/internal/database"
	"podium/internal/database/migration"
	dbpostgres "podium/internal/database/postgres"
	"podium/internal/delivery/http/middleware"
	"podium/internal/delivery/http/routes"
	v1 "podium/internal/delivery/http/routes/v1"
	"podium/internal/extractor"
	"podium/internal/infrastructure/cache"
	"podium/internal/infrastructure/storage"
	"podium/internal/pkg/jwt"
	"podium/internal/synthesizer"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

// Bootstrap builds every long-lived component and wires the HTTP surface
// on top of them. The returned cleanup closes what Bootstrap opened.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", cfg.App.AppName), log.LstdFlags|log.Lmsgprefix)

	container, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{
		AppName:     cfg.App.AppName,
		ReadTimeout: 30 * time.Second,
		// Profile creation waits on external fetches and the model.
		WriteTimeout: 3 * time.Minute,
	})

	errMw := middleware.NewErrorMiddleware(logger)
	accessMw := middleware.NewAccessLogMiddleware(logger)
	f.Use(errMw.Middleware())
	f.Use(accessMw.Middleware())

	registry := routes.NewRegistry(v1.Deps{
		DB:        container.DB,
		Cache:     container.Cache,
		Store:     container.Store,
		JWT:       container.JWT,
		Collector: container.Collector,
		Synth:     container.Synth,
		Logger:    logger,
	})
	registry.Register(f)

	return &App{Fiber: f}, container.Close, nil
}

// Container holds the shared infrastructure: one of each per process.
type Container struct {
	Config    config.Config
	Logger    *log.Logger
	DB        database.DB
	Cache     *cache.Redis
	Store     *storage.Store
	JWT       jwt.Service
	Collector *extractor.Collector
	Synth     *synthesizer.Synthesizer
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	runner := migration.Runner{Dir: cfg.Database.MigrationsDir}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisCache := cache.NewRedis(cfg.Redis, logger)

	store, err := storage.NewStore(ctx, cfg.Storage)
	if err != nil {
		_ = db.Close()
		_ = redisCache.Close()
		return nil, fmt.Errorf("init object store: %w", err)
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	collector := &extractor.Collector{
		PDF:      extractor.NewPDFExtractor(store, cfg.Extractor, logger),
		YouTube:  extractor.NewYouTubeExtractor(cfg.YouTube.APIKey),
		Website:  extractor.NewWebsiteExtractor(cfg.Extractor.CrawlMaxPages, cfg.Extractor.FetchTimeout, logger),
		LinkedIn: extractor.NewLinkedInExtractor(cfg.Extractor.FetchTimeout, logger),
		Timeout:  60 * time.Second,
		Cache:    redisCache,
		Logger:   logger,
	}

	synth := synthesizer.New(cfg.OpenAI, logger)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Cache:     redisCache,
		Store:     store,
		JWT:       jwtSvc,
		Collector: collector,
		Synth:     synth,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
