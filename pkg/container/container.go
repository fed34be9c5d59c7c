package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/config"
	infraCache "catalog-backend/internal/infrastructure/cache"
	"catalog-backend/internal/infrastructure/database"
	"catalog-backend/internal/shared/middleware"
	"catalog-backend/pkg/logger"

	authorHandler "catalog-backend/internal/domains/author/handler"
	authorRepo "catalog-backend/internal/domains/author/repository"
	authorService "catalog-backend/internal/domains/author/service"

	bookHandler "catalog-backend/internal/domains/book/handler"
	bookRepo "catalog-backend/internal/domains/book/repository"
	bookService "catalog-backend/internal/domains/book/service"

	userHandler "catalog-backend/internal/domains/user/handler"
	userRepo "catalog-backend/internal/domains/user/repository"
	userService "catalog-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa tất cả dependencies của application
// Thứ tự khởi tạo: Config -> Infrastructure -> Repositories -> Services -> Handlers
type Container struct {
	// Infrastructure
	Config   *config.Config
	DB       *database.PostgresDB
	Cache    *infraCache.RedisCache
	Registry *prometheus.Registry
	Metrics  *middleware.HTTPMetrics

	// Services
	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface
	UserService   userService.ServiceInterface

	// Handlers
	AuthorHandler *authorHandler.AuthorHandler
	BookHandler   *bookHandler.BookHandler
	UserHandler   *userHandler.UserHandler
}

// NewContainer tạo và initialize toàn bộ dependency graph
// Postgres là bắt buộc, Redis lỗi thì chạy tiếp không có cache
func NewContainer() (*Container, error) {
	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	log.Info().Str("env", cfg.App.Environment).Msg("[CONTAINER] Config loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	db := database.NewPostgresDB(&cfg.Database.DBConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.DatabaseURL()); err != nil {
			c.Cleanup()
			return nil, err
		}
	}

	// ========================================
	// STEP 3: INITIALIZE REDIS CACHE
	// ========================================
	c.Cache = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Connect(ctx); err != nil {
		// Session lookup fallback về Postgres khi cache lỗi
		log.Warn().Err(err).Msg("[CONTAINER] Redis unavailable, running without session cache")
	}

	// ========================================
	// STEP 4-6: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.wireDomains()

	// ========================================
	// STEP 7: METRICS
	// ========================================
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = middleware.NewHTTPMetrics(c.Registry)

	log.Info().Msg("[CONTAINER] Dependencies initialized")
	return c, nil
}

func (c *Container) wireDomains() {
	// Author
	aRepo := authorRepo.NewPostgresRepository(c.DB.Pool)
	c.AuthorService = authorService.NewAuthorService(aRepo)
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)

	// Book
	bRepo := bookRepo.NewPostgresRepository(c.DB.Pool)
	c.BookService = bookService.NewBookService(bRepo)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)

	// User + session
	uRepo := userRepo.NewPostgresRepository(c.DB.Pool)
	sRepo := userRepo.NewSessionRepository(c.DB.Pool, c.Cache, c.Config.Redis.SessionCacheTTL)
	hasher := userService.NewArgon2idHasher(userService.Argon2Params{
		Memory:  c.Config.Auth.Argon2Memory,
		Time:    c.Config.Auth.Argon2Time,
		Threads: c.Config.Auth.Argon2Threads,
	})
	c.UserService = userService.NewUserService(uRepo, sRepo, hasher)
	c.UserHandler = userHandler.NewUserHandler(c.UserService, userHandler.CookieConfig{
		Name:   c.Config.Auth.CookieName,
		Secure: c.Config.Auth.CookieSecure,
		MaxAge: c.Config.Auth.CookieMaxAge,
	})
}

func runMigrations(databaseURL string) error {
	migrator, err := database.NewMigrator(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close migrator")
		}
	}()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Cleanup đóng các connection, gọi khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] Cleaning up resources")

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close redis client")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}
}
