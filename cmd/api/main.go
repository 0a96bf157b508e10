package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mdgraph/backend/internal/api/handlers"
	"github.com/mdgraph/backend/internal/cache/redis"
	"github.com/mdgraph/backend/internal/kg/neo4j"
	"github.com/mdgraph/backend/internal/knowledge"
	"github.com/mdgraph/backend/internal/metrics"
	"github.com/mdgraph/backend/internal/middleware/ratelimit"
	"github.com/mdgraph/backend/internal/middleware/security"
	"github.com/mdgraph/backend/internal/storage/sqlite"
	"github.com/mdgraph/backend/internal/watch"
	"github.com/mdgraph/backend/pkg/config"
	appLogger "github.com/mdgraph/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting mdgraph API server",
		zap.String("root", cfg.Corpus.Root),
		zap.String("policy", cfg.Extraction.Policy),
	)

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	var (
		graphCache  knowledge.GraphCache
		recorder    knowledge.RunRecorder
		runStore    handlers.RunStore
		exporter    handlers.Exporter
		invalidator watch.Invalidator
	)

	if cfg.SQLite.Enabled {
		sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
		}
		defer sqliteClient.Close()

		if err := sqliteClient.InitSchema(); err != nil {
			appLogger.Fatal("Failed to initialize schema", zap.Error(err))
		}
		recorder = sqliteClient
		runStore = sqliteClient
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.TTL,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, graph cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			graphCache = redisClient
			invalidator = redisClient
		}
	}

	if cfg.Neo4j.Enabled {
		neo4jClient, err := neo4j.NewClient(
			cfg.Neo4j.URI,
			cfg.Neo4j.Username,
			cfg.Neo4j.Password,
			cfg.Neo4j.Database,
		)
		if err != nil {
			appLogger.Warn("Neo4j unavailable, export disabled", zap.Error(err))
		} else {
			defer neo4jClient.Close(context.Background())
			exporter = neo4jClient
		}
	}

	service, err := knowledge.NewFromConfig(afero.NewOsFs(), cfg, graphCache, recorder)
	if err != nil {
		appLogger.Fatal("Failed to create graph service", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Server.RateLimit,
		SkipPrefixes:         []string{"/api/v1/health", cfg.Metrics.Path, "/ws"},
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))
	app.Use(limiter.Middleware())

	graphHandler := handlers.NewGraphHandler(service, cfg.Corpus.Root, runStore, exporter)
	wsHandler := handlers.NewWebSocketHandler(service, cfg.Corpus.Root)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	handlers.RegisterRoutes(app, graphHandler, wsHandler, handlers.RouteConfig{
		MetricsPath: metricsPath,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch.Enabled {
		rebuilder := watch.NewRebuilder(cfg.Corpus.Root, service, invalidator, wsHandler)
		watcher, err := watch.NewWatcher(cfg.Corpus.Root, cfg.Corpus.Extension, cfg.Watch.Debounce, rebuilder.Rebuild)
		if err != nil {
			appLogger.Fatal("Failed to watch corpus", zap.Error(err))
		}
		watcher.Start(ctx)
		defer watcher.Close()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.Shutdown(); err != nil {
		appLogger.Warn("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
