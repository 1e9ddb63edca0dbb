package main

import (
	"log/slog"
	"net/http"
	"os"

	"tripsplit-backend/config"
	"tripsplit-backend/database"
	"tripsplit-backend/handlers"
	"tripsplit-backend/middleware"
	"tripsplit-backend/repository"
	"tripsplit-backend/repository/memory"
	"tripsplit-backend/services"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger := utils.SetupLogger(cfg.LogLevel)

	codec := services.JSONCodec{}

	// Ledger and stats stores: postgres when configured, in-memory otherwise.
	var (
		ledger     services.LedgerStore
		statsStore services.StatsStore
	)
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg)
		if err != nil {
			logger.Error("database setup failed", "error", err)
			os.Exit(1)
		}
		ledger = repository.NewLedgerRepository(db)
		statsStore = repository.NewStatsRepository(db, codec)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		ledger = memory.NewLedger()
		statsStore = memory.NewStatsStore(codec)
	}

	var cache services.Cache = services.NewMemoryCache()
	if cfg.StatsCacheBackend == "redis" {
		// Redis is optional; without it the in-process cache is used.
		if client := database.ConnectRedis(cfg); client != nil {
			cache = repository.NewRedisCache(client, 2*cfg.StatsCacheTTL)
		}
	}

	stats, err := services.NewStatsProvider(services.NewAggregator(ledger, nil), services.FreshnessOptions{
		Policy: services.Policy(cfg.StatsPolicy),
		Store:  statsStore,
		Cache:  cache,
		TTL:    cfg.StatsCacheTTL,
		Logger: logger,
	})
	if err != nil {
		logger.Error("stats provider setup failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stats provider ready", "policy", stats.Policy(), "ttl", cfg.StatsCacheTTL)

	h := handlers.New(
		stats,
		services.NewTransactionService(ledger, stats, logger),
		services.NewReconciliationService(ledger),
		logger,
	)

	// Setup router
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.FrontendURL))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.AppName,
			"policy":  stats.Policy(),
		})
	})

	h.Register(r.Group("/api"))

	addr := "0.0.0.0:" + cfg.Port
	logger.Info("server starting", "app", cfg.AppName, "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
