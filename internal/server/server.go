package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"retail-desk/internal/config"
	"retail-desk/internal/database"
	"retail-desk/internal/format"
	"retail-desk/internal/gateway"
	custommiddleware "retail-desk/internal/middleware"
	"retail-desk/internal/replenishment"
	"retail-desk/internal/repository"
	"retail-desk/internal/service"
	"retail-desk/internal/transport"
	"retail-desk/internal/workspace"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
	ws     *workspace.Workspace
	ticker *workspace.TickerTrigger
	cancel context.CancelFunc
}

// NewServer builds the gateway, the workspace and the HTTP routes. The
// workspace is loaded once before the server starts listening.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{config: cfg, logger: logger}

	gw, err := s.buildGateway(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Load the workspace; a partial load is served with warnings
	s.ws = workspace.New(gw, logger)
	if err := s.ws.Refresh(ctx); err != nil {
		logger.Warn("Initial workspace load incomplete", zap.Error(err))
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	manual := workspace.NewManualTrigger()
	trigger := workspace.Trigger(manual)
	if cfg.Gateway.RefreshInterval > 0 {
		s.ticker = workspace.NewTickerTrigger(cfg.Gateway.RefreshInterval)
		trigger = workspace.Merge(watchCtx, manual, s.ticker)
	}

	go s.ws.Watch(watchCtx, trigger)

	// Initialize services
	formatter := format.New(format.Options{
		Locale:         cfg.Display.Locale,
		CurrencySymbol: cfg.Display.CurrencySymbol,
		FractionDigits: cfg.Display.FractionDigits,
	})
	salesService := service.NewSalesService(s.ws, gw, formatter, service.SalesOptions{
		DefaultTaxPct: cfg.Sales.DefaultTaxPct,
		PageSize:      cfg.Sales.DefaultPageSize,
	}, logger)
	inventoryService := service.NewInventoryService(s.ws, replenishment.NewService(s.ws, logger), formatter, cfg.Sales.DefaultPageSize, logger)

	// Initialize handlers
	var dbHealth transport.HealthChecker
	if s.db != nil {
		dbHealth = s.db
	}
	systemHandler := transport.NewSystemHandler(s.ws, manual, dbHealth, cfg.Gateway.Driver, logger)
	salesHandler := transport.NewSalesHandler(salesService, logger)
	inventoryHandler := transport.NewInventoryHandler(inventoryService, logger)

	// Create router
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack(logger)...)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.IsProduction()))

	systemHandler.RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.NewRateLimiter(s.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit",
		}, logger))

		salesHandler.RegisterRoutes(r)
		inventoryHandler.RegisterRoutes(r)
	})

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

// buildGateway selects the data source and wraps it with the Redis cache
// when Redis is enabled and reachable
func (s *Server) buildGateway(ctx context.Context) (gateway.Gateway, error) {
	cfg := s.config

	var gw gateway.Gateway
	switch cfg.Gateway.Driver {
	case config.GatewayPostgres:
		dbService, err := database.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		s.db = dbService

		s.logger.Info("Database health check", zap.Any("health", dbService.Health(ctx)))

		if err := database.RunMigrations(dbService.DB(), cfg.Server.MigrationsDir, s.logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		db := dbService.DB()
		gw = gateway.NewPostgres(
			repository.NewClientRepository(db),
			repository.NewProductRepository(db),
			repository.NewCategoryRepository(db),
			repository.NewSaleRepository(db),
		)
	case config.GatewayMemory, "":
		gw = gateway.NewMemory(gateway.DemoDataset(time.Now()), cfg.Gateway.Latency)
	default:
		return nil, fmt.Errorf("unknown gateway driver %q", cfg.Gateway.Driver)
	}

	if !cfg.Redis.Enabled {
		return gw, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		s.logger.Warn("Redis unavailable, running without cache", zap.Error(err))
		client.Close()
		return gw, nil
	}
	s.redis = client

	return gateway.NewCached(gw, client, cfg.Gateway.CacheTTL, s.logger), nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.cancel != nil {
		s.cancel()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
