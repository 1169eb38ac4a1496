package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/config"
	handler "github.com/EhsanAfzal005/Shopify-Review-App/internal/handler/http"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/repository/postgres"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/service"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/shopify"
	"github.com/EhsanAfzal005/Shopify-Review-App/migrations"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/database"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/health"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/httpclient"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/middleware"
)

const serviceName = "reviews-service"

// App wires together all dependencies and runs the review service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.Files, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	database.RegisterPoolMetrics(pool, serviceName)

	// Build the dependency graph.
	repo := postgres.NewReviewRepository(pool)
	sessions := shopify.NewSessionStore(pool)
	catalog := shopify.NewCatalogClient(
		httpclient.New(httpclient.DefaultConfig()),
		cfg.ShopifyAPIVersion,
		logger,
	)

	reviewService := service.NewReviewService(repo, logger)
	dashboardService := service.NewDashboardService(repo, catalog, sessions, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(
		handler.NewPublicHandler(reviewService, logger),
		handler.NewAdminHandler(reviewService, dashboardService, logger),
		handler.NewWebhookHandler(reviewService, sessions, cfg.ShopifyAPISecret, logger),
		shopify.NewSessionTokenVerifier(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret),
		healthHandler,
		handler.RouterConfig{
			APISecret:   cfg.ShopifyAPISecret,
			ServiceName: serviceName,
			CORS:        corsCfg,
		},
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
