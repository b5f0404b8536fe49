package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	addressapp "github.com/farmacia/backend/internal/application/address"
	catalogapp "github.com/farmacia/backend/internal/application/catalog"
	gamificationapp "github.com/farmacia/backend/internal/application/gamification"
	ledgerapp "github.com/farmacia/backend/internal/application/ledger"
	orderapp "github.com/farmacia/backend/internal/application/order"
	promotionapp "github.com/farmacia/backend/internal/application/promotion"
	reportapp "github.com/farmacia/backend/internal/application/report"
	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/farmacia/backend/internal/infrastructure/auth"
	"github.com/farmacia/backend/internal/infrastructure/cache"
	"github.com/farmacia/backend/internal/infrastructure/config"
	"github.com/farmacia/backend/internal/infrastructure/logger"
	"github.com/farmacia/backend/internal/infrastructure/payment"
	"github.com/farmacia/backend/internal/infrastructure/persistence"
	"github.com/farmacia/backend/internal/infrastructure/scheduler"
	"github.com/farmacia/backend/internal/infrastructure/storage"
	"github.com/farmacia/backend/internal/infrastructure/telemetry"
	"github.com/farmacia/backend/internal/interfaces/http/handler"
	"github.com/farmacia/backend/internal/interfaces/http/middleware"
	"github.com/farmacia/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

const meterName = "farmacia-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Farmacia Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	meter := providers.Meter.Meter(meterName)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		Tracing: telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		},
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	clock := clockz.RealClock

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	missionRepo := persistence.NewGormMissionRepository(db.DB)
	summaryRepo := persistence.NewGormSummaryRepository(db.DB)

	businessMetrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cfg.IsProduction(), log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	imageStore, err := storage.New(ctx, cfg.Storage, "http://localhost:"+cfg.App.Port, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	gateway, err := newPaymentGateway(cfg.Payment, log)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Application services
	gamificationService := gamificationapp.NewService(
		persistence.NewGormGamificationTransactionScope(db.DB),
		gamificationapp.Repositories{
			Profiles:   profileRepo,
			Missions:   missionRepo,
			Products:   productRepo,
			Categories: categoryRepo,
			Orders:     orderRepo,
		},
		gamification.NewRandSampler(uint64(time.Now().UnixNano())),
		clock,
		log,
	)
	gamificationService.SetIdempotencyStore(idempotencyStore, cfg.Gamification.IdempotencyTTL)
	gamificationService.SetBusinessMetrics(businessMetrics)

	orderService := orderapp.NewService(
		persistence.NewGormOrderTransactionScope(db.DB),
		orderRepo, productRepo, promotionRepo, addressRepo,
		clock, log,
	)
	orderService.SetRewards(gamificationService)
	orderService.SetPaymentGateway(gateway)
	orderService.SetBusinessMetrics(businessMetrics)

	catalogService := catalogapp.NewService(productRepo, categoryRepo, imageStore, log)
	if cfg.Storage.PresignExpiration > 0 {
		catalogConfig := catalogapp.DefaultServiceConfig()
		catalogConfig.UploadURLExpiry = cfg.Storage.PresignExpiration
		catalogService.SetConfig(catalogConfig)
	}
	promotionService := promotionapp.NewService(promotionRepo, productRepo, categoryRepo, clock, log)
	addressService := addressapp.NewService(addressRepo, clock, log)
	ledgerService := ledgerapp.NewService(ledgerRepo)
	reportService := reportapp.NewService(summaryRepo, productRepo, clock)

	rollover := scheduler.NewMissionRolloverTrigger(
		scheduler.MissionRolloverConfig{CheckInterval: cfg.Gamification.RolloverCheckInterval},
		gamificationService, clock, log,
	)
	if err := rollover.Start(ctx); err != nil {
		log.Fatal("Failed to start mission rollover", zap.Error(err))
	}

	// HTTP
	middleware.SetupValidator()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id must exist before the logger and tracer
	// read it, and recovery must wrap everything below it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(meter))
	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.IsProduction()
	engine.Use(middleware.SecureWithConfig(securityConfig))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", handler.NewHealthHandler(db).Health)

	jwtService := auth.NewJWTService(cfg.JWT, clock)
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log

	r := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig)).
		Use(middleware.TracingAttributeInjector())
	if cfg.HTTP.RateLimitEnabled {
		limiter, closeLimiter := newRateLimiter(ctx, cfg, clock, log)
		defer closeLimiter()
		r.Use(middleware.RateLimit(limiter, log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.RegisterAPI(r, router.Handlers{
		Order:        handler.NewOrderHandler(orderService),
		Gamification: handler.NewGamificationHandler(gamificationService),
		Promotion:    handler.NewPromotionHandler(promotionService),
		Address:      handler.NewAddressHandler(addressService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Ledger:       handler.NewLedgerHandler(ledgerService),
		Report:       handler.NewReportHandler(reportService),
	}).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := rollover.Stop(shutdownCtx); err != nil {
		log.Warn("Mission rollover did not stop cleanly", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newPaymentGateway returns Stripe when a secret key is configured and the
// local gateway otherwise.
func newPaymentGateway(cfg config.PaymentConfig, log *zap.Logger) (payment.Gateway, error) {
	if cfg.SecretKey == "" {
		log.Warn("No payment secret key configured, using local payment intents")
		return payment.NewNoopGateway(log), nil
	}
	stripeConfig := payment.DefaultStripeConfig()
	stripeConfig.SecretKey = cfg.SecretKey
	stripeConfig.PublishableKey = cfg.PublishableKey
	stripeConfig.IsTestMode = strings.HasPrefix(cfg.SecretKey, "sk_test")
	if cfg.Currency != "" {
		stripeConfig.Currency = cfg.Currency
	}
	gateway, err := payment.NewStripeGateway(stripeConfig, log)
	if err != nil {
		return nil, err
	}
	return gateway, nil
}

// newRateLimiter shares counters through redis when it is configured so
// every replica enforces the same budget.
func newRateLimiter(ctx context.Context, cfg *config.Config, clock clockz.Clock, log *zap.Logger) (middleware.RateLimiter, func()) {
	if cfg.Redis.Host != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			return cache.NewRedisRateLimiter(client, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow),
				func() { _ = client.Close() }
		}
		if cfg.IsProduction() {
			log.Fatal("Redis is required for rate limiting in production", zap.Error(err))
		}
		log.Warn("Redis unavailable, rate limiting per process", zap.Error(err))
	}
	return middleware.NewMemoryRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, clock), func() {}
}
