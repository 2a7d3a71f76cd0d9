package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/sicua/backend/internal/application/catalog"
	appevent "github.com/sicua/backend/internal/application/event"
	importapp "github.com/sicua/backend/internal/application/import"
	appsales "github.com/sicua/backend/internal/application/sales"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/cache"
	"github.com/sicua/backend/internal/infrastructure/config"
	"github.com/sicua/backend/internal/infrastructure/event"
	"github.com/sicua/backend/internal/infrastructure/logger"
	"github.com/sicua/backend/internal/infrastructure/persistence"
	"github.com/sicua/backend/internal/infrastructure/telemetry"
	"github.com/sicua/backend/internal/interfaces/http/handler"
	"github.com/sicua/backend/internal/interfaces/http/middleware"
	"github.com/sicua/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const (
	meterName = "github.com/sicua/backend"

	multipartOverhead = 64 << 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
		Service:    cfg.App.Name,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Console:    cfg.Log.Console,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting store backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store", cfg.App.StoreName),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meter := meterProvider.Meter(meterName)
	var storeMetrics *telemetry.StoreMetrics
	if meterProvider.IsEnabled() {
		if storeMetrics, err = telemetry.NewStoreMetrics(meter); err != nil {
			log.Warn("Business metrics unavailable", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver == persistence.DriverSQLite {
		// postgres is migrated by cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.WithoutVariables = !cfg.Telemetry.DBLogFullSQL
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		if db.Driver == persistence.DriverSQLite {
			dbTracing.DBSystem = "sqlite"
		}
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := event.NewKafkaPublisher(cfg.Kafka, log)
		if err != nil {
			log.Fatal("Failed to create Kafka publisher", zap.Error(err))
		}
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("Error closing Kafka publisher", zap.Error(err))
			}
		}()
		eventBus.Subscribe(kafkaPublisher)
		log.Info("Forwarding domain events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	dispatcher := appevent.NewDispatcher(eventBus, log)

	// Idempotency
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).
		CreateStore(context.Background())
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer closeStore(idempotencyStore, log)

	// Repositories and services
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	importRunRepo := persistence.NewGormImportRunRepository(db.DB)

	resolver := appcatalog.NewCategoryResolver(categoryRepo, dispatcher, log)
	productService := appcatalog.NewProductService(productRepo, categoryRepo, dispatcher, log)
	categoryService := appcatalog.NewCategoryService(categoryRepo, productRepo, resolver, dispatcher, log)

	saleService := appsales.NewSaleService(persistence.NewGormTransactionScope(db.DB), saleRepo, dispatcher, log)
	saleService.SetIdempotencyStore(idempotencyStore)
	saleService.SetIdempotencyTTL(cfg.Sales.IdempotencyTTL)
	saleService.SetMaxAttempts(cfg.Sales.MaxAttempts)
	saleService.SetStoreName(cfg.App.StoreName)
	saleService.SetMetrics(storeMetrics)

	productImporter := importapp.NewProductImportService(productRepo, resolver, dispatcher, log)
	productImporter.SetMetrics(storeMetrics)
	importRuns := importapp.NewImportRunService(productImporter, importRunRepo, log)
	importRuns.SetMaxStoredErrors(cfg.Import.MaxErrors)
	exportService := importapp.NewExportService(productRepo, categoryRepo, log)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, cfg.App.StoreName, db)
	storeHandlers := router.StoreHandlers{
		Products:   handler.NewProductHandler(productService),
		Categories: handler.NewCategoryHandler(categoryService),
		Sales:      handler.NewSaleHandler(saleService),
		Imports: handler.NewImportHandler(importRuns, exportService, handler.ImportLimits{
			MaxFileSize: cfg.Import.MaxFileSize,
			MaxRows:     cfg.Import.MaxRows,
		}),
		System: systemHandler,
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.SpanErrorMarker())
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meter))
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	// Uploads are checked against import.max_file_size by the handler;
	// leave room for the multipart envelope.
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize,
		middleware.WithPathLimit(r.BasePath()+"/imports/products", cfg.Import.MaxFileSize+multipartOverhead)))

	engine.GET("/health", systemHandler.Health)

	routeCount := 0
	for _, group := range router.StoreRoutes(storeHandlers) {
		r.Register(group)
		routeCount += group.RouteCount()
	}
	r.Setup()
	log.Info("Routes registered", zap.String("base_path", r.BasePath()), zap.Int("routes", routeCount))

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func closeStore(store shared.IdempotencyStore, log *zap.Logger) {
	if err := store.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
}
