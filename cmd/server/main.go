package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/infrastructure/auth"
	"github.com/campusledger/backend/internal/infrastructure/cache"
	"github.com/campusledger/backend/internal/infrastructure/config"
	"github.com/campusledger/backend/internal/infrastructure/event"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"github.com/campusledger/backend/internal/infrastructure/notification"
	"github.com/campusledger/backend/internal/infrastructure/persistence"
	"github.com/campusledger/backend/internal/infrastructure/scheduler"
	"github.com/campusledger/backend/internal/infrastructure/storage"
	"github.com/campusledger/backend/internal/infrastructure/telemetry"
	"github.com/campusledger/backend/internal/interfaces/http/handler"
	"github.com/campusledger/backend/internal/interfaces/http/middleware"
	"github.com/campusledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/campusledger/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var version = "dev"

//	@title			Campus Ledger API
//	@version		1.0
//	@description	Receivables, payments, payment plans and invoices for schools.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so the logger can tee into the OTLP log exporter
	bootLog, err := logger.New(logger.ConfigForEnvironment(cfg.App.Env, cfg.Log.Level))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	var log *zap.Logger
	if providers.Enabled() {
		log, err = logger.NewWithCores(logCfg, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	} else {
		log, err = logger.New(logCfg)
	}
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Campus Ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("telemetry", providers.Enabled()),
	)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:            cfg.Profiling.Enabled,
		ServerAddress:      cfg.Profiling.ServerAddress,
		ApplicationName:    cfg.Profiling.ApplicationName,
		BasicAuthUser:      cfg.Profiling.BasicAuthUser,
		BasicAuthPassword:  cfg.Profiling.BasicAuthPassword,
		ProfileAllocations: cfg.Profiling.ProfileAllocations,
		ProfileGoroutines:  cfg.Profiling.ProfileGoroutines,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.Enabled() && cfg.Profiling.SpanProfiles {
		providers.EnableSpanProfiles()
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL && !cfg.App.IsProduction(),
		SlowQueryThresh: cfg.Database.SlowQueryThresh,
		DBSystem:        "postgresql",
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	receivableRepo := persistence.NewGormAccountReceivableRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	planRepo := persistence.NewGormPaymentPlanRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	students := persistence.NewGormStudentDirectory(db.DB)
	catalog := persistence.NewGormFeeCatalog(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	voucherStorage, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize voucher storage", zap.Error(err))
	}

	// Application services
	receivableService := appfinance.NewReceivableService(receivableRepo, paymentRepo, txScope)
	paymentService := appfinance.NewPaymentService(paymentRepo, voucherStorage, txScope)
	paymentService.SetConfig(appfinance.PaymentServiceConfig{MaxVoucherBytes: cfg.Ledger.MaxVoucherBytes})
	planService := appfinance.NewPaymentPlanService(planRepo, receivableRepo, txScope)
	invoiceService := appfinance.NewInvoiceService(invoiceRepo, students, catalog, txScope)
	invoiceService.SetConfig(appfinance.InvoiceServiceConfig{
		DueDay:    cfg.Ledger.InvoiceDueDay,
		AutoIssue: cfg.Ledger.AutoIssueInvoices,
	})
	collectionService := appfinance.NewCollectionService(receivableRepo, paymentRepo, planRepo)

	// Shared idempotency store: notification dedupe and scheduler run-once keys
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()

	// Event bus; handlers run after the publishing transaction commits
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())

	ledgerMetrics, err := telemetry.NewLedgerMetrics(providers.Meter("campus-ledger"))
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	eventBus.Subscribe(ledgerMetrics)

	dispatcher, err := notification.New(cfg.Notification, log)
	if err != nil {
		log.Fatal("Failed to initialize notifications", zap.Error(err))
	}
	if dispatcher != nil {
		notifier := appfinance.NewNotificationHandler(log, dispatcher, students).
			WithIdempotency(idempotencyStore).
			WithLocale(cfg.Notification.Locale)
		eventBus.Subscribe(notifier)
		log.Info("Payment notifications enabled", zap.String("provider", cfg.Notification.Provider))
	}

	receivableService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	planService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Scheduled ledger jobs
	var jobs *scheduler.Scheduler
	var ledgerCron *scheduler.LedgerCron
	if cfg.Scheduler.Enabled {
		poolCfg := scheduler.DefaultPoolConfig()
		poolCfg.JobTimeout = cfg.Scheduler.JobTimeout
		poolCfg.RetryAttempts = cfg.Scheduler.RetryAttempts
		poolCfg.RetryDelay = cfg.Scheduler.RetryDelay

		executor := scheduler.NewLedgerExecutor(invoiceService, idempotencyStore, cfg.Scheduler.RunOnceTTL, ledgerMetrics, log)
		jobs, err = scheduler.NewScheduler(poolCfg, executor, log)
		if err != nil {
			log.Fatal("Failed to create job scheduler", zap.Error(err))
		}
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}

		ledgerCron, err = scheduler.NewLedgerCron(cfg.Scheduler, students, jobs, log)
		if err != nil {
			log.Fatal("Failed to schedule ledger jobs", zap.Error(err))
		}
		ledgerCron.Start(ctx)
	}

	// Authentication
	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := auth.NewTokenBlacklist(ctx, cfg.Redis, log)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     providers.Enabled(),
		}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	health := handler.NewHealthHandler(db, version)
	engine.GET("/health", health.Health)
	engine.GET("/ready", health.Ready)

	jwtMiddleware := middleware.JWTAuthMiddleware(middleware.DefaultJWTConfig(jwtService, blacklist, log))

	if cfg.Swagger.Enabled {
		swaggerAuth := middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		})
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, swaggerAuth),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	apiMiddleware := []gin.HandlerFunc{jwtMiddleware}
	if cfg.HTTP.RateLimit > 0 {
		apiMiddleware = append(apiMiddleware,
			middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)))
	}
	httpMetrics, err := middleware.HTTPMetrics(providers.Meter("campus-ledger/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	apiMiddleware = append(apiMiddleware,
		httpMetrics,
		middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig(profiler.Enabled())),
	)

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(apiMiddleware...),
	).Register(
		handler.NewReceivableHandler(receivableService).Routes(),
		handler.NewPaymentHandler(paymentService, cfg.Ledger.MaxVoucherBytes).Routes(),
		handler.NewPaymentPlanHandler(planService).Routes(),
		handler.NewInvoiceHandler(invoiceService).Routes(),
		handler.NewCollectionHandler(collectionService).Routes(),
		handler.NewAuthHandler(blacklist).Routes(),
	)
	r.Setup()
	log.Info("Routes registered", zap.String("base_path", r.BasePath()), zap.Int("routes", len(r.Routes())))

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

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if ledgerCron != nil {
		if err := ledgerCron.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping ledger cron", zap.Error(err))
		}
	}
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping job scheduler", zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
