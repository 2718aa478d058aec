package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbilling "github.com/propman/backend/internal/application/billing"
	apprental "github.com/propman/backend/internal/application/rental"
	"github.com/propman/backend/internal/infrastructure/cache"
	"github.com/propman/backend/internal/infrastructure/config"
	"github.com/propman/backend/internal/infrastructure/logger"
	"github.com/propman/backend/internal/infrastructure/persistence"
	"github.com/propman/backend/internal/interfaces/http/handler"
	"github.com/propman/backend/internal/interfaces/http/middleware"
	"github.com/propman/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	chargeRepo := persistence.NewGormChargeRepository(db.DB)
	templateRepo := persistence.NewGormRecurringTemplateRepository(db.DB)
	instanceRepo := persistence.NewGormRecurringInstanceRepository(db.DB)
	spaceRepo := persistence.NewGormSpaceRepository(db.DB)
	bookingRepo := persistence.NewGormBookingRepository(db.DB)
	serviceRepo := persistence.NewGormServiceAccountRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	allocator := persistence.NewGormSequenceAllocator(db.DB)
	checker := persistence.NewUnionObligationChecker(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Idempotency store: redis when reachable, in-memory otherwise
	var idempotencyStore appbilling.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		memStore := cache.NewInMemoryIdempotencyStore()
		defer memStore.Close()
		idempotencyStore = memStore
	} else {
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		idempotencyStore = redisStore
	}

	// Application services
	chargeService := appbilling.NewChargeService(chargeRepo, allocator, txManager, idempotencyStore)
	chargeService.SetIdempotencyTTL(cfg.Billing.IdempotencyTTL)
	projectionService := appbilling.NewProjectionService(templateRepo, instanceRepo, allocator, txManager)
	reconcileService := appbilling.NewReconcileService(chargeRepo, spaceRepo)
	calendarService := appbilling.NewCalendarService(spaceRepo, serviceRepo, employeeRepo, bookingRepo, checker, projectionService)
	bookingService := apprental.NewBookingService(bookingRepo, spaceRepo, chargeRepo, allocator, txManager)
	spaceService := apprental.NewSpaceService(spaceRepo)
	obligorService := apprental.NewObligorService(serviceRepo, employeeRepo)

	// Gin engine and middleware
	if cfg.App.Env == "production" {
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
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewChargeHandler(chargeService)).
		Register(handler.NewRecurringHandler(projectionService)).
		Register(handler.NewReconciliationHandler(reconcileService)).
		Register(handler.NewCalendarHandler(calendarService)).
		Register(handler.NewBookingHandler(bookingService)).
		Register(handler.NewSpaceHandler(spaceService)).
		Register(handler.NewObligorHandler(obligorService)).
		Register(handler.NewSystemHandler(db.DB))
	r.Setup()

	// HTTP server
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}
