package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	invoiceapp "github.com/opsease/backend/internal/application/invoice"
	ledgerapp "github.com/opsease/backend/internal/application/ledger"
	partnerapp "github.com/opsease/backend/internal/application/partner"
	"github.com/opsease/backend/internal/domain/invoice"
	"github.com/opsease/backend/internal/domain/ledger"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/auth"
	"github.com/opsease/backend/internal/infrastructure/cache"
	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/opsease/backend/internal/infrastructure/event"
	"github.com/opsease/backend/internal/infrastructure/logger"
	"github.com/opsease/backend/internal/infrastructure/persistence"
	"github.com/opsease/backend/internal/infrastructure/scheduler"
	"github.com/opsease/backend/internal/infrastructure/storage"
	"github.com/opsease/backend/internal/infrastructure/telemetry"
	"github.com/opsease/backend/internal/interfaces/http/handler"
	"github.com/opsease/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/opsease/backend/docs"
)

//	@title			OpsEase Ledger API
//	@version		1.0
//	@description	Party ledger, invoicing and partner directory for small businesses

//	@contact.name	OpsEase Engineering

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry providers are created first so the logs bridge can wrap the logger
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
		Level:             cfg.Log.Level,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	log := loggerProvider.Bridge(baseLog)
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OpsEase ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if cfg.Database.Driver == "sqlite" {
		// PostgreSQL schemas are owned by cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem(cfg.Database.Driver),
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	entryRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.KafkaEnabled {
		forwarder := setupKafkaForwarding(ctx, cfg, eventBus, log)
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Error("Error closing kafka forwarder", zap.Error(err))
			}
		}()
	}

	locker := ledgerapp.NewMutexPartyLocker()
	ledgerService := ledgerapp.NewService(entryRepo, txManager, locker, eventBus, log)

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("opsease/ledger"), log)
	if err != nil {
		log.Warn("Ledger metrics disabled", zap.Error(err))
	} else {
		ledgerService.SetLedgerMetrics(ledgerMetrics)
	}

	if cfg.Storage.Enabled {
		archive, err := storage.NewStatementArchive(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Warn("Statement bucket check failed", zap.String("bucket", archive.Bucket()), zap.Error(err))
		}
		ledgerService.SetObjectStorage(archive, cfg.Storage.PresignExpiration)
		log.Info("Statement archiving enabled", zap.String("bucket", archive.Bucket()))
	}

	posting := ledgerapp.NewInvoicePostingHandler(ledgerService, log)
	invoiceService := invoiceapp.NewService(invoiceRepo, customerRepo, supplierRepo, txManager, locker, posting, eventBus, log)
	customerService := partnerapp.NewCustomerService(customerRepo, eventBus, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, eventBus, log)

	reconciler := startReconciliation(ctx, cfg.Scheduler, ledgerService, entryRepo, log)

	blacklist := newTokenBlacklist(ctx, cfg.Redis, log)

	engine := router.NewEngine(router.EngineConfig{
		Config:         cfg,
		Logger:         log,
		MeterProvider:  meterProvider,
		JWTService:     auth.NewJWTService(cfg.JWT),
		TokenBlacklist: blacklist,
		Handlers: router.APIHandlers{
			Ledger:   handler.NewLedgerHandler(ledgerService),
			Invoice:  handler.NewInvoiceHandler(invoiceService),
			Customer: handler.NewCustomerHandler(customerService),
			Supplier: handler.NewSupplierHandler(supplierService),
			System:   handler.NewSystemHandler(db, cfg.App.Name, cfg.App.Version),
		},
	})

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if reconciler != nil {
		reconciler(shutdownCtx)
	}

	// Flush telemetry after the last request has been served
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// startReconciliation runs the nightly ledger drift check when enabled and
// returns the function that stops it.
func startReconciliation(ctx context.Context, cfg config.SchedulerConfig, svc *ledgerapp.Service, users scheduler.UserProvider, log *zap.Logger) func(context.Context) {
	if !cfg.Enabled {
		return nil
	}
	pool, err := scheduler.NewScheduler(scheduler.ConfigFrom(cfg), scheduler.NewReconcileExecutor(svc, log), log)
	if err != nil {
		log.Fatal("Invalid reconciliation scheduler settings", zap.Error(err))
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
	}
	trigger := scheduler.NewCronTrigger(scheduler.CronTriggerConfigFrom(cfg), pool, users, log)
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start reconciliation trigger", zap.Error(err))
	}

	return func(ctx context.Context) {
		if err := trigger.Stop(ctx); err != nil {
			log.Warn("Reconciliation trigger stop failed", zap.Error(err))
		}
		if err := pool.Stop(ctx); err != nil {
			log.Warn("Reconciliation scheduler stop failed", zap.Error(err))
		}
	}
}

// setupKafkaForwarding subscribes an idempotent Kafka forwarder to the bus.
// Redis backs the dedup store when enabled, so replicas agree on what was sent.
func setupKafkaForwarding(ctx context.Context, cfg *config.Config, bus *event.InMemoryEventBus, log *zap.Logger) *event.KafkaForwarder {
	serializer := event.NewEventSerializer()
	forwarder := event.NewKafkaForwarder(cfg.Event, serializer, log).WithEventTypes(
		ledger.EventTypeLedgerEntryPosted,
		invoice.EventTypeInvoiceIssued,
		invoice.EventTypeInvoicePaid,
		invoice.EventTypeInvoiceDeleted,
	)

	store, err := cache.OpenIdempotencyStore(ctx, cfg.Redis, true, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	idemCfg := shared.DefaultIdempotencyConfig()
	if cfg.Event.IdempotencyTTL > 0 {
		idemCfg.TTL = cfg.Event.IdempotencyTTL
	}
	bus.Subscribe(event.NewIdempotentHandler(forwarder, store, idemCfg, log))

	log.Info("Kafka forwarding enabled",
		zap.Strings("brokers", cfg.Event.KafkaBrokers),
		zap.String("topic", cfg.Event.KafkaTopic),
		zap.Strings("event_types", forwarder.EventTypes()),
	)
	return forwarder
}

func newTokenBlacklist(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) auth.TokenBlacklist {
	if !cfg.Enabled {
		return auth.NewInMemoryTokenBlacklist()
	}
	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("Redis unavailable, token revocation is local to this instance", zap.Error(err))
		return auth.NewInMemoryTokenBlacklist()
	}
	return auth.NewRedisTokenBlacklist(client)
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
