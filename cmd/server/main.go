package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/transitledger/backend/internal/application/ledger"
	payrollapp "github.com/transitledger/backend/internal/application/payroll"
	revenueapp "github.com/transitledger/backend/internal/application/revenue"
	syncapp "github.com/transitledger/backend/internal/application/syncdata"
	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/infrastructure/audit"
	"github.com/transitledger/backend/internal/infrastructure/cache"
	"github.com/transitledger/backend/internal/infrastructure/config"
	"github.com/transitledger/backend/internal/infrastructure/external"
	"github.com/transitledger/backend/internal/infrastructure/logger"
	"github.com/transitledger/backend/internal/infrastructure/persistence"
	"github.com/transitledger/backend/internal/infrastructure/scheduler"
	"github.com/transitledger/backend/internal/interfaces/http/handler"
	"github.com/transitledger/backend/internal/interfaces/http/middleware"
	"github.com/transitledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version))

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck

	var auditRecorder shared.AuditRecorder = shared.NopAuditRecorder{}
	if cfg.Audit.Enabled {
		auditRecorder = audit.NewHTTPRecorder(cfg.Audit, log)
	}

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	entryRepo := persistence.NewGormJournalEntryRepository(db.DB)
	revenueRepo := persistence.NewGormRevenueRepository(db.DB)
	receivableRepo := persistence.NewGormReceivableRepository(db.DB)
	paymentRepo := persistence.NewGormInstallmentPaymentRepository(db.DB)
	configRepo := persistence.NewGormSystemConfigurationRepository(db.DB)
	payrollRepo := persistence.NewGormPayrollRecordRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeCacheRepository(db.DB)
	busRepo := persistence.NewGormBusCacheRepository(db.DB)
	rentalRepo := persistence.NewGormRentalCacheRepository(db.DB)
	tripRepo := persistence.NewGormBusTripCacheRepository(db.DB)

	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)
	revenueScope := persistence.NewGormRevenueTransactionScope(db.DB)

	gateway := external.NewGateway(cfg.External, log)

	postingAccounts := revenueapp.PostingAccounts{
		Cash:           cfg.Accounts.Cash,
		TripReceivable: cfg.Accounts.TripReceivable,
		TripRevenue:    cfg.Accounts.TripRevenue,
		FuelRecovery:   cfg.Accounts.FuelRecovery,
	}
	if err := postingAccounts.Validate(); err != nil {
		log.Fatal("invalid posting account configuration", zap.Error(err))
	}

	accountService := ledgerapp.NewAccountService(accountRepo, auditRecorder, log)
	entryService := ledgerapp.NewJournalEntryService(entryRepo, accountRepo, ledgerScope, auditRecorder, log)
	configService := revenueapp.NewSystemConfigService(configRepo,
		cache.NewRedisConfigCache(redisClient), auditRecorder, log)
	revenueService := revenueapp.NewTripRevenueService(revenueRepo, tripRepo, revenueScope,
		configService, postingAccounts, auditRecorder, log)
	paymentService := revenueapp.NewPaymentService(receivableRepo, paymentRepo, revenueScope,
		postingAccounts, auditRecorder, log)
	payrollService := payrollapp.NewService(gateway.HR(), payrollRepo, auditRecorder, log)
	syncService := syncapp.NewService(gateway, employeeRepo, busRepo, rentalRepo, tripRepo,
		auditRecorder, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("invalid trusted proxy configuration", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
	)

	router.Setup(engine, router.Handlers{
		System:      handler.NewSystemHandler(db, version),
		Accounts:    handler.NewAccountHandler(accountService),
		Entries:     handler.NewJournalEntryHandler(entryService),
		Revenues:    handler.NewTripRevenueHandler(revenueService),
		Receivables: handler.NewReceivableHandler(paymentService),
		Config:      handler.NewSystemConfigHandler(configService),
		Payroll:     handler.NewPayrollHandler(payrollService),
		Sync:        handler.NewSyncHandler(syncService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	var syncTrigger *scheduler.SyncTrigger
	if cfg.Scheduler.Enabled {
		syncTrigger = scheduler.NewSyncTrigger(syncService, cfg.Scheduler, log)
		syncTrigger.Start()
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if syncTrigger != nil {
		syncTrigger.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
