package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/config"
	"github.com/mamadbah2/cashrecon/internal/repository/memory"
	"github.com/mamadbah2/cashrecon/internal/repository/mongodb"
	"github.com/mamadbah2/cashrecon/internal/repository/sheets"
	"github.com/mamadbah2/cashrecon/internal/scheduler"
	"github.com/mamadbah2/cashrecon/internal/server/handlers"
	"github.com/mamadbah2/cashrecon/internal/server/router"
	"github.com/mamadbah2/cashrecon/internal/service/reconciliation"
	reportingsvc "github.com/mamadbah2/cashrecon/internal/service/reporting"
	salessvc "github.com/mamadbah2/cashrecon/internal/service/sales"
	whatsappsvc "github.com/mamadbah2/cashrecon/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/cashrecon/pkg/clients/whatsapp"
	"github.com/mamadbah2/cashrecon/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}

	var historyStore reconciliation.HistoryStore
	if cfg.MongoDB.URI != "" {
		mongoStore, err := mongodb.NewHistoryStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb history store", zap.Error(err))
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		historyStore = mongoStore
	} else {
		baseLogger.Warn("MONGODB_URI not set, reconciliation history kept in memory")
		historyStore = memory.NewHistoryStore()
	}

	tracker := reconciliation.NewTracker(historyStore, baseLogger.Named("history"))
	salesSvc := salessvc.NewService(sheetsRepo, tracker, salessvc.Options{
		SheetRange: cfg.Sheets.SalesRange,
		Rules:      cfg.Rules,
		Registers:  cfg.Registers,
	}, baseLogger.Named("svc.sales"))
	reportingSvc := reportingsvc.NewService(baseLogger.Named("svc.reporting"))

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, manager notifications disabled")
	}
	notifier := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, baseLogger.Named("svc.whatsapp"))

	salesHandler := handlers.NewSalesHandler(salesSvc, reportingSvc, baseLogger.Named("handlers.sales"))
	engine := router.New(salesHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, salesSvc, reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
