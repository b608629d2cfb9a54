package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/config"
	"github.com/keystonepos/backend/internal/repository/mongodb"
	"github.com/keystonepos/backend/internal/repository/sheets"
	"github.com/keystonepos/backend/internal/scheduler"
	"github.com/keystonepos/backend/internal/server/handlers"
	"github.com/keystonepos/backend/internal/server/router"
	catalogsvc "github.com/keystonepos/backend/internal/service/catalog"
	reportingsvc "github.com/keystonepos/backend/internal/service/reporting"
	salessvc "github.com/keystonepos/backend/internal/service/sales"
	"github.com/keystonepos/backend/pkg/clients/alerts"
	"github.com/keystonepos/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.New(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	catalogSvc := catalogsvc.NewService(repo, baseLogger.Named("svc.catalog"))

	// Default tax tiers are installed once here instead of on every rate
	// read; the engine assumes they exist before the first sale.
	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := catalogSvc.EnsureDefaultTaxRates(initCtx); err != nil {
		cancelInit()
		baseLogger.Fatal("failed to install default tax rates", zap.Error(err))
	}
	cancelInit()

	salesSvc := salessvc.NewService(repo, repo, cfg.Sales, baseLogger.Named("svc.sales"))

	var exporter reportingsvc.Exporter
	if cfg.SheetsEnabled() {
		sheetsExporter, err := sheets.NewReportExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetsExporter
		baseLogger.Info("sheets report export enabled")
	}

	reportingSvc := reportingsvc.NewService(repo, repo, exporter, baseLogger.Named("svc.reporting"))

	var alertsClient alerts.Client
	if cfg.AlertsEnabled() {
		alertsClient = alerts.NewClient(cfg.Alerts)
		baseLogger.Info("low stock webhook alerts enabled")
	}

	salesHandler := handlers.NewSalesHandler(salesSvc, repo, baseLogger.Named("handlers.sales"))
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, baseLogger.Named("handlers.catalog"))
	reportHandler := handlers.NewReportHandler(reportingSvc, baseLogger.Named("handlers.reports"))
	engine := router.New(salesHandler, catalogHandler, reportHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, alertsClient, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
