package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/repository/mongodb"
	"github.com/mamadbah2/pantry/internal/repository/sheets"
	"github.com/mamadbah2/pantry/internal/repository/sqlite"
	"github.com/mamadbah2/pantry/internal/scheduler"
	"github.com/mamadbah2/pantry/internal/server/handlers"
	"github.com/mamadbah2/pantry/internal/server/router"
	dashboardsvc "github.com/mamadbah2/pantry/internal/service/dashboard"
	inventorysvc "github.com/mamadbah2/pantry/internal/service/inventory"
	preferencessvc "github.com/mamadbah2/pantry/internal/service/preferences"
	"github.com/mamadbah2/pantry/internal/service/reminders"
	reportingsvc "github.com/mamadbah2/pantry/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/pantry/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/pantry/pkg/clients/whatsapp"
	"github.com/mamadbah2/pantry/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reminders.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
	}
	defer db.Close()

	var deliveryLog mongodb.DeliveryLog
	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		deliveryLog = mongoRepo
		baseLogger.Info("reminder delivery log enabled")
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
		baseLogger.Info("sheets export enabled", zap.String("range", cfg.Sheets.Range))
	}

	var waClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		waClient = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp reminders enabled")
	} else {
		baseLogger.Warn("whatsapp not configured, reminders are only logged")
	}

	notifier := whatsappsvc.NewNotifier(waClient, cfg.WhatsApp.Recipient, deliveryLog, baseLogger.Named("svc.whatsapp"))

	jobs := scheduler.NewJobs(notifier, baseLogger.Named("scheduler.jobs"))
	jobs.Start()
	defer jobs.Stop()

	planner := reminders.NewPlanner(loc)
	planner.Hour = cfg.Reminders.Hour
	planner.TestDelay = cfg.Reminders.TestDelay

	prefsSvc := preferencessvc.NewService(sqlite.NewSettingsRepository(db), baseLogger.Named("svc.preferences"))
	if _, err := prefsSvc.Load(context.Background()); err != nil {
		baseLogger.Fatal("failed to load preferences", zap.Error(err))
	}

	inventorySvc := inventorysvc.NewService(sqlite.NewItemRepository(db), planner, jobs, prefsSvc, baseLogger.Named("svc.inventory"))
	if _, err := inventorySvc.Load(context.Background()); err != nil {
		baseLogger.Fatal("failed to load inventory", zap.Error(err))
	}
	if _, err := inventorySvc.RestoreReminders(context.Background()); err != nil {
		baseLogger.Fatal("failed to restore reminders", zap.Error(err))
	}

	ticker := scheduler.NewTicker(cfg.Reminders.TickInterval, baseLogger.Named("scheduler.ticker"))
	dashboardSvc := dashboardsvc.NewService(inventorySvc, ticker, baseLogger.Named("svc.dashboard"))
	reportingSvc := reportingsvc.NewService(inventorySvc, sheetsRepo, cfg.Sheets.Range, baseLogger.Named("svc.reporting"))

	var messenger scheduler.Messenger
	if waClient != nil {
		messenger = notifier
	}
	sched := scheduler.NewScheduler(cfg.Digest.CronSchedule, loc, reportingSvc, messenger, cfg.WhatsApp.Recipient, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Inventory:   handlers.NewInventoryHandler(inventorySvc, dashboardSvc, baseLogger.Named("handlers.inventory")),
		Preferences: handlers.NewPreferencesHandler(prefsSvc, baseLogger.Named("handlers.preferences")),
		Reminders:   handlers.NewRemindersHandler(jobs, notifier, baseLogger.Named("handlers.reminders")),
		Live:        handlers.NewLiveHandler(dashboardSvc, baseLogger.Named("handlers.live")),
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("timezone", loc.String()))
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
