package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kerbside-app/kerbside-backend/api/routes"
	authsvc "github.com/kerbside-app/kerbside-backend/internal/auth"
	"github.com/kerbside-app/kerbside-backend/internal/backup"
	"github.com/kerbside-app/kerbside-backend/internal/booking"
	"github.com/kerbside-app/kerbside-backend/internal/export"
	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/mirror"
	"github.com/kerbside-app/kerbside-backend/internal/notify"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/internal/users"
	"github.com/kerbside-app/kerbside-backend/pkg/auth/session"
	"github.com/kerbside-app/kerbside-backend/pkg/config"
	"github.com/kerbside-app/kerbside-backend/pkg/db"
	"github.com/kerbside-app/kerbside-backend/pkg/logger"
	"github.com/kerbside-app/kerbside-backend/pkg/metrics"
	"github.com/kerbside-app/kerbside-backend/pkg/migrate"
	"github.com/kerbside-app/kerbside-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := authsvc.EnsureAdmin(context.Background(), dbClient, cfg.Bootstrap, cfg.Password); err != nil {
		logg.Error(context.Background(), "failed to seed admin account", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	itemRepo := inventory.NewRepository(dbClient.DB())
	resRepo := reservations.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := authsvc.NewRegisterService(authsvc.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:         itemRepo,
		Reservations: resRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	reservationsService, err := reservations.NewService(resRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
	}

	sheetsClient, err := mirror.NewSheetsClient(context.Background(), cfg.Sheets)
	if err != nil {
		logg.Error(context.Background(), "failed to create sheets client", err)
		os.Exit(1)
	}
	var mirrorService *mirror.Service
	if sheetsClient != nil {
		mirrorService = mirror.NewService(sheetsClient, mirror.RepoSource{
			Reservations: resRepo,
			Items:        itemRepo,
			Users:        userRepo,
		}, logg)
	}

	mailer, err := notify.NewSendgridMailer(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to create sendgrid mailer", err)
		os.Exit(1)
	}
	var notifier *notify.Notifier
	if mailer != nil {
		notifier = notify.NewNotifier(mailer, userRepo, cfg.Sendgrid.AdminEmail)
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	bookingParams := booking.ServiceParams{
		DB:      dbClient,
		Items:   itemRepo,
		ResRepo: resRepo,
		Config:  cfg.Booking,
		Logger:  logg,
		Metrics: bookingMetrics,
	}
	if mirrorService != nil {
		bookingParams.Recorder = mirrorService
	}
	if notifier != nil {
		bookingParams.Notifier = notifier
	}
	bookingService, err := booking.NewService(bookingParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	exportService, err := export.NewService(itemRepo, resRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	backupService, err := backup.NewService(backup.ServiceParams{
		DB:      dbClient,
		Users:   userRepo,
		Items:   itemRepo,
		ResRepo: resRepo,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create backup service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			SessionManager:   sessionManager,
			Registry:         registry,
			AuthService:      authService,
			RegisterService:  registerService,
			InventoryService: inventoryService,
			ReservationsSvc:  reservationsService,
			BookingService:   bookingService,
			ExportService:    exportService,
			BackupService:    backupService,
			MirrorService:    mirrorService,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
