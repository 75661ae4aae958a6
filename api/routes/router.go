package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kerbside-app/kerbside-backend/api/controllers"
	"github.com/kerbside-app/kerbside-backend/api/middleware"
	"github.com/kerbside-app/kerbside-backend/internal/auth"
	"github.com/kerbside-app/kerbside-backend/internal/backup"
	"github.com/kerbside-app/kerbside-backend/internal/booking"
	"github.com/kerbside-app/kerbside-backend/internal/export"
	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/mirror"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/pkg/auth/session"
	"github.com/kerbside-app/kerbside-backend/pkg/config"
	"github.com/kerbside-app/kerbside-backend/pkg/logger"
	"github.com/kerbside-app/kerbside-backend/pkg/redis"
)

// Params carries everything the router needs to wire the HTTP surface.
type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	SessionManager *session.Manager
	Registry       *prometheus.Registry

	AuthService      auth.Service
	RegisterService  auth.RegisterService
	InventoryService inventory.Service
	ReservationsSvc  reservations.Service
	BookingService   booking.Service
	ExportService    export.Service
	BackupService    backup.Service
	MirrorService    *mirror.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, p.SessionManager, logg)).Post("/logout", controllers.AuthLogout(p.AuthService, logg))
	})

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Get("/", controllers.PublicListItems(p.InventoryService, logg))
		r.Get("/{itemID}", controllers.PublicGetItem(p.InventoryService, logg))
	})

	r.Route("/api/v1/reservations", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))
		r.Post("/", controllers.CreateReservation(p.BookingService, logg))
		r.Get("/", controllers.ListMyReservations(p.ReservationsSvc, logg))
		r.Get("/{reservationID}", controllers.GetReservation(p.ReservationsSvc, logg))
		r.Post("/{reservationID}/cancel", controllers.CancelReservation(p.BookingService, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.AdminListItems(p.InventoryService, logg))
			r.Post("/", controllers.AdminCreateItem(p.InventoryService, logg))
			r.Patch("/{itemID}", controllers.AdminUpdateItem(p.InventoryService, logg))
			r.Delete("/{itemID}", controllers.AdminDeleteItem(p.InventoryService, logg))
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", controllers.AdminListReservations(p.ReservationsSvc, logg))
			r.Get("/{reservationID}", controllers.GetReservation(p.ReservationsSvc, logg))
			r.Post("/{reservationID}/cancel", controllers.CancelReservation(p.BookingService, logg))
			r.Post("/{reservationID}/status", controllers.AdminSetReservationStatus(p.BookingService, logg))
		})

		r.Get("/export", controllers.AdminExportWorkbook(p.ExportService, logg))

		r.Route("/backup", func(r chi.Router) {
			r.Get("/", controllers.AdminBackupExport(p.BackupService, logg))
			r.Post("/restore", controllers.AdminBackupRestore(p.BackupService, logg))
		})

		r.Post("/mirror/snapshot", controllers.AdminMirrorSnapshot(p.MirrorService, logg))
	})

	return r
}
