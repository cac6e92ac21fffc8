package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/api"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/auth"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/availability"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/cache"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/config"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/middleware"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/migrate"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/repo"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/seed"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	var pool *pgxpool.Pool
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("config postgres: %v", err)
		}
		if cfg.DBMaxConns > 0 {
			poolConfig.MaxConns = int32(cfg.DBMaxConns)
		}
		if cfg.DBMinConns > 0 {
			poolConfig.MinConns = int32(cfg.DBMinConns)
		}
		if cfg.DBMaxConnLifetime > 0 {
			poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
		}
		pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			log.Fatalf("conexão postgres: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("ping postgres: %v", err)
		}
		// GORM compartilha o mesmo pool via adaptador database/sql do pgx.
		db, err = gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), &gorm.Config{})
		if err != nil {
			log.Fatalf("gorm: %v", err)
		}
		if err := migrate.Run(context.Background(), db, "migrations"); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		if err := seed.Run(context.Background(), db); err != nil {
			log.Printf("seed (ignored if already applied): %v", err)
		}
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if pool == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no database"}`))
			return
		}
		if err := pool.Ping(context.Background()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"db unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	h := &api.Handler{
		Pool:   pool,
		DB:     db,
		Cfg:    cfg,
		Cache:  cache.New(30 * time.Second),
		Engine: availability.NewEngine(&repo.AvailabilityProvider{DB: db}),
	}

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(cfg.JWTSecret))
	protected.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	protected.Handle("/me/available-slots", middleware.RequireRole(auth.RoleAttendant, auth.RoleSuperAdmin)(http.HandlerFunc(h.GetAvailableSlots))).Methods(http.MethodGet)
	protected.Handle("/me/available-slots/range", middleware.RequireRole(auth.RoleAttendant, auth.RoleSuperAdmin)(http.HandlerFunc(h.GetAvailableSlotsRange))).Methods(http.MethodGet)
	protected.Handle("/me/schedule-windows", middleware.RequireRole(auth.RoleAttendant, auth.RoleSuperAdmin)(http.HandlerFunc(h.GetMyScheduleWindows))).Methods(http.MethodGet)
	protected.Handle("/me/schedule-windows", middleware.RequireRole(auth.RoleAttendant, auth.RoleSuperAdmin)(http.HandlerFunc(h.PutMyScheduleWindows))).Methods(http.MethodPut)
	protected.Handle("/appointments", middleware.RequireRole(auth.RoleAttendant, auth.RoleSuperAdmin)(http.HandlerFunc(h.ListAppointments))).Methods(http.MethodGet)
	protected.Handle("/appointments", middleware.RequireRole(auth.RoleAttendant, auth.RoleSuperAdmin)(http.HandlerFunc(h.CreateAppointment))).Methods(http.MethodPost)
	protected.Handle("/appointments/{id}", middleware.RequireRole(auth.RoleAttendant, auth.RoleSuperAdmin)(http.HandlerFunc(h.PatchAppointment))).Methods(http.MethodPatch)

	var handler http.Handler = r
	handler = middleware.Gzip(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)
	handler = middleware.Timeout(cfg.RequestTimeoutSec)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recover(handler)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[server] listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Printf("[server] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
}
