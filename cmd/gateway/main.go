package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	api "github.com/mind-engage/mindengage-exams/internal/api/http"
	auth "github.com/mind-engage/mindengage-exams/internal/auth/middleware"
	"github.com/mind-engage/mindengage-exams/internal/config"
	"github.com/mind-engage/mindengage-exams/internal/db"
	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/logger"
	"github.com/mind-engage/mindengage-exams/internal/storage"
	syncx "github.com/mind-engage/mindengage-exams/internal/sync"
)

func main() {
	cfg := config.FromEnv()
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	var (
		store  exam.Store
		events *syncx.EventRepo
	)
	if cfg.DBDriver == "memory" {
		store = exam.NewInMemoryStore()
	} else {
		octx, cancel := context.WithTimeout(ctx, 10*time.Second)
		dbh, err := db.Open(octx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("db open failed")
		}
		defer dbh.Close()
		store = exam.NewSQLStore(dbh, cfg.DBDriver)
		events = syncx.NewEventRepo(dbh)
	}
	if err := seedAdmin(ctx, store, cfg); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("blob store")
	}

	sessions := exam.NewController(store, exam.WithAutoSubmitHook(func(o exam.Outcome) {
		log.Info().Str("attempt_id", o.Attempt.ID).Float64("percentage", o.Percentage).
			Bool("passed", o.Passed).Msg("time is up, your exam was submitted")
	}))

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logger.Middleware, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Store:          store,
		Sessions:       sessions,
		Auth:           auth.NewAuthService(cfg.AuthSecret),
		Blobs:          bs,
		Events:         events,
		AllowRoleClaim: cfg.Mode == config.ModeOffline,
		PublicURL:      cfg.PublicURL,
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("mode", string(cfg.Mode)).Str("db", cfg.DBDriver).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server")
	}
}

// seedAdmin creates the bootstrap admin when a password is configured and
// the account does not exist yet.
func seedAdmin(ctx context.Context, store exam.Store, cfg config.Config) error {
	if cfg.AdminPassword == "" || cfg.AdminEmail == "" {
		return nil
	}
	if _, err := store.FindUserByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, exam.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	log.Info().Str("email", cfg.AdminEmail).Msg("creating admin account")
	return store.PutUser(ctx, exam.User{
		ID: uuid.NewString(), Name: "Administrator", Email: cfg.AdminEmail, Role: "admin", PassHash: hash,
	})
}
