package main

import (
	stdlog "log"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	announcementsHandler "github.com/emergencybox/emergencybox/internal/announcements/handler"
	announcementsRepo "github.com/emergencybox/emergencybox/internal/announcements/repo"
	appConfig "github.com/emergencybox/emergencybox/internal/config"
	filesHandler "github.com/emergencybox/emergencybox/internal/files/handler"
	"github.com/emergencybox/emergencybox/internal/files/ingest"
	filesRepo "github.com/emergencybox/emergencybox/internal/files/repo"
	mwLogger "github.com/emergencybox/emergencybox/internal/http-server/middleware/logger"
	"github.com/emergencybox/emergencybox/internal/lib/logger/handlers/slogpretty"
	"github.com/emergencybox/emergencybox/internal/lib/logger/sl"
	messagesHandler "github.com/emergencybox/emergencybox/internal/messages/handler"
	messagesRepo "github.com/emergencybox/emergencybox/internal/messages/repo"
	"github.com/emergencybox/emergencybox/internal/metrics"
	"github.com/emergencybox/emergencybox/internal/storage/sqlite"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found, skipping...")
	}

	cfg := appConfig.MustLoad()

	log := setupLogger(cfg.Env)
	log.Info("starting emergencybox", slog.String("env", cfg.Env))

	db, err := sqlite.Open(cfg.StoragePath)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	log.Info("storage ready", slog.String("path", cfg.StoragePath))

	msgRepo := messagesRepo.New(db)
	fRepo := filesRepo.New(db)
	annRepo := announcementsRepo.New(db)

	ingestSvc, err := ingest.New(cfg.Uploads.Root, cfg.Uploads.MaxFileSize, fRepo, log)
	if err != nil {
		log.Error("failed to init upload root", sl.Err(err))
		os.Exit(1)
	}

	mh := messagesHandler.New(msgRepo, cfg.Messages.ListLimit, log)
	fh := filesHandler.New(fRepo, ingestSvc, cfg.Uploads.MaxFileSize, log)
	ah := announcementsHandler.New(annRepo, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware())

	router.Route("/api", func(r chi.Router) {
		r.Post("/messages", mh.Send())
		r.Get("/messages", mh.List())
		r.Delete("/messages/{id}", mh.Delete())
		r.Delete("/messages", mh.Clear())

		r.Post("/files", fh.Upload())
		r.Get("/files", fh.List())
		r.Delete("/files/{id}", fh.Delete())

		r.Post("/announcement", ah.Set())
		r.Get("/announcement", ah.Get())
		r.Delete("/announcement", ah.Clear())
	})

	router.Get("/uploads/*", fh.Serve())
	router.Handle("/metrics", promhttp.Handler())

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	if err := srv.ListenAndServe(); err != nil {
		log.Error("failed to start server", sl.Err(err))
	}

	log.Error("server stopped")
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return setupPrettySlog()
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
