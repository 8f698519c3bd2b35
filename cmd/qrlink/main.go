package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/issafronov/qrlink/internal/app/config"
	"github.com/issafronov/qrlink/internal/app/handlers"
	"github.com/issafronov/qrlink/internal/app/qrencode"
	"github.com/issafronov/qrlink/internal/app/service"
	"github.com/issafronov/qrlink/internal/app/session"
	"github.com/issafronov/qrlink/internal/app/storage"
	"github.com/issafronov/qrlink/internal/middleware/compress"
	"github.com/issafronov/qrlink/internal/middleware/logger"
	"github.com/issafronov/qrlink/internal/pprof"
	"github.com/issafronov/qrlink/internal/scripts"
)

func main() {
	if err := runServer(); err != nil {
		panic(err)
	}
}

// Router собирает маршруты HTTP-интерфейса
func Router(h *handlers.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(logger.RequestLogger)
	router.Use(compress.GzipMiddleware)

	router.Post("/api/links", h.CreateLinkHandle)
	router.Get("/api/links", h.GetLinksHandle)
	router.Put("/api/links/{id}", h.EditLinkHandle)
	router.Delete("/api/links/{id}", h.DeleteLinkHandle)
	router.Get("/api/links/{id}/qr", h.PreviewHandle)
	router.Post("/api/links/{id}/copy", h.CopyLinkHandle)
	router.Get("/q", h.RedirectHandle)
	router.Get("/ping", h.Ping)
	return router
}

func runServer() error {
	cfg := config.LoadConfig()

	if err := logger.Initialize(cfg.LoggerLevel); err != nil {
		return err
	}
	pprof.Start()

	store, err := newStorage(context.Background(), cfg)
	if err != nil {
		return err
	}

	sess := session.New(cfg.PreviewCacheSize)
	svc := service.NewService(store, qrencode.New(), sess, cfg.BaseURL)

	h, err := handlers.NewHandler(cfg, svc, store, sess)
	if err != nil {
		return err
	}

	logger.Log.Info("Running server", zap.String("address", cfg.ServerAddress))
	return http.ListenAndServe(cfg.ServerAddress, Router(h))
}

// newStorage выбирает бэкенд: DSN — PostgreSQL с миграциями,
// путь к файлу — журнал на диске, иначе память
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.DatabaseDSN != "" {
		if err := scripts.RunMigrations(cfg.DatabaseDSN); err != nil {
			logger.Log.Error("migrations failed", zap.Error(err))
		}
		return storage.NewPostgresStorage(ctx, cfg.DatabaseDSN)
	}
	if cfg.FileStoragePath != "" {
		return storage.NewFileStorage(cfg)
	}
	return storage.NewMemoryStorage(), nil
}
