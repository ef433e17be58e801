package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/tanda/internal/api"
	"github.com/mmynk/tanda/internal/config"
	"github.com/mmynk/tanda/internal/middleware"
	"github.com/mmynk/tanda/internal/service"
	"github.com/mmynk/tanda/internal/storage"
	"github.com/mmynk/tanda/internal/storage/jsonfile"
	"github.com/mmynk/tanda/internal/storage/sqlite"
	"github.com/mmynk/tanda/internal/tips"
	"github.com/mmynk/tanda/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load configuration", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		fatal("Failed to initialize storage", err)
	}
	defer store.Close()

	svc, err := service.NewGroupService(context.Background(), store)
	if err != nil {
		fatal("Failed to load group state", err)
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestLogger)
	router.Use(middleware.Metrics)

	handler := api.NewHandler(svc, tips.New(cfg.TipURL))
	handler.RegisterRoutes(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	slog.Info("Server starting", "address", cfg.Addr, "store", cfg.Store)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		fatal("Server failed", err)
	}
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreJSONFile:
		slog.Info("Using JSON file store", "path", cfg.StatePath)
		return jsonfile.New(cfg.StatePath)
	default:
		slog.Info("Using SQLite store", "path", cfg.DBPath)
		return sqlite.New(cfg.DBPath)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
