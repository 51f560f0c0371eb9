package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/dealdesk/internal/api"
	"github.com/mmynk/dealdesk/internal/auth"
	"github.com/mmynk/dealdesk/internal/config"
	"github.com/mmynk/dealdesk/internal/middleware"
	"github.com/mmynk/dealdesk/internal/ratelimit"
	"github.com/mmynk/dealdesk/internal/storage/sqlite"
	"github.com/mmynk/dealdesk/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, store)
	admin := auth.NewAdminVerifier(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminPasswordHash)
	limiter := ratelimit.New()

	mux := http.NewServeMux()
	mux.Handle("/api/", api.New(store, sessions, admin, limiter).Routes())
	mux.Handle("/metrics", promhttp.Handler())

	handler := middleware.Logging(middleware.Metrics(mux))

	// Wrap with h2c so HTTP/2 works without TLS behind a terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
