package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"BoleiaWeb/internal/bootstrap"
	"BoleiaWeb/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadAppConfig()

	httpClient := config.NewHTTPClient(cfg)
	validate := config.NewValidator()
	chiMux := config.NewChi(cfg)

	app := bootstrap.Init(cfg, validate, httpClient, chiMux)
	defer app.Close()

	addr := fmt.Sprintf(":%s", cfg.AppPort)
	slog.Info("Starting BoleiaWeb", "port", cfg.AppPort)

	if err := http.ListenAndServe(addr, chiMux); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
