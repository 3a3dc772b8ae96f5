package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"nfamatch/internal/server"
	"nfamatch/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(getEnv("NFAMATCH_LOG_LEVEL", "info")),
	}))
	slog.SetDefault(logger)

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	port := getEnv("NFAMATCH_PORT", "8080")
	dataDir := getEnv("NFAMATCH_DATA_DIR", "")

	logger.Info("starting nfamatch server",
		"version", Version,
		"port", port,
		"config", *configPath,
		"data_dir", dataDir,
		"max_pattern_length", cfg.MaxPatternLength,
		"max_text_length", cfg.MaxTextLength,
		"max_dfa_states", cfg.MaxDFAStates,
	)

	// Named patterns live in memory only unless a data directory is set.
	registry := server.NewRegistry(cfg, logger)
	if dataDir != "" {
		if err := storage.EnsureDir(dataDir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create data dir: %v\n", err)
			os.Exit(1)
		}
		registry, err = server.OpenRegistry(cfg, filepath.Join(dataDir, "patterns.json"), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open pattern registry: %v\n", err)
			os.Exit(1)
		}
	}

	// Create HTTP handler and register API routes.
	handler := server.NewHandler(registry, cfg, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"version": Version,
		})
	})

	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ready",
			"patterns": len(registry.Names()),
		})
	})

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"name":    "nfamatch",
			"version": Version,
		})
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
