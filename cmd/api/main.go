package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/japanime/backend/internal/config"
	"github.com/japanime/backend/internal/db"
	"github.com/japanime/backend/internal/repo"
	"github.com/japanime/backend/internal/sweeper"
	"github.com/japanime/backend/internal/uploads"
)

func main() {

	// Load configuration
	cfg := config.Load()

	setupLogging(cfg.LogFormat)

	// Connect to database FIRST
	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)

	slog.Info("connected to the database", "host", cfg.DBHost, "name", cfg.DBName)

	// Apply pending migrations
	if err := db.Run(cfg.DatabaseURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Uploads root must exist before the first upload or static read
	store := uploads.New(cfg.UploadDir, cfg.PublicBaseURL)
	if err := store.Init(); err != nil {
		log.Fatalf("Failed to create uploads directory: %v", err)
	}

	// Optional orphan photo sweep
	if cfg.SweepSchedule != "" {
		c, err := sweeper.Run(cfg.SweepSchedule, store, repo.NewUserRepo(database))
		if err != nil {
			log.Fatalf("Invalid SWEEP_SCHEDULE: %v", err)
		}
		defer c.Stop()
	}

	r := newRouter(database, cfg, store)

	// Start server LAST
	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		slog.Info("starting server with TLS", "addr", addr)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		slog.Info("starting server", "addr", addr)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func setupLogging(format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}
}
