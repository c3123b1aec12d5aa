package main

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/japanime/backend/internal/config"
	"github.com/japanime/backend/internal/handlers"
	"github.com/japanime/backend/internal/middleware"
	"github.com/japanime/backend/internal/repo"
	"github.com/japanime/backend/internal/uploads"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires middleware, handlers, and routes. All process-wide state
// (store pool, config, upload store) is passed in explicitly so tests can
// build a router around fakes.
func newRouter(database *sql.DB, cfg config.Config, store *uploads.Store) chi.Router {
	users := repo.NewUserRepo(database)

	authH := &handlers.AuthHandler{
		Users:      users,
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	profileH := &handlers.ProfileHandler{Users: users}
	photoH := &handlers.PhotoHandler{Users: users, Store: store}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.RateLimit(cfg.RateLimitStrategy, cfg.RateLimitPerMinute, cfg.RateLimitBurst))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Japanime backend is live!"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Uploaded profile photos
	r.Get("/uploads/{filename}", photoH.ServeFile)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

		// Public
		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/refresh", authH.Refresh)
		})

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))
			r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
				Get("/profile", profileH.Get)
			r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
				Patch("/update-profile", profileH.Update)
			r.With(middleware.MaxBytes(cfg.MaxUploadBytes)).
				Post("/upload-photo", photoH.Upload)
			r.Post("/remove-photo", photoH.Remove)
		})
	})

	return r
}
