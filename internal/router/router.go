package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boardlink-dev/boardlink/internal/config"
	"github.com/boardlink-dev/boardlink/internal/handler"
	mw "github.com/boardlink-dev/boardlink/internal/middleware"
	"github.com/boardlink-dev/boardlink/internal/middleware/metrics"
)

// New creates and configures the chi router with all routes.
func New(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(mw.Recover)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Public.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/boards/{id}", func(r chi.Router) {
		r.MethodNotAllowed(handler.MethodNotAllowed("GET, PUT, DELETE"))
		r.Get("/", h.GetBoard)
		r.Put("/", h.PutBoard)
		r.Delete("/", h.DeleteBoard)
		r.Delete("/media/{index}", h.DeleteMediaByIndex)
	})

	r.Route("/media", func(r chi.Router) {
		r.MethodNotAllowed(handler.MethodNotAllowed("POST"))
		r.Post("/upload", h.UploadMedia)
	})

	r.Route("/share", func(r chi.Router) {
		r.MethodNotAllowed(handler.MethodNotAllowed("GET, POST"))
		r.Post("/create", h.CreateShare)
		r.Get("/{slug}", h.ResolveShare)
		r.Get("/{slug}/qr", h.ShareQR)
	})

	return r
}
