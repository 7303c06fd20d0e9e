package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/portal-dev/portal/backend/internal/setup"
	mw "github.com/portal-dev/portal/shared/middleware"
	"github.com/portal-dev/portal/shared/middleware/metrics"
)

// New wires every API route under /api.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware("backend"))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.Backend.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.Frontend.SecureCookies, mw.APICSP))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/test", h.Test)
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Get("/search", h.SearchPosts)
			r.Get("/{id}", h.GetPost)

			r.Group(func(r chi.Router) {
				r.Use(authMw.NeedAuth())
				r.Get("/my", h.MyPosts)
				r.Post("/", h.CreatePost)
				r.Put("/{id}", h.UpdatePost)
				r.Delete("/{id}", h.DeletePost)
			})
		})
	})

	return r
}
