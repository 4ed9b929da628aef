package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/divyanshkhurana06/mailed0/internal/tracking"
)

// SetupRoutes configures all API routes, mounting the public pixel handler
// alongside the dashboard routes. The pixel route stays unauthenticated by
// contract: it is fetched by mail clients and image proxies.
func SetupRoutes(h *Handlers, pixel *tracking.Handler, frontendURL string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL, "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Public pixel endpoint.
		r.Get("/open", pixel.HandleOpen)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/google", h.HandleGoogleAuth)
			r.Get("/google/callback", h.HandleGoogleCallback)
			r.Get("/check", h.HandleAuthCheck)
		})

		r.Route("/emails", func(r chi.Router) {
			r.Get("/", h.HandleInboxEmails)
			r.Get("/sent", h.HandleSentEmails)
			r.Post("/{id}/summarize", h.HandleSummarizeEmail)
		})

		r.Post("/extension/email-sent", h.HandleExtensionEmailSent)
	})

	return r
}
