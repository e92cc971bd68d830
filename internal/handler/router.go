package handler

import (
	"net/http"
	"time"

	"cineverse/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers is everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Content *ContentHandler
	Admin   *AdminHandler
	Me      *MeHandler
	Stream  *StreamHandler

	Authenticator Authenticator
	Roles         RoleSource
	Ping          Pinger

	CORSOrigins   []string
	AuthRateLimit int // requests per minute per IP, 0 disables
	TrustProxy    bool
}

func NewRouter(h Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// without a trusted proxy the forwarding headers are client controlled
	// and would let anyone pick the IP the /auth limiter keys on
	if h.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(logger.Get()))
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// =============
	// Public
	// =============
	r.Get("/health", Health(h.Ping))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.AuthRateLimit > 0 {
				r.Use(httprate.LimitByIP(h.AuthRateLimit, time.Minute))
			}
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/federated", h.Auth.Federated)
		})
		r.With(JWTAuth(h.Authenticator)).Post("/logout", h.Auth.Logout)
	})

	r.Get("/content", h.Content.List)
	r.Get("/content/home", h.Content.Home)
	r.Get("/content/{id}", h.Content.Get)
	r.Get("/watch/{id}", h.Content.Watch)

	r.Get("/ws/content", h.Stream.Content)
	r.Get("/ws/browse", h.Stream.Browse)

	// ===========================
	// Authenticated
	// ===========================
	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(h.Authenticator))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.Auth.Me)
			r.Get("/watchlist", h.Me.Watchlist)
			r.Post("/watchlist", h.Me.AddToWatchlist)
			r.Delete("/watchlist/{id}", h.Me.RemoveFromWatchlist)
			r.Post("/history", h.Me.RecordView)
			r.Get("/recommendations", h.Me.Recommendations)
		})

		// ---- admin only ----
		r.Group(func(r chi.Router) {
			r.Use(AdminOnly(h.Roles))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/content", h.Admin.List)
				r.Post("/content", h.Admin.Create)
				r.Post("/content/metadata", h.Admin.Metadata)
				r.Get("/content/{id}/form", h.Admin.EditForm)
				r.Put("/content/{id}", h.Admin.Update)
				r.Delete("/content/{id}", h.Admin.Delete)
				r.Put("/users/{id}/role", h.Auth.SetRole)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}
