package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/shainakels/harmonilink-backend/internal/auth"
	"github.com/shainakels/harmonilink-backend/internal/config"
	"github.com/shainakels/harmonilink-backend/internal/discovery"
	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/logging"
	"github.com/shainakels/harmonilink-backend/internal/mixtape"
	"github.com/shainakels/harmonilink-backend/internal/poll"
	"github.com/shainakels/harmonilink-backend/internal/social"
	"github.com/shainakels/harmonilink-backend/internal/upload"
	"github.com/shainakels/harmonilink-backend/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	Mixtape   *mixtape.Handler
	Social    *social.Handler
	Discovery *discovery.Handler
	Poll      *poll.Handler
	Upload    *upload.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Uploaded images
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Upload.Dir)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Post("/signup", h.Auth.Signup)
		r.Post("/login", h.Auth.Login)
		r.Post("/verify-otp", h.Auth.VerifyOTP)
		r.Post("/resend-otp", h.Auth.ResendOTP)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password", h.Auth.ResetPassword)

		r.Post("/upload", h.Upload.Upload)

		// Everything below needs a valid token
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Post("/pfcustom", h.User.CreateProfile)
			r.Get("/profile", h.User.GetProfile)
			r.Put("/profile", h.User.UpdateProfile)
			r.Post("/complete-onboarding", h.User.CompleteOnboarding)

			r.Post("/create-mixtape", h.Mixtape.Create)
			r.Post("/pfmixtape", h.Mixtape.CreateOnboarding)
			r.Get("/mixtapes", h.Mixtape.List)
			r.Put("/mixtapes/{id}", h.Mixtape.Update)
			r.Delete("/mixtapes/{id}", h.Mixtape.Delete)

			r.Post("/favorites", h.Social.AddFavorite)
			r.Get("/favorites", h.Social.ListFavorites)
			r.Delete("/favorites/{id}", h.Social.RemoveFavorite)
			r.Post("/discard", h.Social.Discard)

			r.Get("/discover", h.Discovery.Discover)
			r.Get("/search", h.Discovery.Search)

			r.Post("/feed", h.Poll.Create)
			r.Get("/feed", h.Poll.List)
			r.Post("/feed/vote", h.Poll.Vote)
			r.Delete("/feed/{id}", h.Poll.Delete)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
