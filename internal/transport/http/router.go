package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"artspace/internal/handler"
	"artspace/internal/httputil"
	authmw "artspace/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FollowHandler       *handler.FollowHandler
	ArtworkHandler      *handler.ArtworkHandler
	CommentHandler      *handler.CommentHandler
	NotificationHandler *handler.NotificationHandler
	WSHandler           *handler.WSHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	// Public user endpoints with optional authentication
	r.Route("/users", func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))
		r.Get("/search", cfg.UserHandler.Search)
		r.Get("/{id}", cfg.UserHandler.GetProfile)
		r.Get("/{id}/artworks", cfg.ArtworkHandler.ListByUser)
	})

	// Public artwork endpoints with optional authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))
		r.Get("/artworks", cfg.ArtworkHandler.Explore)
		r.Get("/artworks/{id}", cfg.ArtworkHandler.Get)
		r.Get("/artworks/{id}/comments", cfg.CommentHandler.List)
	})

	// Real-time delivery channel; auth comes from the token query
	// parameter since browsers can't set headers on the WS handshake
	r.With(authmw.AuthMiddleware(cfg.JWTSecret)).Get("/ws", cfg.WSHandler.Serve)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Patch("/profile", cfg.UserHandler.UpdateProfile)
		r.Delete("/profile/photo", cfg.UserHandler.RemoveAvatar)
		r.Patch("/settings/username", cfg.UserHandler.ChangeUsername)
		r.Patch("/settings/password", cfg.UserHandler.ChangePassword)
		r.Delete("/settings/account", cfg.UserHandler.DeleteAccount)

		// Follow/unfollow actions
		r.Post("/follow/{id}", cfg.FollowHandler.Follow)
		r.Post("/unfollow/{id}", cfg.FollowHandler.Unfollow)

		// Artwork endpoints
		r.Post("/artworks", cfg.ArtworkHandler.Create)
		r.Put("/artworks/{id}", cfg.ArtworkHandler.Edit)
		r.Delete("/artworks/{id}", cfg.ArtworkHandler.Delete)
		r.Post("/artworks/{id}/like", cfg.ArtworkHandler.ToggleLike)

		// Comment endpoints
		r.Post("/artworks/{id}/comments", cfg.CommentHandler.Create)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

		// Notification ledger
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Get("/unread-count", cfg.NotificationHandler.UnreadCount)
			r.Patch("/{id}/read", cfg.NotificationHandler.MarkRead)
		})
	})

	return r
}
