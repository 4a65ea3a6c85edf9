package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/inkwell-be/internal/api/handlers"
	"github.com/isdelr/inkwell-be/internal/auth"
	"github.com/isdelr/inkwell-be/internal/services"
	"github.com/isdelr/inkwell-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router. Reads are public;
// everything that mutates state sits behind the token middleware.
func NewRouter(
	hub *websocket.Hub,
	resolver auth.TokenResolver,
	authService services.AuthServiceProvider,
	userService services.UserServiceProvider,
	articleService services.ArticleServiceProvider,
	eventService services.EventServiceProvider,
	allowedOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	articleHandler := handlers.NewArticleHandler(articleService)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	requireAuth := auth.Middleware(resolver, handlers.Unauthenticated)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// Live activity feed
		r.Get("/ws", wsHandler.Serve)

		// Public auth endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Session management for authenticated users
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/user", authHandler.GetMe)
			r.Post("/logout", authHandler.Logout)
			r.Post("/logout-all", authHandler.LogoutAll)
			r.Get("/events", eventHandler.GetRecent)
		})

		// REST API endpoints for articles
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", articleHandler.GetAll)
			r.Get("/{id}", articleHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", articleHandler.Create)
				r.Put("/{id}", articleHandler.Update)
				r.Delete("/{id}", articleHandler.Delete)
			})
		})
	})

	return r
}
