package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/api/http/handlers"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Events     *handlers.EventsHandler
	Posts      *handlers.PostsHandler
	Middleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Auth and role gates are attached
// per route: an empty-prefix sub-group would install its gates on the
// whole prefix and block later routes meant for other roles.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	requireAuth := cfg.Middleware.RequireAuth
	requireManager := auth.RequireRole(domain.RoleEventManager)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/logout", requireAuth, cfg.Auth.Logout)
	authGroup.Post("/password/change", requireAuth, cfg.Auth.ChangePassword)
	authGroup.Get("/me", requireAuth, cfg.Auth.Me)

	eventsGroup := app.Group("/events")
	eventsGroup.Get("/", cfg.Events.ListUpcoming)
	// Registered before /:id so the literal segment wins.
	eventsGroup.Get("/managed", requireAuth, requireManager, cfg.Events.ListManaged)
	eventsGroup.Get("/:id", cfg.Events.GetEvent)
	eventsGroup.Get("/:id/posts", cfg.Posts.ListPosts)

	eventsGroup.Post("/", requireAuth, requireManager, cfg.Events.CreateEvent)
	eventsGroup.Patch("/:id", requireAuth, requireManager, cfg.Events.UpdateEvent)
	eventsGroup.Post("/:id/publish", requireAuth, requireManager, cfg.Events.PublishEvent)
	eventsGroup.Post("/:id/cancel", requireAuth, requireManager, cfg.Events.CancelEvent)
	eventsGroup.Get("/:id/registrations", requireAuth, requireManager, cfg.Events.ListRoster)
	eventsGroup.Post("/:id/posts", requireAuth, requireManager, cfg.Posts.CreatePost)

	eventsGroup.Post("/:id/registrations", requireAuth, cfg.Events.Register)
	eventsGroup.Delete("/:id/registrations", requireAuth, cfg.Events.CancelRegistration)

	app.Get("/me/registrations", requireAuth, cfg.Events.ListMyRegistrations)

	postsGroup := app.Group("/posts")
	postsGroup.Get("/:id/comments", cfg.Posts.ListComments)
	postsGroup.Post("/:id/comments", requireAuth, cfg.Posts.AddComment)
	postsGroup.Put("/:id/like", requireAuth, cfg.Posts.LikePost)
	postsGroup.Delete("/:id/like", requireAuth, cfg.Posts.UnlikePost)
}
