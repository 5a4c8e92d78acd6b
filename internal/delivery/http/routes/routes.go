package routes

import (
	"hackmate/internal/delivery/http/handler"
	"hackmate/internal/delivery/http/middleware"
	"hackmate/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	Health          *handler.HealthHandler
	Auth            *handler.AuthHandler
	PostFeed        *handler.PostFeedHandler
	Recommendations *handler.RecommendationHandler
	Applications    *handler.ApplicationHandler

	AuthMiddleware *middleware.AuthMiddleware
	Feed           *ws.Handler
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
	if r.Feed != nil {
		app.Get("/ws/feed", r.Feed.HandleFeedWS)
	}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	if r.Auth != nil {
		r.Auth.RegisterRoutes(v1.Group("/auth"))
	}

	if r.AuthMiddleware == nil {
		return
	}
	authed := v1.Group("", r.AuthMiddleware.Middleware())

	posts := authed.Group("/posts")
	if r.PostFeed != nil {
		r.PostFeed.RegisterRoutes(posts)
	}
	if r.Recommendations != nil {
		r.Recommendations.RegisterRoutes(posts)
	}
	if r.Applications != nil {
		r.Applications.RegisterPostRoutes(posts)
		r.Applications.RegisterRoutes(authed.Group("/applications"))
	}
}
