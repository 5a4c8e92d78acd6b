package app

import (
	"fmt"
	"strings"

	"hackmate/internal/delivery/http/handler"
	"hackmate/internal/delivery/http/middleware"
	"hackmate/internal/delivery/http/routes"
	"hackmate/internal/domain/recommend"
	"hackmate/internal/pkg/jwt"
	"hackmate/internal/repository"
	"hackmate/internal/usecase"
	"hackmate/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
	Hub   *ws.Hub
}

// Bootstrap wires repositories, the ranking engine, usecases and the
// HTTP surface into a runnable app.
func Bootstrap(c *Container) (*App, func() error, error) {
	if c == nil {
		return nil, nil, fmt.Errorf("nil container")
	}

	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	errMw := middleware.NewErrorMiddleware()
	f.Use(errMw.Middleware())
	f.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())

	jwtSvc := jwt.NewHMACService(
		c.Config.JWT.AccessSecret,
		c.Config.JWT.RefreshSecret,
		c.Config.JWT.AccessExpiresIn,
		c.Config.JWT.RefreshExpiresIn,
	)

	snapshots := repository.NewPostgresSnapshotRepository(c.DB)
	postRepo := repository.NewPostgresPostRepository(c.DB)
	userRepo := repository.NewPostgresUserRepository(c.DB)
	appRepo := repository.NewPostgresApplicationRepository(c.DB)

	engine := recommend.NewDefaultEngine()
	notifier := ws.NewFeedNotifier(c.Hub)
	ttl := c.Config.Engine.RecommendationTTL

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	feedUC := usecase.NewPostFeedUsecase(postRepo, userRepo)
	postRecsUC := usecase.NewPostRecommendationUsecase(snapshots, engine, c.Cache, ttl, c.Logger)
	applicantRecsUC := usecase.NewApplicantRecommendationUsecase(snapshots, engine, c.Cache, ttl, c.Logger)
	applicationUC := usecase.NewApplicationUsecase(appRepo, postRepo, userRepo, c.Cache, notifier, c.Logger)

	registry := &routes.Registry{
		Health:          handler.NewHealthHandler(c.DB, c.Cache),
		Auth:            handler.NewAuthHandler(authUC),
		PostFeed:        handler.NewPostFeedHandler(feedUC),
		Recommendations: handler.NewRecommendationHandler(postRecsUC, applicantRecsUC),
		Applications:    handler.NewApplicationHandler(applicationUC),
		AuthMiddleware:  middleware.NewAuthMiddleware(jwtSvc),
		Feed:            ws.NewHandler(c.Hub, c.Logger),
	}
	registry.Register(f)

	go c.Hub.Run()

	cleanup := func() error { return c.Close() }
	return &App{Fiber: f, Hub: c.Hub}, cleanup, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
