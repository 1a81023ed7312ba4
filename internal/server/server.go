package server

import (
	"log"

	"notes-versioning-be/internal/bootstrap"
	"notes-versioning-be/internal/config"
	"notes-versioning-be/internal/pkg/serverutils"
	"notes-versioning-be/internal/tracer"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return serverutils.WriteError(ctx, container.Logger, err)
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type, WWW-Authenticate",
	}))

	app.Use(otelfiber.Middleware(otelfiber.WithServerName(tracer.ServiceName)))

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	c.AuthController.RegisterRoutes(api)
	c.NoteController.RegisterRoutes(api)
	c.VersionFeedHandler.RegisterRoutes(api)
}
