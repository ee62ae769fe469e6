package routes

import (
	"form-builder/config"
	"form-builder/controllers/helpers"
	"form-builder/logger"
	"form-builder/middleware"
	"form-builder/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// NewApp builds the fiber app with the shared middleware chain.
func NewApp(log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: helpers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	config.SetupCORS(app)
	return app
}

func SetupRoutes(app *fiber.App, resolver middleware.DBResolver, log *logger.Logger, notifier services.ResponseNotifier) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return helpers.OK(c, nil, "ok")
	})

	api := app.Group(config.API_PREFIX,
		middleware.ActorMiddleware(config.JWTSecret),
		middleware.InjectDBMiddleware(resolver, log),
	)
	SetupMenuRoutes(api, log)
	SetupFormRoutes(api, log, notifier)
}
