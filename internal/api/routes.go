package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")
	api.Get("/operations", handler.ListOperations)
	api.Post("/commands/:operation", handler.RunCommand)
}
