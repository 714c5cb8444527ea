package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRouter(app *fiber.App, handler *ArtworkHandler, version, env string) {
	// Middleware
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": version,
			"env":     env,
		})
	})

	// API Versioning
	v1 := app.Group("/v1")
	v1.Post("/recognize", handler.HandleRecognize)
	v1.Get("/artworks/:id/content/:kind", handler.HandleContent)
	v1.Get("/artworks/:id/quiz", handler.HandleGetQuiz)
	v1.Post("/artworks/:id/quiz/regenerate", handler.HandleRegenerateQuiz)
	v1.Post("/artworks/:id/quiz/attempts", handler.HandleSubmitQuiz)
}
