package api

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"artlens-core/internal/domain/entity"
	"artlens-core/internal/usecase"
)

type ArtworkHandler struct {
	orchestrator *usecase.Orchestrator
}

func NewArtworkHandler(orch *usecase.Orchestrator) *ArtworkHandler {
	return &ArtworkHandler{orchestrator: orch}
}

// HandleRecognize accepts a multipart image upload and resolves it to an
// artwork, serving from the recognition store when the image was seen before.
func (h *ArtworkHandler) HandleRecognize(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "no image provided"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "could not read image"})
	}
	defer file.Close()
	imageBytes, err := io.ReadAll(file)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "could not read image"})
	}

	entry, cached, err := h.orchestrator.Recognize(c.Context(), imageBytes)
	if err != nil {
		return mapError(c, err)
	}

	c.Set("X-Artlens-Cache-Hit", "false")
	if cached {
		c.Set("X-Artlens-Cache-Hit", "true")
	}
	return c.Status(200).JSON(fiber.Map{
		"success":    true,
		"artwork":    entry.Artwork,
		"confidence": entry.Confidence,
		"cached":     cached,
	})
}

// HandleContent serves generated content for an artwork by kind.
func (h *ArtworkHandler) HandleContent(c *fiber.Ctx) error {
	artworkID := c.Params("id")
	kind := entity.ContentKind(c.Params("kind"))
	userID := c.Query("user_id")

	content, err := h.orchestrator.GetContent(c.Context(), artworkID, kind, userID)
	if err != nil {
		return mapError(c, err)
	}
	c.Set("X-Artlens-Cache-Hit", "false")
	if content.Cached {
		c.Set("X-Artlens-Cache-Hit", "true")
	}
	return c.Status(200).JSON(content)
}

func (h *ArtworkHandler) HandleGetQuiz(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id is required"})
	}
	questions, err := h.orchestrator.GetQuiz(c.Context(), userID, c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(200).JSON(fiber.Map{"questions": questions})
}

func (h *ArtworkHandler) HandleRegenerateQuiz(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id is required"})
	}
	questions, err := h.orchestrator.RegenerateQuiz(c.Context(), userID, c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(200).JSON(fiber.Map{"questions": questions})
}

type quizSubmitRequest struct {
	UserID  string `json:"user_id"`
	Answers []int  `json:"answers"`
}

func (h *ArtworkHandler) HandleSubmitQuiz(c *fiber.Ctx) error {
	var req quizSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id is required"})
	}
	result, err := h.orchestrator.SubmitQuizAttempt(c.Context(), req.UserID, c.Params("id"), req.Answers)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(200).JSON(result)
}

// mapError translates domain errors to HTTP status codes. Raw collaborator
// failures never reach this layer untyped.
func mapError(c *fiber.Ctx, err error) error {
	var notRecognized *entity.NotRecognizedError
	switch {
	case errors.As(err, &notRecognized):
		return c.Status(404).JSON(fiber.Map{
			"success":     false,
			"message":     notRecognized.Message,
			"is_artwork":  notRecognized.IsArtwork,
			"suggestions": notRecognized.Suggestions,
		})
	case errors.Is(err, entity.ErrInvalidInput):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, entity.ErrRecognitionFailed), errors.Is(err, entity.ErrGenerationFailed):
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, entity.ErrStoreUnavailable):
		return c.Status(503).JSON(fiber.Map{"error": "storage temporarily unavailable"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}
}
