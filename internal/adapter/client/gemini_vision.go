package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"artlens-core/internal/domain/entity"
)

const recognitionPrompt = `You are an expert art historian. Analyze this image VERY CAREFULLY.

Rules:
1. If this is a photograph of a person, a screenshot, or any random photo, it is NOT a famous artwork.
2. Only report success if you are certain this is a famous painting, sculpture, or artwork photograph held by a museum.
3. Be strict: when in doubt, report failure.

On success respond with:
{"success": true, "title": "...", "artist": "...", "year": "...", "movement": "...", "description": "...", "museum": "...", "confidence": 0.95}

On failure respond with:
{"success": false, "message": "...", "is_artwork": false, "suggestions": ["...", "..."]}
Set "is_artwork" to true when the image does look like artwork you simply cannot identify.

Respond with ONLY the JSON object.`

type visionPayload struct {
	Success     bool        `json:"success"`
	Title       string      `json:"title"`
	Artist      string      `json:"artist"`
	Year        interface{} `json:"year"`
	Movement    string      `json:"movement"`
	Description string      `json:"description"`
	Museum      string      `json:"museum"`
	Confidence  float64     `json:"confidence"`
	Message     string      `json:"message"`
	IsArtwork   bool        `json:"is_artwork"`
	Suggestions []string    `json:"suggestions"`
}

// GeminiVision recognizes artwork photos through a Gemini multimodal model.
type GeminiVision struct {
	client *genai.Client
	model  string
}

func NewGeminiVision(c *genai.Client, model string) *GeminiVision {
	return &GeminiVision{client: c, model: model}
}

func (v *GeminiVision) Recognize(ctx context.Context, imageBytes []byte) (*entity.RecognitionResult, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(recognitionPrompt),
		genai.NewPartFromBytes(imageBytes, entity.DetectImageMIME(imageBytes)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := v.client.Models.GenerateContent(ctx, v.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.1),
		MaxOutputTokens:  500,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("vision call: %w", err)
	}

	var payload visionPayload
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Text())), &payload); err != nil {
		return nil, fmt.Errorf("parse vision response: %w", err)
	}
	if !payload.Success {
		msg := payload.Message
		if msg == "" {
			msg = "this does not appear to be a famous artwork"
		}
		return nil, &entity.NotRecognizedError{
			Message:     msg,
			IsArtwork:   payload.IsArtwork,
			Suggestions: payload.Suggestions,
		}
	}

	return &entity.RecognitionResult{
		Artwork: entity.Artwork{
			Title:       payload.Title,
			Artist:      payload.Artist,
			Year:        yearString(payload.Year),
			Movement:    payload.Movement,
			Museum:      payload.Museum,
			Description: payload.Description,
		},
		Confidence: payload.Confidence,
		Metadata:   map[string]string{"model": v.model},
	}, nil
}

// yearString normalizes the model's year field, which arrives as a number
// for single years and as a string for ranges like "1908-1912".
func yearString(v interface{}) string {
	switch y := v.(type) {
	case string:
		return y
	case float64:
		return fmt.Sprintf("%d", int(y))
	case json.Number:
		return y.String()
	default:
		return ""
	}
}

// stripCodeFences removes a markdown ```json wrapper if the model added one
// despite the JSON response mode.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
