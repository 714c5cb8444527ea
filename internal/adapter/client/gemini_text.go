package client

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"artlens-core/internal/domain/entity"
)

const quizPrompt = `Generate 5 multiple-choice quiz questions about this artwork:

Title: %s
Artist: %s
Year: %s
Movement: %s

Include varied question types: factual, visual details, techniques, interpretation, historical context.
Return ONLY a valid JSON array with this exact format:
[{"question": "...", "options": ["A", "B", "C", "D"], "correct_answer": 0, "explanation": "..."}]

Make questions engaging and educational for high school students.`

// GeminiText generates descriptions, bios, chat primers, related context and
// quizzes through a Gemini text model.
type GeminiText struct {
	client *genai.Client
	model  string
}

func NewGeminiText(c *genai.Client, model string) *GeminiText {
	return &GeminiText{client: c, model: model}
}

func (g *GeminiText) Generate(ctx context.Context, kind entity.ContentKind, artwork entity.Artwork) (string, error) {
	prompt, wantJSON := contentPrompt(kind, artwork)

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 1500,
	}
	if wantJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", kind, err)
	}
	text := stripCodeFences(resp.Text())
	if wantJSON && !json.Valid([]byte(text)) {
		return "", fmt.Errorf("generate %s: model returned invalid JSON", kind)
	}
	return text, nil
}

func (g *GeminiText) GenerateQuiz(ctx context.Context, artwork entity.Artwork) ([]entity.Question, error) {
	prompt := fmt.Sprintf(quizPrompt, artwork.Title, artwork.Artist, artwork.Year, artwork.Movement)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.7),
		MaxOutputTokens:  1000,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var questions []entity.Question
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Text())), &questions); err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}
	for i, q := range questions {
		if len(q.Options) < 2 || q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, fmt.Errorf("quiz question %d is malformed", i)
		}
	}
	return questions, nil
}

// contentPrompt builds the per-kind prompt. The bool reports whether the
// payload is a JSON document rather than prose.
func contentPrompt(kind entity.ContentKind, a entity.Artwork) (string, bool) {
	switch kind {
	case entity.KindArtistBio:
		return fmt.Sprintf(`Generate information about the artist who created "%s" (%s, %s).
Return a JSON object: {"name": "...", "birth_year": "...", "death_year": "...", "nationality": "...",
"biography": "300-400 word biography", "style": "150-200 word style description",
"notable_works": ["..."], "influences": "100-150 words on influences and legacy"}.
Make the content engaging for high school students. Return ONLY valid JSON.`,
			a.Title, a.Artist, a.Year), true

	case entity.KindChatPrimer:
		return fmt.Sprintf(`You are %s, the creator of "%s".
Introduce yourself to a student in 60-100 words: speak with passion about your work,
mention what inspired this piece, and invite questions. Stay in character.`,
			a.Artist, a.Title), false

	case entity.KindRelatedContext:
		return fmt.Sprintf(`You are an art historian. Provide context about "%s" by %s (%s).
Return a JSON object: {"similar_artworks": [{"title": "...", "artist": "...", "year": "...", "similarity": "..."}],
"contemporary_artists": [{"name": "...", "years": "...", "movement": "...", "notable_work": "...", "connection": "..."}],
"historical_context": {"time_period": "...", "art_movement": "...", "artist_story": "..."}}.
Provide 3-4 similar artworks and 3-4 contemporary artists. Return ONLY valid JSON.`,
			a.Title, a.Artist, a.Year), true

	default: // description
		return fmt.Sprintf(`Generate a 200-300 word educational description for the following artwork:

Title: %s
Artist: %s
Year: %s
Movement: %s

Explain the artwork's historical and cultural context, color symbolism and techniques,
and the artist's emotional intent. Use friendly, inspiring language suitable for
high school students.`,
			a.Title, a.Artist, a.Year, a.Movement), false
	}
}
