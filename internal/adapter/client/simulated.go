package client

import (
	"context"
	"crypto/sha256"
	"fmt"

	"artlens-core/internal/domain/entity"
)

// The simulated collaborators back the demo mode: no API key, no network,
// deterministic output. They are selected explicitly at configuration time
// and implement the same interfaces as the Gemini clients.

var demoArtworks = []entity.Artwork{
	{Title: "The Starry Night", Artist: "Vincent van Gogh", Year: "1889", Movement: "Post-Impressionism",
		Museum: "Museum of Modern Art, New York", Description: "A swirling night sky over a French village"},
	{Title: "Mona Lisa", Artist: "Leonardo da Vinci", Year: "1503", Movement: "Renaissance",
		Museum: "Louvre Museum, Paris", Description: "Portrait of Lisa Gherardini with an enigmatic smile"},
	{Title: "The Persistence of Memory", Artist: "Salvador Dalí", Year: "1931", Movement: "Surrealism",
		Museum: "Museum of Modern Art, New York", Description: "Melting clocks in a dreamlike landscape"},
	{Title: "Girl with a Pearl Earring", Artist: "Johannes Vermeer", Year: "1665", Movement: "Dutch Golden Age",
		Museum: "Mauritshuis, The Hague", Description: "Portrait of a girl wearing an exotic dress and a pearl earring"},
	{Title: "The Scream", Artist: "Edvard Munch", Year: "1893", Movement: "Expressionism",
		Museum: "National Museum of Norway", Description: "An agonized figure against a tumultuous orange sky"},
}

// SimulatedVision resolves any image to one of the demo artworks. The pick is
// derived from the image bytes, so re-uploads stay consistent with the
// fingerprint deduplication.
type SimulatedVision struct{}

func NewSimulatedVision() *SimulatedVision { return &SimulatedVision{} }

func (s *SimulatedVision) Recognize(_ context.Context, imageBytes []byte) (*entity.RecognitionResult, error) {
	sum := sha256.Sum256(imageBytes)
	artwork := demoArtworks[int(sum[0])%len(demoArtworks)]
	return &entity.RecognitionResult{
		Artwork:    artwork,
		Confidence: 0.9,
		Metadata:   map[string]string{"model": "simulated"},
	}, nil
}

// SimulatedText produces canned educational content from the artwork fields.
type SimulatedText struct{}

func NewSimulatedText() *SimulatedText { return &SimulatedText{} }

func (s *SimulatedText) Generate(_ context.Context, kind entity.ContentKind, a entity.Artwork) (string, error) {
	switch kind {
	case entity.KindArtistBio:
		return fmt.Sprintf(`{"name": %q, "biography": "Biography of %s, creator of %s.", "style": "Characteristic of %s.", "notable_works": [%q], "influences": "The artistic currents of the era."}`,
			a.Artist, a.Artist, a.Title, a.Movement, a.Title), nil
	case entity.KindChatPrimer:
		return fmt.Sprintf("Ah, you want to know about %q! I, %s, poured my soul into every detail of this piece. Ask me anything about it.", a.Title, a.Artist), nil
	case entity.KindRelatedContext:
		return fmt.Sprintf(`{"similar_artworks": [], "contemporary_artists": [], "historical_context": {"time_period": "The era of %s", "art_movement": %q, "artist_story": "The story of %s."}}`,
			a.Movement, a.Movement, a.Artist), nil
	default:
		return fmt.Sprintf("%q by %s is a remarkable example of %s art created in %s. The composition demonstrates careful attention to form, color, and meaning, inviting viewers to contemplate its deeper themes.",
			a.Title, a.Artist, a.Movement, a.Year), nil
	}
}

func (s *SimulatedText) GenerateQuiz(_ context.Context, a entity.Artwork) ([]entity.Question, error) {
	return []entity.Question{
		{
			Prompt:        fmt.Sprintf("Who painted %q?", a.Title),
			Options:       []string{a.Artist, "Pablo Picasso", "Claude Monet", "Rembrandt"},
			CorrectAnswer: 0,
			Explanation:   fmt.Sprintf("%s created this masterpiece in %s.", a.Artist, a.Year),
		},
		{
			Prompt:        fmt.Sprintf("What art movement does %q belong to?", a.Title),
			Options:       []string{a.Movement, "Cubism", "Abstract Expressionism", "Baroque"},
			CorrectAnswer: 0,
			Explanation:   fmt.Sprintf("This work is a prime example of %s art.", a.Movement),
		},
		{
			Prompt:        fmt.Sprintf("When was %q created?", a.Title),
			Options:       []string{a.Year, "1920s", "1650s", "2000s"},
			CorrectAnswer: 0,
			Explanation:   fmt.Sprintf("The artwork was created in %s.", a.Year),
		},
		{
			Prompt:        "What emotion does this artwork primarily convey?",
			Options:       []string{"A sense of wonder and movement", "Anger and frustration", "Boredom", "Confusion"},
			CorrectAnswer: 0,
			Explanation:   "The composition and colors work together to create an emotional impact.",
		},
		{
			Prompt:        "Which technique is most prominent in this work?",
			Options:       []string{"Expressive brushwork", "Photorealism", "Digital manipulation", "Collage"},
			CorrectAnswer: 0,
			Explanation:   "The artist used distinctive brushwork characteristic of their style.",
		},
	}, nil
}
