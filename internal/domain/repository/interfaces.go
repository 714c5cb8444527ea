package repository

import (
	"context"
	"time"

	"artlens-core/internal/domain/entity"
)

// RecognitionStore maps image fingerprints to recognition results. Lookup and
// FindByArtwork report absence with entity.ErrNotFound and infrastructure
// failure with entity.ErrStoreUnavailable. Put is first-writer-wins: a racing
// duplicate recognition never overwrites the entry already accepted.
type RecognitionStore interface {
	Lookup(ctx context.Context, fp entity.Fingerprint) (*entity.RecognitionEntry, error)
	FindByArtwork(ctx context.Context, artworkID string) (*entity.RecognitionEntry, error)
	Put(ctx context.Context, fp entity.Fingerprint, e *entity.RecognitionEntry) (bool, error)
}

// ResponseCache is the time-bounded cache for generated textual content.
// Put is last-writer-wins; regenerated text is an equally valid replacement.
type ResponseCache interface {
	Get(ctx context.Context, sig entity.ContentSignature) (*entity.GeneratedContent, error)
	Put(ctx context.Context, sig entity.ContentSignature, c *entity.GeneratedContent, ttl time.Duration) error
}

// QuizStore keeps the permanent question set and attempt history per
// (user, artwork) pair. PutQuestions is write-once (first writer wins);
// ReplaceQuestions backs the explicit regenerate action and preserves the
// attempt history. RecordAttempt is an atomic read-modify-write per key.
type QuizStore interface {
	GetQuestions(ctx context.Context, userID, artworkID string) ([]entity.Question, error)
	PutQuestions(ctx context.Context, userID, artworkID string, qs []entity.Question) (bool, error)
	ReplaceQuestions(ctx context.Context, userID, artworkID string, qs []entity.Question) error
	RecordAttempt(ctx context.Context, userID, artworkID string, score int) (*entity.AttemptResult, error)
}

// VisionProvider is the external artwork recognition collaborator.
type VisionProvider interface {
	Recognize(ctx context.Context, imageBytes []byte) (*entity.RecognitionResult, error)
}

// ContentProvider is the external text generation collaborator.
type ContentProvider interface {
	Generate(ctx context.Context, kind entity.ContentKind, artwork entity.Artwork) (string, error)
	GenerateQuiz(ctx context.Context, artwork entity.Artwork) ([]entity.Question, error)
}
