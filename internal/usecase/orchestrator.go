package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"artlens-core/internal/domain/entity"
	"artlens-core/internal/domain/repository"
	"artlens-core/internal/pkg/logger"
)

// Orchestrator is the single façade request handlers talk to. It decides
// cache hit/miss across the three stores, calls the external collaborators on
// miss, writes through on success, and fails open when a store is down.
type Orchestrator struct {
	recognitions repository.RecognitionStore
	responses    repository.ResponseCache
	quizzes      repository.QuizStore
	vision       repository.VisionProvider
	content      repository.ContentProvider
	log          *logger.Logger

	contentTTL    time.Duration
	minConfidence float64

	recognizeGroup singleflight.Group
	contentGroup   singleflight.Group
	quizGroup      singleflight.Group
}

type Options struct {
	ContentTTL    time.Duration
	MinConfidence float64
}

func NewOrchestrator(
	rs repository.RecognitionStore,
	rc repository.ResponseCache,
	qs repository.QuizStore,
	vision repository.VisionProvider,
	content repository.ContentProvider,
	log *logger.Logger,
	opts Options,
) *Orchestrator {
	if opts.ContentTTL <= 0 {
		opts.ContentTTL = 30 * time.Minute
	}
	return &Orchestrator{
		recognitions:  rs,
		responses:     rc,
		quizzes:       qs,
		vision:        vision,
		content:       content,
		log:           log,
		contentTTL:    opts.ContentTTL,
		minConfidence: opts.MinConfidence,
	}
}

// Recognize resolves image bytes to a recognition entry. The bool reports
// whether the entry came from the store without an external call. Store
// unavailability is absorbed as a miss; vision failures surface as
// ErrRecognitionFailed (or NotRecognizedError for a semantic "no").
func (o *Orchestrator) Recognize(ctx context.Context, imageBytes []byte) (*entity.RecognitionEntry, bool, error) {
	fp, err := entity.ComputeFingerprint(imageBytes)
	if err != nil {
		return nil, false, err
	}

	entry, err := o.recognitions.Lookup(ctx, fp)
	if err == nil {
		return entry, true, nil
	}
	if errors.Is(err, entity.ErrStoreUnavailable) {
		o.log.Warn("recognition store unavailable, failing open", "fingerprint", fp, "error", err)
	}

	// Concurrent uploads of the same never-before-seen image share one
	// vision call.
	v, err, _ := o.recognizeGroup.Do(string(fp), func() (interface{}, error) {
		return o.recognizeMiss(ctx, fp, imageBytes)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*entity.RecognitionEntry), false, nil
}

func (o *Orchestrator) recognizeMiss(ctx context.Context, fp entity.Fingerprint, imageBytes []byte) (*entity.RecognitionEntry, error) {
	res, err := o.vision.Recognize(ctx, imageBytes)
	if err != nil {
		var notRecognized *entity.NotRecognizedError
		if errors.As(err, &notRecognized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrRecognitionFailed, err)
	}
	if res.Artwork.Title == "" || res.Artwork.Artist == "" {
		return nil, &entity.NotRecognizedError{
			Message:   "the model could not identify this as a famous artwork",
			IsArtwork: true,
		}
	}
	if res.Confidence < o.minConfidence {
		return nil, &entity.NotRecognizedError{
			Message:   "low confidence in recognition; this may not be a famous artwork",
			IsArtwork: true,
			Suggestions: []string{
				"Try a clearer photo with better lighting",
				"Ensure the entire artwork is visible",
			},
		}
	}

	artwork := res.Artwork
	artwork.ID = uuid.NewString()
	entry := &entity.RecognitionEntry{
		Fingerprint:  fp,
		Artwork:      artwork,
		Confidence:   res.Confidence,
		RecognizedAt: time.Now().UTC(),
		Metadata:     res.Metadata,
	}

	written, err := o.recognitions.Put(ctx, fp, entry)
	if err != nil {
		// Fail open: the user still gets the recognition, it just is not
		// deduplicated until the store recovers.
		o.log.Warn("recognition store write failed", "fingerprint", fp, "error", err)
		return entry, nil
	}
	if !written {
		// A racing duplicate got there first; honor the accepted entry.
		if existing, err := o.recognitions.Lookup(ctx, fp); err == nil {
			return existing, nil
		}
	}
	return entry, nil
}

// GetContent returns generated text for (artwork, kind, user), serving from
// the response cache when a fresh entry exists.
func (o *Orchestrator) GetContent(ctx context.Context, artworkID string, kind entity.ContentKind, userID string) (*entity.GeneratedContent, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown content kind %q", entity.ErrInvalidInput, kind)
	}
	sig := entity.ContentSignature{ArtworkID: artworkID, Kind: kind, UserID: userID}

	if cached, err := o.responses.Get(ctx, sig); err == nil {
		hit := *cached
		hit.Cached = true
		return &hit, nil
	} else if errors.Is(err, entity.ErrStoreUnavailable) {
		o.log.Warn("response cache unavailable, failing open", "signature", sig.Key(), "error", err)
	}

	v, err, _ := o.contentGroup.Do(sig.Key(), func() (interface{}, error) {
		entry, err := o.recognitions.FindByArtwork(ctx, artworkID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return nil, fmt.Errorf("%w: artwork %s", entity.ErrNotFound, artworkID)
			}
			return nil, fmt.Errorf("%w: artwork %s", entity.ErrStoreUnavailable, artworkID)
		}

		text, err := o.content.Generate(ctx, kind, entry.Artwork)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
		}
		content := &entity.GeneratedContent{
			Kind:        kind,
			Text:        text,
			GeneratedAt: time.Now().UTC(),
		}
		if err := o.responses.Put(ctx, sig, content, o.contentTTL); err != nil {
			o.log.Warn("response cache write failed", "signature", sig.Key(), "error", err)
		}
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.GeneratedContent), nil
}

// GetQuiz returns the fixed question set for the pair, generating it exactly
// once on first request. Later calls return the stored set unchanged no
// matter how old it is.
func (o *Orchestrator) GetQuiz(ctx context.Context, userID, artworkID string) ([]entity.Question, error) {
	qs, err := o.quizzes.GetQuestions(ctx, userID, artworkID)
	if err == nil {
		return qs, nil
	}
	if errors.Is(err, entity.ErrStoreUnavailable) {
		return nil, err
	}

	key := userID + "\x00" + artworkID
	v, err, _ := o.quizGroup.Do(key, func() (interface{}, error) {
		// A coalesced caller may have written between our miss and now.
		if qs, err := o.quizzes.GetQuestions(ctx, userID, artworkID); err == nil {
			return qs, nil
		}
		generated, err := o.generateQuiz(ctx, artworkID)
		if err != nil {
			return nil, err
		}
		written, err := o.quizzes.PutQuestions(ctx, userID, artworkID, generated)
		if err != nil {
			return nil, err
		}
		if !written {
			if stored, err := o.quizzes.GetQuestions(ctx, userID, artworkID); err == nil {
				return stored, nil
			}
		}
		return generated, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.Question), nil
}

// RegenerateQuiz replaces the question set for the pair with a fresh one.
// Attempt history and the personal best are preserved across regeneration.
func (o *Orchestrator) RegenerateQuiz(ctx context.Context, userID, artworkID string) ([]entity.Question, error) {
	generated, err := o.generateQuiz(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	if err := o.quizzes.ReplaceQuestions(ctx, userID, artworkID, generated); err != nil {
		return nil, err
	}
	return generated, nil
}

func (o *Orchestrator) generateQuiz(ctx context.Context, artworkID string) ([]entity.Question, error) {
	entry, err := o.recognitions.FindByArtwork(ctx, artworkID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("%w: artwork %s", entity.ErrNotFound, artworkID)
		}
		return nil, err
	}
	qs, err := o.content.GenerateQuiz(ctx, entry.Artwork)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: generator returned no questions", entity.ErrGenerationFailed)
	}
	return qs, nil
}

// SubmitQuizAttempt grades the answer sheet against the stored question set
// and records the attempt.
func (o *Orchestrator) SubmitQuizAttempt(ctx context.Context, userID, artworkID string, answers []int) (*entity.QuizSubmission, error) {
	qs, err := o.quizzes.GetQuestions(ctx, userID, artworkID)
	if err != nil {
		return nil, err
	}
	score, correct := entity.GradeQuiz(qs, answers)
	res, err := o.quizzes.RecordAttempt(ctx, userID, artworkID, score)
	if err != nil {
		return nil, err
	}
	return &entity.QuizSubmission{
		Score:        res.Score,
		Correct:      correct,
		Total:        len(qs),
		BestScore:    res.BestScore,
		PreviousBest: res.PreviousBest,
		IsNewBest:    res.IsNewBest,
	}, nil
}
