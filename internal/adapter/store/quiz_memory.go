package store

import (
	"context"
	"sync"
	"time"

	"artlens-core/internal/domain/entity"
)

// MemoryQuizStore keeps quiz records per (user, artwork) pair. The question
// set is write-once; attempts and the best score are updated under the store
// mutex so concurrent submits cannot corrupt the max.
type MemoryQuizStore struct {
	mu      sync.Mutex
	records map[string]*entity.QuizRecord
	now     func() time.Time
}

func NewMemoryQuizStore() *MemoryQuizStore {
	return &MemoryQuizStore{
		records: make(map[string]*entity.QuizRecord),
		now:     time.Now,
	}
}

func quizKey(userID, artworkID string) string { return userID + "\x00" + artworkID }

func (s *MemoryQuizStore) GetQuestions(_ context.Context, userID, artworkID string) ([]entity.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[quizKey(userID, artworkID)]
	if !ok || len(rec.Questions) == 0 {
		return nil, entity.ErrNotFound
	}
	return rec.Questions, nil
}

func (s *MemoryQuizStore) PutQuestions(_ context.Context, userID, artworkID string, qs []entity.Question) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := quizKey(userID, artworkID)
	if rec, ok := s.records[key]; ok && len(rec.Questions) > 0 {
		return false, nil
	}
	s.records[key] = &entity.QuizRecord{
		UserID:    userID,
		ArtworkID: artworkID,
		Questions: qs,
	}
	return true, nil
}

// ReplaceQuestions swaps in a regenerated question set. Attempt history and
// the best score survive the swap.
func (s *MemoryQuizStore) ReplaceQuestions(_ context.Context, userID, artworkID string, qs []entity.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := quizKey(userID, artworkID)
	rec, ok := s.records[key]
	if !ok {
		s.records[key] = &entity.QuizRecord{UserID: userID, ArtworkID: artworkID, Questions: qs}
		return nil
	}
	rec.Questions = qs
	return nil
}

func (s *MemoryQuizStore) RecordAttempt(_ context.Context, userID, artworkID string, score int) (*entity.AttemptResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[quizKey(userID, artworkID)]
	if !ok {
		return nil, entity.ErrNotFound
	}
	first := len(rec.Attempts) == 0
	prev := rec.BestScore
	rec.Attempts = append(rec.Attempts, entity.QuizAttempt{Score: score, SubmittedAt: s.now()})
	if score > rec.BestScore {
		rec.BestScore = score
	}
	return &entity.AttemptResult{
		Score:        score,
		BestScore:    rec.BestScore,
		PreviousBest: prev,
		IsNewBest:    !first && score > prev,
	}, nil
}
