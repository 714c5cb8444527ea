package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artlens-core/internal/domain/entity"
)

func sampleQuestions(prefix string) []entity.Question {
	qs := make([]entity.Question, 3)
	for i := range qs {
		qs[i] = entity.Question{
			Prompt:        fmt.Sprintf("%s question %d", prefix, i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
		}
	}
	return qs
}

func TestMemoryQuizStoreWriteOnceQuestions(t *testing.T) {
	s := NewMemoryQuizStore()
	ctx := context.Background()

	first := sampleQuestions("first")
	written, err := s.PutQuestions(ctx, "user-1", "art-1", first)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = s.PutQuestions(ctx, "user-1", "art-1", sampleQuestions("second"))
	require.NoError(t, err)
	assert.False(t, written)

	got, err := s.GetQuestions(ctx, "user-1", "art-1")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// A different user gets an independent record for the same artwork.
	written, err = s.PutQuestions(ctx, "user-2", "art-1", sampleQuestions("second"))
	require.NoError(t, err)
	assert.True(t, written)
}

func TestMemoryQuizStoreAttemptHistory(t *testing.T) {
	s := NewMemoryQuizStore()
	ctx := context.Background()

	_, err := s.RecordAttempt(ctx, "user-1", "art-1", 80)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = s.PutQuestions(ctx, "user-1", "art-1", sampleQuestions("q"))
	require.NoError(t, err)

	scores := []int{40, 75, 60}
	wantBest := []int{40, 75, 75}
	wantNewBest := []bool{false, true, false}
	for i, score := range scores {
		res, err := s.RecordAttempt(ctx, "user-1", "art-1", score)
		require.NoError(t, err)
		assert.Equal(t, score, res.Score)
		assert.Equal(t, wantBest[i], res.BestScore, "attempt %d", i)
		assert.Equal(t, wantNewBest[i], res.IsNewBest, "attempt %d", i)
	}

	// A worse attempt never lowers the best.
	res, err := s.RecordAttempt(ctx, "user-1", "art-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 75, res.BestScore)
	assert.Equal(t, 75, res.PreviousBest)
	assert.False(t, res.IsNewBest)
}

func TestMemoryQuizStoreConcurrentAttempts(t *testing.T) {
	s := NewMemoryQuizStore()
	ctx := context.Background()

	_, err := s.PutQuestions(ctx, "user-1", "art-1", sampleQuestions("q"))
	require.NoError(t, err)

	const submits = 32
	scores := make([]int, submits)
	maxScore := 0
	for i := range scores {
		scores[i] = (i * 7) % 101
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}

	var wg sync.WaitGroup
	for _, score := range scores {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			res, err := s.RecordAttempt(ctx, "user-1", "art-1", score)
			if assert.NoError(t, err) {
				// Whatever interleaving happened, the best never trails
				// the score just recorded.
				assert.GreaterOrEqual(t, res.BestScore, score)
			}
		}(score)
	}
	wg.Wait()

	// Every submit landed exactly once and the best is the max over all.
	rec := s.records[quizKey("user-1", "art-1")]
	require.NotNil(t, rec)
	assert.Len(t, rec.Attempts, submits)
	assert.Equal(t, maxScore, rec.BestScore)
}

func TestMemoryQuizStoreReplacePreservesHistory(t *testing.T) {
	s := NewMemoryQuizStore()
	ctx := context.Background()

	_, err := s.PutQuestions(ctx, "user-1", "art-1", sampleQuestions("old"))
	require.NoError(t, err)
	_, err = s.RecordAttempt(ctx, "user-1", "art-1", 60)
	require.NoError(t, err)

	fresh := sampleQuestions("new")
	require.NoError(t, s.ReplaceQuestions(ctx, "user-1", "art-1", fresh))

	got, err := s.GetQuestions(ctx, "user-1", "art-1")
	require.NoError(t, err)
	assert.Equal(t, fresh, got)

	res, err := s.RecordAttempt(ctx, "user-1", "art-1", 20)
	require.NoError(t, err)
	assert.Equal(t, 60, res.BestScore)
}
